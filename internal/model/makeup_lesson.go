package model

// MakeupLesson 振替授業：students/{学生ID}/makeupLessons/{ID}
// 由登记界面写入，本服务只读
type MakeupLesson struct {
	ID            string   `json:"-"`
	ClassroomCode string   `json:"classroomCode"`
	Date          string   `json:"date"`   // yyyy-MM-dd
	Period        int      `json:"period"` // 1 起
	Subject       string   `json:"subject"`
	Teacher       *Teacher `json:"teacher,omitempty"`
	Status        string   `json:"status"`
	Note          string   `json:"note,omitempty"`
}

// LessonEvent 日历事件（学生/讲师视角）
type LessonEvent struct {
	Date        string   `json:"date"`
	Weekday     int      `json:"weekday"`
	PeriodIndex int      `json:"periodIndex"` // 1 起
	PeriodLabel string   `json:"periodLabel"`
	Time        string   `json:"time"`
	Teacher     *Teacher `json:"teacher,omitempty"`
	StudentID   string   `json:"studentId,omitempty"`
	StudentName string   `json:"studentName,omitempty"`
	Subject     string   `json:"subject"`
	ClassType   string   `json:"classType,omitempty"`
	Status      string   `json:"status"`
	Source      string   `json:"source"` // daily | weekly | weekly_prior | legacy | makeup
}
