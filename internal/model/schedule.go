package model

import "time"

// Teacher 讲师引用（行头）
type Teacher struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// StudentEntry 格子中的一名学生
// OriginRow/OriginPeriod/OriginSlot 只在被转入状态行时写入，用于「元に戻す」
type StudentEntry struct {
	StudentID    string  `json:"studentId"`
	Name         string  `json:"name"`
	Grade        string  `json:"grade"`
	Subject      string  `json:"subject"`
	Seat         string  `json:"seat"`
	ClassType    string  `json:"classType"`
	Duration     string  `json:"duration"`
	Status       string  `json:"status"`
	OriginRow    *string `json:"originRow,omitempty"`    // 原行键：讲师代码或状态行名
	OriginPeriod *int    `json:"originPeriod,omitempty"` // 原节次，0 起
	OriginSlot   *int    `json:"originSlot,omitempty"`   // 原单元格内的位置
}

// HasOrigin 是否带有回溯引用
func (e *StudentEntry) HasOrigin() bool {
	return e.OriginRow != nil && e.OriginPeriod != nil
}

// StoredRow 存储形态的行：节次为稀疏对象，键为 period1..periodN
type StoredRow struct {
	Teacher *Teacher                  `json:"teacher"`
	Status  string                    `json:"status"`
	Periods map[string][]StudentEntry `json:"periods"`
}

// ScheduleDocument 时间表文档：dailySchedules / weeklySchedules
type ScheduleDocument struct {
	Rows      []StoredRow `json:"rows"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
