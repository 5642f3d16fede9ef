package dto

import "github.com/minamirinkan/sample-sub000/internal/model"

// ── 日历模块 DTO ──

// CalendarQuery 日历查询参数
type CalendarQuery struct {
	Month  string `form:"month"  binding:"required,yearmonth"`
	Format string `form:"format" binding:"omitempty,oneof=json ics"`
}

// WantsICS 是否请求 iCalendar 格式
func (q *CalendarQuery) WantsICS() bool {
	return q.Format == "ics"
}

// CalendarResponse 日历事件响应
type CalendarResponse struct {
	Month  string              `json:"month"`
	Events []model.LessonEvent `json:"events"`
}
