package dto

import (
	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/internal/timetable"
)

// ── 时间表模块 DTO ──
// 格子本身沿用存储文档的字段命名（studentId 等），外层参数使用 snake_case

// TimetableResponse 时间表读取/保存响应
type TimetableResponse struct {
	Classroom       string          `json:"classroom"`
	Scope           timetable.Scope `json:"scope"`
	Source          string          `json:"source"`                      // daily | weekly | weekly_prior | legacy | synthesized
	SourceYearMonth string          `json:"source_year_month,omitempty"` // 命中的星期模板所属年月
	Periods         []model.Period  `json:"periods"`
	Grid            *timetable.Grid `json:"grid"`
	UpdatedAt       string          `json:"updated_at,omitempty"`
}

// SaveTimetableRequest 保存时间表请求（整体覆盖）
type SaveTimetableRequest struct {
	Grid *timetable.Grid `json:"grid" binding:"required"`
}

// MoveRequest 拖放请求
type MoveRequest struct {
	Grid      *timetable.Grid   `json:"grid"       binding:"required"`
	StudentID string            `json:"student_id" binding:"required"`
	From      timetable.CellRef `json:"from"`
	To        timetable.CellRef `json:"to"`
}

// RedirectRequest 转入状态行请求
type RedirectRequest struct {
	Grid      *timetable.Grid   `json:"grid"       binding:"required"`
	StudentID string            `json:"student_id" binding:"required"`
	From      timetable.CellRef `json:"from"`
	Status    string            `json:"status"     binding:"required,oneof=未定 振替 欠席 削除"`
}

// CellOperationRequest 元に戻す / 删除请求
type CellOperationRequest struct {
	Grid      *timetable.Grid   `json:"grid"       binding:"required"`
	StudentID string            `json:"student_id" binding:"required"`
	At        timetable.CellRef `json:"at"`
}

// AddRowRequest 新增行请求：Teacher 为空时新增状态行
type AddRowRequest struct {
	Grid     *timetable.Grid `json:"grid"    binding:"required"`
	Teacher  *model.Teacher  `json:"teacher"`
	Status   string          `json:"status"`
	Position *int            `json:"position"`
	Daily    bool            `json:"daily"`
}

// RemoveRowRequest 删除行请求
type RemoveRowRequest struct {
	Grid *timetable.Grid `json:"grid" binding:"required"`
	Row  string          `json:"row"  binding:"required"`
}

// GridResponse 格子操作响应
type GridResponse struct {
	Grid *timetable.Grid `json:"grid"`
}

// EnrollmentRequest 登记时写入时间表：指定 date 为按日，否则为 year_month + weekday
// Teacher 为空时放入未定行；Period 为 0 起节次
type EnrollmentRequest struct {
	Date      string             `json:"date"       binding:"omitempty,isodate"`
	YearMonth string             `json:"year_month" binding:"omitempty,yearmonth"`
	Weekday   *int               `json:"weekday"    binding:"omitempty,min=0,max=6"`
	Teacher   *model.Teacher     `json:"teacher"`
	Period    int                `json:"period"     binding:"min=0"`
	Entry     model.StudentEntry `json:"entry"`
}

// ScopeQuery 时间表范围参数：date 为按日，否则为 year_month + weekday（读取、保存、导出共用）
type ScopeQuery struct {
	Date      string `form:"date"       binding:"omitempty,isodate"`
	YearMonth string `form:"year_month" binding:"omitempty,yearmonth"`
	Weekday   *int   `form:"weekday"    binding:"omitempty,min=0,max=6"`
}

// ToScope 转换为领域范围
func (q ScopeQuery) ToScope() (timetable.Scope, error) {
	if q.Date != "" {
		return timetable.DateScope(q.Date)
	}
	if q.YearMonth == "" || q.Weekday == nil {
		return timetable.Scope{}, timetable.ErrInvalidScope
	}
	return timetable.WeekdayScope(q.YearMonth, *q.Weekday)
}

// PeriodsResponse 节次表响应
type PeriodsResponse struct {
	Classroom string         `json:"classroom"`
	Periods   []model.Period `json:"periods"`
}
