package dto

import "github.com/minamirinkan/sample-sub000/internal/billing"

// ── 费用模块 DTO ──

// CourseRequest 课程信息
type CourseRequest struct {
	Kind          string `json:"kind"           binding:"required,oneof=通常 補習 講習"`
	ClassType     string `json:"class_type"     binding:"required"`
	Grade         string `json:"grade"          binding:"required"`
	WeeklyTimes   string `json:"weekly_times"   binding:"omitempty,numeric"`
	Duration      string `json:"duration"       binding:"omitempty,numeric"`
	LecturePeriod string `json:"lecture_period"`
}

// ToCourse 转换为领域对象
func (r CourseRequest) ToCourse() billing.Course {
	return billing.Course{
		Kind:          r.Kind,
		ClassType:     r.ClassType,
		Grade:         r.Grade,
		WeeklyTimes:   r.WeeklyTimes,
		Duration:      r.Duration,
		LecturePeriod: r.LecturePeriod,
	}
}

// FeeCodeResponse 费用代码响应
type FeeCodeResponse struct {
	Code            string `json:"code"`
	GradeRecognized bool   `json:"grade_recognized"`
}

// TuitionQuery 授業料检索参数
type TuitionQuery struct {
	Month string `form:"month" binding:"required,yearmonth"`
	Code  string `form:"code"  binding:"required"`
}

// LineItemsRequest 账单明细生成请求
type LineItemsRequest struct {
	Month   string          `json:"month"   binding:"required,yearmonth"`
	Courses []CourseRequest `json:"courses" binding:"required,min=1,dive"`
}

// LineItemsResponse 账单明细响应
type LineItemsResponse struct {
	Month string             `json:"month"`
	Items []billing.LineItem `json:"items"`
	Total int64              `json:"total"`
}
