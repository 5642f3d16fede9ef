// Package billing 根据授業形態・学年・回数・时长推导费用代码，并按费用主表生成账单明细。
package billing

import (
	"strings"
)

// 授業区分
const (
	KindRegular      = "通常"
	KindSupplemental = "補習"
	KindSeasonal     = "講習"
)

// Course 学生登记的一门课程
type Course struct {
	Kind          string `json:"kind"`
	ClassType     string `json:"class_type"`
	Grade         string `json:"grade"`
	WeeklyTimes   string `json:"weekly_times"`
	Duration      string `json:"duration"`
	LecturePeriod string `json:"lecture_period,omitempty"` // 講習时的期别，如 夏季講習
}

var seasonCodes = map[string]string{
	"春季講習": "SP",
	"夏季講習": "SU",
	"冬季講習": "WI",
}

// FeeCode 推导课程的费用代码
func (c Course) FeeCode() string {
	return DeriveFeeCode(c.Kind, c.ClassType, c.Grade, c.WeeklyTimes, c.Duration, c.LecturePeriod)
}

// DeriveFeeCode 费用代码：{授業コード}_{学年コード}[_W{回数}][_T{時間}]
// 学年无法识别时学年段为空（如 "W__W2_T80"），检索时按不匹配处理
func DeriveFeeCode(kind, classType, grade, weeklyTimes, duration, lecturePeriod string) string {
	segments := []string{ClassCode(kind, classType, lecturePeriod), GradeCode(grade)}
	if times := strings.TrimSpace(weeklyTimes); times != "" {
		segments = append(segments, "W"+times)
	}
	if d := strings.TrimSpace(duration); d != "" {
		segments = append(segments, "T"+d)
	}
	return strings.Join(segments, "_")
}

// ClassCode 授業コード
//
//	通常：1名クラス→A，2名クラス→W，其他→E
//	補習：E 前缀（EA/EW/EE）
//	講習：期别前缀 + "_" + 形态（SU_A 等），期别未知时只保留形态
func ClassCode(kind, classType, lecturePeriod string) string {
	letter := classTypeLetter(classType)
	switch kind {
	case KindSupplemental:
		return "E" + letter
	case KindSeasonal:
		if season, ok := seasonCodes[lecturePeriod]; ok {
			return season + "_" + letter
		}
		return letter
	default:
		return letter
	}
}

func classTypeLetter(classType string) string {
	switch classType {
	case "1名クラス":
		return "A"
	case "2名クラス":
		return "W"
	default:
		return "E"
	}
}

// GradeCode 学年コード，按前缀匹配
func GradeCode(grade string) string {
	g := strings.TrimSpace(grade)
	switch {
	case strings.HasPrefix(g, "小"):
		return "E"
	case strings.HasPrefix(g, "中1"), strings.HasPrefix(g, "中2"):
		return "J"
	case strings.HasPrefix(g, "中3"):
		return "J3"
	case strings.HasPrefix(g, "高1"), strings.HasPrefix(g, "高2"):
		return "H"
	case strings.HasPrefix(g, "高3"), strings.Contains(g, "既卒"):
		return "H3"
	default:
		return ""
	}
}

// HasGradeSegment 费用代码的学年段是否非空
func HasGradeSegment(code string) bool {
	return !strings.Contains(code, "__") && !strings.HasSuffix(code, "_")
}
