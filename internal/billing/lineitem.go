package billing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/minamirinkan/sample-sub000/internal/model"
)

var (
	ErrUnknownGrade   = errors.New("学年无法识别，费用代码缺少学年段")
	ErrFeeNotFound    = errors.New("费用主表中没有匹配的条目")
	ErrInvalidFormula = errors.New("费用公式无效")
)

// LineItem 账单明细
type LineItem struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	UnitPrice int64  `json:"unit_price"`
	Times     int    `json:"times"`
	Minutes   int    `json:"minutes"`
	Amount    int64  `json:"amount"`
}

// MatchTuition 在授業料条目中按代码前缀检索（第一条命中）
// 前缀按 "_" 分段比较，W_J 不会命中 W_J3_*；学年段为空的代码一律不匹配
func MatchTuition(entries []model.FeeMasterEntry, code string) (*model.FeeMasterEntry, error) {
	if !HasGradeSegment(code) {
		return nil, ErrUnknownGrade
	}
	for i := range entries {
		if c := entries[i].Code; c == code || strings.HasPrefix(c, code+"_") {
			return &entries[i], nil
		}
	}
	return nil, ErrFeeNotFound
}

// Amount 计算金额：无公式时为单价；有公式时以
// unit_price/単価、times/回数、minutes/時間 为变量求值，结果四舍五入到整数円
func Amount(entry model.FeeMasterEntry, times, minutes int) (int64, error) {
	if strings.TrimSpace(entry.Formula) == "" {
		return entry.UnitPrice, nil
	}

	expr, err := govaluate.NewEvaluableExpression(entry.Formula)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidFormula, entry.Formula)
	}

	parameters := make(map[string]interface{})
	parameters["unit_price"] = float64(entry.UnitPrice)
	parameters["times"] = float64(times)
	parameters["minutes"] = float64(minutes)
	parameters["単価"] = float64(entry.UnitPrice)
	parameters["回数"] = float64(times)
	parameters["時間"] = float64(minutes)

	result, err := expr.Evaluate(parameters)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidFormula, entry.Formula, err)
	}
	value, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: 结果不是数值", ErrInvalidFormula)
	}
	return int64(math.Round(value)), nil
}

// BuildLineItem 课程 → 账单明细
func BuildLineItem(course Course, entries []model.FeeMasterEntry) (*LineItem, error) {
	code := course.FeeCode()
	entry, err := MatchTuition(entries, code)
	if err != nil {
		return nil, err
	}
	times := atoiOrZero(course.WeeklyTimes)
	minutes := atoiOrZero(course.Duration)
	amount, err := Amount(*entry, times, minutes)
	if err != nil {
		return nil, err
	}
	return &LineItem{
		Code:      entry.Code,
		Name:      entry.Name,
		Category:  model.FeeCategoryTuition,
		UnitPrice: entry.UnitPrice,
		Times:     times,
		Minutes:   minutes,
		Amount:    amount,
	}, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
