package timetable

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	YearMonthLayout = "2006-01"
)

var ErrInvalidScope = errors.New("无效的时间表范围")

// Scope 时间表范围：按日（Date）或按月星期模板（YearMonth + Weekday）
// Weekday 0=日曜 … 6=土曜
type Scope struct {
	Date      string `json:"date,omitempty"`
	YearMonth string `json:"yearMonth"`
	Weekday   int    `json:"weekday"`
}

// DateScope 按日范围，年月与星期由日期推出
func DateScope(date string) (Scope, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return Scope{}, fmt.Errorf("%w: %s", ErrInvalidScope, date)
	}
	return Scope{Date: date, YearMonth: t.Format(YearMonthLayout), Weekday: int(t.Weekday())}, nil
}

// WeekdayScope 星期模板范围
func WeekdayScope(yearMonth string, weekday int) (Scope, error) {
	if _, err := time.Parse(YearMonthLayout, yearMonth); err != nil {
		return Scope{}, fmt.Errorf("%w: %s", ErrInvalidScope, yearMonth)
	}
	if weekday < 0 || weekday > 6 {
		return Scope{}, fmt.Errorf("%w: weekday=%d", ErrInvalidScope, weekday)
	}
	return Scope{YearMonth: yearMonth, Weekday: weekday}, nil
}

// IsDaily 是否为按日范围
func (s Scope) IsDaily() bool {
	return s.Date != ""
}

func (s Scope) String() string {
	if s.IsDaily() {
		return s.Date
	}
	return fmt.Sprintf("%s/%d", s.YearMonth, s.Weekday)
}

// ShiftMonth 年月平移 n 个月（n 为负表示向前）
func ShiftMonth(yearMonth string, n int) (string, error) {
	t, err := time.Parse(YearMonthLayout, yearMonth)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidScope, yearMonth)
	}
	return t.AddDate(0, n, 0).Format(YearMonthLayout), nil
}

// DaysInMonth 列出某年月的全部日期
func DaysInMonth(yearMonth string) ([]string, error) {
	t, err := time.Parse(YearMonthLayout, yearMonth)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidScope, yearMonth)
	}
	var days []string
	for d := t; d.Month() == t.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days, nil
}
