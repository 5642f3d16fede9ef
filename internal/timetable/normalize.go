package timetable

import (
	"strconv"
	"strings"

	"github.com/minamirinkan/sample-sub000/internal/model"
)

const periodKeyPrefix = "period"

// MaxPeriods 存储中可识别的最大节次；超出的键视为损坏数据
const MaxPeriods = 32

// PeriodKey 0 起节次 → 存储键 period{N}（1 起）
func PeriodKey(index int) string {
	return periodKeyPrefix + strconv.Itoa(index+1)
}

// ParsePeriodKey 存储键 → 0 起节次，只接受 period1..period{MaxPeriods}
func ParsePeriodKey(key string) (int, bool) {
	if !strings.HasPrefix(key, periodKeyPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(key, periodKeyPrefix))
	if err != nil || n < 1 || n > MaxPeriods {
		return 0, false
	}
	return n - 1, true
}

// Flatten 内存格子 → 存储形态
// 空单元格不写入；回溯引用为空时由 omitempty 省略
func Flatten(g *Grid) model.ScheduleDocument {
	doc := model.ScheduleDocument{Rows: make([]model.StoredRow, 0, len(g.Rows))}
	for _, r := range g.Rows {
		sr := model.StoredRow{Status: r.Status, Periods: make(map[string][]model.StudentEntry)}
		if r.Teacher != nil {
			t := *r.Teacher
			sr.Teacher = &t
		}
		for p, cell := range r.Periods {
			if len(cell) == 0 {
				continue
			}
			entries := make([]model.StudentEntry, len(cell))
			for i := range cell {
				entries[i] = cloneEntry(cell[i])
			}
			sr.Periods[PeriodKey(p)] = entries
		}
		doc.Rows = append(doc.Rows, sr)
	}
	return doc
}

// Expand 存储形态 → 内存格子
// 列数取节次表长度与存储中最大节次的较大值，缺失的节次补空数组；无法识别或超出 MaxPeriods 的键忽略
func Expand(doc model.ScheduleDocument, width int) *Grid {
	for _, sr := range doc.Rows {
		for key := range sr.Periods {
			if idx, ok := ParsePeriodKey(key); ok && idx+1 > width {
				width = idx + 1
			}
		}
	}

	g := &Grid{Rows: make([]Row, 0, len(doc.Rows))}
	for _, sr := range doc.Rows {
		var teacher *model.Teacher
		if sr.Teacher != nil {
			t := *sr.Teacher
			teacher = &t
		}
		row := newRow(teacher, sr.Status, width)
		for key, entries := range sr.Periods {
			idx, ok := ParsePeriodKey(key)
			if !ok {
				continue
			}
			for i := range entries {
				row.Periods[idx] = append(row.Periods[idx], cloneEntry(entries[i]))
			}
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}
