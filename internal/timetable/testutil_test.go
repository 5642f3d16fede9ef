package timetable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minamirinkan/sample-sub000/internal/model"
)

func entry(id, classType string) model.StudentEntry {
	return model.StudentEntry{
		StudentID: id,
		Name:      "生徒" + id,
		Grade:     "中1",
		Subject:   "数学",
		Seat:      "A",
		ClassType: classType,
		Duration:  "80",
		Status:    "予定",
	}
}

// buildGrid 行顺序：T01, T02, 未定, 振替, 欠席；4 个节次
func buildGrid(t *testing.T) *Grid {
	t.Helper()
	g := NewEmptyGrid(4)
	var err error
	g, err = AddRow(g, &model.Teacher{Code: "T01", Name: "山田"}, "", 0, true)
	require.NoError(t, err)
	g, err = AddRow(g, &model.Teacher{Code: "T02", Name: "佐藤"}, "", 1, true)
	require.NoError(t, err)
	g, err = AddRow(g, nil, StatusMakeup, -1, true)
	require.NoError(t, err)
	g, err = AddRow(g, nil, StatusAbsent, -1, true)
	require.NoError(t, err)
	return g
}

func mustInsert(t *testing.T, g *Grid, row string, period int, e model.StudentEntry) *Grid {
	t.Helper()
	next, err := Insert(g, CellRef{Row: row, Period: period}, e)
	require.NoError(t, err)
	return next
}

func cell(t *testing.T, g *Grid, row string, period int) []model.StudentEntry {
	t.Helper()
	c, err := g.Cell(CellRef{Row: row, Period: period})
	require.NoError(t, err)
	return c
}
