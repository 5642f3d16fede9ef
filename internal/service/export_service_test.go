package service

import (
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/minamirinkan/sample-sub000/internal/timetable"
)

func TestExportService_ExportGrid(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPeriods(t, 3)
	ctx := context.Background()
	_ = env.repo.Schedule.SaveWeekly(ctx, "047", "2025-09", 3, docWithTeacher("T01", "S1", 1))

	scope, _ := timetable.WeekdayScope("2025-09", 3)
	buf, filename, err := env.svc.Export.ExportGrid(ctx, "047", scope)
	if err != nil {
		t.Fatalf("ExportGrid 应成功: %v", err)
	}
	if filename != "timetable_047_2025-09_3.xlsx" {
		t.Errorf("文件名不正确: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开导出文件失败: %v", err)
	}
	defer f.Close()

	title, _ := f.GetCellValue(exportSheet, "A1")
	if !strings.Contains(title, "047") || !strings.Contains(title, "weekly") {
		t.Errorf("标题不正确: %s", title)
	}
	header, _ := f.GetCellValue(exportSheet, "B2")
	if !strings.HasPrefix(header, "1限") {
		t.Errorf("表头不正确: %s", header)
	}
	label, _ := f.GetCellValue(exportSheet, "A3")
	if label != "講師T01" {
		t.Errorf("讲师行名称不正确: %s", label)
	}
	if last, _ := f.GetCellValue(exportSheet, "D2"); !strings.HasPrefix(last, "3限") {
		t.Errorf("末列表头不正确: %s", last)
	}
	if beyond, _ := f.GetCellValue(exportSheet, "E2"); beyond != "" {
		t.Errorf("节次表之外不应有列: %s", beyond)
	}
	text, _ := f.GetCellValue(exportSheet, "C3")
	if text != "生徒S1(中1・英語)" {
		t.Errorf("单元格内容不正确: %s", text)
	}
	lane, _ := f.GetCellValue(exportSheet, "A4")
	if lane != timetable.StatusPending {
		t.Errorf("状态行名称不正确: %s", lane)
	}
}

func TestExportService_ExportGrid_DailyFilename(t *testing.T) {
	env := setupTestEnv(t)

	scope, _ := timetable.DateScope("2025-09-10")
	buf, filename, err := env.svc.Export.ExportGrid(context.Background(), "047", scope)
	if err != nil {
		t.Fatalf("ExportGrid 应成功: %v", err)
	}
	if filename != "timetable_047_2025-09-10.xlsx" || buf.Len() == 0 {
		t.Errorf("导出结果不正确: %s (%d bytes)", filename, buf.Len())
	}
}
