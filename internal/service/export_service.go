package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/internal/timetable"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportGrid 导出解析后的时间表为 Excel
	ExportGrid(ctx context.Context, classroom string, scope timetable.Scope) (*bytes.Buffer, string, error)
}

type exportService struct {
	timetable TimetableService
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(tt TimetableService, logger *zap.Logger) ExportService {
	return &exportService{timetable: tt, logger: logger}
}

const exportSheet = "時間割"

// ═══════════════════════════════════════════════════════════
// ExportGrid 导出时间表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题（教室 + 范围 + 来源）
//   - 第 2 行：表头，A 列为「講師/区分」，其后每列一个节次（名称 + 时间）
//   - 之后每个格子行一行：讲师姓名或状态行名称；单元格内每名学生一行 "姓名(学年・科目)"

func (s *exportService) ExportGrid(ctx context.Context, classroom string, scope timetable.Scope) (*bytes.Buffer, string, error) {
	tt, err := s.timetable.Resolve(ctx, classroom, scope)
	if err != nil {
		return nil, "", err
	}
	width := tt.Grid.Width()

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(exportSheet, "A", "A", 16)
	if width > 0 {
		f.SetColWidth(exportSheet, colName(1), colName(width), 24)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	bodyStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})

	// 标题行
	f.SetCellValue(exportSheet, "A1", fmt.Sprintf("%s %s（%s）", classroom, scope.String(), tt.Source))

	// 表头
	f.SetCellValue(exportSheet, cell("A", 2), "講師/区分")
	for p := 0; p < width; p++ {
		f.SetCellValue(exportSheet, cell(colName(p+1), 2), periodHeader(tt.Periods, p))
	}
	f.SetCellStyle(exportSheet, "A2", cell(colName(width), 2), headerStyle)

	// 数据行
	row := 3
	for ri := range tt.Grid.Rows {
		r := &tt.Grid.Rows[ri]
		f.SetCellValue(exportSheet, cell("A", row), rowLabel(r))
		for p, entries := range r.Periods {
			if len(entries) == 0 {
				continue
			}
			f.SetCellValue(exportSheet, cell(colName(p+1), row), cellText(entries))
		}
		row++
	}
	if row > 3 {
		f.SetCellStyle(exportSheet, "A3", cell(colName(width), row-1), bodyStyle)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("timetable_%s_%s.xlsx", classroom, strings.ReplaceAll(scope.String(), "/", "_"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func periodHeader(periods []model.Period, p int) string {
	if p < len(periods) {
		return periods[p].Label + "\n" + periods[p].Time
	}
	return timetable.PeriodKey(p)
}

func rowLabel(r *timetable.Row) string {
	if r.Teacher != nil {
		return r.Teacher.Name
	}
	return r.Status
}

func cellText(entries []model.StudentEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s(%s・%s)", e.Name, e.Grade, e.Subject))
	}
	return strings.Join(lines, "\n")
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
