package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/minamirinkan/sample-sub000/config"
	"github.com/minamirinkan/sample-sub000/internal/dto"
	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/internal/repository"
	"github.com/minamirinkan/sample-sub000/internal/timetable"
)

// ── TimetableService 接口 ──────────────────────────────────
//
// 设计说明：
//   - 读取走回退解析（按日 → 星期模板 → 历史月份 → 旧版模板 → 空格子），只读不写
//   - 保存只写入请求的范围，整体覆盖，后写者生效
//   - 拖放/转入/恢复等操作无状态：请求携带当前格子，返回新格子，由前端在保存时统一落盘
// ─────────────────────────────────────────────────────────────

// TimetableService 时间表模块业务接口
type TimetableService interface {
	// Resolve 读取时间表
	Resolve(ctx context.Context, classroom string, scope timetable.Scope) (*dto.TimetableResponse, error)
	// Save 保存时间表到指定范围
	Save(ctx context.Context, classroom string, scope timetable.Scope, grid *timetable.Grid) (*dto.TimetableResponse, error)
	// Move 拖放
	Move(ctx context.Context, req *dto.MoveRequest) (*dto.GridResponse, error)
	// Redirect 转入状态行（未定/振替/欠席/削除）
	Redirect(ctx context.Context, req *dto.RedirectRequest) (*dto.GridResponse, error)
	// Restore 元に戻す
	Restore(ctx context.Context, req *dto.CellOperationRequest) (*dto.GridResponse, error)
	// Remove 删除学生
	Remove(ctx context.Context, req *dto.CellOperationRequest) (*dto.GridResponse, error)
	// AddRow 新增讲师行或状态行
	AddRow(ctx context.Context, req *dto.AddRowRequest) (*dto.GridResponse, error)
	// RemoveRow 删除空行
	RemoveRow(ctx context.Context, req *dto.RemoveRowRequest) (*dto.GridResponse, error)
	// SeedEnrollment 登记时把学生写入时间表（文档不存在时以最近的星期模板为底创建）
	SeedEnrollment(ctx context.Context, classroom string, req *dto.EnrollmentRequest) (*dto.TimetableResponse, error)
}

type timetableService struct {
	cfg     *config.ScheduleConfig
	repo    *repository.Repository
	periods PeriodService
	logger  *zap.Logger
	now     func() time.Time
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(cfg *config.ScheduleConfig, repo *repository.Repository, periods PeriodService, logger *zap.Logger) TimetableService {
	return &timetableService{
		cfg:     cfg,
		repo:    repo,
		periods: periods,
		logger:  logger,
		now:     time.Now,
	}
}

// ════════════════════════════════════════════════════════════
// Resolve / Save
// ════════════════════════════════════════════════════════════

func (s *timetableService) Resolve(ctx context.Context, classroom string, scope timetable.Scope) (*dto.TimetableResponse, error) {
	periods, err := loadPeriods(ctx, s.periods, classroom, s.logger)
	if err != nil {
		return nil, err
	}

	res, err := newResolver(s.repo.Schedule, s.logger).resolve(ctx, classroom, scope, s.cfg.SeedLookbackMonths, len(periods))
	if err != nil {
		return nil, err
	}
	return toTimetableResponse(classroom, scope, periods, res), nil
}

func (s *timetableService) Save(ctx context.Context, classroom string, scope timetable.Scope, grid *timetable.Grid) (*dto.TimetableResponse, error) {
	periods, err := loadPeriods(ctx, s.periods, classroom, s.logger)
	if err != nil {
		return nil, err
	}
	if err := validateForScope(grid, scope, len(periods)); err != nil {
		return nil, err
	}

	updatedAt, err := s.persist(ctx, classroom, scope, grid)
	if err != nil {
		return nil, err
	}

	source := SourceWeekly
	if scope.IsDaily() {
		source = SourceDaily
	}
	return toTimetableResponse(classroom, scope, periods, &resolved{
		grid:      timetable.Expand(timetable.Flatten(grid), len(periods)),
		source:    source,
		updatedAt: updatedAt,
	}), nil
}

func (s *timetableService) persist(ctx context.Context, classroom string, scope timetable.Scope, grid *timetable.Grid) (time.Time, error) {
	doc := timetable.Flatten(grid)
	doc.UpdatedAt = s.now()

	var err error
	if scope.IsDaily() {
		err = s.repo.Schedule.SaveDaily(ctx, classroom, scope.Date, &doc)
	} else {
		err = s.repo.Schedule.SaveWeekly(ctx, classroom, scope.YearMonth, scope.Weekday, &doc)
	}
	if err != nil {
		ctxLogger(ctx, s.logger, classroom).Error("保存时间表失败",
			zap.String("scope", scope.String()),
			zap.Error(err),
		)
		return time.Time{}, fmt.Errorf("保存时间表失败: %w", err)
	}

	ctxLogger(ctx, s.logger, classroom).Info("时间表已保存",
		zap.String("scope", scope.String()),
		zap.Int("rows", len(doc.Rows)),
	)
	return doc.UpdatedAt, nil
}

// validateForScope 保存前整体校验；星期模板不允许振替/欠席行
func validateForScope(grid *timetable.Grid, scope timetable.Scope, width int) error {
	if err := grid.Validate(width); err != nil {
		return err
	}
	if !scope.IsDaily() {
		if grid.LaneIndex(timetable.StatusMakeup) >= 0 || grid.LaneIndex(timetable.StatusAbsent) >= 0 {
			return timetable.ErrLaneDailyOnly
		}
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// 格子操作（无状态）
// ════════════════════════════════════════════════════════════

func (s *timetableService) Move(_ context.Context, req *dto.MoveRequest) (*dto.GridResponse, error) {
	return gridResult(timetable.Move(req.Grid, req.StudentID, req.From, req.To))
}

func (s *timetableService) Redirect(_ context.Context, req *dto.RedirectRequest) (*dto.GridResponse, error) {
	return gridResult(timetable.Redirect(req.Grid, req.StudentID, req.From, req.Status))
}

func (s *timetableService) Restore(_ context.Context, req *dto.CellOperationRequest) (*dto.GridResponse, error) {
	return gridResult(timetable.Restore(req.Grid, req.StudentID, req.At))
}

func (s *timetableService) Remove(_ context.Context, req *dto.CellOperationRequest) (*dto.GridResponse, error) {
	return gridResult(timetable.Remove(req.Grid, req.StudentID, req.At))
}

func (s *timetableService) AddRow(_ context.Context, req *dto.AddRowRequest) (*dto.GridResponse, error) {
	position := -1
	if req.Position != nil {
		position = *req.Position
	}
	return gridResult(timetable.AddRow(req.Grid, req.Teacher, req.Status, position, req.Daily))
}

func (s *timetableService) RemoveRow(_ context.Context, req *dto.RemoveRowRequest) (*dto.GridResponse, error) {
	return gridResult(timetable.RemoveRow(req.Grid, req.Row))
}

func gridResult(g *timetable.Grid, err error) (*dto.GridResponse, error) {
	if err != nil {
		return nil, err
	}
	return &dto.GridResponse{Grid: g}, nil
}

// ════════════════════════════════════════════════════════════
// SeedEnrollment 登记写入
// ════════════════════════════════════════════════════════════
//
// 流程：
//   1. 按登记回溯月数解析目标范围（按日文档不存在时得到最近的星期模板）
//   2. 讲师行不存在时插入到第一条状态行之前
//   3. 按拖放目标同样的规则写入单元格
//   4. 只写回请求的范围

func (s *timetableService) SeedEnrollment(ctx context.Context, classroom string, req *dto.EnrollmentRequest) (*dto.TimetableResponse, error) {
	scope, err := enrollmentScope(req)
	if err != nil {
		return nil, err
	}

	periods, err := loadPeriods(ctx, s.periods, classroom, s.logger)
	if err != nil {
		return nil, err
	}
	res, err := newResolver(s.repo.Schedule, s.logger).resolve(ctx, classroom, scope, s.cfg.SeedLookbackMonths, len(periods))
	if err != nil {
		return nil, err
	}

	grid := res.grid
	rowKey := timetable.StatusPending
	if req.Teacher != nil && req.Teacher.Code != "" {
		rowKey = req.Teacher.Code
		if grid.FindRow(rowKey) < 0 {
			grid, err = timetable.AddRow(grid, req.Teacher, "", firstLaneIndex(grid), scope.IsDaily())
			if err != nil {
				return nil, err
			}
		}
	}

	grid, err = timetable.Insert(grid, timetable.CellRef{Row: rowKey, Period: req.Period}, req.Entry)
	if err != nil {
		return nil, err
	}

	updatedAt, err := s.persist(ctx, classroom, scope, grid)
	if err != nil {
		return nil, err
	}

	source := SourceWeekly
	if scope.IsDaily() {
		source = SourceDaily
	}
	ctxLogger(ctx, s.logger, classroom).Info("登记已写入时间表",
		zap.String("scope", scope.String()),
		zap.String("student_id", req.Entry.StudentID),
		zap.String("base", string(res.source)),
	)
	return toTimetableResponse(classroom, scope, periods, &resolved{grid: grid, source: source, updatedAt: updatedAt}), nil
}

func enrollmentScope(req *dto.EnrollmentRequest) (timetable.Scope, error) {
	if req.Date != "" {
		return timetable.DateScope(req.Date)
	}
	if req.YearMonth == "" || req.Weekday == nil {
		return timetable.Scope{}, timetable.ErrInvalidScope
	}
	return timetable.WeekdayScope(req.YearMonth, *req.Weekday)
}

func firstLaneIndex(g *timetable.Grid) int {
	for i := range g.Rows {
		if g.Rows[i].IsLane() {
			return i
		}
	}
	return -1
}

// ── 辅助函数 ──

// loadPeriods 节次表缺失时按空表处理（列数为 0），不视为错误
func loadPeriods(ctx context.Context, svc PeriodService, classroom string, logger *zap.Logger) ([]model.Period, error) {
	periods, err := svc.GetPeriods(ctx, classroom)
	if err != nil {
		if errors.Is(err, ErrPeriodsNotFound) {
			logger.Warn("节次表不存在，按空时间表处理", zap.String("classroom", classroom))
			return []model.Period{}, nil
		}
		return nil, err
	}
	return periods, nil
}

func toTimetableResponse(classroom string, scope timetable.Scope, periods []model.Period, res *resolved) *dto.TimetableResponse {
	resp := &dto.TimetableResponse{
		Classroom:       classroom,
		Scope:           scope,
		Source:          string(res.source),
		SourceYearMonth: res.sourceYearMonth,
		Periods:         periods,
		Grid:            res.grid,
	}
	if !res.updatedAt.IsZero() {
		resp.UpdatedAt = res.updatedAt.Format(time.RFC3339)
	}
	return resp
}
