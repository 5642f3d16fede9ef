package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/internal/repository"
	"github.com/minamirinkan/sample-sub000/internal/timetable"
	pkgerrors "github.com/minamirinkan/sample-sub000/pkg/errors"
)

// Source 命中的文档层级
type Source string

const (
	SourceDaily       Source = "daily"
	SourceWeekly      Source = "weekly"
	SourceWeeklyPrior Source = "weekly_prior"
	SourceLegacy      Source = "legacy"
	SourceSynthesized Source = "synthesized"
)

// resolved 解析结果
type resolved struct {
	grid            *timetable.Grid
	source          Source
	sourceYearMonth string
	updatedAt       time.Time
}

// resolver 时间表回退解析：按日 → 当月星期模板 → 前 N 个月星期模板 → 旧版模板 → 空格子
// 只读，不写回任何层级
type resolver struct {
	schedules repository.ScheduleRepository
	logger    *zap.Logger
}

func newResolver(schedules repository.ScheduleRepository, logger *zap.Logger) *resolver {
	return &resolver{schedules: schedules, logger: logger}
}

func (r *resolver) resolve(ctx context.Context, classroom string, scope timetable.Scope, lookback, width int) (*resolved, error) {
	// 1. 按日文档
	if scope.IsDaily() {
		doc, err := r.schedules.GetDaily(ctx, classroom, scope.Date)
		if err == nil {
			return r.hit(doc, SourceDaily, "", width), nil
		}
		if !errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, r.fail(err, classroom, scope)
		}
	}

	// 2-3. 当月与向前 lookback 个月的星期模板
	for step := 0; step <= lookback; step++ {
		ym, err := timetable.ShiftMonth(scope.YearMonth, -step)
		if err != nil {
			return nil, err
		}
		doc, err := r.schedules.GetWeekly(ctx, classroom, ym, scope.Weekday)
		if err == nil {
			source := SourceWeekly
			if step > 0 {
				source = SourceWeeklyPrior
			}
			return r.hit(doc, source, ym, width), nil
		}
		if !errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, r.fail(err, classroom, scope)
		}
	}

	// 4. 旧版不带年月的模板
	doc, err := r.schedules.GetLegacyWeekly(ctx, classroom, scope.Weekday)
	if err == nil {
		return r.hit(doc, SourceLegacy, "", width), nil
	}
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, r.fail(err, classroom, scope)
	}

	// 5. 合成只含未定行的空格子
	r.logger.Debug("未找到时间表文档，使用空格子",
		zap.String("classroom", classroom),
		zap.String("scope", scope.String()),
		zap.Int("lookback", lookback),
	)
	return &resolved{grid: timetable.NewEmptyGrid(width), source: SourceSynthesized}, nil
}

func (r *resolver) hit(doc *model.ScheduleDocument, source Source, ym string, width int) *resolved {
	return &resolved{
		grid:            timetable.Expand(*doc, width),
		source:          source,
		sourceYearMonth: ym,
		updatedAt:       doc.UpdatedAt,
	}
}

func (r *resolver) fail(err error, classroom string, scope timetable.Scope) error {
	r.logger.Error("读取时间表文档失败",
		zap.String("classroom", classroom),
		zap.String("scope", scope.String()),
		zap.Error(err),
	)
	return err
}

// ── 单次调用内的读缓存 ──

// memoScheduleRepo 在一次日历查询内缓存文档读取（含未找到），避免同一星期模板被反复读取
type memoScheduleRepo struct {
	repository.ScheduleRepository
	docs map[string]*model.ScheduleDocument
	errs map[string]error
}

func newMemoScheduleRepo(inner repository.ScheduleRepository) *memoScheduleRepo {
	return &memoScheduleRepo{
		ScheduleRepository: inner,
		docs:               make(map[string]*model.ScheduleDocument),
		errs:               make(map[string]error),
	}
}

func (m *memoScheduleRepo) GetDaily(ctx context.Context, classroom, date string) (*model.ScheduleDocument, error) {
	return m.load(repository.CollectionDailySchedules+"/"+repository.DailyKey(classroom, date), func() (*model.ScheduleDocument, error) {
		return m.ScheduleRepository.GetDaily(ctx, classroom, date)
	})
}

func (m *memoScheduleRepo) GetWeekly(ctx context.Context, classroom, yearMonth string, weekday int) (*model.ScheduleDocument, error) {
	return m.load(repository.CollectionWeeklySchedules+"/"+repository.WeeklyKey(classroom, yearMonth, weekday), func() (*model.ScheduleDocument, error) {
		return m.ScheduleRepository.GetWeekly(ctx, classroom, yearMonth, weekday)
	})
}

func (m *memoScheduleRepo) GetLegacyWeekly(ctx context.Context, classroom string, weekday int) (*model.ScheduleDocument, error) {
	return m.load(repository.CollectionWeeklySchedules+"/"+repository.LegacyWeeklyKey(classroom, weekday), func() (*model.ScheduleDocument, error) {
		return m.ScheduleRepository.GetLegacyWeekly(ctx, classroom, weekday)
	})
}

// load 只缓存成功与未找到，其余错误不缓存
func (m *memoScheduleRepo) load(key string, fetch func() (*model.ScheduleDocument, error)) (*model.ScheduleDocument, error) {
	if doc, ok := m.docs[key]; ok {
		return doc, nil
	}
	if err, ok := m.errs[key]; ok {
		return nil, err
	}
	doc, err := fetch()
	switch {
	case err == nil:
		m.docs[key] = doc
	case errors.Is(err, pkgerrors.ErrNotFound):
		m.errs[key] = err
	}
	return doc, err
}
