package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/internal/repository"
	pkgerrors "github.com/minamirinkan/sample-sub000/pkg/errors"
)

// ── 节次模块业务错误 ──

var (
	ErrPeriodsNotFound = errors.New("节次表不存在")
)

// PeriodService 节次表业务接口
type PeriodService interface {
	// GetPeriods 教室专用节次表优先，其次公共节次表；都不存在时返回 ErrPeriodsNotFound
	GetPeriods(ctx context.Context, classroom string) ([]model.Period, error)
}

type periodService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPeriodService 创建 PeriodService 实例
func NewPeriodService(repo *repository.Repository, logger *zap.Logger) PeriodService {
	return &periodService{repo: repo, logger: logger}
}

func (s *periodService) GetPeriods(ctx context.Context, classroom string) ([]model.Period, error) {
	labels, err := s.repo.Period.GetBySchool(ctx, classroom)
	if err == nil && len(labels.PeriodLabels) > 0 {
		return sortedPeriods(labels.PeriodLabels), nil
	}
	if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		s.logger.Error("查询教室节次表失败", zap.String("classroom", classroom), zap.Error(err))
		return nil, err
	}

	labels, err = s.repo.Period.GetCommon(ctx)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrPeriodsNotFound
		}
		s.logger.Error("查询公共节次表失败", zap.Error(err))
		return nil, err
	}
	if len(labels.PeriodLabels) == 0 {
		return nil, ErrPeriodsNotFound
	}
	return sortedPeriods(labels.PeriodLabels), nil
}

// sortedPeriods 按 Index 排序；未填写 Index 的旧数据按存储顺序编号
func sortedPeriods(periods []model.Period) []model.Period {
	out := make([]model.Period, len(periods))
	copy(out, periods)
	for i := range out {
		if out[i].Index == 0 {
			out[i].Index = i + 1
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
