package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minamirinkan/sample-sub000/internal/billing"
	"github.com/minamirinkan/sample-sub000/internal/dto"
	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/internal/repository"
	pkgerrors "github.com/minamirinkan/sample-sub000/pkg/errors"
)

// ── 费用模块业务错误 ──

var (
	ErrFeeMasterNotFound = errors.New("该月份的费用主表不存在")
)

// BillingService 费用代码与账单明细业务接口
type BillingService interface {
	// DeriveFeeCode 推导费用代码（纯函数）
	DeriveFeeCode(req *dto.CourseRequest) *dto.FeeCodeResponse
	// SearchTuition 在授業料分类中按代码前缀检索
	SearchTuition(ctx context.Context, classroom, yearMonth, code string) (*model.FeeMasterEntry, error)
	// BuildLineItems 为多门课程生成账单明细，任一课程无法匹配时整体失败
	BuildLineItems(ctx context.Context, classroom string, req *dto.LineItemsRequest) (*dto.LineItemsResponse, error)
}

type billingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBillingService 创建 BillingService 实例
func NewBillingService(repo *repository.Repository, logger *zap.Logger) BillingService {
	return &billingService{repo: repo, logger: logger}
}

func (s *billingService) DeriveFeeCode(req *dto.CourseRequest) *dto.FeeCodeResponse {
	code := req.ToCourse().FeeCode()
	return &dto.FeeCodeResponse{Code: code, GradeRecognized: billing.HasGradeSegment(code)}
}

func (s *billingService) SearchTuition(ctx context.Context, classroom, yearMonth, code string) (*model.FeeMasterEntry, error) {
	if !billing.HasGradeSegment(code) {
		return nil, billing.ErrUnknownGrade
	}
	cat, err := s.tuition(ctx, classroom, yearMonth)
	if err != nil {
		return nil, err
	}
	return billing.MatchTuition(cat.Entries, code)
}

func (s *billingService) BuildLineItems(ctx context.Context, classroom string, req *dto.LineItemsRequest) (*dto.LineItemsResponse, error) {
	cat, err := s.tuition(ctx, classroom, req.Month)
	if err != nil {
		return nil, err
	}

	resp := &dto.LineItemsResponse{Month: req.Month, Items: make([]billing.LineItem, 0, len(req.Courses))}
	for i := range req.Courses {
		course := req.Courses[i].ToCourse()
		item, err := billing.BuildLineItem(course, cat.Entries)
		if err != nil {
			ctxLogger(ctx, s.logger, classroom).Warn("生成账单明细失败",
				zap.String("fee_code", course.FeeCode()),
				zap.Error(err),
			)
			return nil, fmt.Errorf("第 %d 门课程 %s: %w", i+1, course.FeeCode(), err)
		}
		item.ID = uuid.New().String()
		resp.Items = append(resp.Items, *item)
		resp.Total += item.Amount
	}
	return resp, nil
}

func (s *billingService) tuition(ctx context.Context, classroom, yearMonth string) (*model.FeeMasterCategory, error) {
	cat, err := s.repo.FeeMaster.GetCategory(ctx, classroom, yearMonth, model.FeeCategoryTuition)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrFeeMasterNotFound
		}
		ctxLogger(ctx, s.logger, classroom).Error("查询费用主表失败",
			zap.String("month", yearMonth),
			zap.Error(err),
		)
		return nil, err
	}
	return cat, nil
}
