package repository

import (
	"context"

	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/pkg/docstore"
)

const (
	CollectionPeriodLabelsBySchool = "periodLabelsBySchool"
	CollectionCommon               = "common"
	DocPeriodLabels                = "periodLabels"
)

// PeriodRepository 节次表访问接口
type PeriodRepository interface {
	GetBySchool(ctx context.Context, classroom string) (*model.PeriodLabels, error)
	GetCommon(ctx context.Context) (*model.PeriodLabels, error)
	SaveBySchool(ctx context.Context, classroom string, labels *model.PeriodLabels) error
	SaveCommon(ctx context.Context, labels *model.PeriodLabels) error
}

type periodRepo struct {
	store docstore.Store
}

// NewPeriodRepo 创建 PeriodRepository 实例
func NewPeriodRepo(store docstore.Store) PeriodRepository {
	return &periodRepo{store: store}
}

func (r *periodRepo) GetBySchool(ctx context.Context, classroom string) (*model.PeriodLabels, error) {
	var labels model.PeriodLabels
	if _, err := getInto(ctx, r.store, CollectionPeriodLabelsBySchool, classroom, &labels); err != nil {
		return nil, err
	}
	return &labels, nil
}

func (r *periodRepo) GetCommon(ctx context.Context) (*model.PeriodLabels, error) {
	var labels model.PeriodLabels
	if _, err := getInto(ctx, r.store, CollectionCommon, DocPeriodLabels, &labels); err != nil {
		return nil, err
	}
	return &labels, nil
}

func (r *periodRepo) SaveBySchool(ctx context.Context, classroom string, labels *model.PeriodLabels) error {
	return put(ctx, r.store, CollectionPeriodLabelsBySchool, classroom, labels)
}

func (r *periodRepo) SaveCommon(ctx context.Context, labels *model.PeriodLabels) error {
	return put(ctx, r.store, CollectionCommon, DocPeriodLabels, labels)
}
