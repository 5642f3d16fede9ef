package repository

import (
	"context"
	"strings"
	"time"

	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/pkg/docstore"
)

const CollectionFeeMaster = "FeeMaster"

// FeeMasterCollection 分类子集合路径 FeeMaster/{yyyyMM}_{教室}/categories
// yearMonth 接受 "2025-09" 或 "202509"
func FeeMasterCollection(classroom, yearMonth string) string {
	return CollectionFeeMaster + "/" + strings.ReplaceAll(yearMonth, "-", "") + "_" + classroom + "/categories"
}

// FeeMasterRepository 费用主表访问接口
type FeeMasterRepository interface {
	GetCategory(ctx context.Context, classroom, yearMonth, category string) (*model.FeeMasterCategory, error)
	ListCategories(ctx context.Context, classroom, yearMonth string) ([]model.FeeMasterCategory, error)
	SaveCategory(ctx context.Context, classroom, yearMonth string, cat *model.FeeMasterCategory) error
}

type feeMasterRepo struct {
	store docstore.Store
}

// NewFeeMasterRepo 创建 FeeMasterRepository 实例
func NewFeeMasterRepo(store docstore.Store) FeeMasterRepository {
	return &feeMasterRepo{store: store}
}

func (r *feeMasterRepo) GetCategory(ctx context.Context, classroom, yearMonth, category string) (*model.FeeMasterCategory, error) {
	var cat model.FeeMasterCategory
	if _, err := getInto(ctx, r.store, FeeMasterCollection(classroom, yearMonth), category, &cat); err != nil {
		return nil, err
	}
	if cat.Category == "" {
		cat.Category = category
	}
	return &cat, nil
}

func (r *feeMasterRepo) ListCategories(ctx context.Context, classroom, yearMonth string) ([]model.FeeMasterCategory, error) {
	docs, err := r.store.List(ctx, FeeMasterCollection(classroom, yearMonth))
	if err != nil {
		return nil, err
	}
	result := make([]model.FeeMasterCategory, 0, len(docs))
	for _, d := range docs {
		var cat model.FeeMasterCategory
		if err := docstore.Decode(d.Data, &cat); err != nil {
			return nil, err
		}
		if cat.Category == "" {
			cat.Category = d.Key
		}
		result = append(result, cat)
	}
	return result, nil
}

func (r *feeMasterRepo) SaveCategory(ctx context.Context, classroom, yearMonth string, cat *model.FeeMasterCategory) error {
	if cat.UpdatedAt.IsZero() {
		cat.UpdatedAt = time.Now()
	}
	return put(ctx, r.store, FeeMasterCollection(classroom, yearMonth), cat.Category, cat)
}
