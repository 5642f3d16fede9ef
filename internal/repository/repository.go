package repository

import (
	"context"

	"github.com/minamirinkan/sample-sub000/pkg/docstore"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Schedule     ScheduleRepository
	Period       PeriodRepository
	FeeMaster    FeeMasterRepository
	MakeupLesson MakeupLessonRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(store docstore.Store) *Repository {
	return &Repository{
		Schedule:     NewScheduleRepo(store),
		Period:       NewPeriodRepo(store),
		FeeMaster:    NewFeeMasterRepo(store),
		MakeupLesson: NewMakeupLessonRepo(store),
	}
}

// getInto 读取文档并解码到 v，未找到时返回 pkgerrors.ErrNotFound
func getInto(ctx context.Context, store docstore.Store, collection, key string, v interface{}) (*docstore.Document, error) {
	doc, err := store.Get(ctx, collection, key)
	if err != nil {
		return nil, err
	}
	if err := docstore.Decode(doc.Data, v); err != nil {
		return nil, err
	}
	return doc, nil
}

// put 编码并整体覆盖写入
func put(ctx context.Context, store docstore.Store, collection, key string, v interface{}) error {
	data, err := docstore.Encode(v)
	if err != nil {
		return err
	}
	return store.Set(ctx, collection, key, data)
}
