package repository

import (
	"context"
	"fmt"

	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/pkg/docstore"
)

// 时间表集合
const (
	CollectionDailySchedules  = "dailySchedules"
	CollectionWeeklySchedules = "weeklySchedules"
)

// DailyKey {教室}_{yyyy-MM-dd}
func DailyKey(classroom, date string) string {
	return classroom + "_" + date
}

// WeeklyKey {教室}_{yyyy-MM}_{星期}
func WeeklyKey(classroom, yearMonth string, weekday int) string {
	return fmt.Sprintf("%s_%s_%d", classroom, yearMonth, weekday)
}

// LegacyWeeklyKey 旧版不带年月的星期模板 {教室}_{星期}
func LegacyWeeklyKey(classroom string, weekday int) string {
	return fmt.Sprintf("%s_%d", classroom, weekday)
}

// ScheduleRepository 时间表文档访问接口
// 文档不存在时返回 pkgerrors.ErrNotFound
type ScheduleRepository interface {
	GetDaily(ctx context.Context, classroom, date string) (*model.ScheduleDocument, error)
	GetWeekly(ctx context.Context, classroom, yearMonth string, weekday int) (*model.ScheduleDocument, error)
	GetLegacyWeekly(ctx context.Context, classroom string, weekday int) (*model.ScheduleDocument, error)
	SaveDaily(ctx context.Context, classroom, date string, doc *model.ScheduleDocument) error
	SaveWeekly(ctx context.Context, classroom, yearMonth string, weekday int, doc *model.ScheduleDocument) error
}

type scheduleRepo struct {
	store docstore.Store
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(store docstore.Store) ScheduleRepository {
	return &scheduleRepo{store: store}
}

func (r *scheduleRepo) GetDaily(ctx context.Context, classroom, date string) (*model.ScheduleDocument, error) {
	return r.get(ctx, CollectionDailySchedules, DailyKey(classroom, date))
}

func (r *scheduleRepo) GetWeekly(ctx context.Context, classroom, yearMonth string, weekday int) (*model.ScheduleDocument, error) {
	return r.get(ctx, CollectionWeeklySchedules, WeeklyKey(classroom, yearMonth, weekday))
}

func (r *scheduleRepo) GetLegacyWeekly(ctx context.Context, classroom string, weekday int) (*model.ScheduleDocument, error) {
	return r.get(ctx, CollectionWeeklySchedules, LegacyWeeklyKey(classroom, weekday))
}

func (r *scheduleRepo) SaveDaily(ctx context.Context, classroom, date string, doc *model.ScheduleDocument) error {
	return put(ctx, r.store, CollectionDailySchedules, DailyKey(classroom, date), doc)
}

func (r *scheduleRepo) SaveWeekly(ctx context.Context, classroom, yearMonth string, weekday int, doc *model.ScheduleDocument) error {
	return put(ctx, r.store, CollectionWeeklySchedules, WeeklyKey(classroom, yearMonth, weekday), doc)
}

func (r *scheduleRepo) get(ctx context.Context, collection, key string) (*model.ScheduleDocument, error) {
	var doc model.ScheduleDocument
	raw, err := getInto(ctx, r.store, collection, key, &doc)
	if err != nil {
		return nil, err
	}
	// 旧文档没有 updatedAt 字段时以存储层时间为准
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = raw.UpdatedAt
	}
	return &doc, nil
}
