package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/pkg/docstore"
)

// MakeupLessonCollection students/{学生ID}/makeupLessons
func MakeupLessonCollection(studentID string) string {
	return "students/" + studentID + "/makeupLessons"
}

// MakeupLessonRepository 振替授業访问接口（只读为主，Save 供导入与测试使用）
type MakeupLessonRepository interface {
	ListByStudent(ctx context.Context, studentID, classroom string) ([]model.MakeupLesson, error)
	Save(ctx context.Context, studentID string, lesson *model.MakeupLesson) error
}

type makeupLessonRepo struct {
	store docstore.Store
}

// NewMakeupLessonRepo 创建 MakeupLessonRepository 实例
func NewMakeupLessonRepo(store docstore.Store) MakeupLessonRepository {
	return &makeupLessonRepo{store: store}
}

// ListByStudent 按教室等值过滤学生的振替授業
func (r *makeupLessonRepo) ListByStudent(ctx context.Context, studentID, classroom string) ([]model.MakeupLesson, error) {
	docs, err := r.store.Query(ctx, MakeupLessonCollection(studentID), "classroomCode", classroom)
	if err != nil {
		return nil, err
	}
	result := make([]model.MakeupLesson, 0, len(docs))
	for _, d := range docs {
		var lesson model.MakeupLesson
		if err := docstore.Decode(d.Data, &lesson); err != nil {
			return nil, err
		}
		lesson.ID = d.Key
		result = append(result, lesson)
	}
	return result, nil
}

// Save 写入振替授業，ID 为空时生成
func (r *makeupLessonRepo) Save(ctx context.Context, studentID string, lesson *model.MakeupLesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.New().String()
	}
	return put(ctx, r.store, MakeupLessonCollection(studentID), lesson.ID, lesson)
}
