package docstore

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/minamirinkan/sample-sub000/pkg/errors"
)

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "weeklySchedules", "047_2025-09_3"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("期望 ErrNotFound，实际: %v", err)
	}

	err := s.Set(ctx, "weeklySchedules", "047_2025-09_3", map[string]interface{}{
		"rows":  []interface{}{map[string]interface{}{"status": "未定"}},
		"extra": nil,
	})
	if err != nil {
		t.Fatalf("Set 应成功: %v", err)
	}

	doc, err := s.Get(ctx, "weeklySchedules", "047_2025-09_3")
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if doc.Key != "047_2025-09_3" {
		t.Errorf("期望 Key=047_2025-09_3，实际=%s", doc.Key)
	}
	if _, ok := doc.Data["extra"]; ok {
		t.Error("nil 字段应在写入前被剔除")
	}
	if doc.UpdatedAt.IsZero() {
		t.Error("期望记录 UpdatedAt")
	}
}

func TestMemoryStore_ReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, "common", "periodLabels", map[string]interface{}{"n": 1})

	doc, _ := s.Get(ctx, "common", "periodLabels")
	doc.Data["n"] = 99

	again, _ := s.Get(ctx, "common", "periodLabels")
	if again.Data["n"] != float64(1) {
		t.Errorf("修改返回值不应影响存储，实际=%v", again.Data["n"])
	}
}

func TestMemoryStore_QueryNestedField(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	coll := "students/S001/makeupLessons"
	_ = s.Set(ctx, coll, "a", map[string]interface{}{"date": "2025-09-10", "teacher": map[string]interface{}{"code": "T01"}, "period": 2})
	_ = s.Set(ctx, coll, "b", map[string]interface{}{"date": "2025-09-11", "teacher": map[string]interface{}{"code": "T02"}, "period": 3})

	docs, err := s.Query(ctx, coll, "teacher.code", "T02")
	if err != nil {
		t.Fatalf("Query 应成功: %v", err)
	}
	if len(docs) != 1 || docs[0].Key != "b" {
		t.Errorf("期望仅命中 b，实际=%v", docs)
	}

	docs, _ = s.Query(ctx, coll, "period", 2)
	if len(docs) != 1 || docs[0].Key != "a" {
		t.Errorf("整型查询值应与 JSON 数字匹配，实际=%v", docs)
	}
}

func TestMemoryStore_ListSortedAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	coll := "FeeMaster/202509_047/categories"
	for _, k := range []string{"授業料", "教材費", "諸経費"} {
		if err := s.Set(ctx, coll, k, map[string]interface{}{"category": k}); err != nil {
			t.Fatalf("Set 应成功: %v", err)
		}
	}
	_ = s.Delete(ctx, coll, "教材費")

	docs, err := s.List(ctx, coll)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("期望 2 条，实际=%d", len(docs))
	}
	if docs[0].Key > docs[1].Key {
		t.Error("List 结果应按键排序")
	}
}

func TestMemoryStore_InvalidPath(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	cases := []struct {
		collection string
		key        string
	}{
		{"", "k"},
		{"dailySchedules", ""},
		{"dailySchedules", "a/b"},
		{"FeeMaster/202509_047", "k"},
		{"/dailySchedules", "k"},
	}
	for _, tc := range cases {
		if err := s.Set(ctx, tc.collection, tc.key, map[string]interface{}{}); !errors.Is(err, pkgerrors.ErrInvalidPath) {
			t.Errorf("collection=%q key=%q 期望 ErrInvalidPath，实际: %v", tc.collection, tc.key, err)
		}
	}
}
