package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/minamirinkan/sample-sub000/config"
	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/internal/repository"
	"github.com/minamirinkan/sample-sub000/internal/timetable"
	"github.com/minamirinkan/sample-sub000/pkg/docstore"
)

// ── 测试辅助 ──

type testEnv struct {
	store     *docstore.MemoryStore
	repo      *repository.Repository
	schedules *countingScheduleRepo
	svc       *Service
}

func testConfig() *config.Config {
	return &config.Config{
		Schedule: config.ScheduleConfig{SeedLookbackMonths: 3, EventLookbackMonths: 12, Timezone: "Asia/Tokyo"},
	}
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := docstore.NewMemoryStore()
	repo := repository.NewRepository(store)
	counting := &countingScheduleRepo{ScheduleRepository: repo.Schedule}
	repo.Schedule = counting
	return &testEnv{
		store:     store,
		repo:      repo,
		schedules: counting,
		svc:       NewService(testConfig(), repo, zap.NewNop()),
	}
}

func (e *testEnv) seedPeriods(t *testing.T, n int) {
	t.Helper()
	labels := &model.PeriodLabels{}
	for i := 1; i <= n; i++ {
		labels.PeriodLabels = append(labels.PeriodLabels, model.Period{
			Index: i,
			Label: fmt.Sprintf("%d限", i),
			Time:  fmt.Sprintf("%02d:00-%02d:20", 12+i, 13+i),
		})
	}
	if err := e.repo.Period.SaveCommon(context.Background(), labels); err != nil {
		t.Fatalf("写入节次表失败: %v", err)
	}
}

// docWithTeacher 一名讲师 + 未定行，studentID 放在讲师行的 period 节次
func docWithTeacher(teacherCode, studentID string, period int) *model.ScheduleDocument {
	g := timetable.NewEmptyGrid(8)
	g, _ = timetable.AddRow(g, &model.Teacher{Code: teacherCode, Name: "講師" + teacherCode}, "", 0, false)
	if studentID != "" {
		g, _ = timetable.Insert(g, timetable.CellRef{Row: teacherCode, Period: period}, testEntry(studentID, timetable.ClassTypePair))
	}
	doc := timetable.Flatten(g)
	return &doc
}

func testEntry(id, classType string) model.StudentEntry {
	return model.StudentEntry{
		StudentID: id,
		Name:      "生徒" + id,
		Grade:     "中1",
		Subject:   "英語",
		ClassType: classType,
		Duration:  "80",
		Status:    "予定",
	}
}

// ── Mock ScheduleRepository：统计读取次数，可注入故障 ──

type countingScheduleRepo struct {
	repository.ScheduleRepository
	dailyReads  int
	weeklyReads int
	legacyReads int
	failReads   bool
	failWrites  bool
}

var errStoreDown = errors.New("store unavailable")

func (m *countingScheduleRepo) GetDaily(ctx context.Context, classroom, date string) (*model.ScheduleDocument, error) {
	m.dailyReads++
	if m.failReads {
		return nil, errStoreDown
	}
	return m.ScheduleRepository.GetDaily(ctx, classroom, date)
}

func (m *countingScheduleRepo) GetWeekly(ctx context.Context, classroom, yearMonth string, weekday int) (*model.ScheduleDocument, error) {
	m.weeklyReads++
	if m.failReads {
		return nil, errStoreDown
	}
	return m.ScheduleRepository.GetWeekly(ctx, classroom, yearMonth, weekday)
}

func (m *countingScheduleRepo) GetLegacyWeekly(ctx context.Context, classroom string, weekday int) (*model.ScheduleDocument, error) {
	m.legacyReads++
	if m.failReads {
		return nil, errStoreDown
	}
	return m.ScheduleRepository.GetLegacyWeekly(ctx, classroom, weekday)
}

func (m *countingScheduleRepo) SaveDaily(ctx context.Context, classroom, date string, doc *model.ScheduleDocument) error {
	if m.failWrites {
		return errStoreDown
	}
	return m.ScheduleRepository.SaveDaily(ctx, classroom, date, doc)
}

func (m *countingScheduleRepo) SaveWeekly(ctx context.Context, classroom, yearMonth string, weekday int, doc *model.ScheduleDocument) error {
	if m.failWrites {
		return errStoreDown
	}
	return m.ScheduleRepository.SaveWeekly(ctx, classroom, yearMonth, weekday, doc)
}

func (m *countingScheduleRepo) reset() {
	m.dailyReads, m.weeklyReads, m.legacyReads = 0, 0, 0
}

func mustEncode(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	data, err := docstore.Encode(v)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	return data
}
