package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/minamirinkan/sample-sub000/internal/dto"
	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/internal/repository"
	"github.com/minamirinkan/sample-sub000/internal/timetable"
	applogger "github.com/minamirinkan/sample-sub000/pkg/logger"
)

func mustDateScope(t *testing.T, date string) timetable.Scope {
	t.Helper()
	s, err := timetable.DateScope(date)
	if err != nil {
		t.Fatalf("DateScope(%s) 失败: %v", date, err)
	}
	return s
}

// ── Resolve：回退顺序 ──

func TestTimetableService_Resolve_FallbackOrder(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPeriods(t, 8)
	ctx := context.Background()
	scope := mustDateScope(t, "2025-09-10") // 水曜 → 3

	_ = env.repo.Schedule.SaveDaily(ctx, "047", "2025-09-10", docWithTeacher("TD", "S-daily", 0))
	_ = env.repo.Schedule.SaveWeekly(ctx, "047", "2025-09", 3, docWithTeacher("TW", "S-weekly", 0))
	_ = env.repo.Schedule.SaveWeekly(ctx, "047", "2025-07", 3, docWithTeacher("TP", "S-prior", 0))
	_ = env.repo.Schedule.SaveWeekly(ctx, "047", "2025-04", 3, docWithTeacher("TX", "S-too-old", 0))
	_ = env.store.Set(ctx, repository.CollectionWeeklySchedules, repository.LegacyWeeklyKey("047", 3), mustEncode(t, docWithTeacher("TL", "S-legacy", 0)))

	steps := []struct {
		wantSource string
		wantRow    string
		wantYM     string
		remove     func()
	}{
		{"daily", "TD", "", func() { _ = env.store.Delete(ctx, repository.CollectionDailySchedules, repository.DailyKey("047", "2025-09-10")) }},
		{"weekly", "TW", "2025-09", func() { _ = env.store.Delete(ctx, repository.CollectionWeeklySchedules, repository.WeeklyKey("047", "2025-09", 3)) }},
		{"weekly_prior", "TP", "2025-07", func() { _ = env.store.Delete(ctx, repository.CollectionWeeklySchedules, repository.WeeklyKey("047", "2025-07", 3)) }},
		// 2025-04 超出 3 个月回溯，落到旧版模板
		{"legacy", "TL", "", func() { _ = env.store.Delete(ctx, repository.CollectionWeeklySchedules, repository.LegacyWeeklyKey("047", 3)) }},
		{"synthesized", timetable.StatusPending, "", func() {}},
	}

	for _, step := range steps {
		resp, err := env.svc.Timetable.Resolve(ctx, "047", scope)
		if err != nil {
			t.Fatalf("Resolve 应成功: %v", err)
		}
		if resp.Source != step.wantSource {
			t.Fatalf("期望来源 %s，实际 %s", step.wantSource, resp.Source)
		}
		if resp.Grid.Rows[0].Key() != step.wantRow {
			t.Errorf("来源 %s: 期望首行 %s，实际 %s", step.wantSource, step.wantRow, resp.Grid.Rows[0].Key())
		}
		if resp.SourceYearMonth != step.wantYM {
			t.Errorf("来源 %s: 期望年月 %q，实际 %q", step.wantSource, step.wantYM, resp.SourceYearMonth)
		}
		step.remove()
	}
}

func TestTimetableService_Resolve_SynthesizedIsBounded(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPeriods(t, 8)

	resp, err := env.svc.Timetable.Resolve(context.Background(), "047", mustDateScope(t, "2025-09-10"))
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if resp.Source != string(SourceSynthesized) {
		t.Fatalf("期望 synthesized，实际 %s", resp.Source)
	}
	if len(resp.Grid.Rows) != 1 || resp.Grid.Rows[0].Status != timetable.StatusPending || resp.Grid.Rows[0].Teacher != nil {
		t.Fatalf("期望只有一条未定行: %+v", resp.Grid.Rows)
	}
	if len(resp.Grid.Rows[0].Periods) != 8 {
		t.Errorf("期望 8 个空节次，实际=%d", len(resp.Grid.Rows[0].Periods))
	}
	for _, cell := range resp.Grid.Rows[0].Periods {
		if len(cell) != 0 {
			t.Error("合成格子的节次应为空")
		}
	}

	// 按日 1 次 + 当月及前 3 个月 4 次 + 旧版 1 次
	if env.schedules.dailyReads != 1 || env.schedules.weeklyReads != 4 || env.schedules.legacyReads != 1 {
		t.Errorf("读取次数不符: daily=%d weekly=%d legacy=%d",
			env.schedules.dailyReads, env.schedules.weeklyReads, env.schedules.legacyReads)
	}
}

func TestTimetableService_Resolve_WeekdayScopeSkipsDaily(t *testing.T) {
	env := setupTestEnv(t)
	scope, _ := timetable.WeekdayScope("2025-09", 3)

	resp, err := env.svc.Timetable.Resolve(context.Background(), "047", scope)
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if env.schedules.dailyReads != 0 {
		t.Error("星期模板范围不应读取按日文档")
	}
	if len(resp.Grid.Rows[0].Periods) != 0 || len(resp.Periods) != 0 {
		t.Error("节次表缺失时按空时间表处理")
	}
}

func TestTimetableService_Resolve_StoreError(t *testing.T) {
	env := setupTestEnv(t)
	env.schedules.failReads = true

	_, err := env.svc.Timetable.Resolve(context.Background(), "047", mustDateScope(t, "2025-09-10"))
	if !errors.Is(err, errStoreDown) {
		t.Errorf("期望存储错误向上传递，实际: %v", err)
	}
}

// ── Save ──

func TestTimetableService_Save_WritesOnlyRequestedScope(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPeriods(t, 8)
	ctx := context.Background()
	_ = env.repo.Schedule.SaveWeekly(ctx, "047", "2025-08", 3, docWithTeacher("T01", "S1", 1))
	scope := mustDateScope(t, "2025-09-10")

	resp, err := env.svc.Timetable.Resolve(ctx, "047", scope)
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if resp.Source != string(SourceWeeklyPrior) {
		t.Fatalf("期望命中上月模板，实际 %s", resp.Source)
	}
	if env.store.Len(repository.CollectionDailySchedules) != 0 {
		t.Fatal("解析不应写入任何文档")
	}

	grid, err := timetable.Move(resp.Grid, "S1", timetable.CellRef{Row: "T01", Period: 1}, timetable.CellRef{Row: "T01", Period: 2})
	if err != nil {
		t.Fatalf("Move 应成功: %v", err)
	}
	saved, err := env.svc.Timetable.Save(ctx, "047", scope, grid)
	if err != nil {
		t.Fatalf("Save 应成功: %v", err)
	}
	if saved.Source != string(SourceDaily) || saved.UpdatedAt == "" {
		t.Errorf("保存结果不正确: source=%s updatedAt=%s", saved.Source, saved.UpdatedAt)
	}

	if env.store.Len(repository.CollectionDailySchedules) != 1 {
		t.Error("应创建按日文档")
	}
	weekly, _ := env.repo.Schedule.GetWeekly(ctx, "047", "2025-08", 3)
	if _, ok := weekly.Rows[0].Periods["period2"]; !ok {
		t.Error("星期模板不应被修改")
	}

	again, _ := env.svc.Timetable.Resolve(ctx, "047", scope)
	if again.Source != string(SourceDaily) {
		t.Errorf("保存后应命中按日文档，实际 %s", again.Source)
	}
	if !reflect.DeepEqual(again.Grid, grid) {
		t.Errorf("保存后读取的格子应与保存内容一致")
	}
}

func TestTimetableService_Save_Rejections(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPeriods(t, 4)
	ctx := context.Background()

	over := timetable.NewEmptyGrid(4)
	over, _ = timetable.AddRow(over, &model.Teacher{Code: "T01", Name: "山田"}, "", 0, true)
	over.Rows[0].Periods[0] = []model.StudentEntry{
		testEntry("S1", timetable.ClassTypePair),
		testEntry("S2", timetable.ClassTypePair),
		testEntry("S3", timetable.ClassTypePair),
	}
	_, err := env.svc.Timetable.Save(ctx, "047", mustDateScope(t, "2025-09-10"), over)
	if !errors.Is(err, timetable.ErrMixedCapacity) {
		t.Errorf("期望 ErrMixedCapacity，实际: %v", err)
	}

	wide := timetable.NewEmptyGrid(6)
	_, err = env.svc.Timetable.Save(ctx, "047", mustDateScope(t, "2025-09-10"), wide)
	if !errors.Is(err, timetable.ErrCellOutOfRange) {
		t.Errorf("期望 ErrCellOutOfRange，实际: %v", err)
	}

	withLane, _ := timetable.AddRow(timetable.NewEmptyGrid(4), nil, timetable.StatusMakeup, -1, true)
	weekly, _ := timetable.WeekdayScope("2025-09", 3)
	_, err = env.svc.Timetable.Save(ctx, "047", weekly, withLane)
	if !errors.Is(err, timetable.ErrLaneDailyOnly) {
		t.Errorf("期望 ErrLaneDailyOnly，实际: %v", err)
	}

	if env.store.Len(repository.CollectionDailySchedules)+env.store.Len(repository.CollectionWeeklySchedules) != 0 {
		t.Error("校验失败时不应写入")
	}
}

func TestTimetableService_Save_StoreError(t *testing.T) {
	env := setupTestEnv(t)
	env.schedules.failWrites = true

	_, err := env.svc.Timetable.Save(context.Background(), "047", mustDateScope(t, "2025-09-10"), timetable.NewEmptyGrid(0))
	if !errors.Is(err, errStoreDown) {
		t.Errorf("期望写入错误向上传递，实际: %v", err)
	}
}

func TestTimetableService_Save_StoreErrorLogsRequestContext(t *testing.T) {
	env := setupTestEnv(t)
	env.schedules.failWrites = true
	core, logs := observer.New(zap.ErrorLevel)
	svc := NewService(testConfig(), env.repo, zap.New(core))

	ctx := applogger.WithClassroom(applogger.WithRequestID(context.Background(), "rid-9"), "012")
	_, _ = svc.Timetable.Save(ctx, "047", mustDateScope(t, "2025-09-10"), timetable.NewEmptyGrid(0))

	entries := logs.FilterMessage("保存时间表失败").AllUntimed()
	if len(entries) != 1 {
		t.Fatalf("期望 1 条错误日志，实际 %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "rid-9" {
		t.Errorf("日志应带 request_id: %v", fields)
	}
	// 以实际操作的教室为准
	if fields["classroom"] != "047" {
		t.Errorf("日志 classroom 期望 047: %v", fields)
	}
	n := 0
	for _, f := range entries[0].Context {
		if f.Key == "classroom" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("classroom 字段应只出现一次，实际 %d", n)
	}
}

// ── 端到端：空存储 → 合成格子 → 转入振替 → 元に戻す ──

func TestTimetableService_RedirectRestoreScenario(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPeriods(t, 8)
	ctx := context.Background()
	svc := env.svc.Timetable

	resp, err := svc.Resolve(ctx, "047", mustDateScope(t, "2025-09-10"))
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if resp.Source != string(SourceSynthesized) {
		t.Fatalf("期望 synthesized，实际 %s", resp.Source)
	}

	withLane, err := svc.AddRow(ctx, &dto.AddRowRequest{Grid: resp.Grid, Status: timetable.StatusMakeup, Daily: true})
	if err != nil {
		t.Fatalf("AddRow 应成功: %v", err)
	}
	seeded, err := timetable.Insert(withLane.Grid, timetable.CellRef{Row: timetable.StatusPending, Period: 2}, testEntry("S1", timetable.ClassTypeSolo))
	if err != nil {
		t.Fatalf("Insert 应成功: %v", err)
	}
	before := seeded.Clone()

	redirected, err := svc.Redirect(ctx, &dto.RedirectRequest{
		Grid: seeded, StudentID: "S1", From: timetable.CellRef{Row: timetable.StatusPending, Period: 2}, Status: timetable.StatusMakeup,
	})
	if err != nil {
		t.Fatalf("Redirect 应成功: %v", err)
	}
	restored, err := svc.Restore(ctx, &dto.CellOperationRequest{
		Grid: redirected.Grid, StudentID: "S1", At: timetable.CellRef{Row: timetable.StatusMakeup, Period: 2},
	})
	if err != nil {
		t.Fatalf("Restore 应成功: %v", err)
	}
	if !reflect.DeepEqual(before, restored.Grid) {
		t.Errorf("元に戻す后格子应与转入前一致\n期望: %+v\n实际: %+v", before, restored.Grid)
	}
}

func TestTimetableService_GridOperations(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	svc := env.svc.Timetable

	g := timetable.NewEmptyGrid(3)
	added, err := svc.AddRow(ctx, &dto.AddRowRequest{Grid: g, Teacher: &model.Teacher{Code: "T01", Name: "山田"}})
	if err != nil {
		t.Fatalf("AddRow 应成功: %v", err)
	}
	g, _ = timetable.Insert(added.Grid, timetable.CellRef{Row: "T01", Period: 0}, testEntry("S1", timetable.ClassTypePair))

	moved, err := svc.Move(ctx, &dto.MoveRequest{Grid: g, StudentID: "S1", From: timetable.CellRef{Row: "T01", Period: 0}, To: timetable.CellRef{Row: "T01", Period: 1}})
	if err != nil {
		t.Fatalf("Move 应成功: %v", err)
	}
	_, err = svc.Redirect(ctx, &dto.RedirectRequest{Grid: moved.Grid, StudentID: "S1", From: timetable.CellRef{Row: "T01", Period: 1}, Status: timetable.StatusAbsent})
	if !errors.Is(err, timetable.ErrLaneNotFound) {
		t.Errorf("期望 ErrLaneNotFound，实际: %v", err)
	}
	_, err = svc.RemoveRow(ctx, &dto.RemoveRowRequest{Grid: moved.Grid, Row: "T01"})
	if !errors.Is(err, timetable.ErrRowNotEmpty) {
		t.Errorf("期望 ErrRowNotEmpty，实际: %v", err)
	}
	removed, err := svc.Remove(ctx, &dto.CellOperationRequest{Grid: moved.Grid, StudentID: "S1", At: timetable.CellRef{Row: "T01", Period: 1}})
	if err != nil {
		t.Fatalf("Remove 应成功: %v", err)
	}
	emptied, err := svc.RemoveRow(ctx, &dto.RemoveRowRequest{Grid: removed.Grid, Row: "T01"})
	if err != nil {
		t.Fatalf("RemoveRow 应成功: %v", err)
	}
	if len(emptied.Grid.Rows) != 1 {
		t.Errorf("期望只剩未定行，实际 %d 行", len(emptied.Grid.Rows))
	}
}

// ── SeedEnrollment ──

func TestTimetableService_SeedEnrollment_ClonesPriorTemplate(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPeriods(t, 8)
	ctx := context.Background()
	_ = env.repo.Schedule.SaveWeekly(ctx, "047", "2025-07", 3, docWithTeacher("T01", "S1", 0))

	resp, err := env.svc.Timetable.SeedEnrollment(ctx, "047", &dto.EnrollmentRequest{
		Date:    "2025-09-10",
		Teacher: &model.Teacher{Code: "T02", Name: "佐藤"},
		Period:  0,
		Entry:   testEntry("S2", timetable.ClassTypePair),
	})
	if err != nil {
		t.Fatalf("SeedEnrollment 应成功: %v", err)
	}
	if resp.Source != string(SourceDaily) {
		t.Errorf("期望写入按日文档，实际 %s", resp.Source)
	}

	keys := []string{}
	for _, r := range resp.Grid.Rows {
		keys = append(keys, r.Key())
	}
	if !reflect.DeepEqual(keys, []string{"T01", "T02", timetable.StatusPending}) {
		t.Errorf("新讲师行应插入到状态行之前，实际行顺序: %v", keys)
	}

	daily, err := env.repo.Schedule.GetDaily(ctx, "047", "2025-09-10")
	if err != nil {
		t.Fatalf("应创建按日文档: %v", err)
	}
	if len(daily.Rows) != 3 || len(daily.Rows[0].Periods["period1"]) != 1 || len(daily.Rows[1].Periods["period1"]) != 1 {
		t.Errorf("按日文档应包含模板中的学生与新登记学生: %+v", daily.Rows)
	}
	if env.store.Len(repository.CollectionWeeklySchedules) != 1 {
		t.Error("不应写入星期模板")
	}
}

func TestTimetableService_SeedEnrollment_Errors(t *testing.T) {
	env := setupTestEnv(t)
	env.seedPeriods(t, 8)
	ctx := context.Background()
	_ = env.repo.Schedule.SaveWeekly(ctx, "047", "2025-09", 3, docWithTeacher("T01", "S1", 0))
	weekday := 3

	_, err := env.svc.Timetable.SeedEnrollment(ctx, "047", &dto.EnrollmentRequest{
		YearMonth: "2025-09",
		Weekday:   &weekday,
		Teacher:   &model.Teacher{Code: "T01", Name: "講師T01"},
		Period:    0,
		Entry:     testEntry("S2", timetable.ClassTypeSolo),
	})
	if !errors.Is(err, timetable.ErrSoloClassConflict) {
		t.Errorf("期望 ErrSoloClassConflict，实际: %v", err)
	}

	_, err = env.svc.Timetable.SeedEnrollment(ctx, "047", &dto.EnrollmentRequest{
		YearMonth: "2025-09",
		Entry:     testEntry("S2", timetable.ClassTypeSolo),
	})
	if !errors.Is(err, timetable.ErrInvalidScope) {
		t.Errorf("缺少星期时期望 ErrInvalidScope，实际: %v", err)
	}

	resp, err := env.svc.Timetable.SeedEnrollment(ctx, "047", &dto.EnrollmentRequest{
		YearMonth: "2025-09",
		Weekday:   &weekday,
		Period:    4,
		Entry:     testEntry("S3", timetable.ClassTypePair),
	})
	if err != nil {
		t.Fatalf("无讲师时应放入未定行: %v", err)
	}
	if resp.Source != string(SourceWeekly) {
		t.Errorf("期望写入星期模板，实际 %s", resp.Source)
	}
	if refs := resp.Grid.Locate("S3"); len(refs) != 1 || refs[0].Row != timetable.StatusPending || refs[0].Period != 4 {
		t.Errorf("S3 位置不正确: %+v", refs)
	}
}
