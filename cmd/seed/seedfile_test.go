package main

import (
	"context"
	"errors"
	"testing"

	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/internal/repository"
	"github.com/minamirinkan/sample-sub000/pkg/docstore"
	pkgerrors "github.com/minamirinkan/sample-sub000/pkg/errors"
)

const sampleSeed = `
[common]
periods = [
  { index = 1, label = "1限", time = "13:00-14:20" },
  { index = 2, label = "2限", time = "14:30-15:50" },
]

[[classrooms]]
code = "047"
periods = [{ index = 1, label = "A", time = "10:00-11:20" }]

[[fee_master]]
classroom = "047"
month = "2025-09"
entries = [
  { code = "W_J_W2_T80", name = "中1・2 2名 週2回", unit_price = 24000 },
  { code = "A_H3_W1_T90", name = "高3 1名 週1回", unit_price = 3500, formula = "単価 * 回数 * 4" },
]
`

func TestParseSeedFile(t *testing.T) {
	f, err := parseSeedFile([]byte(sampleSeed))
	if err != nil {
		t.Fatalf("parseSeedFile 应成功: %v", err)
	}
	if len(f.Common.PeriodLabels) != 2 || f.Common.PeriodLabels[1].Label != "2限" {
		t.Errorf("公共节次表解析不正确: %+v", f.Common)
	}
	if len(f.Classrooms) != 1 || f.Classrooms[0].Code != "047" {
		t.Errorf("教室节次表解析不正确: %+v", f.Classrooms)
	}
	if len(f.FeeMaster) != 1 || f.FeeMaster[0].Category != model.FeeCategoryTuition {
		t.Errorf("分类缺省应为授業料: %+v", f.FeeMaster)
	}
	if e := f.FeeMaster[0].Entries[1]; e.UnitPrice != 3500 || e.Formula == "" {
		t.Errorf("费用条目解析不正确: %+v", e)
	}
}

func TestParseSeedFile_Invalid(t *testing.T) {
	for name, src := range map[string]string{
		"语法错误":   "[common",
		"缺少教室代码": "[[classrooms]]\nperiods = []\n",
		"月份无效":   "[[fee_master]]\nclassroom = \"047\"\nmonth = \"2025/09\"\n",
	} {
		if _, err := parseSeedFile([]byte(src)); err == nil {
			t.Errorf("%s: 应返回错误", name)
		}
	}
}

func TestApply(t *testing.T) {
	f, err := parseSeedFile([]byte(sampleSeed))
	if err != nil {
		t.Fatalf("parseSeedFile 应成功: %v", err)
	}
	repo := repository.NewRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	res, err := apply(ctx, repo, f)
	if err != nil {
		t.Fatalf("apply 应成功: %v", err)
	}
	if !res.Common || res.Classrooms != 1 || res.Categories != 1 {
		t.Errorf("写入统计不正确: %+v", res)
	}

	common, err := repo.Period.GetCommon(ctx)
	if err != nil || len(common.PeriodLabels) != 2 {
		t.Errorf("公共节次表未写入: %v", err)
	}
	school, err := repo.Period.GetBySchool(ctx, "047")
	if err != nil || school.PeriodLabels[0].Label != "A" {
		t.Errorf("教室节次表未写入: %v", err)
	}
	cat, err := repo.FeeMaster.GetCategory(ctx, "047", "2025-09", model.FeeCategoryTuition)
	if err != nil || len(cat.Entries) != 2 {
		t.Errorf("费用主表未写入: %v", err)
	}
	if _, err := repo.FeeMaster.GetCategory(ctx, "047", "2025-10", model.FeeCategoryTuition); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("其他月份不应写入: %v", err)
	}

	// 重复执行结果不变
	if _, err := apply(ctx, repo, f); err != nil {
		t.Errorf("重复执行应成功: %v", err)
	}
}
