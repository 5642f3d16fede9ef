package main

import (
	"context"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/internal/repository"
	"github.com/minamirinkan/sample-sub000/internal/timetable"
)

// SeedFile 初始数据文件（TOML）
//
//	[common]
//	periods = [{ index = 1, label = "1限", time = "13:00-14:20" }]
//
//	[[classrooms]]
//	code = "047"
//	periods = [...]
//
//	[[fee_master]]
//	classroom = "047"
//	month = "2025-09"
//	category = "授業料"
//	entries = [{ code = "W_J_W2_T80", name = "...", unit_price = 24000 }]
type SeedFile struct {
	Common     model.PeriodLabels `toml:"common"`
	Classrooms []ClassroomSeed    `toml:"classrooms"`
	FeeMaster  []FeeMasterSeed    `toml:"fee_master"`
}

// ClassroomSeed 教室专用节次表
type ClassroomSeed struct {
	Code    string         `toml:"code"`
	Periods []model.Period `toml:"periods"`
}

// FeeMasterSeed 某教室某月的一个费用分类
type FeeMasterSeed struct {
	Classroom string                 `toml:"classroom"`
	Month     string                 `toml:"month"`
	Category  string                 `toml:"category"`
	Entries   []model.FeeMasterEntry `toml:"entries"`
}

// seedResult 写入统计
type seedResult struct {
	Common     bool
	Classrooms int
	Categories int
}

func parseSeedFile(data []byte) (*SeedFile, error) {
	var f SeedFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("解析种子文件失败: %w", err)
	}
	for i, c := range f.Classrooms {
		if c.Code == "" {
			return nil, fmt.Errorf("classrooms[%d]: code 不能为空", i)
		}
	}
	for i, fm := range f.FeeMaster {
		if fm.Classroom == "" {
			return nil, fmt.Errorf("fee_master[%d]: classroom 不能为空", i)
		}
		if _, err := timetable.ShiftMonth(fm.Month, 0); err != nil {
			return nil, fmt.Errorf("fee_master[%d]: %w", i, err)
		}
		if fm.Category == "" {
			f.FeeMaster[i].Category = model.FeeCategoryTuition
		}
	}
	return &f, nil
}

// apply 写入存储；同一文档重复执行时整体覆盖
func apply(ctx context.Context, repo *repository.Repository, f *SeedFile) (*seedResult, error) {
	res := &seedResult{}

	if len(f.Common.PeriodLabels) > 0 {
		if err := repo.Period.SaveCommon(ctx, &f.Common); err != nil {
			return nil, fmt.Errorf("写入公共节次表失败: %w", err)
		}
		res.Common = true
	}

	for _, c := range f.Classrooms {
		if err := repo.Period.SaveBySchool(ctx, c.Code, &model.PeriodLabels{PeriodLabels: c.Periods}); err != nil {
			return nil, fmt.Errorf("写入教室 %s 节次表失败: %w", c.Code, err)
		}
		res.Classrooms++
	}

	for _, fm := range f.FeeMaster {
		cat := &model.FeeMasterCategory{Category: fm.Category, Entries: fm.Entries}
		if err := repo.FeeMaster.SaveCategory(ctx, fm.Classroom, fm.Month, cat); err != nil {
			return nil, fmt.Errorf("写入费用主表 %s/%s/%s 失败: %w", fm.Classroom, fm.Month, fm.Category, err)
		}
		res.Categories++
	}
	return res, nil
}
