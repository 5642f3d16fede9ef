// Command seed 将 TOML 种子文件中的节次表与费用主表写入文档存储。
//
//	go run ./cmd/seed -file config/seed.example.toml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/minamirinkan/sample-sub000/config"
	"github.com/minamirinkan/sample-sub000/internal/repository"
	"github.com/minamirinkan/sample-sub000/pkg/docstore"
	applogger "github.com/minamirinkan/sample-sub000/pkg/logger"
)

func main() {
	file := flag.String("file", "config/seed.example.toml", "种子文件路径")
	cfgPath := flag.String("config", os.Getenv("JUKU_CONFIG"), "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("读取种子文件失败", zap.String("file", *file), zap.Error(err))
	}
	seed, err := parseSeedFile(data)
	if err != nil {
		logger.Fatal("种子文件无效", zap.String("file", *file), zap.Error(err))
	}

	ctx := context.Background()
	store, err := docstore.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("文档存储初始化失败", zap.Error(err))
	}
	defer store.Close()

	res, err := apply(ctx, repository.NewRepository(store), seed)
	if err != nil {
		logger.Fatal("写入种子数据失败", zap.Error(err))
	}
	logger.Info("种子数据写入完成",
		zap.String("driver", cfg.Store.Driver),
		zap.Bool("common_periods", res.Common),
		zap.Int("classrooms", res.Classrooms),
		zap.Int("fee_categories", res.Categories),
	)
}
