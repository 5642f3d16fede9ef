package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/minamirinkan/sample-sub000/config"
	"github.com/minamirinkan/sample-sub000/internal/repository"
	applogger "github.com/minamirinkan/sample-sub000/pkg/logger"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Period    PeriodService
	Timetable TimetableService
	Calendar  CalendarService
	Billing   BillingService
	Export    ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	logger *zap.Logger,
) *Service {
	periods := NewPeriodService(repo, logger)
	tt := NewTimetableService(&cfg.Schedule, repo, periods, logger)
	return &Service{
		Period:    periods,
		Timetable: tt,
		Calendar:  NewCalendarService(&cfg.Schedule, repo, periods, logger),
		Billing:   NewBillingService(repo, logger),
		Export:    NewExportService(tt, logger),
	}
}

// ctxLogger 附加 request_id 与 classroom 字段；classroom 以参数为准
func ctxLogger(ctx context.Context, base *zap.Logger, classroom string) *zap.Logger {
	return applogger.FromContext(applogger.WithClassroom(ctx, classroom), base)
}
