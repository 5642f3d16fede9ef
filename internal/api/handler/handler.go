package handler

import "github.com/minamirinkan/sample-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Period    *PeriodHandler
	Timetable *TimetableHandler
	Calendar  *CalendarHandler
	Billing   *BillingHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Period:    NewPeriodHandler(svc.Period),
		Timetable: NewTimetableHandler(svc.Timetable),
		Calendar:  NewCalendarHandler(svc.Calendar),
		Billing:   NewBillingHandler(svc.Billing),
		Export:    NewExportHandler(svc.Export),
	}
}
