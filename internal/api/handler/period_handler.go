package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/minamirinkan/sample-sub000/internal/dto"
	"github.com/minamirinkan/sample-sub000/internal/service"
	"github.com/minamirinkan/sample-sub000/pkg/response"
)

// PeriodHandler 节次表 Handler
type PeriodHandler struct {
	svc service.PeriodService
}

// NewPeriodHandler 创建 PeriodHandler 实例
func NewPeriodHandler(svc service.PeriodService) *PeriodHandler {
	return &PeriodHandler{svc: svc}
}

// GetPeriods 获取当前教室的节次表
// GET /api/v1/periods
func (h *PeriodHandler) GetPeriods(c *gin.Context) {
	classroom, ok := MustGetClassroom(c)
	if !ok {
		return
	}

	periods, err := h.svc.GetPeriods(c.Request.Context(), classroom)
	if err != nil {
		if errors.Is(err, service.ErrPeriodsNotFound) {
			response.NotFound(c, 21001, "节次表不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, &dto.PeriodsResponse{Classroom: classroom, Periods: periods})
}
