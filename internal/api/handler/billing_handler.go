package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/minamirinkan/sample-sub000/internal/billing"
	"github.com/minamirinkan/sample-sub000/internal/dto"
	"github.com/minamirinkan/sample-sub000/internal/service"
	"github.com/minamirinkan/sample-sub000/pkg/response"
)

// BillingHandler 费用模块 Handler
type BillingHandler struct {
	svc service.BillingService
}

// NewBillingHandler 创建 BillingHandler 实例
func NewBillingHandler(svc service.BillingService) *BillingHandler {
	return &BillingHandler{svc: svc}
}

// DeriveFeeCode 推导费用代码
// POST /api/v1/billing/fee-code
func (h *BillingHandler) DeriveFeeCode(c *gin.Context) {
	var req dto.CourseRequest
	if !bindJSON(c, &req) {
		return
	}
	response.OK(c, h.svc.DeriveFeeCode(&req))
}

// SearchTuition 按费用代码检索授業料
// GET /api/v1/billing/tuition?month=2025-09&code=W_J_W2_T80
func (h *BillingHandler) SearchTuition(c *gin.Context) {
	classroom, ok := MustGetClassroom(c)
	if !ok {
		return
	}
	var q dto.TuitionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return
	}

	entry, err := h.svc.SearchTuition(c.Request.Context(), classroom, q.Month, q.Code)
	if err != nil {
		handleBillingError(c, err)
		return
	}
	response.OK(c, entry)
}

// BuildLineItems 生成账单明细
// POST /api/v1/billing/line-items
func (h *BillingHandler) BuildLineItems(c *gin.Context) {
	classroom, ok := MustGetClassroom(c)
	if !ok {
		return
	}
	var req dto.LineItemsRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.BuildLineItems(c.Request.Context(), classroom, &req)
	if err != nil {
		handleBillingError(c, err)
		return
	}
	response.OK(c, resp)
}

func handleBillingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, billing.ErrUnknownGrade):
		response.BadRequest(c, 23001, "学年无法识别，无法检索费用")
	case errors.Is(err, billing.ErrFeeNotFound):
		response.NotFound(c, 23002, "费用主表中没有匹配的条目")
	case errors.Is(err, service.ErrFeeMasterNotFound):
		response.NotFound(c, 23003, "该月份的费用主表不存在")
	case errors.Is(err, billing.ErrInvalidFormula):
		response.Conflict(c, 23004, "费用主表中的计算公式无效")
	default:
		response.InternalError(c)
	}
}
