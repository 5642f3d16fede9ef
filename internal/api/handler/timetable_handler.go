package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/minamirinkan/sample-sub000/internal/dto"
	"github.com/minamirinkan/sample-sub000/internal/service"
	"github.com/minamirinkan/sample-sub000/internal/timetable"
	"github.com/minamirinkan/sample-sub000/pkg/response"
)

// TimetableHandler 时间表模块 Handler
type TimetableHandler struct {
	svc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler 实例
func NewTimetableHandler(svc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{svc: svc}
}

// GetTimetable 读取时间表
// GET /api/v1/timetables?date=2025-09-10
// GET /api/v1/timetables?year_month=2025-09&weekday=3
func (h *TimetableHandler) GetTimetable(c *gin.Context) {
	classroom, ok := MustGetClassroom(c)
	if !ok {
		return
	}
	scope, ok := bindScope(c)
	if !ok {
		return
	}

	resp, err := h.svc.Resolve(c.Request.Context(), classroom, scope)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// SaveTimetable 保存时间表（整体覆盖请求的范围）
// PUT /api/v1/timetables?date=2025-09-10
func (h *TimetableHandler) SaveTimetable(c *gin.Context) {
	classroom, ok := MustGetClassroom(c)
	if !ok {
		return
	}
	scope, ok := bindScope(c)
	if !ok {
		return
	}
	var req dto.SaveTimetableRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Save(c.Request.Context(), classroom, scope, req.Grid)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Move 拖放
// POST /api/v1/timetables/move
func (h *TimetableHandler) Move(c *gin.Context) {
	var req dto.MoveRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Move(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Redirect 转入状态行
// POST /api/v1/timetables/redirect
func (h *TimetableHandler) Redirect(c *gin.Context) {
	var req dto.RedirectRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Redirect(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Restore 元に戻す
// POST /api/v1/timetables/restore
func (h *TimetableHandler) Restore(c *gin.Context) {
	var req dto.CellOperationRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Restore(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// RemoveEntry 删除学生
// POST /api/v1/timetables/remove
func (h *TimetableHandler) RemoveEntry(c *gin.Context) {
	var req dto.CellOperationRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Remove(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// AddRow 新增讲师行或状态行
// POST /api/v1/timetables/rows
func (h *TimetableHandler) AddRow(c *gin.Context) {
	var req dto.AddRowRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.AddRow(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// RemoveRow 删除空行
// POST /api/v1/timetables/rows/remove
func (h *TimetableHandler) RemoveRow(c *gin.Context) {
	var req dto.RemoveRowRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.RemoveRow(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// SeedEnrollment 登记时写入时间表
// POST /api/v1/timetables/enrollments
func (h *TimetableHandler) SeedEnrollment(c *gin.Context) {
	classroom, ok := MustGetClassroom(c)
	if !ok {
		return
	}
	var req dto.EnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.SeedEnrollment(c.Request.Context(), classroom, &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.Created(c, resp)
}

// handleTimetableError 将 Service 层错误映射为 HTTP 响应
// 编排规则冲突返回 409，请求本身有误返回 400
func handleTimetableError(c *gin.Context, err error) {
	switch {
	// ── 请求错误 ──
	case errors.Is(err, timetable.ErrInvalidScope):
		response.BadRequest(c, 20001, "无效的时间表范围")
	case errors.Is(err, timetable.ErrRowNotFound):
		response.BadRequest(c, 20002, "行不存在")
	case errors.Is(err, timetable.ErrCellOutOfRange):
		response.BadRequest(c, 20003, "节次超出范围")
	case errors.Is(err, timetable.ErrEntryNotFound):
		response.BadRequest(c, 20004, "单元格中没有该学生")
	case errors.Is(err, timetable.ErrInvalidEntry):
		response.BadRequest(c, 20005, "学生条目缺少学生 ID")
	case errors.Is(err, timetable.ErrInvalidStatus):
		response.BadRequest(c, 20006, "无效的状态")
	case errors.Is(err, timetable.ErrInvalidRow):
		response.BadRequest(c, 20007, "行定义无效")

	// ── 编排规则冲突 ──
	case errors.Is(err, timetable.ErrSoloClassConflict):
		response.Conflict(c, 20101, "1名クラス只能单独放入空单元格")
	case errors.Is(err, timetable.ErrMixedCapacity):
		response.Conflict(c, 20102, "2名クラス与演習クラス混排时每格最多 2 人")
	case errors.Is(err, timetable.ErrPracticeCapacity):
		response.Conflict(c, 20103, "仅演習クラス的单元格最多 6 人")
	case errors.Is(err, timetable.ErrStudentBusy):
		response.Conflict(c, 20104, "该学生同一节次已在其他行上课")
	case errors.Is(err, timetable.ErrDuplicateStudent):
		response.Conflict(c, 20105, "同一单元格内学生重复")
	case errors.Is(err, timetable.ErrDropNotAllowed):
		response.Conflict(c, 20106, "该状态行不接受拖放")
	case errors.Is(err, timetable.ErrLaneNotFound):
		response.Conflict(c, 20107, "目标状态行不存在，请先添加")
	case errors.Is(err, timetable.ErrNotRedirected):
		response.Conflict(c, 20108, "该学生没有可恢复的原位置")
	case errors.Is(err, timetable.ErrOriginRowMissing):
		response.Conflict(c, 20109, "原位置的行已不存在")
	case errors.Is(err, timetable.ErrDuplicateRow):
		response.Conflict(c, 20110, "行已存在")
	case errors.Is(err, timetable.ErrRowNotEmpty):
		response.Conflict(c, 20111, "行内仍有学生，不能删除")
	case errors.Is(err, timetable.ErrPendingLaneRequired):
		response.Conflict(c, 20112, "未定行不能删除")
	case errors.Is(err, timetable.ErrLaneDailyOnly):
		response.Conflict(c, 20113, "振替/欠席行只能用于按日时间表")

	default:
		response.InternalError(c)
	}
}
