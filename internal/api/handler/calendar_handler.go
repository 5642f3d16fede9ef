package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minamirinkan/sample-sub000/internal/dto"
	"github.com/minamirinkan/sample-sub000/internal/service"
	"github.com/minamirinkan/sample-sub000/internal/timetable"
	"github.com/minamirinkan/sample-sub000/pkg/response"
)

// CalendarHandler 月历 Handler
type CalendarHandler struct {
	svc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler 实例
func NewCalendarHandler(svc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{svc: svc}
}

const icsContentType = "text/calendar; charset=utf-8"

// StudentEvents 学生月历
// GET /api/v1/calendar/students/:id?month=2025-09[&format=ics]
func (h *CalendarHandler) StudentEvents(c *gin.Context) {
	classroom, ok := MustGetClassroom(c)
	if !ok {
		return
	}
	var q dto.CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return
	}

	resp, err := h.svc.StudentEvents(c.Request.Context(), classroom, c.Param("id"), q.Month)
	if err != nil {
		handleCalendarError(c, err)
		return
	}
	h.respond(c, &q, resp, fmt.Sprintf("student_%s_%s", c.Param("id"), q.Month))
}

// TeacherEvents 讲师月历
// GET /api/v1/calendar/teachers/:code?month=2025-09[&format=ics]
func (h *CalendarHandler) TeacherEvents(c *gin.Context) {
	classroom, ok := MustGetClassroom(c)
	if !ok {
		return
	}
	var q dto.CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return
	}

	resp, err := h.svc.TeacherEvents(c.Request.Context(), classroom, c.Param("code"), q.Month)
	if err != nil {
		handleCalendarError(c, err)
		return
	}
	h.respond(c, &q, resp, fmt.Sprintf("teacher_%s_%s", c.Param("code"), q.Month))
}

func (h *CalendarHandler) respond(c *gin.Context, q *dto.CalendarQuery, resp *dto.CalendarResponse, name string) {
	if !q.WantsICS() {
		response.OK(c, resp)
		return
	}
	body, err := h.svc.RenderICS(resp, name)
	if err != nil {
		handleCalendarError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.ics"`, name))
	c.Data(http.StatusOK, icsContentType, body)
}

func handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, timetable.ErrInvalidScope):
		response.BadRequest(c, 22001, "无效的月份")
	default:
		response.InternalError(c)
	}
}
