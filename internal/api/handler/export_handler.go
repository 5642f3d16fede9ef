package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/minamirinkan/sample-sub000/internal/service"
	"github.com/minamirinkan/sample-sub000/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTimetable 导出时间表
// GET /api/v1/export/timetable?date=2025-09-10
func (h *ExportHandler) ExportTimetable(c *gin.Context) {
	classroom, ok := MustGetClassroom(c)
	if !ok {
		return
	}
	scope, ok := bindScope(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportGrid(c.Request.Context(), classroom, scope)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 24001, "生成 Excel 文件失败")
	default:
		handleTimetableError(c, err)
	}
}
