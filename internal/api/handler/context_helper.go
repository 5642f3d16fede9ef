package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minamirinkan/sample-sub000/internal/api/middleware"
	"github.com/minamirinkan/sample-sub000/internal/dto"
	"github.com/minamirinkan/sample-sub000/internal/timetable"
	applogger "github.com/minamirinkan/sample-sub000/pkg/logger"
	"github.com/minamirinkan/sample-sub000/pkg/response"
)

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetClassroom 当前请求操作的教室代码。
// 默认取 Token 中的 classroom_code；admin 可用查询参数 classroom 切换教室。
// 结果写入请求 context，service 日志据此附加 classroom 字段。
func MustGetClassroom(c *gin.Context) (string, bool) {
	role, ok := MustGetRole(c)
	if !ok {
		return "", false
	}
	classroom := c.GetString("classroom_code")
	if role == middleware.RoleAdmin {
		if q := c.Query("classroom"); q != "" {
			classroom = q
		}
	}
	if classroom == "" {
		response.Forbidden(c, 10003, "当前账号未绑定教室")
		return "", false
	}
	c.Request = c.Request.WithContext(applogger.WithClassroom(c.Request.Context(), classroom))
	return classroom, true
}

// bindScope 解析时间表范围查询参数
func bindScope(c *gin.Context) (timetable.Scope, bool) {
	var q dto.ScopeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return timetable.Scope{}, false
	}
	scope, err := q.ToScope()
	if err != nil {
		response.BadRequest(c, 10001, "请指定 date，或同时指定 year_month 与 weekday")
		return timetable.Scope{}, false
	}
	return scope, true
}

// bindJSON 解析请求体；超出 BodyLimit 时返回 413
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return false
		}
		response.BadRequest(c, 10001, err.Error())
		return false
	}
	return true
}
