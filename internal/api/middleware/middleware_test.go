package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minamirinkan/sample-sub000/config"
	"github.com/minamirinkan/sample-sub000/pkg/jwt"
	applogger "github.com/minamirinkan/sample-sub000/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-middleware",
		AccessTokenTTL: 15 * time.Minute,
	})
}

// ── JWTAuth ──

func TestJWTAuth(t *testing.T) {
	mgr := newJWTManager()
	token, err := mgr.GenerateAccessToken("u-1", RoleStaff, "047")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	r := gin.New()
	r.GET("/me", JWTAuth(mgr), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id")+"|"+c.GetString("role")+"|"+c.GetString("classroom_code"))
	})

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"缺少认证头", "", http.StatusUnauthorized, ""},
		{"格式错误", "Token " + token, http.StatusUnauthorized, ""},
		{"Token 无效", "Bearer invalid", http.StatusUnauthorized, ""},
		{"成功", "Bearer " + token, http.StatusOK, "u-1|staff|047"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.code {
				t.Errorf("期望 %d，实际 %d", tt.code, w.Code)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("期望 %q，实际 %q", tt.body, w.Body.String())
			}
		})
	}
}

// ── RoleAuth ──

func TestRoleAuth(t *testing.T) {
	for _, tt := range []struct {
		role string
		code int
	}{
		{RoleAdmin, http.StatusOK},
		{RoleStaff, http.StatusForbidden},
		{"", http.StatusUnauthorized},
	} {
		r := gin.New()
		r.GET("/admin", func(c *gin.Context) {
			if tt.role != "" {
				c.Set("role", tt.role)
			}
			c.Next()
		}, RoleAuth(RoleAdmin), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		if w.Code != tt.code {
			t.Errorf("role=%q: 期望 %d，实际 %d", tt.role, tt.code, w.Code)
		}
	}
}

// ── RateLimit ──

type fakeLimiter struct {
	calls   int
	allowed int
	err     error
	lastKey string
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.calls++
	f.lastKey = key
	if f.err != nil {
		return false, f.err
	}
	return f.calls <= f.allowed, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{allowed: 2}
	r := gin.New()
	r.POST("/timetables/move", func(c *gin.Context) {
		c.Set("classroom_code", "047")
		c.Next()
	}, RateLimit(limiter, 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/timetables/move", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("限流结果不正确: %v", codes)
	}
	if limiter.lastKey != "rate_limit:047:192.0.2.1:/timetables/move" {
		t.Errorf("限流键不正确: %s", limiter.lastKey)
	}
}

func TestRateLimit_Degrades(t *testing.T) {
	for name, mw := range map[string]gin.HandlerFunc{
		"limiter 为空": RateLimit(nil, 1, time.Minute),
		"计数出错":       RateLimit(&fakeLimiter{err: errors.New("redis down")}, 1, time.Minute),
	} {
		r := gin.New()
		r.GET("/x", mw, func(c *gin.Context) { c.Status(http.StatusOK) })
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			if w.Code != http.StatusOK {
				t.Errorf("%s: 应降级放行，实际 %d", name, w.Code)
			}
		}
	}
}

// ── RequestID ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequestID(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("应沿用请求头中的 ID: header=%s body=%s", w.Header().Get("X-Request-ID"), w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("缺失时应生成 UUID: %s", w.Header().Get("X-Request-ID"))
	}

	// 含换行等非法字符时重新生成，防止日志注入
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc\nlevel=error")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("非法 ID 应被替换: %q", got)
	}
}

func TestRequestID_PropagatesToRequestContext(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequestID(), func(c *gin.Context) {
		c.String(http.StatusOK, applogger.RequestIDFrom(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "trace.42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "trace.42" {
		t.Errorf("请求 context 中应带有 ID: %q", w.Body.String())
	}
}

// ── CORS ──

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("预检请求期望 204，实际 %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("允许的来源应回显: %s", w.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("未允许的来源不应返回 CORS 头")
	}
}

func TestCORS_ClassroomSubdomains(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://*.juku.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		origin string
		allow  bool
	}{
		{"https://kita.juku.example", true},
		{"https://a.b.juku.example", true},
		{"https://juku.example", false},
		{"http://kita.juku.example", false},
		{"https://evil-juku.example", false},
		{"https://kita.juku.example.evil", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", tc.origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		got := w.Header().Get("Access-Control-Allow-Origin") == tc.origin
		if got != tc.allow {
			t.Errorf("%s: 期望允许=%v，实际 %v", tc.origin, tc.allow, got)
		}
		if w.Header().Get("Vary") != "Origin" {
			t.Errorf("%s: 缺少 Vary: Origin", tc.origin)
		}
	}
}

func TestCORS_PreflightRejected(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("未允许来源的预检期望 403，实际 %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("被拒绝的预检不应返回 CORS 头")
	}
}
