package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// corsPolicy 精确来源 + 通配子域（各教室门户 https://*.example.com）
type corsPolicy struct {
	exact    map[string]bool
	suffixes []corsSuffix
}

type corsSuffix struct {
	scheme string // "https://"
	domain string // ".example.com"
}

func newCORSPolicy(allowOrigins []string) corsPolicy {
	p := corsPolicy{exact: make(map[string]bool, len(allowOrigins))}
	for _, o := range allowOrigins {
		o = strings.TrimRight(o, "/")
		if scheme, rest, ok := strings.Cut(o, "://*"); ok && strings.HasPrefix(rest, ".") {
			p.suffixes = append(p.suffixes, corsSuffix{scheme: scheme + "://", domain: rest})
			continue
		}
		p.exact[o] = true
	}
	return p
}

func (p corsPolicy) allowed(origin string) bool {
	if origin == "" {
		return false
	}
	if p.exact[origin] {
		return true
	}
	for _, s := range p.suffixes {
		host, ok := strings.CutPrefix(origin, s.scheme)
		if !ok || !strings.HasSuffix(host, s.domain) {
			continue
		}
		// 子域部分不能为空，也不能再含 '/'
		sub := strings.TrimSuffix(host, s.domain)
		if sub != "" && !strings.ContainsAny(sub, "/@") {
			return true
		}
	}
	return false
}

// CORS 跨域中间件
// 来源不在白名单的预检请求直接 403，普通请求不附加 CORS 头
func CORS(allowOrigins []string) gin.HandlerFunc {
	policy := newCORSPolicy(allowOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		c.Header("Vary", "Origin")

		ok := policy.allowed(origin)
		if ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			if !ok && origin != "" {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
