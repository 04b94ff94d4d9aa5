package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig lists the static response headers sent with every reply.
type SecurityConfig struct {
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	FrameOptions          string
	ContentTypeOptions    string
	ReferrerPolicy        string
	ResourcePolicy        string
	CSPDirectives         []string
}

// DefaultSecurityConfig suits a JSON and PDF API with no browser UI.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeOptions:    "nosniff",
		ReferrerPolicy:        "no-referrer",
		ResourcePolicy:        "same-origin",
		CSPDirectives:         []string{"default-src 'none'", "frame-ancestors 'none'"},
	}
}

type header struct {
	name, value string
}

func (cfg SecurityConfig) headers() []header {
	var hs []header
	add := func(name, value string) {
		if value != "" {
			hs = append(hs, header{name, value})
		}
	}
	add("X-Frame-Options", cfg.FrameOptions)
	add("X-Content-Type-Options", cfg.ContentTypeOptions)
	add("Referrer-Policy", cfg.ReferrerPolicy)
	add("Cross-Origin-Resource-Policy", cfg.ResourcePolicy)
	add("Content-Security-Policy", strings.Join(cfg.CSPDirectives, "; "))
	return hs
}

func (cfg SecurityConfig) hsts() string {
	if cfg.HSTSMaxAge <= 0 {
		return ""
	}
	v := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
	if cfg.HSTSIncludeSubdomains {
		v += "; includeSubDomains"
	}
	return v
}

// SecurityHeaders sets the configured headers. Strict-Transport-Security is
// only sent over TLS.
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	static := config.headers()
	hsts := config.hsts()

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, sh := range static {
			h.Set(sh.name, sh.value)
		}
		if hsts != "" && c.Request.TLS != nil {
			h.Set("Strict-Transport-Security", hsts)
		}
		c.Next()
	}
}
