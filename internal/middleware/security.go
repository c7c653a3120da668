package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityConfig lists the fixed headers attached to every API response.
// An empty value leaves that header unset.
type SecurityConfig struct {
	FrameOptions       string
	ContentTypeOptions string
	ReferrerPolicy     string
	// CacheControl keeps browsers from serving stale clinic and experience
	// lists after a write.
	CacheControl string
}

func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		FrameOptions:       "DENY",
		ContentTypeOptions: "nosniff",
		ReferrerPolicy:     "no-referrer",
		CacheControl:       "no-store",
	}
}

func (s SecurityConfig) headers() [][2]string {
	return [][2]string{
		{"X-Frame-Options", s.FrameOptions},
		{"X-Content-Type-Options", s.ContentTypeOptions},
		{"Referrer-Policy", s.ReferrerPolicy},
		{"Cache-Control", s.CacheControl},
	}
}

func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	headers := make([][2]string, 0, 4)
	for _, h := range config.headers() {
		if h[1] != "" {
			headers = append(headers, h)
		}
	}

	return func(c *gin.Context) {
		for _, h := range headers {
			c.Header(h[0], h[1])
		}
		c.Next()
	}
}
