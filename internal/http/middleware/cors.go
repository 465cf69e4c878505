package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lessonplan-backend/internal/platform/envutil"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// AllowedOrigins reads CORS_ALLOW_ORIGINS (comma separated). Entries without an
// http(s) scheme are skipped; nothing usable falls back to the local dev origins.
func AllowedOrigins() []string {
	raw := envutil.String("CORS_ALLOW_ORIGINS", "")
	if raw == "" {
		return append([]string(nil), defaultOrigins...)
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if strings.HasPrefix(o, "http://") || strings.HasPrefix(o, "https://") {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultOrigins...)
	}
	return out
}

func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Requested-With", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Export-Url", "X-Request-Id", "X-Trace-Id"},
		AllowCredentials: true,
	})
}
