package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows every origin when origins is "*" (local development) and only
// the comma-separated list otherwise.
func CORS(origins string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}

	origins = strings.TrimSpace(origins)
	if origins == "" || origins == "*" {
		cfg.AllowAllOrigins = true
		return cors.New(cfg)
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	return cors.New(cfg)
}
