package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-review-backend/internal/resumes"
	"resume-review-backend/internal/reviews"
	"resume-review-backend/internal/shared/config"
	"resume-review-backend/internal/shared/metrics"
	"resume-review-backend/internal/shared/server/middleware"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config  config.Config
	Resumes *resumes.Handler
	Reviews *reviews.Handler
}

// NewRouter builds the HTTP router with middleware and all API routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	r.Use(middleware.CORS(deps.Config.CORSAllowOrigin))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.Auth())
	if deps.Resumes != nil {
		deps.Resumes.RegisterRoutes(api)
	}
	if deps.Reviews != nil {
		deps.Reviews.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes a port value into a listen address.
func Addr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
