package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/archiv-tools/linkliste/api/handler"
	"github.com/archiv-tools/linkliste/api/middleware"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(deps *handler.Deps, startTime time.Time) *gin.Engine {
	gin.SetMode(deps.Cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health probe.
	v1.GET("/health", handler.Health(startTime))

	// Protected group: auth + rate limit.
	protected := v1.Group("")
	if deps.Cfg.Auth.Enabled {
		protected.Use(middleware.Auth(deps.Cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(deps.Cfg.RateLimit))

	// Portal metadata
	protected.GET("/categories", handler.Categories())
	protected.GET("/schema/:category", handler.GetSchema(deps))

	// Crawl
	protected.POST("/crawl", handler.PostCrawl(deps))
	protected.GET("/crawl/:id", handler.GetCrawl())
	protected.POST("/crawl/:id/cancel", handler.CancelCrawl())

	return r
}
