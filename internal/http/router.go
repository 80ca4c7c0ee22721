// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pelorus/internal/ai"
	"pelorus/internal/http/handlers"
	"pelorus/internal/http/middleware"
	"pelorus/internal/metocean"
	"pelorus/internal/modules/area"
	"pelorus/internal/modules/audit"
	"pelorus/internal/modules/depth"
	"pelorus/internal/modules/override"
	"pelorus/internal/modules/safety"
)

// RouterDeps carries everything the HTTP surface needs. Optional fields
// (AreaStore, Metocean, Briefing) may be nil; the affected routes degrade
// rather than fail at startup.
type RouterDeps struct {
	Safety    *safety.Service
	Depth     *depth.Engine
	Areas     *area.Registry
	AreaStore handlers.AreaStore
	Overrides *override.Authority
	Audit     *audit.Log
	Metocean  *metocean.Client
	Station   string
	Briefing  ai.BriefingProvider
	APIKey    string
	Log       *slog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.APIKey))

	safetyHandler := handlers.NewSafetyHandler(deps.Safety, deps.Depth, deps.Metocean, deps.Station)
	api.POST("/safety/route-check", safetyHandler.RouteCheck)
	api.POST("/safety/depth-check", safetyHandler.DepthCheck)

	briefingHandler := handlers.NewBriefingHandler(deps.Safety, deps.Briefing)
	api.POST("/safety/briefing", briefingHandler.Briefing)

	areaHandler := handlers.NewAreaHandler(deps.Areas, deps.AreaStore)
	api.GET("/areas", areaHandler.List)
	api.POST("/areas/check", areaHandler.CheckPosition)
	api.GET("/areas/:id/distance", areaHandler.Distance)
	api.PUT("/areas", areaHandler.Upsert)
	api.DELETE("/areas/:id", areaHandler.Delete)

	overrideHandler := handlers.NewOverrideHandler(deps.Overrides)
	api.POST("/overrides", overrideHandler.Apply)
	api.POST("/overrides/validate", overrideHandler.Validate)
	api.POST("/overrides/:id/revoke", overrideHandler.Revoke)
	api.GET("/overrides/user/:id", overrideHandler.ByUser)
	api.GET("/overrides/stats", overrideHandler.Stats)

	auditHandler := handlers.NewAuditHandler(deps.Audit)
	api.GET("/audit/recent", auditHandler.Recent)
	api.GET("/audit/request/:id", auditHandler.ByRequest)
	api.GET("/audit/critical", auditHandler.Critical)
	api.GET("/audit/export", auditHandler.Export)

	return r
}
