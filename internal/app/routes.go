package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/selam-edu/core/internal/middleware"
	"github.com/selam-edu/core/internal/modules/escalation"
	"github.com/selam-edu/core/internal/modules/qa"
	"github.com/selam-edu/core/internal/modules/tasks/crontask"
	"github.com/selam-edu/core/internal/modules/telemetry"
	pkgredis "github.com/selam-edu/core/internal/pkg/redis"
	"github.com/selam-edu/core/internal/pkg/response"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":    "selam-core",
		"version": "1.0.0",
	}

	apiPrefix := "/api/v2"

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth())
	api.Use(middleware.HTTPCache(rc.Raw(), middleware.HTTPCacheOptions{
		TTL:       15 * time.Second,
		Disable:   a.cfg.IsDev(),
		SkipPaths: httpCacheSkipPaths(apiPrefix),
	}))

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(a.startTime()).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})

	adminMW := []gin.HandlerFunc{middleware.Auth(), middleware.RequireRole(middleware.RoleAdmin)}
	reviewerMW := []gin.HandlerFunc{middleware.Auth(), middleware.RequireRole(middleware.RoleReviewer)}

	api.GET("/clean_cache", append(adminMW, func(c *gin.Context) {
		deleted, err := middleware.PurgeHTTPCache(c.Request.Context(), rc.Raw())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
	})...)

	// Pipeline
	qa.NewHandler(a.qaSvc, a.convSvc, a.logger.Named("qa")).RegisterRoutes(api)

	// Review surface
	escalation.NewHandler(a.escSvc).RegisterRoutes(api, reviewerMW...)

	// Telemetry and retention admin surface
	telemetry.NewHandler(a.sink, a.db).RegisterRoutes(api, adminMW...)

	// Scheduled job and task queue management
	crontask.NewHandler(a.sched, a.taskSvc).RegisterRoutes(api, adminMW...)
}

func httpCacheSkipPaths(apiPrefix string) []string {
	p := strings.TrimSuffix(strings.TrimSpace(apiPrefix), "/")
	if p == "" {
		p = "/api/v2"
	}
	return []string{
		p + "/uptime",
		p + "/ping",
		p + "/clean_cache",
		p + "/qa/history",
		p + "/qa/conversations",
		p + "/qa/cache/stats",
		p + "/escalations",
		p + "/telemetry/events",
		p + "/cron-task",
	}
}
