package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/folio-space/core/internal/middleware"
	"github.com/folio-space/core/internal/modules/auth"
	"github.com/folio-space/core/internal/modules/collab"
	"github.com/folio-space/core/internal/modules/enrich"
	"github.com/folio-space/core/internal/modules/portfolio"
	pkgredis "github.com/folio-space/core/internal/pkg/redis"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)
	optionalAuthMW := middleware.OptionalAuth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "folio-space-core",
		"version":  "1.0.0",
		"homepage": "https://github.com/folio-space/core",
		"issues":   "https://github.com/folio-space/core/issues",
	}

	apiPrefix := "/api/v1"

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	api := r.Group(apiPrefix)
	api.Use(optionalAuthMW)
	api.Use(middleware.HTTPCache(rc.Raw(), middleware.HTTPCacheOptions{
		TTL:       15 * time.Second,
		Disable:   a.cfg.IsDev(),
		SkipPaths: httpCacheSkipPaths(apiPrefix),
	}))

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"timestamp": time.Since(processStart).Milliseconds()})
	})

	api.GET("/clean_cache", authMW, func(c *gin.Context) {
		deleted, err := middleware.PurgeHTTPCache(c.Request.Context(), rc.Raw())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
	})

	auth.NewHandler(auth.NewService(db, a.logger)).RegisterRoutes(api, authMW)
	portfolio.NewHandler(portfolio.NewService(db, a.logger)).RegisterRoutes(api, authMW, optionalAuthMW)
	collab.NewHandler(collab.NewService(db, a.logger)).RegisterRoutes(api, authMW)
	enrich.NewHandler(a.enrichSvc).RegisterRoutes(api, authMW)
}

func httpCacheSkipPaths(apiPrefix string) []string {
	p := strings.TrimSuffix(strings.TrimSpace(apiPrefix), "/")
	if p == "" {
		p = "/api/v1"
	}
	return []string{
		p + "/uptime",
		p + "/clean_cache",
		p + "/auth/*",
		p + "/enrich/*",
		p + "/portfolios/mine",
		p + "/collab/*",
	}
}
