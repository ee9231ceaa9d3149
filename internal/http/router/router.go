// Package router wires middleware, shared route groups, and domain modules
// onto the Gin engine.
package router

import (
	"net/http"
	"time"

	apphttp "admissions_crm_backend/internal/http"
	"admissions_crm_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// New builds the Gin engine from the composed application. Route groups are
// layered as: public (rate limited, no auth), protected (JWT required), and
// admin (JWT plus the admin role).
func New(app *apphttp.App) *gin.Engine {
	cfg := app.Config
	log := app.Logger

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(log))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app)))

	globalLimiter := httpkit.NewIPRateLimiter(rate.Limit(100.0/60.0), 50, log)
	engine.Use(globalLimiter.RateLimit())

	engine.GET("/api/health", func(c *gin.Context) {
		if app.Health != nil {
			if err := app.Health.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	captureLimiter := httpkit.NewCaptureRateLimiter(log)
	authMiddleware := httpkit.AuthRequired(cfg)

	v1 := engine.Group("/api/v1")

	public := v1.Group("/public")
	public.Use(captureLimiter.RateLimit())

	protected := v1.Group("")
	protected.Use(authMiddleware)

	admin := v1.Group("/admin")
	admin.Use(authMiddleware, httpkit.RequireRole("admin"))

	routerCtx := &apphttp.RouterContext{
		Engine:             engine,
		V1:                 v1,
		Public:             public,
		Protected:          protected,
		Admin:              admin,
		Config:             cfg,
		AuthMiddleware:     authMiddleware,
		CaptureRateLimiter: captureLimiter,
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(routerCtx)
		log.Info("registered module routes", "module", module.Name())
	}

	return engine
}

func corsConfig(app *apphttp.App) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: app.Config.CORSAllowCreds,
		MaxAge:           12 * time.Hour,
	}

	if app.Config.CORSAllowAll {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = app.Config.CORSOrigins
	}

	return corsCfg
}
