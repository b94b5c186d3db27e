package routes

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"markdown-blog/internal/cache"
	"markdown-blog/internal/config"
	"markdown-blog/internal/handlers"
	"markdown-blog/internal/middleware"
	"markdown-blog/internal/store"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the Gin engine: templates, the cached page routes,
// static assets, and the health check.
func SetupRoutes(cfg *config.Config, s *store.Store, pages cache.Cache[string, middleware.CachedPage], logger *slog.Logger) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// Compression sits outermost so the page cache stores plain bytes.
	ginRouter.Use(gzip.Gzip(gzip.DefaultCompression))

	ginRouter.LoadHTMLGlob(filepath.Join(cfg.Content.TemplatesDir, "*.html"))

	h := handlers.NewBlogHandler(cfg, s, logger)

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// Page routes share the response cache and the browser cache policy.
	pageRoutes := ginRouter.Group("")
	pageRoutes.Use(
		middleware.CacheControl(time.Duration(cfg.Cache.BrowserMaxAge)),
		middleware.PageCache(pages, time.Duration(cfg.Cache.PageTTL)),
	)
	{
		pageRoutes.GET("/", h.Home)
		pageRoutes.GET("/posts/:slug", h.ShowPost)
		pageRoutes.GET("/about", h.About)
		pageRoutes.GET("/feed.xml", h.Feed)
	}

	// Static assets skip the page cache; the browser policy still applies.
	staticRoutes := ginRouter.Group("")
	staticRoutes.Use(middleware.CacheControl(time.Duration(cfg.Cache.BrowserMaxAge)))
	{
		staticRoutes.Static("/static", cfg.Content.StaticDir)
		staticRoutes.StaticFile("/favicon.ico", filepath.Join(cfg.Content.StaticDir, "favicon.svg"))
	}

	return ginRouter
}
