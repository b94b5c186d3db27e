package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"markdown-blog/internal/cache"
	"markdown-blog/internal/config"
	"markdown-blog/internal/markdown"
	"markdown-blog/internal/middleware"
	"markdown-blog/internal/routes"
	"markdown-blog/internal/store"
)

func main() {
	// Config file path comes from BLOG_CONFIG, defaulting to config.yaml;
	// a missing file just means the built-in defaults.
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Content store over the Markdown directory
	contentStore := store.New(cfg, markdown.New(), logger)

	// Blocking preload so the first request is served from warm caches
	if err := contentStore.Warm(context.Background()); err != nil {
		logger.Warn("cache preload incomplete", "error", err)
	}

	// Whole-page response cache, swept in the background
	pages := cache.New[string, middleware.CachedPage]()
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Cache.PageTTL))
		defer ticker.Stop()
		for range ticker.C {
			pages.PurgeExpired()
		}
	}()

	// Setup the routes (pages, static assets, health)
	ginRoutes := routes.SetupRoutes(cfg, contentStore, pages, logger)

	// Start server
	log.Printf("Server starting on %s", cfg.Server.Addr)
	log.Println("Endpoints:")
	log.Println("  GET /")
	log.Println("  GET /posts/:slug")
	log.Println("  GET /about")
	log.Println("  GET /feed.xml")
	log.Println("  GET /static/*filepath")
	log.Println("  GET /favicon.ico")
	log.Println("  GET /health")

	if err := ginRoutes.Run(cfg.Server.Addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
