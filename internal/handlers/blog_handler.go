package handlers

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"markdown-blog/internal/config"
	"markdown-blog/internal/middleware"
	"markdown-blog/internal/store"

	"github.com/gin-gonic/gin"
)

// fallbackHTML is the body served whenever a page cannot be produced.
// Missing content is a 200 with this message, never an error page.
const fallbackHTML = template.HTML("<p>No blog content found.</p>")

// BlogHandler serves the HTML routes from the content store.
type BlogHandler struct {
	store  *store.Store
	site   config.SiteConfig
	base   string
	logger *slog.Logger
}

// NewBlogHandler wires the handler set to its store and site settings.
func NewBlogHandler(cfg *config.Config, s *store.Store, logger *slog.Logger) *BlogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlogHandler{
		store:  s,
		site:   cfg.Site,
		base:   strings.TrimRight(cfg.Server.BaseURL, "/"),
		logger: logger,
	}
}

// Home handles GET /
// Renders the post listing, newest first.
func (h *BlogHandler) Home(c *gin.Context) {
	posts, err := h.store.All(c.Request.Context())
	if err != nil {
		// A failed scan still yields a page, just an empty one.
		h.logger.Error("list posts", "error", err)
		posts = nil
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"site":  h.site,
		"posts": posts,
	})
}

// ShowPost handles GET /posts/:slug
// Renders one post, or the fallback message when it cannot be produced.
func (h *BlogHandler) ShowPost(c *gin.Context) {
	slug := c.Param("slug")

	post, err := h.store.Get(c.Request.Context(), slug)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("load post", "slug", slug, "error", err)
		}
		// Fallback pages stay out of the page cache, so made-up slugs
		// never occupy entries.
		middleware.NoStore(c)
		c.HTML(http.StatusOK, "post.html", gin.H{
			"site":    h.site,
			"title":   h.site.Title,
			"content": fallbackHTML,
		})
		return
	}

	c.HTML(http.StatusOK, "post.html", gin.H{
		"site":    h.site,
		"title":   post.Title,
		"content": post.HTML,
	})
}

// About handles GET /about
// Renders the about page with the same fallback contract as posts.
func (h *BlogHandler) About(c *gin.Context) {
	post, err := h.store.About(c.Request.Context())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("load about page", "error", err)
		}
		middleware.NoStore(c)
		c.HTML(http.StatusOK, "about.html", gin.H{
			"site":    h.site,
			"content": fallbackHTML,
		})
		return
	}

	c.HTML(http.StatusOK, "about.html", gin.H{
		"site":    h.site,
		"content": post.HTML,
	})
}
