package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"
)

// Feed handles GET /feed.xml
// Emits the post listing as RSS 2.0, links resolved against the
// configured base URL.
func (h *BlogHandler) Feed(c *gin.Context) {
	posts, err := h.store.All(c.Request.Context())
	if err != nil {
		h.logger.Error("build feed", "error", err)
		posts = nil
	}

	feed := &feeds.Feed{
		Title:       h.site.Title,
		Link:        &feeds.Link{Href: h.base + "/"},
		Description: h.site.Description,
	}
	for _, p := range posts {
		// Front matter description wins; the excerpt is the fallback.
		desc := p.MetaValue("description")
		if desc == "" {
			desc = string(p.Excerpt)
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       p.Title,
			Link:        &feeds.Link{Href: h.base + "/posts/" + p.Name},
			Description: desc,
			Created:     p.ModTime,
		})
	}
	if len(posts) > 0 {
		feed.Updated = posts[0].ModTime
	}

	rss, err := feed.ToRss()
	if err != nil {
		h.logger.Error("encode feed", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}
