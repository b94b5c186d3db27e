package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"markdown-blog/internal/config"
	"markdown-blog/internal/markdown"
	"markdown-blog/internal/store"
	"markdown-blog/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testTemplates = `
{{ define "index.html" }}<!DOCTYPE html><title>{{ .site.Title }}</title>{{ range .posts }}<article><a href="/posts/{{ .Name }}">{{ .Title }}</a>{{ .Excerpt }}</article>{{ end }}{{ end }}
{{ define "post.html" }}<!DOCTYPE html><title>{{ .title }}</title><main>{{ .content }}</main>{{ end }}
{{ define "about.html" }}<!DOCTYPE html><main>{{ .content }}</main>{{ end }}
`

func setupBlogRouter(t *testing.T, files map[string]string) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Content.Dir = testutil.ContentDir(t, files)

	s := store.New(&cfg, markdown.New(), slog.New(slog.DiscardHandler))
	h := NewBlogHandler(&cfg, s, slog.New(slog.DiscardHandler))

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("t").Parse(testTemplates)))
	r.GET("/", h.Home)
	r.GET("/posts/:slug", h.ShowPost)
	r.GET("/about", h.About)
	r.GET("/feed.xml", h.Feed)
	return r, cfg.Content.Dir
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHome_ListsPostsNewestFirst(t *testing.T) {
	r, dir := setupBlogRouter(t, map[string]string{
		"older.md": "---\ntitle: Older Post\n---\nOld words.\n",
		"newer.md": "---\ntitle: Newer Post\n---\nNew words.\n",
	})
	testutil.Touch(t, dir, "older.md", time.Now().Add(-time.Hour))

	w := get(t, r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "Newer Post")
	require.Contains(t, body, "Older Post")
	require.Less(t, strings.Index(body, "Newer Post"), strings.Index(body, "Older Post"))
}

func TestHome_EmptyDirectoryStillRenders(t *testing.T) {
	r, _ := setupBlogRouter(t, nil)

	w := get(t, r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "<article>")
}

func TestHome_ScanFailureRendersEmptyList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Content.Dir = filepath.Join(t.TempDir(), "gone")

	s := store.New(&cfg, markdown.New(), slog.New(slog.DiscardHandler))
	h := NewBlogHandler(&cfg, s, slog.New(slog.DiscardHandler))
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("t").Parse(testTemplates)))
	r.GET("/", h.Home)

	w := get(t, r, "/")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestShowPost_RendersMarkdown(t *testing.T) {
	r, _ := setupBlogRouter(t, map[string]string{
		"hello.md": "---\ntitle: Hello World\n---\nWelcome **reader**.\n",
	})

	w := get(t, r, "/posts/hello")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Hello World")
	require.Contains(t, w.Body.String(), "<strong>reader</strong>")
}

func TestShowPost_MissingSlugServesFallback(t *testing.T) {
	r, _ := setupBlogRouter(t, nil)

	w := get(t, r, "/posts/ghost")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "No blog content found.")
}

func TestShowPost_UnreadableEntryServesFallback(t *testing.T) {
	r, dir := setupBlogRouter(t, nil)
	// A directory with a .md name stats fine but cannot be read.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "trap.md"), 0o755))

	w := get(t, r, "/posts/trap")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "No blog content found.")
}

func TestAbout_RendersConfiguredFile(t *testing.T) {
	r, _ := setupBlogRouter(t, map[string]string{
		"about.md": "# About\nAll about me.\n",
	})

	w := get(t, r, "/about")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "All about me.")
}

func TestAbout_MissingFileServesFallback(t *testing.T) {
	r, _ := setupBlogRouter(t, nil)

	w := get(t, r, "/about")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "No blog content found.")
}

func TestAbout_NeverAppearsInListing(t *testing.T) {
	r, _ := setupBlogRouter(t, map[string]string{
		"post.md":  "a post\n",
		"about.md": "the about page\n",
	})

	w := get(t, r, "/")
	require.Contains(t, w.Body.String(), "/posts/post")
	require.NotContains(t, w.Body.String(), "/posts/about")
}
