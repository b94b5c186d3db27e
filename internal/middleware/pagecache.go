package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"markdown-blog/internal/cache"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
)

// CachedPage is one stored HTTP response: enough to replay it without
// touching the handlers again.
type CachedPage struct {
	Status      int
	ContentType string
	Body        []byte
	ETag        string
}

// noStoreKey marks a response the page cache must skip.
const noStoreKey = "pagecache.nostore"

// NoStore exempts the current response from page caching. Handlers call
// it when serving fallback bodies, so requests for names that do not
// exist never occupy cache entries.
func NoStore(c *gin.Context) {
	c.Set(noStoreKey, true)
}

// PageCache serves whole GET responses from the given cache, keyed by
// request path. It runs in front of the content caches with its own
// TTL, so a page may stay up to that long behind a changed file. Hits
// answer If-None-Match with 304; misses run the handler against a
// buffering writer and store the result when it is a 200 not marked
// NoStore.
func PageCache(pages cache.Cache[string, CachedPage], ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.Path
		if page, ok := pages.Get(key); ok {
			servePage(c, page)
			return
		}

		// Miss: buffer the handler's response instead of streaming it,
		// so the ETag can still go out on this first response.
		w := &captureWriter{ResponseWriter: c.Writer, status: http.StatusOK}
		c.Writer = w
		c.Next()
		c.Writer = w.ResponseWriter

		body := w.buf.Bytes()
		if w.status == http.StatusOK && !c.GetBool(noStoreKey) {
			page := CachedPage{
				Status:      w.status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        body,
				ETag:        etagFor(body),
			}
			pages.Set(key, page, ttl)
			c.Header("ETag", page.ETag)
		}
		c.Writer.WriteHeader(w.status)
		_, _ = c.Writer.Write(body)
	}
}

// servePage replays a stored response, short-circuiting to 304 when the
// client already holds the current bytes.
func servePage(c *gin.Context, page CachedPage) {
	c.Header("ETag", page.ETag)
	if match := c.GetHeader("If-None-Match"); match != "" && match == page.ETag {
		c.AbortWithStatus(http.StatusNotModified)
		return
	}
	c.Data(page.Status, page.ContentType, page.Body)
	c.Abort()
}

// etagFor derives a strong validator from the response bytes.
func etagFor(body []byte) string {
	return fmt.Sprintf("\"%x\"", xxhash.Sum64(body))
}

// captureWriter buffers everything a handler writes. Headers still land
// on the real writer; nothing is flushed until PageCache replays the
// buffered body itself.
type captureWriter struct {
	gin.ResponseWriter
	buf    bytes.Buffer
	status int
}

var _ gin.ResponseWriter = (*captureWriter)(nil)

func (w *captureWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
}

// WriteHeaderNow is a no-op; flushing early would fix the status before
// the buffered body and ETag are ready.
func (w *captureWriter) WriteHeaderNow() {}

func (w *captureWriter) Status() int {
	return w.status
}

func (w *captureWriter) Size() int {
	return w.buf.Len()
}
