// Package cache holds the short-lived full-page cache served in front of the home feed.
package cache

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ArthurDelaporte/Yatube-Back/internal/logs"
)

type cachedPage struct {
	status      int
	contentType string
	body        []byte
}

// PageCache stores rendered responses keyed by request URI for a fixed TTL.
type PageCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

func NewPageCache(ttl time.Duration) *PageCache {
	return &PageCache{
		store: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (p *PageCache) TTL() time.Duration {
	return p.ttl
}

// Clear drops every cached page.
func (p *PageCache) Clear() {
	p.store.Flush()
}

// Len counts cached pages, including expired ones not yet swept.
func (p *PageCache) Len() int {
	return p.store.ItemCount()
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// cacheKey is the request URI, suffixed with the viewer's ID when logged in.
func cacheKey(c *gin.Context) string {
	uri := c.Request.URL.RequestURI()
	if userID := c.GetString("user_id"); userID != "" {
		return uri + "#" + userID
	}
	return uri
}

// Middleware serves GET requests from the cache and stores successful renders.
// Concurrent misses on the same key all render; the last one stored wins.
func (p *PageCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c)
		if v, ok := p.store.Get(key); ok {
			page := v.(*cachedPage)
			c.Data(page.status, page.contentType, page.body)
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder
		c.Next()

		if recorder.Status() != http.StatusOK {
			return
		}
		p.store.Set(key, &cachedPage{
			status:      recorder.Status(),
			contentType: recorder.Header().Get("Content-Type"),
			body:        recorder.body.Bytes(),
		}, gocache.DefaultExpiration)
		logs.LogJSON("DEBUG", "Page cached", map[string]interface{}{
			"route": c.FullPath(),
			"extra": key,
		})
	}
}
