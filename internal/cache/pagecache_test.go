package cache

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCountingRouter(pc *PageCache, status *int) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	calls := 0
	r := gin.New()
	r.GET("/", pc.Middleware(), func(c *gin.Context) {
		calls++
		c.String(*status, "render %d page=%s", calls, c.Query("page"))
	})
	return r, &calls
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestPageCacheServesStaleWithinTTL(t *testing.T) {
	status := http.StatusOK
	pc := NewPageCache(time.Minute)
	r, calls := newCountingRouter(pc, &status)

	first := get(r, "/")
	second := get(r, "/")

	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get("Content-Type"), second.Header().Get("Content-Type"))
	assert.Equal(t, 1, *calls)
}

func TestPageCacheKeyIncludesQuery(t *testing.T) {
	status := http.StatusOK
	pc := NewPageCache(time.Minute)
	r, calls := newCountingRouter(pc, &status)

	get(r, "/?page=1")
	w := get(r, "/?page=2")
	get(r, "/?page=2")

	assert.Equal(t, "render 2 page=2", w.Body.String())
	assert.Equal(t, 2, *calls)
	assert.Equal(t, 2, pc.Len())
}

func TestPageCacheClear(t *testing.T) {
	status := http.StatusOK
	pc := NewPageCache(time.Minute)
	r, calls := newCountingRouter(pc, &status)

	get(r, "/")
	pc.Clear()
	w := get(r, "/")

	assert.Equal(t, "render 2 page=", w.Body.String())
	assert.Equal(t, 2, *calls)
}

func TestPageCacheExpires(t *testing.T) {
	status := http.StatusOK
	pc := NewPageCache(50 * time.Millisecond)
	r, calls := newCountingRouter(pc, &status)

	get(r, "/")
	time.Sleep(80 * time.Millisecond)
	get(r, "/")

	assert.Equal(t, 2, *calls)
}

func TestPageCacheSkipsErrors(t *testing.T) {
	status := http.StatusInternalServerError
	pc := NewPageCache(time.Minute)
	r, calls := newCountingRouter(pc, &status)

	get(r, "/")
	get(r, "/")

	assert.Equal(t, 2, *calls)
	assert.Equal(t, 0, pc.Len(), fmt.Sprintf("cached %d pages", pc.Len()))
}

func TestPageCacheKeyedPerViewer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pc := NewPageCache(time.Minute)
	calls := 0
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-User"); id != "" {
			c.Set("user_id", id)
		}
	})
	r.GET("/", pc.Middleware(), func(c *gin.Context) {
		calls++
		c.String(http.StatusOK, "render %d for %q", calls, c.GetString("user_id"))
	})

	send := func(user string) string {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Body.String()
	}

	anonymous := send("")
	alice := send("alice")
	assert.NotEqual(t, anonymous, alice)
	assert.Equal(t, alice, send("alice"))
	assert.Equal(t, anonymous, send(""))
	assert.Equal(t, 2, calls)
}
