package follow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArthurDelaporte/Yatube-Back/internal/middleware"
	"github.com/ArthurDelaporte/Yatube-Back/internal/user"
	"github.com/ArthurDelaporte/Yatube-Back/internal/utils"
	"github.com/ArthurDelaporte/Yatube-Back/internal/web"
)

const testSecret = "test-secret"

func newRouter(t *testing.T, repo *Repository, users *user.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tmpl, err := web.Templates()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(middleware.OptionalAuth(users, testSecret))
	h := NewHandler(repo, users)
	r.Match([]string{http.MethodGet, http.MethodPost}, "/profile/:username/follow/", h.Follow)
	r.Match([]string{http.MethodGet, http.MethodPost}, "/profile/:username/unfollow/", h.Unfollow)
	return r
}

func send(t *testing.T, r http.Handler, method, target string, as *user.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if as != nil {
		token, err := utils.IssueToken(testSecret, as.ID, time.Hour)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFollowHandlers(t *testing.T) {
	ctx := context.Background()
	repo, users := newSQLiteRepository(t)
	u := createUsers(t, users, "alice", "bob")
	alice, bob := u[0], u[1]
	r := newRouter(t, repo, users)

	for i := 0; i < 2; i++ {
		w := send(t, r, http.MethodPost, "/profile/alice/follow/", bob)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))
	}
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	for i := 0; i < 2; i++ {
		w := send(t, r, http.MethodGet, "/profile/alice/unfollow/", bob)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))
	}
	exists, err := repo.Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFollowSelf(t *testing.T) {
	ctx := context.Background()
	repo, users := newSQLiteRepository(t)
	alice := createUsers(t, users, "alice")[0]
	r := newRouter(t, repo, users)

	w := send(t, r, http.MethodPost, "/profile/alice/follow/", alice)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFollowErrors(t *testing.T) {
	repo, users := newSQLiteRepository(t)
	bob := createUsers(t, users, "bob")[0]
	r := newRouter(t, repo, users)

	w := send(t, r, http.MethodPost, "/profile/ghost/follow/", bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = send(t, r, http.MethodPost, "/profile/ghost/unfollow/", bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = send(t, r, http.MethodPost, "/profile/bob/follow/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, middleware.LoginURL("/profile/bob/follow/"), w.Header().Get("Location"))
}
