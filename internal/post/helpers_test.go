package post

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ArthurDelaporte/Yatube-Back/internal/database"
	"github.com/ArthurDelaporte/Yatube-Back/internal/follow"
	"github.com/ArthurDelaporte/Yatube-Back/internal/group"
	"github.com/ArthurDelaporte/Yatube-Back/internal/middleware"
	"github.com/ArthurDelaporte/Yatube-Back/internal/user"
	"github.com/ArthurDelaporte/Yatube-Back/internal/utils"
	"github.com/ArthurDelaporte/Yatube-Back/internal/web"
)

const testSecret = "test-secret"

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

// memoryStore keeps uploads in a map.
type memoryStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: map[string][]byte{}}
}

func (m *memoryStore) Upload(ctx context.Context, file io.Reader, filename, contentType, folder string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := folder + "/" + filename
	m.files[key] = data
	return key, nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryStore) URL(key string) string {
	return "/media/" + key
}

type testEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	posts   *Repository
	users   *user.Repository
	groups  *group.Repository
	follows *follow.Repository
	media   *memoryStore
}

func newTestDB(t *testing.T) *gorm.DB {
	db, err := database.Connect("sqlite", filepath.Join(t.TempDir(), "test.db"), "silent")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}, &group.Group{}, &Post{}, &Comment{}, &follow.Follow{}))
	return db
}

func newTestEnv(t *testing.T, pageSize int) *testEnv {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	env := &testEnv{
		db:      db,
		posts:   NewRepository(db),
		users:   user.NewRepository(db),
		groups:  group.NewRepository(db),
		follows: follow.NewRepository(db),
		media:   newMemoryStore(),
	}

	tmpl, err := web.Templates()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(middleware.OptionalAuth(env.users, testSecret))

	h := NewHandler(env.posts, env.groups, env.users, env.follows, env.media, pageSize)
	r.GET("/", h.Index)
	r.GET("/group/:slug/", h.GroupPosts)
	r.GET("/profile/:username/", h.Profile)
	r.GET("/follow/", h.FollowIndex)
	r.GET("/posts/:id/", h.Detail)
	r.Match([]string{http.MethodGet, http.MethodPost}, "/create/", h.Create)
	r.Match([]string{http.MethodGet, http.MethodPost}, "/posts/:id/edit/", h.Edit)
	r.Match([]string{http.MethodGet, http.MethodPost}, "/posts/:id/comment/", h.AddComment)
	env.router = r

	return env
}

func (e *testEnv) createUser(t *testing.T, username string) *user.User {
	u := &user.User{Username: username}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) createGroup(t *testing.T, title, slug string) *group.Group {
	g := &group.Group{Title: title, Slug: slug, Description: "about " + title}
	require.NoError(t, e.groups.Create(context.Background(), g))
	return g
}

func (e *testEnv) createPost(t *testing.T, author *user.User, text string, g *group.Group, at time.Time) *Post {
	p := &Post{AuthorID: author.ID, Text: text, CreatedAt: at}
	if g != nil {
		p.GroupID = &g.ID
	}
	require.NoError(t, e.posts.Create(context.Background(), p))
	return p
}

func (e *testEnv) reload(t *testing.T, id string) *Post {
	p, err := e.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func authenticate(t *testing.T, req *http.Request, u *user.User) {
	if u == nil {
		return
	}
	token, err := utils.IssueToken(testSecret, u.ID, time.Hour)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
}

func (e *testEnv) get(t *testing.T, target string, as *user.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	authenticate(t, req, as)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postForm(t *testing.T, target string, form url.Values, as *user.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	authenticate(t, req, as)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postMultipart(t *testing.T, target string, fields map[string]string, filename string, content []byte, as *user.User) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	authenticate(t, req, as)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
