package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/ArthurDelaporte/Yatube-Back/internal/admin"
	"github.com/ArthurDelaporte/Yatube-Back/internal/auth"
	"github.com/ArthurDelaporte/Yatube-Back/internal/cache"
	"github.com/ArthurDelaporte/Yatube-Back/internal/config"
	"github.com/ArthurDelaporte/Yatube-Back/internal/follow"
	"github.com/ArthurDelaporte/Yatube-Back/internal/group"
	"github.com/ArthurDelaporte/Yatube-Back/internal/logs"
	"github.com/ArthurDelaporte/Yatube-Back/internal/middleware"
	"github.com/ArthurDelaporte/Yatube-Back/internal/monitoring"
	"github.com/ArthurDelaporte/Yatube-Back/internal/post"
	"github.com/ArthurDelaporte/Yatube-Back/internal/storage"
	"github.com/ArthurDelaporte/Yatube-Back/internal/user"
	"github.com/ArthurDelaporte/Yatube-Back/internal/web"
)

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Media  storage.MediaStore
	Pages  *cache.PageCache
}

// NewMediaStore picks the upload backend named by MEDIA_BACKEND.
func NewMediaStore(ctx context.Context, cfg *config.Config) (storage.MediaStore, error) {
	switch cfg.MediaBackend {
	case "s3":
		return storage.NewS3Store(ctx, cfg.AWSBucket, cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey)
	case "local", "":
		return storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL), nil
	default:
		return nil, fmt.Errorf("unsupported media backend %q", cfg.MediaBackend)
	}
}

func SetupRouter(d Deps) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	users := user.NewRepository(d.DB)
	groups := group.NewRepository(d.DB)
	posts := post.NewRepository(d.DB)
	follows := follow.NewRepository(d.DB)

	postHandler := post.NewHandler(posts, groups, users, follows, d.Media, d.Config.CountPost)
	followHandler := follow.NewHandler(follows, users)
	authHandler := auth.NewHandler(users, d.Config.JWTSecret, d.Config.CookieSecure)
	adminHandler := admin.NewHandler(users, groups, posts, follows, d.Pages)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery())
	r.Use(monitoring.Instrument())
	r.Use(logs.RequestLogger())
	r.Use(middleware.OptionalAuth(users, d.Config.JWTSecret))

	getPost := []string{http.MethodGet, http.MethodPost}

	// Feeds
	r.GET("/", d.Pages.Middleware(), postHandler.Index)
	r.GET("/group/:slug/", postHandler.GroupPosts)
	r.GET("/profile/:username/", postHandler.Profile)
	r.GET("/follow/", postHandler.FollowIndex)

	// Posts
	r.GET("/posts/:id/", postHandler.Detail)
	r.Match(getPost, "/create/", postHandler.Create)
	r.Match(getPost, "/posts/:id/edit/", postHandler.Edit)
	r.Match(getPost, "/posts/:id/comment/", postHandler.AddComment)

	// Follows
	r.Match(getPost, "/profile/:username/follow/", followHandler.Follow)
	r.Match(getPost, "/profile/:username/unfollow/", followHandler.Unfollow)

	// Auth
	r.Match(getPost, "/auth/signup/", authHandler.Signup)
	r.Match(getPost, "/auth/login/", authHandler.Login)
	r.Match(getPost, "/auth/logout/", authHandler.Logout)

	// Admin
	adminGroup := r.Group("/admin", middleware.AdminOnly(users))
	{
		adminGroup.POST("/groups/", adminHandler.CreateGroup)
		adminGroup.POST("/cache/clear/", adminHandler.ClearCache)
		adminGroup.GET("/stats/", adminHandler.GetDashboardStats)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if _, ok := d.Media.(*storage.LocalStore); ok {
		r.Static(d.Config.MediaURL, d.Config.MediaRoot)
	}
	r.NoRoute(web.NotFound)

	return r, nil
}
