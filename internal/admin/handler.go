package admin

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArthurDelaporte/Yatube-Back/internal/cache"
	"github.com/ArthurDelaporte/Yatube-Back/internal/follow"
	"github.com/ArthurDelaporte/Yatube-Back/internal/group"
	"github.com/ArthurDelaporte/Yatube-Back/internal/logs"
	"github.com/ArthurDelaporte/Yatube-Back/internal/post"
	"github.com/ArthurDelaporte/Yatube-Back/internal/user"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type Handler struct {
	users   *user.Repository
	groups  *group.Repository
	posts   *post.Repository
	follows *follow.Repository
	pages   *cache.PageCache
}

func NewHandler(users *user.Repository, groups *group.Repository, posts *post.Repository,
	follows *follow.Repository, pages *cache.PageCache) *Handler {
	return &Handler{users: users, groups: groups, posts: posts, follows: follows, pages: pages}
}

type groupInput struct {
	Title       string `json:"title" binding:"required,max=200"`
	Slug        string `json:"slug" binding:"required,max=50"`
	Description string `json:"description"`
}

// CreateGroup POST /admin/groups/
func (h *Handler) CreateGroup(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	var input groupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	input.Slug = strings.TrimSpace(input.Slug)
	if !slugPattern.MatchString(input.Slug) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug may only contain letters, numbers, hyphens and underscores"})
		return
	}

	if _, err := h.groups.GetBySlug(ctx, input.Slug); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "slug already used"})
		logs.LogJSON("WARN", "Group slug already used", map[string]interface{}{
			"route":  route,
			"userID": userID,
			"extra":  input.Slug,
		})
		return
	}

	g := &group.Group{
		Title:       strings.TrimSpace(input.Title),
		Slug:        input.Slug,
		Description: input.Description,
	}
	if err := h.groups.Create(ctx, g); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
		logs.LogJSON("ERROR", "Error creating group", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"group": g})
	logs.LogJSON("INFO", "Group created", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  g.Slug,
	})
}

// ClearCache POST /admin/cache/clear/
func (h *Handler) ClearCache(c *gin.Context) {
	cleared := h.pages.Len()
	h.pages.Clear()

	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
	logs.LogJSON("INFO", "Page cache cleared", map[string]interface{}{
		"route":  c.FullPath(),
		"userID": c.GetString("user_id"),
	})
}

// GetDashboardStats GET /admin/stats/
func (h *Handler) GetDashboardStats(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	startDate := time.Now().AddDate(0, 0, -30)
	endDate := time.Now()
	until := endDate
	var err error

	if s := c.Query("start_date"); s != "" {
		if startDate, err = time.Parse("2006-01-02", s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
			return
		}
	}
	if s := c.Query("end_date"); s != "" {
		if endDate, err = time.Parse("2006-01-02", s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
			return
		}
		until = endDate.AddDate(0, 0, 1)
	}

	counters := []struct {
		name  string
		count func(context.Context) (int64, error)
	}{
		{"total_users", h.users.Count},
		{"total_groups", h.groups.Count},
		{"total_posts", h.posts.Count},
		{"total_comments", h.posts.CountComments},
		{"total_follows", h.follows.Count},
		{"posts_in_range", func(ctx context.Context) (int64, error) {
			return h.posts.CountCreatedBetween(ctx, startDate, until)
		}},
	}

	stats := gin.H{}
	for _, counter := range counters {
		n, err := counter.count(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
			logs.LogJSON("ERROR", "Error computing admin stats", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": userID,
				"extra":  counter.name,
			})
			return
		}
		stats[counter.name] = n
	}
	stats["cached_pages"] = h.pages.Len()
	stats["date_range"] = gin.H{
		"start": startDate.Format("2006-01-02"),
		"end":   endDate.Format("2006-01-02"),
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
	logs.LogJSON("INFO", "Admin stats retrieved successfully", map[string]interface{}{
		"route":  route,
		"userID": userID,
	})
}
