package follow

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArthurDelaporte/Yatube-Back/internal/logs"
	"github.com/ArthurDelaporte/Yatube-Back/internal/middleware"
	"github.com/ArthurDelaporte/Yatube-Back/internal/monitoring"
	"github.com/ArthurDelaporte/Yatube-Back/internal/user"
	"github.com/ArthurDelaporte/Yatube-Back/internal/web"
)

type Handler struct {
	follows *Repository
	users   *user.Repository
}

func NewHandler(follows *Repository, users *user.Repository) *Handler {
	return &Handler{follows: follows, users: users}
}

// target resolves :username, rendering the not-found page when it is unknown.
func (h *Handler) target(c *gin.Context) (*user.User, bool) {
	author, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			web.NotFound(c)
		} else {
			web.ServerError(c, err)
		}
		return nil, false
	}
	return author, true
}

// Follow GET|POST /profile/:username/follow/
func (h *Handler) Follow(c *gin.Context) {
	route := c.FullPath()

	viewer, ok := middleware.RequireLogin(c)
	if !ok {
		return
	}
	author, ok := h.target(c)
	if !ok {
		return
	}
	profile := web.ProfileURL(author.Username)

	if viewer.ID == author.ID {
		logs.LogJSON("WARN", "Impossible to follow yourself", map[string]interface{}{
			"route":  route,
			"userID": viewer.ID,
		})
		c.Redirect(http.StatusFound, profile)
		return
	}

	created, err := h.follows.Ensure(c.Request.Context(), viewer.ID, author.ID)
	if err != nil {
		web.ServerError(c, err)
		return
	}
	if created {
		monitoring.FollowChanges.WithLabelValues("follow").Inc()
		logs.LogJSON("INFO", "Followed user", map[string]interface{}{
			"route":  route,
			"userID": viewer.ID,
			"extra":  "author: " + author.Username,
		})
	}
	c.Redirect(http.StatusFound, profile)
}

// Unfollow GET|POST /profile/:username/unfollow/
func (h *Handler) Unfollow(c *gin.Context) {
	route := c.FullPath()

	viewer, ok := middleware.RequireLogin(c)
	if !ok {
		return
	}
	author, ok := h.target(c)
	if !ok {
		return
	}

	removed, err := h.follows.Delete(c.Request.Context(), viewer.ID, author.ID)
	if err != nil {
		web.ServerError(c, err)
		return
	}
	if removed {
		monitoring.FollowChanges.WithLabelValues("unfollow").Inc()
		logs.LogJSON("INFO", "User unfollow", map[string]interface{}{
			"route":  route,
			"userID": viewer.ID,
			"extra":  "author: " + author.Username,
		})
	}
	c.Redirect(http.StatusFound, web.ProfileURL(author.Username))
}
