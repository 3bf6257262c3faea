package post

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArthurDelaporte/Yatube-Back/internal/follow"
	"github.com/ArthurDelaporte/Yatube-Back/internal/group"
	"github.com/ArthurDelaporte/Yatube-Back/internal/logs"
	"github.com/ArthurDelaporte/Yatube-Back/internal/middleware"
	"github.com/ArthurDelaporte/Yatube-Back/internal/monitoring"
	"github.com/ArthurDelaporte/Yatube-Back/internal/pagination"
	"github.com/ArthurDelaporte/Yatube-Back/internal/storage"
	"github.com/ArthurDelaporte/Yatube-Back/internal/user"
	"github.com/ArthurDelaporte/Yatube-Back/internal/web"
)

const mediaFolder = "posts"

type Handler struct {
	posts    *Repository
	groups   *group.Repository
	users    *user.Repository
	follows  *follow.Repository
	media    storage.MediaStore
	pageSize int
}

func NewHandler(posts *Repository, groups *group.Repository, users *user.Repository,
	follows *follow.Repository, media storage.MediaStore, pageSize int) *Handler {
	return &Handler{
		posts:    posts,
		groups:   groups,
		users:    users,
		follows:  follows,
		media:    media,
		pageSize: pageSize,
	}
}

func (h *Handler) paginate(c *gin.Context, src pagination.Source[Post]) (*pagination.Page[Post], bool) {
	page, err := pagination.Paginate(c.Request.Context(), src, c.Query("page"), h.pageSize)
	if err != nil {
		web.ServerError(c, err)
		return nil, false
	}
	return page, true
}

// Index GET /
func (h *Handler) Index(c *gin.Context) {
	page, ok := h.paginate(c, h.posts.All())
	if !ok {
		return
	}
	web.Render(c, http.StatusOK, "index.html", gin.H{"Page": page})
}

// GroupPosts GET /group/:slug/
func (h *Handler) GroupPosts(c *gin.Context) {
	g, err := h.groups.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.lookupFailed(c, err)
		return
	}
	page, ok := h.paginate(c, h.posts.ByGroup(g.ID))
	if !ok {
		return
	}
	web.Render(c, http.StatusOK, "group_list.html", gin.H{"Group": g, "Page": page})
}

// Profile GET /profile/:username/
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()

	author, err := h.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		h.lookupFailed(c, err)
		return
	}
	page, ok := h.paginate(c, h.posts.ByAuthor(author.ID))
	if !ok {
		return
	}
	followers, err := h.follows.CountFollowers(ctx, author.ID)
	if err != nil {
		web.ServerError(c, err)
		return
	}

	viewer := middleware.CurrentUser(c)
	isSelf := viewer != nil && viewer.ID == author.ID
	following := false
	if viewer != nil && !isSelf {
		if following, err = h.follows.Exists(ctx, viewer.ID, author.ID); err != nil {
			web.ServerError(c, err)
			return
		}
	}

	web.Render(c, http.StatusOK, "profile.html", gin.H{
		"Author":         author,
		"Page":           page,
		"PostsCount":     page.Count,
		"FollowersCount": followers,
		"Following":      following,
		"IsSelf":         isSelf,
	})
}

// Detail GET /posts/:id/
func (h *Handler) Detail(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.posts.GetByID(ctx, c.Param("id"))
	if err != nil {
		h.lookupFailed(c, err)
		return
	}
	comments, err := h.posts.Comments(ctx, p.ID)
	if err != nil {
		web.ServerError(c, err)
		return
	}
	authorPosts, err := h.posts.CountByAuthor(ctx, p.AuthorID)
	if err != nil {
		web.ServerError(c, err)
		return
	}

	web.Render(c, http.StatusOK, "post_detail.html", gin.H{
		"Post":             p,
		"Comments":         comments,
		"AuthorPostsCount": authorPosts,
		"Form":             &CommentForm{},
		"CanEdit":          CanEdit(middleware.CurrentUser(c), p) == AccessOK,
	})
}

// Create GET|POST /create/
func (h *Handler) Create(c *gin.Context) {
	route := c.FullPath()
	ctx := c.Request.Context()

	viewer, ok := middleware.RequireLogin(c)
	if !ok {
		return
	}

	if c.Request.Method != http.MethodPost {
		h.renderForm(c, &Form{}, FieldErrors{}, nil)
		return
	}

	form, groupID, img, errs := h.bind(c)
	if len(errs) > 0 {
		logs.LogJSON("INFO", "Invalid post form", map[string]interface{}{
			"route":  route,
			"userID": viewer.ID,
		})
		h.renderForm(c, form, errs, nil)
		return
	}

	p := &Post{
		ID:       uuid.New().String(),
		AuthorID: viewer.ID,
		Text:     form.Text,
		GroupID:  groupID,
	}
	if img != nil {
		if err := h.store(ctx, p, img); err != nil {
			web.ServerError(c, err)
			return
		}
	}

	if err := h.posts.Create(ctx, p); err != nil {
		h.discard(ctx, p.Image)
		web.ServerError(c, err)
		return
	}

	monitoring.PostsCreated.Inc()
	logs.LogJSON("INFO", "Post created", map[string]interface{}{
		"route":  route,
		"userID": viewer.ID,
		"extra":  "post: " + p.ID,
	})
	c.Redirect(http.StatusFound, web.ProfileURL(viewer.Username))
}

// Edit GET|POST /posts/:id/edit/
func (h *Handler) Edit(c *gin.Context) {
	route := c.FullPath()
	ctx := c.Request.Context()

	viewer, ok := middleware.RequireLogin(c)
	if !ok {
		return
	}
	p, err := h.posts.GetByID(ctx, c.Param("id"))
	if err != nil {
		h.lookupFailed(c, err)
		return
	}

	if access := CanEdit(viewer, p); access != AccessOK {
		logs.LogJSON("WARN", "Edit refused", map[string]interface{}{
			"route":  route,
			"userID": viewer.ID,
			"extra":  fmt.Sprintf("post: %s, access: %s", p.ID, access),
		})
		c.Redirect(http.StatusFound, web.PostURL(p.ID))
		return
	}

	if c.Request.Method != http.MethodPost {
		form := &Form{Text: p.Text}
		if p.GroupID != nil {
			form.Group = *p.GroupID
		}
		h.renderForm(c, form, FieldErrors{}, p)
		return
	}

	form, groupID, img, errs := h.bind(c)
	if len(errs) > 0 {
		h.renderForm(c, form, errs, p)
		return
	}

	previousImage := p.Image
	p.Text = form.Text
	p.GroupID = groupID
	switch {
	case img != nil:
		if err := h.store(ctx, p, img); err != nil {
			web.ServerError(c, err)
			return
		}
	case form.ImageClear:
		p.Image, p.ImageURL = "", ""
	}

	if err := h.posts.Update(ctx, p); err != nil {
		if p.Image != previousImage {
			h.discard(ctx, p.Image)
		}
		web.ServerError(c, err)
		return
	}
	if previousImage != "" && p.Image != previousImage {
		h.discard(ctx, previousImage)
	}

	monitoring.PostsEdited.Inc()
	logs.LogJSON("INFO", "Post edited", map[string]interface{}{
		"route":  route,
		"userID": viewer.ID,
		"extra":  "post: " + p.ID,
	})
	c.Redirect(http.StatusFound, web.PostURL(p.ID))
}

// AddComment GET|POST /posts/:id/comment/
// Invalid submissions are dropped without feedback.
func (h *Handler) AddComment(c *gin.Context) {
	route := c.FullPath()
	ctx := c.Request.Context()

	viewer, ok := middleware.RequireLogin(c)
	if !ok {
		return
	}
	p, err := h.posts.GetByID(ctx, c.Param("id"))
	if err != nil {
		h.lookupFailed(c, err)
		return
	}
	detail := web.PostURL(p.ID)

	form, errs := bindCommentForm(c)
	if len(errs) > 0 {
		logs.LogJSON("DEBUG", "Dropped invalid comment", map[string]interface{}{
			"route":  route,
			"userID": viewer.ID,
			"extra":  "post: " + p.ID,
		})
		c.Redirect(http.StatusFound, detail)
		return
	}

	cm := &Comment{PostID: p.ID, AuthorID: viewer.ID, Text: form.Text}
	if err := h.posts.CreateComment(ctx, cm); err != nil {
		web.ServerError(c, err)
		return
	}

	monitoring.CommentsPosted.Inc()
	logs.LogJSON("INFO", "Comment added", map[string]interface{}{
		"route":  route,
		"userID": viewer.ID,
		"extra":  "post: " + p.ID,
	})
	c.Redirect(http.StatusFound, detail)
}

// FollowIndex GET /follow/
func (h *Handler) FollowIndex(c *gin.Context) {
	viewer, ok := middleware.RequireLogin(c)
	if !ok {
		return
	}
	page, ok := h.paginate(c, h.posts.ByFollower(viewer.ID))
	if !ok {
		return
	}
	web.Render(c, http.StatusOK, "follow.html", gin.H{"Page": page})
}

// bind reads the post form, its group choice and its image. Every problem
// ends up in the returned FieldErrors.
func (h *Handler) bind(c *gin.Context) (*Form, *string, *image, FieldErrors) {
	form, errs := bindPostForm(c)

	var groupID *string
	if form.Group != "" {
		g, err := h.groups.GetByID(c.Request.Context(), form.Group)
		switch {
		case err == nil:
			groupID = &g.ID
		case errors.Is(err, group.ErrNotFound):
			errs["group"] = msgInvalidGroup
		default:
			logs.LogJSON("ERROR", "Group lookup failed", map[string]interface{}{
				"error":  err.Error(),
				"route":  c.FullPath(),
				"userID": c.GetString("user_id"),
				"extra":  "group: " + form.Group,
			})
			errs["__all__"] = msgInvalidForm
		}
	}

	img, err := readImage(c)
	if err != nil {
		errs["image"] = err.Error()
	}
	return form, groupID, img, errs
}

func (h *Handler) renderForm(c *gin.Context, form *Form, errs FieldErrors, p *Post) {
	groups, err := h.groups.List(c.Request.Context())
	if err != nil {
		web.ServerError(c, err)
		return
	}
	action := "/create/"
	if p != nil {
		action = web.EditURL(p.ID)
	}
	web.Render(c, http.StatusOK, "create_post.html", gin.H{
		"Form":   form,
		"Errors": errs,
		"Groups": groups,
		"Post":   p,
		"IsEdit": p != nil,
		"Action": action,
	})
}

func (h *Handler) store(ctx context.Context, p *Post, img *image) error {
	filename := fmt.Sprintf("post_%s_%s%s", p.ID, uuid.New().String()[:8], img.ext)
	key, err := h.media.Upload(ctx, img.reader(), filename, img.contentType, mediaFolder)
	if err != nil {
		return err
	}
	p.Image = key
	p.ImageURL = h.media.URL(key)
	return nil
}

// discard removes a stored image; failures are only logged.
func (h *Handler) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.media.Delete(ctx, key); err != nil {
		logs.LogJSON("WARN", "Could not delete media", map[string]interface{}{
			"error": err.Error(),
			"extra": key,
		})
	}
}

func (h *Handler) lookupFailed(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) || errors.Is(err, group.ErrNotFound) || errors.Is(err, user.ErrNotFound) {
		web.NotFound(c)
		return
	}
	web.ServerError(c, err)
}
