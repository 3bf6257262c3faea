// Package web holds the HTML templates and the helpers handlers use to render them.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArthurDelaporte/Yatube-Back/internal/logs"
	"github.com/ArthurDelaporte/Yatube-Back/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses every embedded page and partial into one set.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
}

var funcMap = template.FuncMap{
	"profileURL":   ProfileURL,
	"postURL":      PostURL,
	"groupURL":     GroupURL,
	"editURL":      EditURL,
	"commentURL":   CommentURL,
	"followURL":    FollowURL,
	"unfollowURL":  UnfollowURL,
	"linebreaksbr": linebreaksbr,
	"date":         formatDate,
	"truncate":     truncate,
}

func ProfileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func PostURL(id string) string {
	return "/posts/" + url.PathEscape(id) + "/"
}

func GroupURL(slug string) string {
	return "/group/" + url.PathEscape(slug) + "/"
}

func EditURL(id string) string {
	return PostURL(id) + "edit/"
}

func CommentURL(id string) string {
	return PostURL(id) + "comment/"
}

func FollowURL(username string) string {
	return ProfileURL(username) + "follow/"
}

func UnfollowURL(username string) string {
	return ProfileURL(username) + "unfollow/"
}

func linebreaksbr(s string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func formatDate(t time.Time) string {
	return t.Format("2 January 2006")
}

func truncate(n int, s string) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// Render executes the named page with the caller added as CurrentUser.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CurrentUser"] = middleware.CurrentUser(c)
	c.HTML(status, name, data)
}

func NotFound(c *gin.Context) {
	logs.LogJSON("WARN", "Not found", map[string]interface{}{
		"route": c.FullPath(),
		"extra": c.Request.URL.Path,
	})
	Render(c, http.StatusNotFound, "404.html", gin.H{"Path": c.Request.URL.Path})
	c.Abort()
}

func ServerError(c *gin.Context, err error) {
	logs.LogJSON("ERROR", "Request failed", map[string]interface{}{
		"error":  err.Error(),
		"route":  c.FullPath(),
		"userID": c.GetString("user_id"),
	})
	Render(c, http.StatusInternalServerError, "500.html", nil)
	c.Abort()
}
