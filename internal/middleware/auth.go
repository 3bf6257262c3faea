package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ArthurDelaporte/Yatube-Back/internal/logs"
	"github.com/ArthurDelaporte/Yatube-Back/internal/user"
	"github.com/ArthurDelaporte/Yatube-Back/internal/utils"
)

const (
	TokenCookie = "access_token"
	LoginPath   = "/auth/login/"

	userKey = "user"
)

// OptionalAuth resolves the caller from the access_token cookie or a Bearer
// header. Missing or invalid credentials leave the request anonymous.
func OptionalAuth(users *user.Repository, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			tokenStr, _ = c.Cookie(TokenCookie)
		}
		if tokenStr == "" {
			c.Next()
			return
		}

		userID, err := utils.ParseToken(secret, tokenStr)
		if err != nil {
			logs.LogJSON("DEBUG", "Ignoring invalid token", map[string]interface{}{
				"route": c.FullPath(),
				"error": err.Error(),
			})
			c.Next()
			return
		}

		u, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			logs.LogJSON("WARN", "Token for unknown user", map[string]interface{}{
				"route":  c.FullPath(),
				"userID": userID,
			})
			c.Next()
			return
		}

		c.Set("user_id", u.ID)
		c.Set(userKey, u)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// CurrentUser returns the authenticated caller, or nil.
func CurrentUser(c *gin.Context) *user.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*user.User)
	return u
}

// RequireLogin returns the caller, or redirects to the login page with a
// next parameter and reports false.
func RequireLogin(c *gin.Context) (*user.User, bool) {
	if u := CurrentUser(c); u != nil {
		return u, true
	}
	logs.LogJSON("INFO", "Anonymous request redirected to login", map[string]interface{}{
		"route": c.FullPath(),
	})
	c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
	c.Abort()
	return nil, false
}

func LoginURL(next string) string {
	return LoginPath + "?next=" + url.QueryEscape(next)
}
