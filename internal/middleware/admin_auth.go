package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArthurDelaporte/Yatube-Back/internal/logs"
	"github.com/ArthurDelaporte/Yatube-Back/internal/user"
)

// AdminOnly guards the JSON admin API. The admin flag is re-read from the
// database on every request. It must run after OptionalAuth.
func AdminOnly(users *user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := map[string]interface{}{"route": c.FullPath()}

		viewer := CurrentUser(c)
		if viewer == nil {
			logs.LogJSON("WARN", "Anonymous request on admin route", fields)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		fields["userID"] = viewer.ID

		isAdmin, err := users.IsAdmin(c.Request.Context(), viewer.ID)
		switch {
		case err != nil:
			fields["error"] = err.Error()
			logs.LogJSON("ERROR", "Admin check failed", fields)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "admin check failed"})
		case !isAdmin:
			logs.LogJSON("WARN", "Non-admin blocked from admin route", fields)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access only"})
		default:
			c.Next()
		}
	}
}
