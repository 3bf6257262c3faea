package logs

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one entry per request once the handler chain returns.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := "INFO"
		switch {
		case status >= 500:
			level = "ERROR"
		case status >= 400:
			level = "WARN"
		}

		fields := map[string]interface{}{
			"route":   c.FullPath(),
			"userID":  c.GetString("user_id"),
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": time.Since(start).String(),
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
		}
		LogJSON(level, "Request handled", fields)
	}
}
