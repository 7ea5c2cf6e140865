package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects write requests that carry a body in anything but JSON.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.Request.ContentLength == 0 {
				break
			}

			// allow "application/json; charset=utf-8"
			ct := strings.ToLower(c.GetHeader("Content-Type"))
			if !strings.HasPrefix(ct, "application/json") {
				abortWithError(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json")
				return
			}
		}
		c.Next()
	}
}
