package middlewares

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal server error"

// ErrorResponder is the terminal fallback: errors attached with c.Error by a
// handler that wrote nothing become a generic 500. The detail goes to the log only.
func ErrorResponder(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"route", routeOf(c),
			"request_id", RequestIDFrom(c),
			"err", c.Errors.String(),
		)

		if c.Writer.Written() {
			return
		}

		abortWithError(c, http.StatusInternalServerError, "internal_error", internalErrorMessage)
	}
}

// Recovery turns a panic into the same generic 500 and logs the value with its stack.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "panic recovered",
			"method", c.Request.Method,
			"route", routeOf(c),
			"request_id", RequestIDFrom(c),
			"panic", fmt.Sprint(recovered),
			"stack", string(debug.Stack()),
		)

		abortWithError(c, http.StatusInternalServerError, "internal_error", internalErrorMessage)
	})
}

// RouteNotFound answers unmatched paths and wrong methods alike.
func RouteNotFound(c *gin.Context) {
	abortWithError(c, http.StatusNotFound, "not_found", "Route not found")
}

func routeOf(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}

	return c.Request.URL.Path
}
