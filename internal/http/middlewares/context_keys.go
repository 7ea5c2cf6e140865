package middlewares

import "github.com/gin-gonic/gin"

const (
	CtxRequestID = "request_id"
	ctxClaimsKey = "auth.claims"
)

// RequestIDFrom returns the id set by RequestID, falling back to the inbound header.
func RequestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(CtxRequestID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	return c.GetHeader(requestIDHeader)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   message,
			"requestId": RequestIDFrom(c),
		},
	})
}
