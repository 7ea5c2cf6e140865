package middlewares

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx.Writer.Header().Set(requestIDHeader, id)
		ctx.Set(CtxRequestID, id)

		ctx.Next()
	}
}

func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		method := ctx.Request.Method

		ctx.Next()

		attrs := []any{
			"method", method,
			"route", routeOf(ctx),
			"status", ctx.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", RequestIDFrom(ctx),
		}

		if uid, ok := UserIDFromContext(ctx); ok {
			attrs = append(attrs, "user_id", uid)
		}

		log.InfoContext(ctx.Request.Context(), "http_request", attrs...)
	}
}
