package handlers

import (
	"net/http"

	"github.com/geocoder89/cohorthub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func RespondError(ctx *gin.Context, status int, code, message string, details any) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: middlewares.RequestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details any) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

// RespondConflict uses 400 rather than 409 to keep the existing client contract.
func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusBadRequest, code, message, nil)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

// fail hands err to the ErrorResponder, which answers with a generic 500.
func fail(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	ctx.Abort()
}
