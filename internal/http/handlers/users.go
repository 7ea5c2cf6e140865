package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/cohorthub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserLister interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type UsersHandler struct {
	users UserLister
}

func NewUsersHandler(users UserLister) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) List(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	users, err := h.users.List(cctx)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

func (h *UsersHandler) GetByID(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}
