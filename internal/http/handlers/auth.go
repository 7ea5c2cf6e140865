package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/cohorthub/internal/auth"
	"github.com/geocoder89/cohorthub/internal/domain/user"
	"github.com/geocoder89/cohorthub/internal/http/middlewares"
	"github.com/geocoder89/cohorthub/internal/observability"
	"github.com/geocoder89/cohorthub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, passwordHash, name string) (user.User, error)
}

type TokenIssuer interface {
	Issue(p auth.Payload) (string, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	tokens     TokenIssuer
	prom       *observability.Prom
}

func NewAuthHandler(users UserReader, userWriter UserWriter, tokens TokenIssuer, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		tokens:     tokens,
		prom:       prom,
	}
}

// Fields are checked by security.ValidateSignup, not binding tags, so the
// client gets one message in a fixed order.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest
	if !BindJSON(ctx, &req) {
		return
	}

	var verr *security.ValidationError
	if err := security.ValidateSignup(req.Email, req.Password, req.Name); errors.As(err, &verr) {
		h.prom.ObserveAuth("signup", "invalid")
		RespondBadRequest(ctx, verr.Message, nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	// early answer for the common case; Create below is the real guard
	_, err := h.users.GetByEmail(cctx, req.Email)
	switch {
	case err == nil:
		h.prom.ObserveAuth("signup", "conflict")
		RespondConflict(ctx, "user_exists", "User already exists")
		return
	case !errors.Is(err, user.ErrNotFound):
		fail(ctx, err)
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			RespondBadRequest(ctx, "Password must be at most 72 bytes.", nil)
			return
		}
		fail(ctx, err)
		return
	}

	u, err := h.userWriter.Create(cctx, req.Email, hash, req.Name)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			h.prom.ObserveAuth("signup", "conflict")
			RespondConflict(ctx, "user_exists", "User already exists")
			return
		}
		fail(ctx, err)
		return
	}

	h.prom.ObserveAuth("signup", "ok")
	ctx.JSON(http.StatusCreated, gin.H{"user": u.Profile()})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		RespondBadRequest(ctx, "You must provide an email and password", nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			h.prom.ObserveAuth("login", "unknown_user")
			RespondError(ctx, http.StatusBadRequest, "user_not_found", "User doesn't exist", nil)
			return
		}
		fail(ctx, err)
		return
	}

	if !security.VerifyPassword(found.PasswordHash, req.Password) {
		h.prom.ObserveAuth("login", "bad_password")
		RespondUnauthorized(ctx, "invalid_credentials", "incorrect password")
		return
	}

	token, err := h.tokens.Issue(auth.Payload{Email: found.Email, ID: found.ID, Name: found.Name})
	if err != nil {
		fail(ctx, err)
		return
	}

	h.prom.ObserveAuth("login", "ok")
	ctx.JSON(http.StatusOK, gin.H{"authToken": token})
}

// Verify echoes the decoded token, which RequireAuth already checked.
func (h *AuthHandler) Verify(ctx *gin.Context) {
	claims, ok := middlewares.ClaimsFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "invalid token")
		return
	}

	ctx.JSON(http.StatusOK, claims)
}
