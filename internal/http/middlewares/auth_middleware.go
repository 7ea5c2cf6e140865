package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/cohorthub/internal/actorctx"
	"github.com/geocoder89/cohorthub/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
}

func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "missing token")
			return
		}

		claims, err := m.tokens.Verify(raw)
		if err != nil {
			// never tell the caller whether it was the signature, the expiry or the shape
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		c.Set(ctxClaimsKey, claims)
		c.Request = c.Request.WithContext(actorctx.WithClaims(c.Request.Context(), claims))

		c.Next()
	}
}

// bearerToken accepts "Bearer <token>" with a case-insensitive scheme.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	return parts[1], true
}

// ClaimsFromContext returns the claims stored by RequireAuth.
func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}

	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	claims, ok := ClaimsFromContext(c)
	if !ok || claims.UserID == "" {
		return "", false
	}

	return claims.UserID, true
}
