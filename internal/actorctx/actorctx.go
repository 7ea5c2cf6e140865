package actorctx

import (
	"context"

	"github.com/geocoder89/cohorthub/internal/auth"
)

type claimsKey struct{}

// WithClaims attaches verified token claims to ctx for code below the HTTP layer.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)

	return c, ok && c != nil
}

func UserIDFrom(ctx context.Context) (string, bool) {
	c, ok := ClaimsFrom(ctx)
	if !ok || c.UserID == "" {
		return "", false
	}

	return c.UserID, true
}
