package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is fixed: every token is valid for six hours from issuance.
const TokenTTL = 6 * time.Hour

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Payload is the identity carried inside a token.
type Payload struct {
	Email string `json:"email"`
	ID    string `json:"id"`
	Name  string `json:"name"`
}

type Claims struct {
	Email  string `json:"email"`
	UserID string `json:"id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

func (c *Claims) Payload() Payload {
	return Payload{Email: c.Email, ID: c.UserID, Name: c.Name}
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Manager)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(secret string, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Issue signs an HS256 token for p that expires ttl after now.
func (m *Manager) Issue(p Payload) (string, error) {
	now := m.now().UTC()

	claims := Claims{
		Email:  p.Email,
		UserID: p.ID,
		Name:   p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   p.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks signature, algorithm and expiry. Every failure is reported as ErrInvalidToken;
// the wrapped cause is for logs only.
func (m *Manager) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Enforce HMAC
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
