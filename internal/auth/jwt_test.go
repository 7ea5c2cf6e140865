package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(clock *fakeClock) *Manager {
	return NewManager("test-secret-key", TokenTTL, WithClock(clock.Now))
}

var alice = Payload{Email: "a@b.com", ID: "7c1c9d3e-4a3b-4a7e-9a43-3c64e0f6a001", Name: "A"}

func TestIssueVerify_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(clock)

	token, err := m.Issue(alice)
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")))

	claims, err := m.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, alice, claims.Payload())
	assert.True(t, claims.ExpiresAt.Time.Equal(clock.t.Add(6*time.Hour)))
	assert.True(t, claims.IssuedAt.Time.Equal(clock.t))
}

func TestVerify_ExpiryWindow(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: issuedAt}
	m := newTestManager(clock)

	token, err := m.Issue(alice)
	require.NoError(t, err)

	clock.t = issuedAt.Add(time.Second)
	_, err = m.Verify(token)
	require.NoError(t, err, "accepted one second after issuance")

	clock.t = issuedAt.Add(6*time.Hour - time.Second)
	_, err = m.Verify(token)
	require.NoError(t, err, "accepted just before expiry")

	clock.t = issuedAt.Add(6*time.Hour + time.Second)
	_, err = m.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken, "rejected after expiry")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_Rejections(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestManager(clock)

	good, err := m.Issue(alice)
	require.NoError(t, err)

	otherSecret, err := NewManager("another-secret", TokenTTL, WithClock(clock.Now)).Issue(alice)
	require.NoError(t, err)

	// same claims signed with a different HMAC size must not pass the HS256 pin
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Email:            alice.Email,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour))},
	}).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: alice.Email}).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{name: "malformed", token: "not.a.jwt"},
		{name: "garbage", token: "garbage"},
		{name: "wrong_secret", token: otherSecret},
		{name: "wrong_alg", token: hs512},
		{name: "alg_none", token: noneToken(t)},
		{name: "missing_exp", token: noExp},
		{name: "tampered_payload", token: tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerify_Empty(t *testing.T) {
	m := NewManager("s", TokenTTL)

	_, err := m.Verify("")
	require.ErrorIs(t, err, ErrMissingToken)
}

func noneToken(t *testing.T) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Email:            alice.Email,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	return raw
}
