package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/job-portal/internal/config"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT(secret string, now time.Time) *JWTService {
	s := NewJWTService(&config.JWTConfig{Secret: secret, ExpirationHours: 24})
	s.now = func() time.Time { return now }
	return s
}

func TestJWTService_RoundTrip(t *testing.T) {
	s := newTestJWT("test-secret", time.Now())
	p := identity.Principal{UserID: 7, Email: "dev@example.test", Role: types.RoleCandidate}

	token, err := s.IssueToken(p)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	got, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestJWTService_Expired(t *testing.T) {
	issued := time.Now().Add(-48 * time.Hour)
	token, err := newTestJWT("test-secret", issued).IssueToken(identity.Principal{UserID: 1, Email: "a@b.test", Role: types.RoleAdmin})
	require.NoError(t, err)

	_, err = newTestJWT("test-secret", time.Now()).ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, err := newTestJWT("one", time.Now()).IssueToken(identity.Principal{UserID: 1, Email: "a@b.test", Role: types.RoleEmployer})
	require.NoError(t, err)

	_, err = newTestJWT("two", time.Now()).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsUnsignedToken(t *testing.T) {
	claims := &Claims{UserID: 1, Email: "a@b.test", Role: types.RoleAdmin}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWT("test-secret", time.Now()).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsUnknownRole(t *testing.T) {
	s := newTestJWT("test-secret", time.Now())
	token, err := s.IssueToken(identity.Principal{UserID: 1, Email: "a@b.test", Role: types.Role("root")})
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_Empty(t *testing.T) {
	_, err := newTestJWT("test-secret", time.Now()).ValidateToken("")
	assert.Error(t, err)
}
