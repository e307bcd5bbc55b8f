package server

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/job-portal/internal/config"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/types"
)

// Claims carries the principal inside an access token.
type Claims struct {
	UserID int64      `json:"user_id"`
	Email  string     `json:"email"`
	Role   types.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal returns the caller identified by the claims.
func (c *Claims) Principal() identity.Principal {
	return identity.Principal{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

// JWTService signs and verifies HS256 access tokens.
type JWTService struct {
	config *config.JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given configuration.
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{config: cfg, now: time.Now}
}

// IssueToken signs a token for p.
func (s *JWTService) IssueToken(p identity.Principal) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: p.UserID,
		Email:  p.Email,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.config.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// ValidateToken verifies a token and returns the principal it carries.
func (s *JWTService) ValidateToken(tokenString string) (identity.Principal, error) {
	if tokenString == "" {
		return identity.Principal{}, errors.New("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Newf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return identity.Principal{}, errors.Wrap(err, "token expired")
	case errors.Is(err, jwt.ErrTokenMalformed):
		return identity.Principal{}, errors.Wrap(err, "malformed token")
	case err != nil:
		return identity.Principal{}, errors.Wrap(err, "failed to parse token")
	case !token.Valid:
		return identity.Principal{}, errors.New("token is not valid")
	}

	if _, ok := types.ParseRole(string(claims.Role)); !ok || claims.Email == "" {
		return identity.Principal{}, errors.New("token carries no usable principal")
	}
	return claims.Principal(), nil
}
