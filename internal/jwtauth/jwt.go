// Package jwtauth issues and validates the bearer tokens the HTTP middleware
// consumes. Tokens carry the user id as subject plus a role claim; role checks
// happen in middleware, not here.
package jwtauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"donorlift/internal/platform/middleware"
)

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and validates HMAC tokens. It implements
// middleware.JWTValidator.
type Manager struct {
	signingKey []byte
	ttl        time.Duration
}

func NewManager(signingKey string, ttl time.Duration) *Manager {
	return &Manager{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue creates a signed token for the given user and role.
func (m *Manager) Issue(userID, role string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token string.
func (m *Manager) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(tokenString, &parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &middleware.JWTClaims{
		UserID: parsed.Subject,
		Role:   parsed.Role,
	}, nil
}
