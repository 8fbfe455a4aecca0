// Package auth mints and verifies the HS256 session tokens the websocket
// handshake requires.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the token payload: the user id as subject plus the display
// name, so the game can label players without a profile lookup.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service signs and parses tokens with a shared secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token service. The default token lifetime is a
// week, long enough to outlive any match.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret), ttl: 7 * 24 * time.Hour}
}

// Mint issues a signed token for the user.
func (s *Service) Mint(userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the user id and display name.
func (s *Service) Verify(tokenString string) (uuid.UUID, string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, "", fmt.Errorf("invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("bad subject: %w", err)
	}
	return userID, claims.Username, nil
}
