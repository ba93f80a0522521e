package auth

import (
	"errors"
	"fmt"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenManager validates JWT tokens issued by the identity front-end sharing
// our signing secret. Token issuance lives on their side.
type TokenManager struct {
	secret string
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: secret}
}

// ValidateToken parses and validates a token string, returning its claims
func (tm *TokenManager) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	if claims.UserID == "" || claims.Username == "" {
		return nil, errors.New("token missing identity claims")
	}

	return claims, nil
}
