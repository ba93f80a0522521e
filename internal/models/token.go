package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims are the JWT claims minted by the identity front-end. This
// service only validates them; it never issues tokens.
type TokenClaims struct {
	UserID   string   `json:"uid"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}
