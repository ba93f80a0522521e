package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 14
	MinPasswordLen = 8
	MaxPasswordLen = 128
)

// HashPassword hashes a password for storage. Only the bootstrap admin
// account is hashed here; regular credentials are managed by the identity
// front-end.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLen || len(password) > MaxPasswordLen {
		return "", fmt.Errorf("password must be between %d and %d characters", MinPasswordLen, MaxPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// ComparePassword checks a plaintext password against a stored hash
func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
