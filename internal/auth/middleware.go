package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing user claims in context
	UserContextKey contextKey = "user"
)

// UserRepository interface for fetching current user state
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware validates the Bearer token, rejects suspended accounts and
// injects the claims into the request context. Lockout expiry is lazy: an
// account whose lockout_end has passed is simply let through, nothing clears
// the column.
func AuthMiddleware(tm *TokenManager, userRepo UserRepository) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			// Suspension state lives on the identity row, not in the token,
			// so a lockout applied after the token was minted still bites.
			user, err := userRepo.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					http.Error(w, "user not found", http.StatusUnauthorized)
					return
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if user.IsLockedOut(time.Now().UTC()) {
				http.Error(w, "account is temporarily locked", http.StatusForbidden)
				return
			}

			// Roles come from storage too; a demotion takes effect on the
			// next request, not the next token refresh.
			claims.Username = user.Username
			claims.Roles = user.Roles

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates a middleware that enforces role-based access control.
// Must run after AuthMiddleware.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r)
			if claims == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				for _, held := range claims.Roles {
					if held == role {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			http.Error(w, "forbidden: insufficient permissions", http.StatusForbidden)
		})
	}
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(r *http.Request) *models.TokenClaims {
	claims, ok := r.Context().Value(UserContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
