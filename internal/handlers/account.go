package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/HardcoreMagazine/selenicspark/internal/auth"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
	pkghttp "github.com/HardcoreMagazine/selenicspark/pkg/http"
)

// AccountService defines the self-service operations available to any
// signed-in user
type AccountService interface {
	ChangeUsername(ctx context.Context, userID, newUsername string) (*models.User, error)
	GetLedger(ctx context.Context, userID string) (*models.LedgerEntry, error)
}

// AccountHandler handles the caller's own account endpoints
type AccountHandler struct {
	service AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service AccountService) *AccountHandler {
	return &AccountHandler{
		service: service,
	}
}

// ChangeUsernameRequest represents the request body for a self-service rename
type ChangeUsernameRequest struct {
	Username string `json:"username" validate:"required,min=4,max=24"`
}

// AccountResponse represents the caller's identity in the HTTP response
type AccountResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// ChangeUsername renames the caller, spending one username change token
func (h *AccountHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req ChangeUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.ChangeUsername(r.Context(), claims.UserID, req.Username)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &AccountResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.Roles,
	})
}

// GetOwnLedger returns the caller's trust record
func (h *AccountHandler) GetOwnLedger(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	entry, err := h.service.GetLedger(r.Context(), claims.UserID)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ledgerModelToResponse(entry))
}
