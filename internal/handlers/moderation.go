package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/HardcoreMagazine/selenicspark/internal/auth"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
	pkghttp "github.com/HardcoreMagazine/selenicspark/pkg/http"
	"github.com/go-chi/chi/v5"
)

// ModerationService defines the interface for warning and trust-record logic
type ModerationService interface {
	WarnUser(ctx context.Context, actorUsername string, actorRoles []string, targetUsername string) (*models.WarningOutcome, error)
	GetLedger(ctx context.Context, userID string) (*models.LedgerEntry, error)
	History(ctx context.Context, target string, limit, offset int) ([]*models.ModerationEvent, error)
}

// UserResolver looks up a user so staff endpoints can address targets by name
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// ModerationHandler handles staff moderation HTTP requests
type ModerationHandler struct {
	service ModerationService
	users   UserResolver
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(service ModerationService, users UserResolver) *ModerationHandler {
	return &ModerationHandler{
		service: service,
		users:   users,
	}
}

// WarnRequest represents the request body for issuing a warning
type WarnRequest struct {
	Username string `json:"username" validate:"required,min=3"`
}

// WarnResponse reports the result of a warning attempt. Warned is false when
// the target's role set made the attempt a no-op.
type WarnResponse struct {
	Warned           bool `json:"warned"`
	WarningCount     int  `json:"warning_count,omitempty"`
	LockoutTriggered bool `json:"lockout_triggered,omitempty"`
}

// LedgerResponse represents a trust record in the HTTP response
type LedgerResponse struct {
	UserID               string `json:"user_id"`
	UsernameChangeTokens int    `json:"username_change_tokens"`
	UserWarningsCount    int    `json:"user_warnings_count"`
	UserLockoutCount     int    `json:"user_lockout_count"`
}

// ModerationEventResponse represents one audit trail row
type ModerationEventResponse struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Actor     string `json:"actor"`
	Target    string `json:"target"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

func ledgerModelToResponse(entry *models.LedgerEntry) *LedgerResponse {
	return &LedgerResponse{
		UserID:               entry.UserID,
		UsernameChangeTokens: entry.UsernameChangeTokens,
		UserWarningsCount:    entry.UserWarningsCount,
		UserLockoutCount:     entry.UserLockoutCount,
	}
}

// WarnUser issues a warning against the named user
func (h *ModerationHandler) WarnUser(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req WarnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	outcome, err := h.service.WarnUser(r.Context(), claims.Username, claims.Roles, req.Username)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	resp := &WarnResponse{Warned: outcome != nil}
	if outcome != nil {
		resp.WarningCount = outcome.NewCount
		resp.LockoutTriggered = outcome.LockoutTriggered
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetUserLedger returns the named user's trust record
func (h *ModerationHandler) GetUserLedger(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		pkghttp.WriteBadRequest(w, "username is required")
		return
	}

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	entry, err := h.service.GetLedger(r.Context(), user.ID)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ledgerModelToResponse(entry))
}

// GetUserHistory returns the moderation events recorded against a username
func (h *ModerationHandler) GetUserHistory(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		pkghttp.WriteBadRequest(w, "username is required")
		return
	}

	limit, offset := paginationParams(r)

	events, err := h.service.History(r.Context(), username, limit, offset)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	responses := make([]*ModerationEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, &ModerationEventResponse{
			ID:        event.ID,
			EventType: event.EventType,
			Actor:     event.Actor,
			Target:    event.Target,
			Detail:    event.Detail,
			CreatedAt: event.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, responses)
}
