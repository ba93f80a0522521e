package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/auth"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/HardcoreMagazine/selenicspark/internal/services"
	pkghttp "github.com/HardcoreMagazine/selenicspark/pkg/http"
	"github.com/go-chi/chi/v5"
)

// AdminService defines the interface for role and user administration
type AdminService interface {
	ListRoles(ctx context.Context) ([]*models.Role, error)
	CreateRole(ctx context.Context, name string) (*models.Role, error)
	EditRole(ctx context.Context, id, newName string) (*models.Role, error)
	DeleteRole(ctx context.Context, id string) error
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	EditUserFields(ctx context.Context, actorUsername string, actorRoles []string, targetID string, edit services.UserFieldEdit) (*models.User, error)
	DeleteUser(ctx context.Context, actorUsername, targetID string) error
	AddRoleToUser(ctx context.Context, actorUsername, targetID, roleName string) error
	RemoveRoleFromUser(ctx context.Context, actorUsername, targetID, roleName string) error
	AdjustLedger(ctx context.Context, actorUsername, targetID string, adj models.LedgerAdjustment) (*models.LedgerEntry, error)
}

// AdminHandler handles administrative HTTP requests
type AdminHandler struct {
	service AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service AdminService) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// Request/Response DTOs

// RoleRequest represents the request body for creating or renaming a role
type RoleRequest struct {
	Name string `json:"name" validate:"required,min=2,max=64"`
}

// RoleResponse represents a role in the HTTP response
type RoleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AdminUserResponse represents a user in administrative responses
type AdminUserResponse struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	EmailConfirmed    bool       `json:"email_confirmed"`
	LockoutEnd        *time.Time `json:"lockout_end,omitempty"`
	AccessFailedCount int        `json:"access_failed_count"`
	Roles             []string   `json:"roles"`
	CreatedAt         string     `json:"created_at"`
}

// EditUserRequest represents a partial identity update; absent fields are
// left unchanged
type EditUserRequest struct {
	Username          *string    `json:"username" validate:"omitempty,min=4,max=24"`
	Email             *string    `json:"email" validate:"omitempty,email"`
	EmailConfirmed    *bool      `json:"email_confirmed"`
	LockoutEnd        *time.Time `json:"lockout_end"`
	AccessFailedCount *int       `json:"access_failed_count" validate:"omitempty,gte=0"`
}

// RoleAssignmentRequest represents granting or revoking a role by name
type RoleAssignmentRequest struct {
	Role string `json:"role" validate:"required,min=2,max=64"`
}

// LedgerAdjustRequest represents an override of a user's raw trust counters.
// Negative values are accepted and silently skipped by the store, not rejected.
type LedgerAdjustRequest struct {
	UsernameChangeTokens *int `json:"username_change_tokens"`
	UserWarningsCount    *int `json:"user_warnings_count"`
}

func roleModelToResponse(role *models.Role) *RoleResponse {
	return &RoleResponse{ID: role.ID, Name: role.Name}
}

func adminUserModelToResponse(user *models.User) *AdminUserResponse {
	return &AdminUserResponse{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		EmailConfirmed:    user.EmailConfirmed,
		LockoutEnd:        user.LockoutEnd,
		AccessFailedCount: user.AccessFailedCount,
		Roles:             user.Roles,
		CreatedAt:         user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListRoles retrieves all roles
func (h *AdminHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	responses := make([]*RoleResponse, 0, len(roles))
	for _, role := range roles {
		responses = append(responses, roleModelToResponse(role))
	}

	writeJSON(w, http.StatusOK, responses)
}

// CreateRole adds a role, silently returning the existing one on a name clash
func (h *AdminHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	role, err := h.service.CreateRole(r.Context(), req.Name)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, roleModelToResponse(role))
}

// UpdateRole renames a role
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")
	if roleID == "" {
		pkghttp.WriteBadRequest(w, "role ID is required")
		return
	}

	var req RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	role, err := h.service.EditRole(r.Context(), roleID, req.Name)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, roleModelToResponse(role))
}

// DeleteRole removes a role
func (h *AdminHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")
	if roleID == "" {
		pkghttp.WriteBadRequest(w, "role ID is required")
		return
	}

	if err := h.service.DeleteRole(r.Context(), roleID); err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUsers retrieves users with pagination
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	responses := make([]*AdminUserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, adminUserModelToResponse(user))
	}

	writeJSON(w, http.StatusOK, responses)
}

// GetUser retrieves one user
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "user ID is required")
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, adminUserModelToResponse(user))
}

// UpdateUser applies a partial identity edit to another user
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "user ID is required")
		return
	}

	var req EditUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.EditUserFields(r.Context(), claims.Username, claims.Roles, userID, services.UserFieldEdit{
		Username:          req.Username,
		Email:             req.Email,
		EmailConfirmed:    req.EmailConfirmed,
		LockoutEnd:        req.LockoutEnd,
		AccessFailedCount: req.AccessFailedCount,
	})
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, adminUserModelToResponse(user))
}

// DeleteUser removes a user unless they hold the Admin role
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "user ID is required")
		return
	}

	if err := h.service.DeleteUser(r.Context(), claims.Username, userID); err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GrantRole adds a role to a user by name
func (h *AdminHandler) GrantRole(w http.ResponseWriter, r *http.Request) {
	h.assignRole(w, r, true)
}

// RevokeRole removes a role from a user by name
func (h *AdminHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	h.assignRole(w, r, false)
}

func (h *AdminHandler) assignRole(w http.ResponseWriter, r *http.Request, grant bool) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "user ID is required")
		return
	}

	var req RoleAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	var err error
	if grant {
		err = h.service.AddRoleToUser(r.Context(), claims.Username, userID, req.Role)
	} else {
		err = h.service.RemoveRoleFromUser(r.Context(), claims.Username, userID, req.Role)
	}
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AdjustLedger overrides a user's raw trust counters
func (h *AdminHandler) AdjustLedger(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "user ID is required")
		return
	}

	var req LedgerAdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	entry, err := h.service.AdjustLedger(r.Context(), claims.Username, userID, models.LedgerAdjustment{
		UsernameChangeTokens: req.UsernameChangeTokens,
		UserWarningsCount:    req.UserWarningsCount,
	})
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ledgerModelToResponse(entry))
}
