package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
)

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Error   string `json:"error"`             // Machine-readable error code
	Message string `json:"message"`           // Human-readable message
	Details string `json:"details,omitempty"` // Optional additional context
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteErrorWithDetails(w, statusCode, errorCode, message, "")
}

// WriteErrorWithDetails writes a JSON error response with additional details
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, errorCode, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:   errorCode,
		Message: message,
		Details: details,
	}

	// Log encoding errors but don't expose them to client
	_ = json.NewEncoder(w).Encode(resp)
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}

// WriteDomainError maps a service-layer sentinel error onto the HTTP surface.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		WriteNotFound(w, "resource not found")
	case errors.Is(err, models.ErrTokenExhausted):
		WriteError(w, http.StatusConflict, "token_exhausted", "no username change tokens left")
	case errors.Is(err, models.ErrNameTaken):
		WriteError(w, http.StatusConflict, "name_taken", "username already taken")
	case errors.Is(err, models.ErrNameReserved):
		WriteError(w, http.StatusBadRequest, "name_reserved", "username contains a reserved word")
	case errors.Is(err, models.ErrInvalidLength):
		WriteBadRequest(w, "value length out of range")
	case errors.Is(err, models.ErrRoleProtected):
		WriteError(w, http.StatusForbidden, "role_protected", "built-in roles cannot be modified")
	case errors.Is(err, models.ErrAdminProtected):
		WriteError(w, http.StatusForbidden, "admin_protected", "users holding the Admin role cannot be deleted")
	case errors.Is(err, models.ErrAccountLocked):
		WriteError(w, http.StatusForbidden, "account_locked", "account is temporarily locked")
	case errors.Is(err, models.ErrForbidden):
		WriteForbidden(w, "insufficient permissions")
	case errors.Is(err, models.ErrUnauthorized):
		WriteUnauthorized(w, "unauthorized")
	case errors.Is(err, models.ErrConflict):
		WriteConflict(w, "resource already exists")
	case errors.Is(err, models.ErrBadRequest):
		WriteBadRequest(w, "bad request")
	default:
		WriteInternalError(w, "internal server error")
	}
}
