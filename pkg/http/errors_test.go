package http_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
	pkghttp "github.com/HardcoreMagazine/selenicspark/pkg/http"
	"github.com/stretchr/testify/assert"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteError(w, 400, "test_error", "Test message")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "test_error", resp.Error)
	assert.Equal(t, "Test message", resp.Message)
	assert.Empty(t, resp.Details)
}

func TestWriteErrorWithDetails(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteErrorWithDetails(w, 400, "test_error", "Test message", "Additional details")

	assert.Equal(t, 400, w.Code)

	var resp pkghttp.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "Additional details", resp.Details)
}

func TestWriteDomainError_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKey  string
	}{
		{"not found", models.ErrNotFound, 404, "not_found"},
		{"token exhausted", models.ErrTokenExhausted, 409, "token_exhausted"},
		{"name taken", models.ErrNameTaken, 409, "name_taken"},
		{"name reserved", models.ErrNameReserved, 400, "name_reserved"},
		{"invalid length", models.ErrInvalidLength, 400, "bad_request"},
		{"role protected", models.ErrRoleProtected, 403, "role_protected"},
		{"admin protected", models.ErrAdminProtected, 403, "admin_protected"},
		{"account locked", models.ErrAccountLocked, 403, "account_locked"},
		{"forbidden", models.ErrForbidden, 403, "forbidden"},
		{"internal", models.ErrInternalServer, 500, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			pkghttp.WriteDomainError(w, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)

			var resp pkghttp.ErrorResponse
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantKey, resp.Error)
		})
	}
}
