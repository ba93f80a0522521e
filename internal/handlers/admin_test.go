package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return withClaims(req, "admin-id", "admin", models.RoleAdmin)
}

func TestAdminHandler_AdjustLedger_NegativeValuesAccepted(t *testing.T) {
	var gotAdj models.LedgerAdjustment
	svc := &MockAdminService{
		AdjustLedgerFunc: func(ctx context.Context, actor, targetID string, adj models.LedgerAdjustment) (*models.LedgerEntry, error) {
			gotAdj = adj
			return &models.LedgerEntry{UserID: targetID, UsernameChangeTokens: 1, UserWarningsCount: 2}, nil
		},
	}
	handler := NewAdminHandler(svc)

	router := chi.NewRouter()
	router.Put("/admin/users/{userID}/ledger", handler.AdjustLedger)

	// Negative overrides are not a client error; the store skips them silently.
	req := adminRequest(http.MethodPut, "/admin/users/user123/ledger", `{"user_warnings_count":-3}`)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotAdj.UserWarningsCount)
	assert.Equal(t, -3, *gotAdj.UserWarningsCount)
	assert.Nil(t, gotAdj.UsernameChangeTokens)

	var resp LedgerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.UserWarningsCount)
}

func TestAdminHandler_DeleteRole_Protected(t *testing.T) {
	svc := &MockAdminService{
		DeleteRoleFunc: func(ctx context.Context, id string) error {
			return models.ErrRoleProtected
		},
	}
	handler := NewAdminHandler(svc)

	router := chi.NewRouter()
	router.Delete("/admin/roles/{roleID}", handler.DeleteRole)

	req := adminRequest(http.MethodDelete, "/admin/roles/r1", "")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminHandler_DeleteUser_AdminProtected(t *testing.T) {
	svc := &MockAdminService{
		DeleteUserFunc: func(ctx context.Context, actor, targetID string) error {
			return models.ErrAdminProtected
		},
	}
	handler := NewAdminHandler(svc)

	router := chi.NewRouter()
	router.Delete("/admin/users/{userID}", handler.DeleteUser)

	req := adminRequest(http.MethodDelete, "/admin/users/user123", "")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
