package handlers

import (
	"context"
	"net/http"

	"github.com/HardcoreMagazine/selenicspark/internal/auth"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/HardcoreMagazine/selenicspark/internal/repositories"
	"github.com/HardcoreMagazine/selenicspark/internal/services"
)

// withClaims attaches token claims to a request, as if the auth middleware
// had run.
func withClaims(r *http.Request, userID, username string, roles ...string) *http.Request {
	claims := &models.TokenClaims{UserID: userID, Username: username, Roles: roles}
	ctx := context.WithValue(r.Context(), auth.UserContextKey, claims)
	return r.WithContext(ctx)
}

// MockModerationService implements ModerationService and AuthorWarner for testing
type MockModerationService struct {
	WarnUserFunc  func(ctx context.Context, actorUsername string, actorRoles []string, targetUsername string) (*models.WarningOutcome, error)
	GetLedgerFunc func(ctx context.Context, userID string) (*models.LedgerEntry, error)
	HistoryFunc   func(ctx context.Context, target string, limit, offset int) ([]*models.ModerationEvent, error)
}

func (m *MockModerationService) WarnUser(ctx context.Context, actorUsername string, actorRoles []string, targetUsername string) (*models.WarningOutcome, error) {
	if m.WarnUserFunc != nil {
		return m.WarnUserFunc(ctx, actorUsername, actorRoles, targetUsername)
	}
	return &models.WarningOutcome{NewCount: 1}, nil
}

func (m *MockModerationService) GetLedger(ctx context.Context, userID string) (*models.LedgerEntry, error) {
	if m.GetLedgerFunc != nil {
		return m.GetLedgerFunc(ctx, userID)
	}
	return &models.LedgerEntry{UserID: userID, UsernameChangeTokens: 1}, nil
}

func (m *MockModerationService) History(ctx context.Context, target string, limit, offset int) ([]*models.ModerationEvent, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, target, limit, offset)
	}
	return []*models.ModerationEvent{}, nil
}

// MockAccountService implements AccountService for testing
type MockAccountService struct {
	ChangeUsernameFunc func(ctx context.Context, userID, newUsername string) (*models.User, error)
	GetLedgerFunc      func(ctx context.Context, userID string) (*models.LedgerEntry, error)
}

func (m *MockAccountService) ChangeUsername(ctx context.Context, userID, newUsername string) (*models.User, error) {
	if m.ChangeUsernameFunc != nil {
		return m.ChangeUsernameFunc(ctx, userID, newUsername)
	}
	return &models.User{ID: userID, Username: newUsername}, nil
}

func (m *MockAccountService) GetLedger(ctx context.Context, userID string) (*models.LedgerEntry, error) {
	if m.GetLedgerFunc != nil {
		return m.GetLedgerFunc(ctx, userID)
	}
	return &models.LedgerEntry{UserID: userID, UsernameChangeTokens: 1}, nil
}

// MockUserResolver implements UserResolver for testing
type MockUserResolver struct {
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
}

func (m *MockUserResolver) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

// MockAdminService implements AdminService for testing
type MockAdminService struct {
	ListRolesFunc          func(ctx context.Context) ([]*models.Role, error)
	CreateRoleFunc         func(ctx context.Context, name string) (*models.Role, error)
	EditRoleFunc           func(ctx context.Context, id, newName string) (*models.Role, error)
	DeleteRoleFunc         func(ctx context.Context, id string) error
	ListUsersFunc          func(ctx context.Context, limit, offset int) ([]*models.User, error)
	GetUserFunc            func(ctx context.Context, id string) (*models.User, error)
	EditUserFieldsFunc     func(ctx context.Context, actorUsername string, actorRoles []string, targetID string, edit services.UserFieldEdit) (*models.User, error)
	DeleteUserFunc         func(ctx context.Context, actorUsername, targetID string) error
	AddRoleToUserFunc      func(ctx context.Context, actorUsername, targetID, roleName string) error
	RemoveRoleFromUserFunc func(ctx context.Context, actorUsername, targetID, roleName string) error
	AdjustLedgerFunc       func(ctx context.Context, actorUsername, targetID string, adj models.LedgerAdjustment) (*models.LedgerEntry, error)
}

func (m *MockAdminService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	if m.ListRolesFunc != nil {
		return m.ListRolesFunc(ctx)
	}
	return []*models.Role{}, nil
}

func (m *MockAdminService) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	if m.CreateRoleFunc != nil {
		return m.CreateRoleFunc(ctx, name)
	}
	return &models.Role{ID: "role-id", Name: name}, nil
}

func (m *MockAdminService) EditRole(ctx context.Context, id, newName string) (*models.Role, error) {
	if m.EditRoleFunc != nil {
		return m.EditRoleFunc(ctx, id, newName)
	}
	return &models.Role{ID: id, Name: newName}, nil
}

func (m *MockAdminService) DeleteRole(ctx context.Context, id string) error {
	if m.DeleteRoleFunc != nil {
		return m.DeleteRoleFunc(ctx, id)
	}
	return nil
}

func (m *MockAdminService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockAdminService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminService) EditUserFields(ctx context.Context, actorUsername string, actorRoles []string, targetID string, edit services.UserFieldEdit) (*models.User, error) {
	if m.EditUserFieldsFunc != nil {
		return m.EditUserFieldsFunc(ctx, actorUsername, actorRoles, targetID, edit)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminService) DeleteUser(ctx context.Context, actorUsername, targetID string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, actorUsername, targetID)
	}
	return nil
}

func (m *MockAdminService) AddRoleToUser(ctx context.Context, actorUsername, targetID, roleName string) error {
	if m.AddRoleToUserFunc != nil {
		return m.AddRoleToUserFunc(ctx, actorUsername, targetID, roleName)
	}
	return nil
}

func (m *MockAdminService) RemoveRoleFromUser(ctx context.Context, actorUsername, targetID, roleName string) error {
	if m.RemoveRoleFromUserFunc != nil {
		return m.RemoveRoleFromUserFunc(ctx, actorUsername, targetID, roleName)
	}
	return nil
}

func (m *MockAdminService) AdjustLedger(ctx context.Context, actorUsername, targetID string, adj models.LedgerAdjustment) (*models.LedgerEntry, error) {
	if m.AdjustLedgerFunc != nil {
		return m.AdjustLedgerFunc(ctx, actorUsername, targetID, adj)
	}
	return &models.LedgerEntry{UserID: targetID, UsernameChangeTokens: 1}, nil
}

// MockPostService implements PostService for testing
type MockPostService struct {
	CreatePostFunc     func(ctx context.Context, author, title, markdownText string) (*models.Post, error)
	GetPostFunc        func(ctx context.Context, id int64) (*services.PostWithComments, error)
	ListPostsFunc      func(ctx context.Context, limit, offset int) ([]*models.Post, error)
	SearchPostsFunc    func(ctx context.Context, phrase string, filter repositories.SearchFilter, limit, offset int) ([]*models.Post, error)
	GetPostForEditFunc func(ctx context.Context, actorUsername string, actorRoles []string, id int64) (*models.Post, string, error)
	EditPostFunc       func(ctx context.Context, actorUsername string, actorRoles []string, id int64, title, markdownText string) (*models.Post, error)
	DeletePostFunc     func(ctx context.Context, actorUsername string, actorRoles []string, id int64) (string, error)
	CreateCommentFunc  func(ctx context.Context, author string, postID int64, text string) (*models.Comment, error)
	DeleteCommentFunc  func(ctx context.Context, actorUsername string, actorRoles []string, id string) (string, error)
}

func (m *MockPostService) CreatePost(ctx context.Context, author, title, markdownText string) (*models.Post, error) {
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(ctx, author, title, markdownText)
	}
	return &models.Post{ID: 1, Title: title, Author: author}, nil
}

func (m *MockPostService) GetPost(ctx context.Context, id int64) (*services.PostWithComments, error) {
	if m.GetPostFunc != nil {
		return m.GetPostFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockPostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if m.ListPostsFunc != nil {
		return m.ListPostsFunc(ctx, limit, offset)
	}
	return []*models.Post{}, nil
}

func (m *MockPostService) SearchPosts(ctx context.Context, phrase string, filter repositories.SearchFilter, limit, offset int) ([]*models.Post, error) {
	if m.SearchPostsFunc != nil {
		return m.SearchPostsFunc(ctx, phrase, filter, limit, offset)
	}
	return []*models.Post{}, nil
}

func (m *MockPostService) GetPostForEdit(ctx context.Context, actorUsername string, actorRoles []string, id int64) (*models.Post, string, error) {
	if m.GetPostForEditFunc != nil {
		return m.GetPostForEditFunc(ctx, actorUsername, actorRoles, id)
	}
	return nil, "", models.ErrNotFound
}

func (m *MockPostService) EditPost(ctx context.Context, actorUsername string, actorRoles []string, id int64, title, markdownText string) (*models.Post, error) {
	if m.EditPostFunc != nil {
		return m.EditPostFunc(ctx, actorUsername, actorRoles, id, title, markdownText)
	}
	return &models.Post{ID: id, Title: title}, nil
}

func (m *MockPostService) DeletePost(ctx context.Context, actorUsername string, actorRoles []string, id int64) (string, error) {
	if m.DeletePostFunc != nil {
		return m.DeletePostFunc(ctx, actorUsername, actorRoles, id)
	}
	return "", models.ErrNotFound
}

func (m *MockPostService) CreateComment(ctx context.Context, author string, postID int64, text string) (*models.Comment, error) {
	if m.CreateCommentFunc != nil {
		return m.CreateCommentFunc(ctx, author, postID, text)
	}
	return &models.Comment{ID: "c1", PostID: postID, Text: text, Author: author}, nil
}

func (m *MockPostService) DeleteComment(ctx context.Context, actorUsername string, actorRoles []string, id string) (string, error) {
	if m.DeleteCommentFunc != nil {
		return m.DeleteCommentFunc(ctx, actorUsername, actorRoles, id)
	}
	return "", models.ErrNotFound
}
