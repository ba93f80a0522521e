package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/HardcoreMagazine/selenicspark/internal/repositories"
	pkglogger "github.com/HardcoreMagazine/selenicspark/pkg/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc       func(ctx context.Context, id string) (*models.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	ListFunc          func(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateFunc        func(ctx context.Context, id string, user *models.User) (*models.User, error)
	SetLockoutEndFunc func(ctx context.Context, id string, until time.Time) error
	DeleteFunc        func(ctx context.Context, id string) error
	UsernameTakenFunc func(ctx context.Context, username, excludeID string) (bool, error)
	AddRoleFunc       func(ctx context.Context, userID, roleID string) error
	RemoveRoleFunc    func(ctx context.Context, userID, roleID string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) SetLockoutEnd(ctx context.Context, id string, until time.Time) error {
	if m.SetLockoutEndFunc != nil {
		return m.SetLockoutEndFunc(ctx, id, until)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	if m.UsernameTakenFunc != nil {
		return m.UsernameTakenFunc(ctx, username, excludeID)
	}
	return false, nil
}

func (m *MockUserRepository) AddRole(ctx context.Context, userID, roleID string) error {
	if m.AddRoleFunc != nil {
		return m.AddRoleFunc(ctx, userID, roleID)
	}
	return nil
}

func (m *MockUserRepository) RemoveRole(ctx context.Context, userID, roleID string) error {
	if m.RemoveRoleFunc != nil {
		return m.RemoveRoleFunc(ctx, userID, roleID)
	}
	return nil
}

// MockLedgerRepository implements LedgerRepository for testing
type MockLedgerRepository struct {
	GetOrCreateFunc           func(ctx context.Context, userID string) (*models.LedgerEntry, error)
	ConsumeUsernameTokenFunc  func(ctx context.Context, userID string) error
	RecordWarningFunc         func(ctx context.Context, userID string) (*models.WarningOutcome, error)
	IncrementLockoutCountFunc func(ctx context.Context, userID string) error
	AdjustCountersFunc        func(ctx context.Context, userID string, adj models.LedgerAdjustment) error
}

func (m *MockLedgerRepository) GetOrCreate(ctx context.Context, userID string) (*models.LedgerEntry, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, userID)
	}
	return &models.LedgerEntry{UserID: userID, UsernameChangeTokens: 1}, nil
}

func (m *MockLedgerRepository) ConsumeUsernameToken(ctx context.Context, userID string) error {
	if m.ConsumeUsernameTokenFunc != nil {
		return m.ConsumeUsernameTokenFunc(ctx, userID)
	}
	return nil
}

func (m *MockLedgerRepository) RecordWarning(ctx context.Context, userID string) (*models.WarningOutcome, error) {
	if m.RecordWarningFunc != nil {
		return m.RecordWarningFunc(ctx, userID)
	}
	return &models.WarningOutcome{NewCount: 1}, nil
}

func (m *MockLedgerRepository) IncrementLockoutCount(ctx context.Context, userID string) error {
	if m.IncrementLockoutCountFunc != nil {
		return m.IncrementLockoutCountFunc(ctx, userID)
	}
	return nil
}

func (m *MockLedgerRepository) AdjustCounters(ctx context.Context, userID string, adj models.LedgerAdjustment) error {
	if m.AdjustCountersFunc != nil {
		return m.AdjustCountersFunc(ctx, userID, adj)
	}
	return nil
}

// MockModerationEventRepository implements ModerationEventRepository for testing
type MockModerationEventRepository struct {
	CreateFunc      func(ctx context.Context, event *models.ModerationEvent) (*models.ModerationEvent, error)
	GetByTargetFunc func(ctx context.Context, target string, limit, offset int) ([]*models.ModerationEvent, error)

	// Created collects events recorded through the default CreateFunc.
	Created []*models.ModerationEvent
}

func (m *MockModerationEventRepository) Create(ctx context.Context, event *models.ModerationEvent) (*models.ModerationEvent, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	m.Created = append(m.Created, event)
	return event, nil
}

func (m *MockModerationEventRepository) GetByTarget(ctx context.Context, target string, limit, offset int) ([]*models.ModerationEvent, error) {
	if m.GetByTargetFunc != nil {
		return m.GetByTargetFunc(ctx, target, limit, offset)
	}
	return []*models.ModerationEvent{}, nil
}

// MockRoleRepository implements RoleRepository for testing
type MockRoleRepository struct {
	GetByIDFunc   func(ctx context.Context, id string) (*models.Role, error)
	GetByNameFunc func(ctx context.Context, name string) (*models.Role, error)
	ListFunc      func(ctx context.Context) ([]*models.Role, error)
	CreateFunc    func(ctx context.Context, name string) (*models.Role, error)
	RenameFunc    func(ctx context.Context, id, newName string) (*models.Role, error)
	DeleteFunc    func(ctx context.Context, id string) error
}

func (m *MockRoleRepository) GetByID(ctx context.Context, id string) (*models.Role, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockRoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	return nil, models.ErrNotFound
}

func (m *MockRoleRepository) List(ctx context.Context) ([]*models.Role, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Role{}, nil
}

func (m *MockRoleRepository) Create(ctx context.Context, name string) (*models.Role, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, name)
	}
	return &models.Role{ID: "role-id", Name: name, NormalizedName: models.NormalizeName(name)}, nil
}

func (m *MockRoleRepository) Rename(ctx context.Context, id, newName string) (*models.Role, error) {
	if m.RenameFunc != nil {
		return m.RenameFunc(ctx, id, newName)
	}
	return &models.Role{ID: id, Name: newName, NormalizedName: models.NormalizeName(newName)}, nil
}

func (m *MockRoleRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockPostRepository implements PostRepository for testing
type MockPostRepository struct {
	GetByIDFunc func(ctx context.Context, id int64) (*models.Post, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]*models.Post, error)
	SearchFunc  func(ctx context.Context, phrase string, filter repositories.SearchFilter, limit, offset int) ([]*models.Post, error)
	CreateFunc  func(ctx context.Context, post *models.Post) (*models.Post, error)
	UpdateFunc  func(ctx context.Context, id int64, title string, text *string) (*models.Post, error)
	DeleteFunc  func(ctx context.Context, id int64) error
}

func (m *MockPostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.Post{}, nil
}

func (m *MockPostRepository) Search(ctx context.Context, phrase string, filter repositories.SearchFilter, limit, offset int) ([]*models.Post, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, phrase, filter, limit, offset)
	}
	return []*models.Post{}, nil
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, post)
	}
	post.ID = 1
	return post, nil
}

func (m *MockPostRepository) Update(ctx context.Context, id int64, title string, text *string) (*models.Post, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, title, text)
	}
	return &models.Post{ID: id, Title: title, Text: text}, nil
}

func (m *MockPostRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockCommentRepository implements CommentRepository for testing
type MockCommentRepository struct {
	GetByIDFunc    func(ctx context.Context, id string) (*models.Comment, error)
	ListByPostFunc func(ctx context.Context, postID int64) ([]*models.Comment, error)
	CreateFunc     func(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	DeleteFunc     func(ctx context.Context, id string) error
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	if m.ListByPostFunc != nil {
		return m.ListByPostFunc(ctx, postID)
	}
	return []*models.Comment{}, nil
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, comment)
	}
	comment.ID = "comment-id"
	return comment, nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
