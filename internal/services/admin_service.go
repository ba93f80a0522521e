package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/HardcoreMagazine/selenicspark/internal/policy"
	pkglogger "github.com/HardcoreMagazine/selenicspark/pkg/logger"
)

// RoleRepository defines the role storage operations
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]*models.Role, error)
	Create(ctx context.Context, name string) (*models.Role, error)
	Rename(ctx context.Context, id, newName string) (*models.Role, error)
	Delete(ctx context.Context, id string) error
}

// UserFieldEdit carries an admin's partial update of another user's identity
// fields. Nil fields are left unchanged.
type UserFieldEdit struct {
	Username          *string
	Email             *string
	EmailConfirmed    *bool
	LockoutEnd        *time.Time
	AccessFailedCount *int
}

// AdminService handles role management and privileged user administration
type AdminService struct {
	users       UserRepository
	roles       RoleRepository
	ledger      LedgerRepository
	events      ModerationEventRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAdminService creates a new AdminService
func NewAdminService(users UserRepository, roles RoleRepository, ledger LedgerRepository, events ModerationEventRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AdminService {
	return &AdminService{
		users:       users,
		roles:       roles,
		ledger:      ledger,
		events:      events,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

func (s *AdminService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		s.logger.Error("failed to list roles", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return roles, nil
}

// CreateRole adds a role. Creating a name that already exists is not an
// error; the existing role is returned unchanged.
func (s *AdminService) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrBadRequest
	}

	existing, err := s.roles.GetByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check role existence", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	role, err := s.roles.Create(ctx, name)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost a race with a concurrent create of the same name.
			return s.roles.GetByName(ctx, name)
		}
		s.logger.Error("failed to create role", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return role, nil
}

// EditRole renames a role. The built-in roles cannot be renamed, but nothing
// stops renaming a custom role into a name that shadows one of them.
func (s *AdminService) EditRole(ctx context.Context, id, newName string) (*models.Role, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, models.ErrBadRequest
	}

	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get role", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !policy.CanMutateRole(role.Name) {
		return nil, models.ErrRoleProtected
	}

	// Renaming to the current name is a no-op, not a write.
	if newName == role.Name {
		return role, nil
	}

	renamed, err := s.roles.Rename(ctx, id, newName)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to rename role", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return renamed, nil
}

// DeleteRole removes a role. The built-in roles are protected.
func (s *AdminService) DeleteRole(ctx context.Context, id string) error {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get role", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if !policy.CanMutateRole(role.Name) {
		return models.ErrRoleProtected
	}

	if err := s.roles.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete role", slog.Any("error", err))
		return models.ErrInternalServer
	}

	return nil
}

func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return users, nil
}

func (s *AdminService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// EditUserFields applies a partial identity update to another user. Renames
// through this path bypass the username token; that is deliberate, it is the
// repair tool for the ledger's accepted failure modes.
func (s *AdminService) EditUserFields(ctx context.Context, actorUsername string, actorRoles []string, targetID string, edit UserFieldEdit) (*models.User, error) {
	if !policy.CanEditOtherUserFields(actorRoles) {
		return nil, models.ErrForbidden
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user for edit", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	changed := make(map[string]string)

	if edit.Username != nil && *edit.Username != user.Username {
		taken, err := s.users.UsernameTaken(ctx, *edit.Username, targetID)
		if err != nil {
			s.logger.Error("failed to check username availability", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		if taken {
			return nil, models.ErrNameTaken
		}
		user.Username = *edit.Username
		user.NormalizedUsername = models.NormalizeName(*edit.Username)
		changed["username"] = *edit.Username
	}
	if edit.Email != nil && *edit.Email != user.Email {
		user.Email = *edit.Email
		user.NormalizedEmail = models.NormalizeName(*edit.Email)
		changed["email"] = *edit.Email
	}
	if edit.EmailConfirmed != nil && *edit.EmailConfirmed != user.EmailConfirmed {
		user.EmailConfirmed = *edit.EmailConfirmed
		changed["email_confirmed"] = "updated"
	}
	if edit.LockoutEnd != nil {
		user.LockoutEnd = edit.LockoutEnd
		changed["lockout_end"] = edit.LockoutEnd.Format(time.RFC3339)
	}
	if edit.AccessFailedCount != nil && *edit.AccessFailedCount != user.AccessFailedCount {
		user.AccessFailedCount = *edit.AccessFailedCount
		changed["access_failed_count"] = "updated"
	}

	if len(changed) == 0 {
		return user, nil
	}

	updated, err := s.users.Update(ctx, targetID, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrNameTaken
		}
		s.logger.Error("failed to update user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("user_fields_edited", actorUsername, updated.Username, changed)

	return updated, nil
}

// DeleteUser removes a user. Targets holding the Admin role cannot be
// deleted; demote them first.
func (s *AdminService) DeleteUser(ctx context.Context, actorUsername, targetID string) error {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user for delete", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if !policy.CanDeleteUser(user.Roles) {
		return models.ErrAdminProtected
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		s.logger.Error("failed to delete user", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.recordEvent(ctx, models.EventUserDeleted, actorUsername, user.Username, "account removed")
	s.auditLogger.LogModerationAction(pkglogger.AuditEvent{
		EventType: "user_deleted",
		Actor:     actorUsername,
		Target:    user.Username,
		Success:   true,
	})

	return nil
}

// AddRoleToUser grants a role by name. Granting a role the user already holds
// is a no-op.
func (s *AdminService) AddRoleToUser(ctx context.Context, actorUsername, targetID, roleName string) error {
	user, role, err := s.resolveUserAndRole(ctx, targetID, roleName)
	if err != nil {
		return err
	}

	if err := s.users.AddRole(ctx, user.ID, role.ID); err != nil {
		s.logger.Error("failed to add role", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.recordEvent(ctx, models.EventRoleGranted, actorUsername, user.Username, "granted "+role.Name)
	return nil
}

// RemoveRoleFromUser revokes a role by name. Revoking a role the user does
// not hold is a no-op.
func (s *AdminService) RemoveRoleFromUser(ctx context.Context, actorUsername, targetID, roleName string) error {
	user, role, err := s.resolveUserAndRole(ctx, targetID, roleName)
	if err != nil {
		return err
	}

	if err := s.users.RemoveRole(ctx, user.ID, role.ID); err != nil {
		s.logger.Error("failed to remove role", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.recordEvent(ctx, models.EventRoleRevoked, actorUsername, user.Username, "revoked "+role.Name)
	return nil
}

func (s *AdminService) resolveUserAndRole(ctx context.Context, targetID, roleName string) (*models.User, *models.Role, error) {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, models.ErrNotFound
		}
		s.logger.Error("failed to get role", slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	return user, role, nil
}

// AdjustLedger overrides a user's raw trust counters. No warning threshold
// side effects fire from an override.
func (s *AdminService) AdjustLedger(ctx context.Context, actorUsername, targetID string, adj models.LedgerAdjustment) (*models.LedgerEntry, error) {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user for ledger adjustment", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.ledger.AdjustCounters(ctx, targetID, adj); err != nil {
		s.logger.Error("failed to adjust ledger counters", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	entry, err := s.ledger.GetOrCreate(ctx, targetID)
	if err != nil {
		s.logger.Error("failed to reload ledger entry", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("ledger_adjusted", actorUsername, user.Username,
		map[string]string{"user_id": targetID})

	return entry, nil
}

// recordEvent mirrors the moderation service helper for admin actions.
func (s *AdminService) recordEvent(ctx context.Context, eventType, actor, target, detail string) {
	_, err := s.events.Create(ctx, &models.ModerationEvent{
		EventType: eventType,
		Actor:     actor,
		Target:    target,
		Detail:    detail,
	})
	if err != nil {
		s.logger.Error("failed to record moderation event",
			slog.String("event_type", eventType), slog.Any("error", err))
	}
}
