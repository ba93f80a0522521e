package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/HardcoreMagazine/selenicspark/internal/policy"
	pkglogger "github.com/HardcoreMagazine/selenicspark/pkg/logger"
)

// UserRepository defines the identity storage operations the services need
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	SetLockoutEnd(ctx context.Context, id string, until time.Time) error
	Delete(ctx context.Context, id string) error
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	AddRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
}

// LedgerRepository defines the trust ledger storage operations
type LedgerRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*models.LedgerEntry, error)
	ConsumeUsernameToken(ctx context.Context, userID string) error
	RecordWarning(ctx context.Context, userID string) (*models.WarningOutcome, error)
	IncrementLockoutCount(ctx context.Context, userID string) error
	AdjustCounters(ctx context.Context, userID string, adj models.LedgerAdjustment) error
}

// ModerationEventRepository defines the audit trail storage operations
type ModerationEventRepository interface {
	Create(ctx context.Context, event *models.ModerationEvent) (*models.ModerationEvent, error)
	GetByTarget(ctx context.Context, target string, limit, offset int) ([]*models.ModerationEvent, error)
}

// Substrings banned from usernames, matched case-insensitively.
var reservedNameParts = []string{"admin", "moderator", "support"}

// ModerationService handles warnings, lockouts and username changes
type ModerationService struct {
	users       UserRepository
	ledger      LedgerRepository
	events      ModerationEventRepository
	lockoutFor  time.Duration
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewModerationService creates a new ModerationService
func NewModerationService(users UserRepository, ledger LedgerRepository, events ModerationEventRepository, lockoutFor time.Duration, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *ModerationService {
	return &ModerationService{
		users:       users,
		ledger:      ledger,
		events:      events,
		lockoutFor:  lockoutFor,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// WarnUser records one warning against the target. When the target does not
// exist, or their role set makes them unwarnable, the call is a no-op: it
// returns a nil outcome and no error, and only the logs record the attempt.
// Every fifth cumulative warning also suspends the target for the configured
// duration.
func (s *ModerationService) WarnUser(ctx context.Context, actorUsername string, actorRoles []string, targetUsername string) (*models.WarningOutcome, error) {
	target, err := s.users.GetByUsername(ctx, targetUsername)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("warning target does not exist",
				slog.String("actor", actorUsername), slog.String("target", targetUsername))
			s.auditLogger.LogModerationAction(pkglogger.AuditEvent{
				EventType:     "warning_denied",
				Actor:         actorUsername,
				Target:        targetUsername,
				FailureReason: "target_not_found",
				Success:       false,
			})
			return nil, nil
		}
		s.logger.Error("failed to get warning target", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !policy.CanWarn(actorRoles, target.Roles) {
		s.recordEvent(ctx, models.EventWarningDenied, actorUsername, target.Username, "target role set not warnable")
		s.auditLogger.LogModerationAction(pkglogger.AuditEvent{
			EventType:     "warning_denied",
			Actor:         actorUsername,
			Target:        target.Username,
			FailureReason: "target_not_warnable",
			Success:       false,
		})
		return nil, nil
	}

	outcome, err := s.ledger.RecordWarning(ctx, target.ID)
	if err != nil {
		s.logger.Error("failed to record warning", slog.String("user_id", target.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.recordEvent(ctx, models.EventWarningIssued, actorUsername, target.Username,
		"warning count now "+strconv.Itoa(outcome.NewCount))
	s.auditLogger.LogModerationAction(pkglogger.AuditEvent{
		EventType: "warning_issued",
		Actor:     actorUsername,
		Target:    target.Username,
		Success:   true,
		Metadata:  map[string]string{"warning_count": strconv.Itoa(outcome.NewCount)},
	})

	if outcome.LockoutTriggered {
		if err := s.applyLockout(ctx, actorUsername, target); err != nil {
			return nil, err
		}
	}

	return outcome, nil
}

// applyLockout suspends the target and bumps the derived lockout counter.
// The warning that tripped the threshold is already persisted, so a failure
// here leaves the count correct and only the suspension missing.
func (s *ModerationService) applyLockout(ctx context.Context, actorUsername string, target *models.User) error {
	until := time.Now().UTC().Add(s.lockoutFor)

	if err := s.users.SetLockoutEnd(ctx, target.ID, until); err != nil {
		s.logger.Error("failed to apply lockout", slog.String("user_id", target.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.ledger.IncrementLockoutCount(ctx, target.ID); err != nil {
		s.logger.Error("failed to increment lockout count", slog.String("user_id", target.ID), slog.Any("error", err))
	}

	s.recordEvent(ctx, models.EventLockoutApplied, actorUsername, target.Username,
		"locked until "+until.Format(time.RFC3339))
	s.auditLogger.LogModerationAction(pkglogger.AuditEvent{
		EventType: "lockout_applied",
		Actor:     actorUsername,
		Target:    target.Username,
		Success:   true,
		Metadata:  map[string]string{"lockout_end": until.Format(time.RFC3339)},
	})

	return nil
}

// ChangeUsername renames the calling user, spending one username change token.
// Validation runs before the token is touched; once the token is consumed a
// failed identity write does not refund it. Ledger and identity storage are
// separate, so a crash between the two leaves a consumed token and an
// unchanged name, which an admin can repair via the counter override.
func (s *ModerationService) ChangeUsername(ctx context.Context, userID, newUsername string) (*models.User, error) {
	newUsername = strings.TrimSpace(newUsername)

	if len(newUsername) < models.UsernameMinLen || len(newUsername) > models.UsernameMaxLen {
		return nil, models.ErrInvalidLength
	}

	lowered := strings.ToLower(newUsername)
	for _, part := range reservedNameParts {
		if strings.Contains(lowered, part) {
			return nil, models.ErrNameReserved
		}
	}

	taken, err := s.users.UsernameTaken(ctx, newUsername, userID)
	if err != nil {
		s.logger.Error("failed to check username availability", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if taken {
		return nil, models.ErrNameTaken
	}

	if err := s.ledger.ConsumeUsernameToken(ctx, userID); err != nil {
		if errors.Is(err, models.ErrTokenExhausted) {
			return nil, models.ErrTokenExhausted
		}
		s.logger.Error("failed to consume username token", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user for rename", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	oldUsername := user.Username
	user.Username = newUsername
	user.NormalizedUsername = models.NormalizeName(newUsername)

	updated, err := s.users.Update(ctx, userID, user)
	if err != nil {
		s.logger.Error("failed to update username after token spend",
			slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.recordEvent(ctx, models.EventUsernameChanged, oldUsername, updated.Username,
		fmt.Sprintf("renamed from %q", oldUsername))
	s.auditLogger.LogAccountAction("username_changed", oldUsername, updated.Username,
		map[string]string{"user_id": userID})

	return updated, nil
}

// GetLedger returns the target's trust record, creating the default entry on
// first read.
func (s *ModerationService) GetLedger(ctx context.Context, userID string) (*models.LedgerEntry, error) {
	entry, err := s.ledger.GetOrCreate(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrBadRequest) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get ledger entry", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return entry, nil
}

// History returns the moderation events recorded against a username, newest
// first.
func (s *ModerationService) History(ctx context.Context, target string, limit, offset int) ([]*models.ModerationEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	events, err := s.events.GetByTarget(ctx, target, limit, offset)
	if err != nil {
		s.logger.Error("failed to get moderation history", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return events, nil
}

// recordEvent appends to the persistent audit trail. Trail writes never fail
// the moderation action itself.
func (s *ModerationService) recordEvent(ctx context.Context, eventType, actor, target, detail string) {
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
