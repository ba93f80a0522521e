package services

import (
	"context"
	"testing"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/stretchr/testify/assert"
)

func newModerationService(users *MockUserRepository, ledger *MockLedgerRepository, events *MockModerationEventRepository) *ModerationService {
	return NewModerationService(users, ledger, events, 168*time.Hour, testLogger(), testAuditLogger())
}

func plainUser(id, username string, roles ...string) *models.User {
	if roles == nil {
		roles = []string{}
	}
	return &models.User{
		ID:                 id,
		Username:           username,
		NormalizedUsername: models.NormalizeName(username),
		Roles:              roles,
	}
}

func TestModerationService_WarnUser_IncrementsCount(t *testing.T) {
	target := plainUser("user123", "alice", models.RoleUser)

	mockUsers := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return target, nil
		},
	}
	mockLedger := &MockLedgerRepository{
		RecordWarningFunc: func(ctx context.Context, userID string) (*models.WarningOutcome, error) {
			assert.Equal(t, "user123", userID)
			return &models.WarningOutcome{NewCount: 3, LockoutTriggered: false}, nil
		},
	}
	events := &MockModerationEventRepository{}

	svc := newModerationService(mockUsers, mockLedger, events)

	outcome, err := svc.WarnUser(context.Background(), "mod", []string{models.RoleModerator}, "alice")

	assert.NoError(t, err)
	assert.NotNil(t, outcome)
	assert.Equal(t, 3, outcome.NewCount)
	assert.False(t, outcome.LockoutTriggered)
	if assert.Len(t, events.Created, 1) {
		assert.Equal(t, models.EventWarningIssued, events.Created[0].EventType)
	}
}

func TestModerationService_WarnUser_FifthWarningLocksOut(t *testing.T) {
	target := plainUser("user123", "alice", models.RoleUser)

	var lockedUntil time.Time
	lockoutCounted := false

	mockUsers := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return target, nil
		},
		SetLockoutEndFunc: func(ctx context.Context, id string, until time.Time) error {
			lockedUntil = until
			return nil
		},
	}
	mockLedger := &MockLedgerRepository{
		RecordWarningFunc: func(ctx context.Context, userID string) (*models.WarningOutcome, error) {
			return &models.WarningOutcome{NewCount: 5, LockoutTriggered: true}, nil
		},
		IncrementLockoutCountFunc: func(ctx context.Context, userID string) error {
			lockoutCounted = true
			return nil
		},
	}
	events := &MockModerationEventRepository{}

	svc := newModerationService(mockUsers, mockLedger, events)

	before := time.Now().UTC()
	outcome, err := svc.WarnUser(context.Background(), "admin", []string{models.RoleAdmin}, "alice")

	assert.NoError(t, err)
	assert.True(t, outcome.LockoutTriggered)
	assert.True(t, lockoutCounted)
	assert.WithinDuration(t, before.Add(168*time.Hour), lockedUntil, 5*time.Second)

	types := make([]string, 0, len(events.Created))
	for _, e := range events.Created {
		types = append(types, e.EventType)
	}
	assert.Contains(t, types, models.EventWarningIssued)
	assert.Contains(t, types, models.EventLockoutApplied)
}

func TestModerationService_WarnUser_AdminTargetIsNoOp(t *testing.T) {
	target := plainUser("admin1", "root", models.RoleAdmin)

	warningRecorded := false

	mockUsers := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return target, nil
		},
	}
	mockLedger := &MockLedgerRepository{
		RecordWarningFunc: func(ctx context.Context, userID string) (*models.WarningOutcome, error) {
			warningRecorded = true
			return &models.WarningOutcome{NewCount: 1}, nil
		},
	}
	events := &MockModerationEventRepository{}

	svc := newModerationService(mockUsers, mockLedger, events)

	outcome, err := svc.WarnUser(context.Background(), "mod", []string{models.RoleModerator}, "root")

	assert.NoError(t, err)
	assert.Nil(t, outcome)
	assert.False(t, warningRecorded)
	if assert.Len(t, events.Created, 1) {
		assert.Equal(t, models.EventWarningDenied, events.Created[0].EventType)
	}
}

func TestModerationService_WarnUser_ModeratorCannotWarnModerator(t *testing.T) {
	target := plainUser("mod2", "bob", models.RoleModerator)

	mockUsers := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return target, nil
		},
	}
	events := &MockModerationEventRepository{}

	svc := newModerationService(mockUsers, &MockLedgerRepository{}, events)

	outcome, err := svc.WarnUser(context.Background(), "mod1", []string{models.RoleModerator}, "bob")

	assert.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestModerationService_WarnUser_AbsentTargetIsNoOp(t *testing.T) {
	warningRecorded := false
	mockLedger := &MockLedgerRepository{
		RecordWarningFunc: func(ctx context.Context, userID string) (*models.WarningOutcome, error) {
			warningRecorded = true
			return &models.WarningOutcome{NewCount: 1}, nil
		},
	}

	svc := newModerationService(&MockUserRepository{}, mockLedger, &MockModerationEventRepository{})

	outcome, err := svc.WarnUser(context.Background(), "admin", []string{models.RoleAdmin}, "ghost")

	assert.NoError(t, err)
	assert.Nil(t, outcome)
	assert.False(t, warningRecorded)
}

func TestModerationService_ChangeUsername_Success(t *testing.T) {
	user := plainUser("user123", "alice", models.RoleUser)

	tokenConsumed := false

	mockUsers := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
		UpdateFunc: func(ctx context.Context, id string, u *models.User) (*models.User, error) {
			return u, nil
		},
	}
	mockLedger := &MockLedgerRepository{
		ConsumeUsernameTokenFunc: func(ctx context.Context, userID string) error {
			tokenConsumed = true
			return nil
		},
	}
	events := &MockModerationEventRepository{}

	svc := newModerationService(mockUsers, mockLedger, events)

	updated, err := svc.ChangeUsername(context.Background(), "user123", "newname")

	assert.NoError(t, err)
	assert.True(t, tokenConsumed)
	assert.Equal(t, "newname", updated.Username)
	assert.Equal(t, "NEWNAME", updated.NormalizedUsername)
	if assert.Len(t, events.Created, 1) {
		assert.Equal(t, models.EventUsernameChanged, events.Created[0].EventType)
	}
}

func TestModerationService_ChangeUsername_SecondChangeExhausted(t *testing.T) {
	mockLedger := &MockLedgerRepository{
		ConsumeUsernameTokenFunc: func(ctx context.Context, userID string) error {
			return models.ErrTokenExhausted
		},
	}

	svc := newModerationService(&MockUserRepository{}, mockLedger, &MockModerationEventRepository{})

	updated, err := svc.ChangeUsername(context.Background(), "user123", "newname")

	assert.Nil(t, updated)
	assert.Equal(t, models.ErrTokenExhausted, err)
}

func TestModerationService_ChangeUsername_LengthBounds(t *testing.T) {
	svc := newModerationService(&MockUserRepository{}, &MockLedgerRepository{}, &MockModerationEventRepository{})

	tests := []struct {
		name     string
		username string
		wantErr  error
	}{
		{"too short", "abc", models.ErrInvalidLength},
		{"too long", "abcdefghijklmnopqrstuvwxy", models.ErrInvalidLength},
		{"whitespace only", "    ", models.ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ChangeUsername(context.Background(), "user123", tt.username)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestModerationService_ChangeUsername_ReservedWords(t *testing.T) {
	tokenConsumed := false
	mockLedger := &MockLedgerRepository{
		ConsumeUsernameTokenFunc: func(ctx context.Context, userID string) error {
			tokenConsumed = true
			return nil
		},
	}

	svc := newModerationService(&MockUserRepository{}, mockLedger, &MockModerationEventRepository{})

	for _, name := range []string{"site_Admin", "moderator2", "MODERATORX", "suPPort1"} {
		_, err := svc.ChangeUsername(context.Background(), "user123", name)
		assert.Equal(t, models.ErrNameReserved, err, "username %q", name)
	}

	// Validation failures never touch the token.
	assert.False(t, tokenConsumed)
}

func TestModerationService_ChangeUsername_NameTaken(t *testing.T) {
	mockUsers := &MockUserRepository{
		UsernameTakenFunc: func(ctx context.Context, username, excludeID string) (bool, error) {
			return true, nil
		},
	}

	svc := newModerationService(mockUsers, &MockLedgerRepository{}, &MockModerationEventRepository{})

	_, err := svc.ChangeUsername(context.Background(), "user123", "occupied")

	assert.Equal(t, models.ErrNameTaken, err)
}

func TestModerationService_ChangeUsername_NoRefundOnUpdateFailure(t *testing.T) {
	user := plainUser("user123", "alice", models.RoleUser)

	consumed := 0

	mockUsers := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
		UpdateFunc: func(ctx context.Context, id string, u *models.User) (*models.User, error) {
			return nil, models.ErrInternalServer
		},
	}
	mockLedger := &MockLedgerRepository{
		ConsumeUsernameTokenFunc: func(ctx context.Context, userID string) error {
			consumed++
			return nil
		},
	}

	svc := newModerationService(mockUsers, mockLedger, &MockModerationEventRepository{})

	_, err := svc.ChangeUsername(context.Background(), "user123", "newname")

	assert.Equal(t, models.ErrInternalServer, err)
	assert.Equal(t, 1, consumed)
}

func TestModerationService_GetLedger_DefaultEntry(t *testing.T) {
	mockLedger := &MockLedgerRepository{
		GetOrCreateFunc: func(ctx context.Context, userID string) (*models.LedgerEntry, error) {
			return &models.LedgerEntry{UserID: userID, UsernameChangeTokens: 1, UserWarningsCount: 0}, nil
		},
	}

	svc := newModerationService(&MockUserRepository{}, mockLedger, &MockModerationEventRepository{})

	entry, err := svc.GetLedger(context.Background(), "user123")

	assert.NoError(t, err)
	assert.Equal(t, 1, entry.UsernameChangeTokens)
	assert.Equal(t, 0, entry.UserWarningsCount)
}

func TestModerationService_History_ClampsPagination(t *testing.T) {
	var gotLimit, gotOffset int
	events := &MockModerationEventRepository{
		GetByTargetFunc: func(ctx context.Context, target string, limit, offset int) ([]*models.ModerationEvent, error) {
			gotLimit, gotOffset = limit, offset
			return []*models.ModerationEvent{}, nil
		},
	}

	svc := newModerationService(&MockUserRepository{}, &MockLedgerRepository{}, events)

	_, err := svc.History(context.Background(), "alice", -1, -5)

	assert.NoError(t, err)
	assert.Equal(t, 50, gotLimit)
	assert.Equal(t, 0, gotOffset)
}
