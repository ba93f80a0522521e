package repositories

import (
	"context"
	"fmt"

	"github.com/HardcoreMagazine/selenicspark/internal/database"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
)

// LedgerRepository persists the per-user trust record. All counter mutations
// are single atomic statements so concurrent moderation actions on the same
// user cannot lose updates.
type LedgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const ledgerColumns = `user_id, username_change_tokens, user_warnings_count, user_lockout_count, updated_at`

func scanLedgerRow(scanner rowScanner) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry

	err := scanner.Scan(
		&entry.UserID, &entry.UsernameChangeTokens,
		&entry.UserWarningsCount, &entry.UserLockoutCount,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &entry, nil
}

// GetOrCreate returns the user's ledger entry, inserting the default row
// (one username change token, zero warnings) if none exists yet. The upsert
// is idempotent, so concurrent first touches of the same user are safe.
func (r *LedgerRepository) GetOrCreate(ctx context.Context, userID string) (*models.LedgerEntry, error) {
	insert := `
		INSERT INTO trust_ledger (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := r.db.Pool.Exec(ctx, insert, userID); err != nil {
		return nil, database.MapPostgresError(err)
	}

	query := `SELECT ` + ledgerColumns + ` FROM trust_ledger WHERE user_id = $1`

	return scanLedgerRow(r.db.Pool.QueryRow(ctx, query, userID))
}

// ConsumeUsernameToken atomically decrements the token counter. Returns
// ErrTokenExhausted when no tokens remain; the counter never goes below zero.
func (r *LedgerRepository) ConsumeUsernameToken(ctx context.Context, userID string) error {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	query := `
		UPDATE trust_ledger
		SET username_change_tokens = username_change_tokens - 1, updated_at = NOW()
		WHERE user_id = $1 AND username_change_tokens > 0
	`

	result, err := r.db.Pool.Exec(ctx, query, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrTokenExhausted
	}

	return nil
}

// RecordWarning atomically increments the warning counter and reports whether
// the new count crossed a lockout threshold (every 5th warning: 5, 10, 15, ...).
// The increment-and-return is one statement, so N concurrent warnings yield
// exactly N increments.
func (r *LedgerRepository) RecordWarning(ctx context.Context, userID string) (*models.WarningOutcome, error) {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	query := `
		UPDATE trust_ledger
		SET user_warnings_count = user_warnings_count + 1, updated_at = NOW()
		WHERE user_id = $1
		RETURNING user_warnings_count
	`

	var newCount int
	if err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&newCount); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &models.WarningOutcome{
		NewCount:         newCount,
		LockoutTriggered: newCount > 0 && newCount%models.WarningLockoutStep == 0,
	}, nil
}

// IncrementLockoutCount bumps the derived lockout counter after a threshold
// trip has been applied to the identity record.
func (r *LedgerRepository) IncrementLockoutCount(ctx context.Context, userID string) error {
	query := `
		UPDATE trust_ledger
		SET user_lockout_count = user_lockout_count + 1, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// AdjustCounters applies an admin override to the raw counters. Nil or
// negative fields are skipped silently; no threshold side effects fire.
func (r *LedgerRepository) AdjustCounters(ctx context.Context, userID string, adj models.LedgerAdjustment) error {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	set := ""
	args := []interface{}{userID}

	if adj.UsernameChangeTokens != nil && *adj.UsernameChangeTokens >= 0 {
		args = append(args, *adj.UsernameChangeTokens)
		set += fmt.Sprintf(", username_change_tokens = $%d", len(args))
	}
	if adj.UserWarningsCount != nil && *adj.UserWarningsCount >= 0 {
		args = append(args, *adj.UserWarningsCount)
		set += fmt.Sprintf(", user_warnings_count = $%d", len(args))
	}

	if set == "" {
		return nil
	}

	query := `UPDATE trust_ledger SET updated_at = NOW()` + set + ` WHERE user_id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, args...); err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}
