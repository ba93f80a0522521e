package integration

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/HardcoreMagazine/selenicspark/internal/repositories"
)

func TestLedger_LazyDefaultEntry(t *testing.T) {
	testDB, ctx := setupTest(t)
	user := createTestUser(t, ctx, testDB.DB, "lazy_entry")

	repo := repositories.NewLedgerRepository(testDB.DB)

	entry, err := repo.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, entry.UsernameChangeTokens)
	assert.Equal(t, 0, entry.UserWarningsCount)
	assert.Equal(t, 0, entry.UserLockoutCount)
}

func TestLedger_ConcurrentWarningsLoseNoIncrements(t *testing.T) {
	testDB, ctx := setupTest(t)
	user := createTestUser(t, ctx, testDB.DB, "warn_target")

	repo := repositories.NewLedgerRepository(testDB.DB)

	const warnings = 20

	var wg sync.WaitGroup
	errs := make(chan error, warnings)
	lockouts := make(chan int, warnings)

	for i := 0; i < warnings; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := repo.RecordWarning(ctx, user.ID)
			if err != nil {
				errs <- err
				return
			}
			if outcome.LockoutTriggered {
				lockouts <- outcome.NewCount
			}
		}()
	}
	wg.Wait()
	close(errs)
	close(lockouts)

	for err := range errs {
		t.Fatalf("concurrent warning failed: %v", err)
	}

	entry, err := repo.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, warnings, entry.UserWarningsCount)

	// 20 warnings cross the threshold at 5, 10, 15 and 20; each crossing is
	// observed by exactly one caller.
	triggered := make([]int, 0, 4)
	for count := range lockouts {
		triggered = append(triggered, count)
	}
	assert.Len(t, triggered, 4)
	for _, count := range triggered {
		assert.Zero(t, count%models.WarningLockoutStep)
	}
}

func TestLedger_ConcurrentTokenConsumption(t *testing.T) {
	testDB, ctx := setupTest(t)
	user := createTestUser(t, ctx, testDB.DB, "rename_racer")

	repo := repositories.NewLedgerRepository(testDB.DB)

	const attempts = 10

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.ConsumeUsernameToken(ctx, user.ID)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	exhausted := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrTokenExhausted):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// The default entry holds exactly one token.
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, exhausted)

	entry, err := repo.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.UsernameChangeTokens)
}

func TestLedger_AdjustCountersIgnoresNegatives(t *testing.T) {
	testDB, ctx := setupTest(t)
	user := createTestUser(t, ctx, testDB.DB, "adjust_target")

	repo := repositories.NewLedgerRepository(testDB.DB)

	tokens := 5
	negative := -3
	err := repo.AdjustCounters(ctx, user.ID, models.LedgerAdjustment{
		UsernameChangeTokens: &tokens,
		UserWarningsCount:    &negative,
	})
	require.NoError(t, err)

	entry, err := repo.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, entry.UsernameChangeTokens)
	assert.Equal(t, 0, entry.UserWarningsCount)
}

func TestLedger_DeletedUserCascades(t *testing.T) {
	testDB, ctx := setupTest(t)
	user := createTestUser(t, ctx, testDB.DB, "doomed_user")

	ledgerRepo := repositories.NewLedgerRepository(testDB.DB)
	userRepo := repositories.NewUserRepository(testDB.DB)

	_, err := ledgerRepo.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, userRepo.Delete(ctx, user.ID))

	var count int
	err = testDB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM trust_ledger WHERE user_id = $1`, user.ID).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}
