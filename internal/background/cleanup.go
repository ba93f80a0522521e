package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/repositories"
)

// CleanupManager periodically prunes moderation events past the retention
// window. Trust ledger counters are never touched; only the audit trail ages
// out.
type CleanupManager struct {
	eventRepo *repositories.ModerationEventRepository
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	eventRepo *repositories.ModerationEventRepository,
	logger *slog.Logger,
	interval time.Duration,
	retention time.Duration,
) *CleanupManager {
	return &CleanupManager{
		eventRepo: eventRepo,
		logger:    logger,
		interval:  interval,
		retention: retention,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// runCleanup removes moderation events older than the retention window
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-cm.retention)

	rowsDeleted, err := cm.eventRepo.CleanupOlderThan(cleanupCtx, cutoff)
	if err != nil {
		cm.logger.Error("failed to cleanup moderation events", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("moderation event cleanup completed", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
