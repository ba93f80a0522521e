package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/database"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/google/uuid"
)

// ModerationEventRepository persists the moderation audit trail.
type ModerationEventRepository struct {
	db *database.DB
}

func NewModerationEventRepository(db *database.DB) *ModerationEventRepository {
	return &ModerationEventRepository{db: db}
}

func (r *ModerationEventRepository) Create(ctx context.Context, event *models.ModerationEvent) (*models.ModerationEvent, error) {
	event.ID = uuid.New().String()
	event.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO moderation_events (id, event_type, actor, target, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, event_type, actor, target, detail, created_at
	`

	var created models.ModerationEvent
	err := r.db.Pool.QueryRow(ctx, query,
		event.ID, event.EventType, event.Actor, event.Target, event.Detail, event.CreatedAt,
	).Scan(&created.ID, &created.EventType, &created.Actor, &created.Target, &created.Detail, &created.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &created, nil
}

func (r *ModerationEventRepository) GetByTarget(ctx context.Context, target string, limit, offset int) ([]*models.ModerationEvent, error) {
	query := `
		SELECT id, event_type, actor, target, detail, created_at
		FROM moderation_events
		WHERE target = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, target, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query moderation events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.ModerationEvent, 0)
	for rows.Next() {
		var event models.ModerationEvent
		err := rows.Scan(&event.ID, &event.EventType, &event.Actor, &event.Target, &event.Detail, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moderation event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return events, nil
}

// CleanupOlderThan prunes audit events past the retention window.
func (r *ModerationEventRepository) CleanupOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM moderation_events WHERE created_at < $1`

	result, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
