package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/database"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/google/uuid"
)

type CommentRepository struct {
	db *database.DB
}

func NewCommentRepository(db *database.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `id, post_id, text, author, created_at`

func scanCommentRow(scanner rowScanner) (*models.Comment, error) {
	var comment models.Comment

	err := scanner.Scan(&comment.ID, &comment.PostID, &comment.Text, &comment.Author, &comment.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &comment, nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	return scanCommentRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1 ORDER BY created_at`

	rows, err := r.db.Pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		comment, err := scanCommentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return comments, nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	comment.ID = uuid.New().String()
	comment.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO comments (id, post_id, text, author, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + commentColumns

	return scanCommentRow(r.db.Pool.QueryRow(ctx, query,
		comment.ID, comment.PostID, comment.Text, comment.Author, comment.CreatedAt,
	))
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM comments WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
