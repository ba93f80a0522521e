package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/database"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/jackc/pgx/v5"
)

// SearchFilter selects which post fields a substring search matches against.
type SearchFilter string

const (
	SearchTitles   SearchFilter = "titles"
	SearchText     SearchFilter = "text"
	SearchAuthor   SearchFilter = "author"
	SearchAnywhere SearchFilter = "anywhere"
)

type PostRepository struct {
	db *database.DB
}

func NewPostRepository(db *database.DB) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `id, title, text, author, created_at`

func scanPostRow(scanner rowScanner) (*models.Post, error) {
	var post models.Post

	err := scanner.Scan(&post.ID, &post.Title, &post.Text, &post.Author, &post.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &post, nil
}

func scanPostRows(rows pgx.Rows) ([]*models.Post, error) {
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		post, err := scanPostRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return posts, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	return scanPostRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}

	return scanPostRows(rows)
}

// Search matches phrase as a substring against the filtered fields.
func (r *PostRepository) Search(ctx context.Context, phrase string, filter SearchFilter, limit, offset int) ([]*models.Post, error) {
	pattern := "%" + phrase + "%"

	var where string
	switch filter {
	case SearchTitles:
		where = `title ILIKE $1`
	case SearchText:
		where = `text ILIKE $1`
	case SearchAuthor:
		where = `author ILIKE $1`
	default:
		where = `title ILIKE $1 OR text ILIKE $1 OR author ILIKE $1`
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE ` + where +
		` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Pool.Query(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	return scanPostRows(rows)
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	post.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO posts (title, text, author, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + postColumns

	return scanPostRow(r.db.Pool.QueryRow(ctx, query, post.Title, post.Text, post.Author, post.CreatedAt))
}

// Update writes title and text only; id, author and created_at are immutable.
func (r *PostRepository) Update(ctx context.Context, id int64, title string, text *string) (*models.Post, error) {
	query := `
		UPDATE posts
		SET title = $1, text = $2
		WHERE id = $3
		RETURNING ` + postColumns

	return scanPostRow(r.db.Pool.QueryRow(ctx, query, title, text, id))
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
