package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/database"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, normalized_username, email, normalized_email, password_hash, email_confirmed, lockout_end, access_failed_count, created_at, updated_at`

// rowScanner interface for scanning user rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var passwordHash *string
	var lockoutEnd *time.Time

	err := scanner.Scan(
		&user.ID, &user.Username, &user.NormalizedUsername,
		&user.Email, &user.NormalizedEmail, &passwordHash,
		&user.EmailConfirmed, &lockoutEnd, &user.AccessFailedCount,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	user.LockoutEnd = lockoutEnd

	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// loadRoles populates user.Roles from the user_roles join table.
func (r *UserRepository) loadRoles(ctx context.Context, user *models.User) error {
	query := `
		SELECT ro.name FROM roles ro
		JOIN user_roles ur ON ur.role_id = ro.id
		WHERE ur.user_id = $1
		ORDER BY ro.name
	`

	rows, err := r.db.Pool.Query(ctx, query, user.ID)
	if err != nil {
		return fmt.Errorf("failed to query user roles: %w", err)
	}
	defer rows.Close()

	roles := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating roles: %w", err)
	}

	user.Roles = roles
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadRoles(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetByUsername resolves a user by name, case-insensitively via the normalized
// column.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE normalized_username = $1`

	user, err := scanUserRow(r.db.Pool.QueryRow(ctx, query, models.NormalizeName(username)))
	if err != nil {
		return nil, err
	}

	if err := r.loadRoles(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	users, err := scanUserRows(rows)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		if err := r.loadRoles(ctx, user); err != nil {
			return nil, err
		}
	}

	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()
	user.NormalizedUsername = models.NormalizeName(user.Username)
	user.NormalizedEmail = models.NormalizeName(user.Email)

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, username, normalized_username, email, normalized_email, password_hash, email_confirmed, lockout_end, access_failed_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + userColumns

	var passwordHash *string
	if user.PasswordHash != "" {
		passwordHash = &user.PasswordHash
	}

	created, err := scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.ID, user.Username, user.NormalizedUsername,
		user.Email, user.NormalizedEmail, passwordHash,
		user.EmailConfirmed, user.LockoutEnd, user.AccessFailedCount,
		user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}

	created.Roles = []string{}
	return created, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = $1, normalized_username = $2, email = $3, normalized_email = $4,
		    email_confirmed = $5, lockout_end = $6, access_failed_count = $7, updated_at = $8
		WHERE id = $9
		RETURNING ` + userColumns

	updated, err := scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.Username, user.NormalizedUsername, user.Email, user.NormalizedEmail,
		user.EmailConfirmed, user.LockoutEnd, user.AccessFailedCount, user.UpdatedAt, id,
	))
	if err != nil {
		return nil, err
	}

	if err := r.loadRoles(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// SetLockoutEnd persists only the lockout timestamp, leaving the rest of the
// identity row untouched.
func (r *UserRepository) SetLockoutEnd(ctx context.Context, id string, until time.Time) error {
	query := `UPDATE users SET lockout_end = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.Pool.Exec(ctx, query, until, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UsernameTaken reports whether any user other than excludeID already holds
// the name, compared case-insensitively.
func (r *UserRepository) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE normalized_username = $1 AND id <> $2)`

	var taken bool
	err := r.db.Pool.QueryRow(ctx, query, models.NormalizeName(username), excludeID).Scan(&taken)
	if err != nil {
		return false, database.MapPostgresError(err)
	}

	return taken, nil
}

func (r *UserRepository) AddRole(ctx context.Context, userID, roleID string) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := r.db.Pool.Exec(ctx, query, userID, roleID); err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

func (r *UserRepository) RemoveRole(ctx context.Context, userID, roleID string) error {
	query := `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`

	if _, err := r.db.Pool.Exec(ctx, query, userID, roleID); err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}
