package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/HardcoreMagazine/selenicspark/internal/database"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/google/uuid"
)

type RoleRepository struct {
	db *database.DB
}

func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func scanRoleRow(scanner rowScanner) (*models.Role, error) {
	var role models.Role

	if err := scanner.Scan(&role.ID, &role.Name, &role.NormalizedName); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &role, nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id string) (*models.Role, error) {
	query := `SELECT id, name, normalized_name FROM roles WHERE id = $1`

	return scanRoleRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	query := `SELECT id, name, normalized_name FROM roles WHERE normalized_name = $1`

	return scanRoleRow(r.db.Pool.QueryRow(ctx, query, models.NormalizeName(name)))
}

func (r *RoleRepository) List(ctx context.Context) ([]*models.Role, error) {
	query := `SELECT id, name, normalized_name FROM roles ORDER BY name`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := make([]*models.Role, 0)
	for rows.Next() {
		role, err := scanRoleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return roles, nil
}

func (r *RoleRepository) Create(ctx context.Context, name string) (*models.Role, error) {
	role := &models.Role{
		ID:             uuid.New().String(),
		Name:           name,
		NormalizedName: models.NormalizeName(name),
	}

	query := `
		INSERT INTO roles (id, name, normalized_name)
		VALUES ($1, $2, $3)
		RETURNING id, name, normalized_name
	`

	return scanRoleRow(r.db.Pool.QueryRow(ctx, query, role.ID, role.Name, role.NormalizedName))
}

func (r *RoleRepository) Rename(ctx context.Context, id, newName string) (*models.Role, error) {
	query := `
		UPDATE roles
		SET name = $1, normalized_name = $2
		WHERE id = $3
		RETURNING id, name, normalized_name
	`

	return scanRoleRow(r.db.Pool.QueryRow(ctx, query, newName, models.NormalizeName(newName), id))
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM roles WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// EnsureExists inserts the role if absent, skipping silently when present.
// Used by startup seeding.
func (r *RoleRepository) EnsureExists(ctx context.Context, name string) error {
	query := `
		INSERT INTO roles (id, name, normalized_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (normalized_name) DO NOTHING
	`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, query, uuid.New().String(), name, models.NormalizeName(name)); err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}
