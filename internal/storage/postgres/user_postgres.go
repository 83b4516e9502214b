package postgres

import (
	"RoleChat/internal/app_errors"
	"RoleChat/internal/models"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserPostgres struct {
	db *pgxpool.Pool
}

func NewUserPostgres(db *pgxpool.Pool) *UserPostgres {
	return &UserPostgres{db: db}
}

const userColumns = `id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(image, ''), COALESCE(role, ''), created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var role string
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Image, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, err
	}
	user.Role = models.Role(role)
	return &user, nil
}

func (r *UserPostgres) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserPostgres) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// CreateUser inserts the user without a role; roles are assigned afterwards
// by the provisioning hook or by UpdateRole.
func (r *UserPostgres) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, image)
		VALUES (NULLIF($1, ''), NULLIF($2, ''), NULLIF($3, ''))
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, user.Name, user.Email, user.Image).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isCode(err, codeUniqueViolation) {
			return nil, app_errors.ErrUserExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	user.Role = ""
	return &user, nil
}

func (r *UserPostgres) SetRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	query := `UPDATE users SET role = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, string(role))
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrUserNotFound
	}
	return nil
}

func (r *UserPostgres) SetImage(ctx context.Context, id uuid.UUID, objectKey string) error {
	query := `UPDATE users SET image = NULLIF($2, '') WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, objectKey)
	if err != nil {
		return fmt.Errorf("failed to update image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrUserNotFound
	}
	return nil
}
