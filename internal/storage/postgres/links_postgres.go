package postgres

import (
	"RoleChat/internal/app_errors"
	"RoleChat/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LinksPostgres struct {
	db *pgxpool.Pool
}

func NewLinksPostgres(db *pgxpool.Pool) *LinksPostgres {
	return &LinksPostgres{db: db}
}

func (r *LinksPostgres) CreateLink(ctx context.Context, link models.LoginLink) error {
	query := `
		INSERT INTO login_links (id, email, secret_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, query, link.ID, link.Email, link.SecretHash, link.ExpiresAt); err != nil {
		return fmt.Errorf("failed to insert login link: %w", err)
	}
	return nil
}

func (r *LinksPostgres) LinkByID(ctx context.Context, id uuid.UUID) (*models.LoginLink, error) {
	query := `SELECT id, email, secret_hash, created_at, expires_at FROM login_links WHERE id = $1`
	var link models.LoginLink
	err := r.db.QueryRow(ctx, query, id).Scan(&link.ID, &link.Email, &link.SecretHash, &link.CreatedAt, &link.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

// DeleteLink reports whether a row was removed, so that two concurrent
// verifications of the same link cannot both succeed.
func (r *LinksPostgres) DeleteLink(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM login_links WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete login link: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *LinksPostgres) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM login_links WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge login links: %w", err)
	}
	return tag.RowsAffected(), nil
}
