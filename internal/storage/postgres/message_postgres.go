package postgres

import (
	"RoleChat/internal/app_errors"
	"RoleChat/internal/models"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessagePostgres struct {
	db *pgxpool.Pool
}

func NewMessagePostgres(db *pgxpool.Pool) *MessagePostgres {
	return &MessagePostgres{db: db}
}

func (r *MessagePostgres) CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	query := `
		INSERT INTO messages (body, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, msg.Body, msg.UserID).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		if isCode(err, codeForeignKeyViolation) {
			return nil, app_errors.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return &msg, nil
}

// RecentMessages returns up to limit messages, newest first, joined with the
// author's display name.
func (r *MessagePostgres) RecentMessages(ctx context.Context, limit int) ([]models.MessageView, error) {
	query := `
		SELECT m.id, m.body, m.user_id, m.created_at, COALESCE(NULLIF(u.name, ''), u.email, '')
		FROM messages m
		INNER JOIN users u ON u.id = m.user_id
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	return collectViews(rows)
}

// MessagesByIDs hydrates search hits. Ids that no longer exist are skipped and
// the result keeps the order of ids.
func (r *MessagePostgres) MessagesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MessageView, error) {
	if len(ids) == 0 {
		return []models.MessageView{}, nil
	}
	query := `
		SELECT m.id, m.body, m.user_id, m.created_at, COALESCE(NULLIF(u.name, ''), u.email, '')
		FROM messages m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages by ids: %w", err)
	}
	views, err := collectViews(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.MessageView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}
	ordered := make([]models.MessageView, 0, len(views))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered, nil
}

func collectViews(rows pgx.Rows) ([]models.MessageView, error) {
	defer rows.Close()

	views := make([]models.MessageView, 0)
	for rows.Next() {
		var v models.MessageView
		if err := rows.Scan(&v.ID, &v.Body, &v.UserID, &v.CreatedAt, &v.Author); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return views, nil
}

// DeleteMessage removes the message. A missing id is not an error.
func (r *MessagePostgres) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM messages WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
