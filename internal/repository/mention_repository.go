package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// MentionRepository encapsulates mention persistence.
type MentionRepository interface {
	Create(ctx context.Context, mention *domain.Mention) error
	GetByID(ctx context.Context, id int64) (*domain.Mention, error)
	ListUnread(ctx context.Context, userID int64, limit int) ([]domain.UnreadMention, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

type mentionRepository struct {
	pool *pgxpool.Pool
}

// NewMentionRepository instantiates repository.
func NewMentionRepository(pool *pgxpool.Pool) MentionRepository {
	return &mentionRepository{pool: pool}
}

func (r *mentionRepository) Create(ctx context.Context, mention *domain.Mention) error {
	const query = `
        INSERT INTO mentions (ticket_id, comment_id, mentioned_user_id, mentioned_by, is_read)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		mention.TicketID,
		mention.CommentID,
		mention.MentionedUserID,
		mention.MentionedByID,
		mention.Read,
	).Scan(&mention.ID, &mention.CreatedAt)
}

func (r *mentionRepository) GetByID(ctx context.Context, id int64) (*domain.Mention, error) {
	const query = `
        SELECT id, ticket_id, comment_id, mentioned_user_id, mentioned_by, is_read, created_at
        FROM mentions WHERE id=$1`
	var mention domain.Mention
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&mention.ID,
		&mention.TicketID,
		&mention.CommentID,
		&mention.MentionedUserID,
		&mention.MentionedByID,
		&mention.Read,
		&mention.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &mention, nil
}

func (r *mentionRepository) ListUnread(ctx context.Context, userID int64, limit int) ([]domain.UnreadMention, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT m.id, m.ticket_id, m.comment_id, m.mentioned_by,
               COALESCE(u.name, ''), COALESCE(t.subject, ''), COALESCE(c.body, ''), m.created_at
        FROM mentions m
        LEFT JOIN users u ON u.id = m.mentioned_by
        LEFT JOIN tickets t ON t.id = m.ticket_id
        LEFT JOIN ticket_comments c ON c.id = m.comment_id
        WHERE m.mentioned_user_id=$1 AND m.is_read = FALSE
        ORDER BY m.created_at DESC
        LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.UnreadMention
	for rows.Next() {
		var m domain.UnreadMention
		if err := rows.Scan(
			&m.ID,
			&m.TicketID,
			&m.CommentID,
			&m.MentionedByID,
			&m.MentionedBy,
			&m.TicketSubject,
			&m.CommentBody,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// MarkRead is idempotent: marking an already-read mention affects zero rows
// and is not an error.
func (r *mentionRepository) MarkRead(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE mentions SET is_read = TRUE WHERE id=$1`, id)
	return err
}

func (r *mentionRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE mentions SET is_read = TRUE WHERE mentioned_user_id=$1 AND is_read = FALSE`, userID)
	return err
}
