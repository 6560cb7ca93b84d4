package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/chatapi/internal/apperrors"
	"github.com/nkiryanov/chatapi/internal/models"
)

type MessageRepo struct {
	DB DBTX
}

const createMessage = `-- name: CreateMessage
INSERT INTO messages (author_id, recipient_id, message)
VALUES ($1, $2, $3)
RETURNING id, author_id, recipient_id, message, created_at
`

func (r *MessageRepo) CreateMessage(ctx context.Context, authorID int64, recipientID int64, body string) (models.Message, error) {
	if !storableText(body) {
		return models.Message{}, apperrors.ErrInvalidText
	}

	rows, _ := r.DB.Query(ctx, createMessage, authorID, recipientID, body)
	msg, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.Message, error) {
		var m models.Message
		err := row.Scan(&m.ID, &m.AuthorID, &m.RecipientID, &m.Body, &m.CreatedAt)
		return m, err
	})

	switch {
	case err == nil:
	case isBadText(err):
		return msg, apperrors.ErrInvalidText
	default:
		return msg, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

// Recipient resolved by username in subquery: unknown username matches nothing
// Messages with author that is not a user are skipped by the join
const listForRecipient = `-- name: ListForRecipient
SELECT m.id, m.author_id, m.recipient_id, m.message, m.created_at, u.username
FROM messages m
JOIN users u ON u.id = m.author_id
WHERE m.recipient_id = (SELECT id FROM users WHERE username = $1)
ORDER BY m.created_at DESC, m.id DESC
`

func (r *MessageRepo) ListForRecipient(ctx context.Context, username string) ([]models.Message, error) {
	if !storableText(username) {
		return []models.Message{}, nil
	}

	rows, _ := r.DB.Query(ctx, listForRecipient, username)
	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Message, error) {
		var m models.Message
		err := row.Scan(&m.ID, &m.AuthorID, &m.RecipientID, &m.Body, &m.CreatedAt, &m.Author)
		return m, err
	})

	switch {
	case err == nil:
	case isBadText(err):
		return []models.Message{}, nil
	default:
		return nil, fmt.Errorf("db error: %w", err)
	}

	return messages, nil
}
