package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/computer-agent/backend/internal/model"
)

// MessageRepository provides data access for session messages.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message into the database.
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	contentJSON, err := message.ContentToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize content: %w", err)
	}

	query := `
		INSERT INTO messages (id, session_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		message.ID,
		message.SessionID,
		message.Role,
		contentJSON,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// ListBySession retrieves messages for a session in chronological order.
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID string, offset, limit int) ([]*model.Message, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, session_id, role, content, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at ASC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		message := &model.Message{}
		var contentJSON string

		err := rows.Scan(
			&message.ID,
			&message.SessionID,
			&message.Role,
			&contentJSON,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		if err := message.ContentFromJSON(contentJSON); err != nil {
			return nil, fmt.Errorf("failed to parse content: %w", err)
		}

		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// GetByID retrieves a single message by its ID.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*model.Message, error) {
	query := `
		SELECT id, session_id, role, content, created_at
		FROM messages
		WHERE id = ?
	`

	message := &model.Message{}
	var contentJSON string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&message.ID,
		&message.SessionID,
		&message.Role,
		&contentJSON,
		&message.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("message not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	if err := message.ContentFromJSON(contentJSON); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	return message, nil
}

// CountBySession returns the number of messages stored for a session.
func (r *MessageRepository) CountBySession(ctx context.Context, sessionID string) (int, error) {
	query := `SELECT COUNT(*) FROM messages WHERE session_id = ?`

	var count int
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}

	return count, nil
}
