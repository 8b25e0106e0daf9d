package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dermanow/dermanow/internal/chat"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateMessage(ctx context.Context, m *chat.Message) error {
	query := `
		INSERT INTO order_messages (order_id, author_address, body, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, m.OrderID, m.AuthorAddress, m.Body).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("creating message: %w", err)
	}

	return nil
}

func (s *Store) ListMessages(ctx context.Context, orderID uuid.UUID) ([]*chat.Message, error) {
	query := `
		SELECT id, order_id, author_address, body, created_at
		FROM order_messages
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []*chat.Message

	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.OrderID, &m.AuthorAddress, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}

		msgs = append(msgs, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return msgs, nil
}
