package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindMatch picks the longest pattern contained in rawName, compared
// case-insensitively as plain text; newer mappings win ties.
func (s *Store) FindMatch(ctx context.Context, rawName string) (string, error) {
	query := `
		SELECT canonical_name
		FROM item_name_mappings
		WHERE strpos(lower($1), lower(raw_pattern)) > 0
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var canonical string

	err := s.db.QueryRowContext(ctx, query, rawName).Scan(&canonical)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding item name: %w", err)
	}

	return canonical, nil
}

func (s *Store) CreateMapping(ctx context.Context, rawPattern, canonicalName string) error {
	query := `
		INSERT INTO item_name_mappings (raw_pattern, canonical_name, created_at)
		VALUES ($1, $2, NOW())
	`

	if _, err := s.db.ExecContext(ctx, query, rawPattern, canonicalName); err != nil {
		return fmt.Errorf("creating item name mapping: %w", err)
	}

	return nil
}
