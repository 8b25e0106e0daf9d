package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dermanow/dermanow/internal/identity"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetUser(ctx context.Context, address string) (*identity.User, error) {
	query := `
		SELECT wallet_address, role, display_name, created_at
		FROM users
		WHERE wallet_address = $1
	`

	var (
		u    identity.User
		role string
	)

	err := s.db.QueryRowContext(ctx, query, address).Scan(&u.Address, &role, &u.DisplayName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	u.Role = identity.Role(role)

	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *identity.User) error {
	query := `
		INSERT INTO users (wallet_address, role, display_name, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query, u.Address, u.Role, u.DisplayName).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return identity.ErrAlreadyRegistered
		}

		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}
