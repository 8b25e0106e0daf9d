package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=identity
type Repository interface {
	GetUser(ctx context.Context, address string) (*User, error)
	CreateUser(ctx context.Context, u *User) error
}

// Cache holds role lookups keyed by normalized wallet address.
type Cache interface {
	GetRole(ctx context.Context, address string) (Role, bool, error)
	SetRole(ctx context.Context, address string, role Role) error
}

type Service struct {
	repo  Repository
	cache Cache
}

func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// LookupRole maps a wallet address to its role. Unknown wallets yield
// ErrNoRole; cache failures degrade to a store lookup. A failing store
// yields ErrUnavailable rather than ErrNoRole, so a registered wallet is
// never sent to registration during an outage.
func (s *Service) LookupRole(ctx context.Context, address string) (Role, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return RoleNone, err
	}

	if s.cache != nil {
		role, ok, err := s.cache.GetRole(ctx, addr)
		if err != nil {
			slog.Warn("role cache lookup failed", "address", addr, "error", err)
		} else if ok {
			return role, nil
		}
	}

	u, err := s.repo.GetUser(ctx, addr)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RoleNone, ErrNoRole
		}

		slog.Error("role lookup failed", "address", addr, "error", err)

		return RoleNone, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.remember(ctx, addr, u.Role)

	return u.Role, nil
}

func (s *Service) Get(ctx context.Context, address string) (*User, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	return s.repo.GetUser(ctx, addr)
}

// Register assigns a role to a wallet. A wallet registers once.
func (s *Service) Register(ctx context.Context, address string, role Role, displayName string) (*User, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, role)
	}

	u := &User{
		Address:     addr,
		Role:        role,
		DisplayName: strings.TrimSpace(displayName),
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.remember(ctx, addr, role)

	return u, nil
}

func (s *Service) remember(ctx context.Context, addr string, role Role) {
	if s.cache == nil {
		return
	}

	if err := s.cache.SetRole(ctx, addr, role); err != nil {
		slog.Warn("role cache write failed", "address", addr, "error", err)
	}
}
