package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidMapping = errors.New("raw pattern and canonical name are required")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=catalog
type Repository interface {
	FindMatch(ctx context.Context, rawName string) (string, error)
	CreateMapping(ctx context.Context, rawPattern, canonicalName string) error
}

// Service maps the item names vendors and charities type into the
// canonical names used on orders.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the canonical name for rawName, or "" when nothing
// matches.
func (s *Service) Suggest(ctx context.Context, rawName string) (string, error) {
	raw := strings.TrimSpace(rawName)
	if raw == "" {
		return "", nil
	}

	return s.repo.FindMatch(ctx, raw)
}

// Learn remembers that names containing rawPattern mean canonicalName.
func (s *Service) Learn(ctx context.Context, rawPattern, canonicalName string) error {
	raw := strings.TrimSpace(rawPattern)
	canonical := strings.TrimSpace(canonicalName)

	if raw == "" || canonical == "" {
		return ErrInvalidMapping
	}

	if strings.ContainsAny(raw, `%_\`) {
		return fmt.Errorf("%w: pattern must not contain %%, _ or \\", ErrInvalidMapping)
	}

	return s.repo.CreateMapping(ctx, raw, canonical)
}
