package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dermanow/dermanow/internal/order"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=chat
type Repository interface {
	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, orderID uuid.UUID) ([]*Message, error)
}

// Orders resolves an order the actor is allowed to see.
type Orders interface {
	Get(ctx context.Context, id uuid.UUID, actor order.Actor) (*order.Order, error)
}

type Service struct {
	repo   Repository
	orders Orders
}

func NewService(repo Repository, orders Orders) *Service {
	return &Service{repo: repo, orders: orders}
}

func (s *Service) Post(ctx context.Context, orderID uuid.UUID, author order.Actor, body string) (*Message, error) {
	body = strings.TrimSpace(body)

	n := utf8.RuneCountInString(body)
	if n == 0 || n > maxBody {
		return nil, fmt.Errorf("%w: body must be 1 to %d characters", ErrInvalidMessage, maxBody)
	}

	if _, err := s.orders.Get(ctx, orderID, author); err != nil {
		return nil, err
	}

	m := &Message{
		OrderID:       orderID,
		AuthorAddress: author.Address,
		Body:          body,
	}

	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (s *Service) List(ctx context.Context, orderID uuid.UUID, reader order.Actor) ([]*Message, error) {
	if _, err := s.orders.Get(ctx, orderID, reader); err != nil {
		return nil, err
	}

	return s.repo.ListMessages(ctx, orderID)
}
