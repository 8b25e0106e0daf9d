package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidMessage = errors.New("invalid message")

const maxBody = 2000

// Message is a note exchanged between the charity and vendor of an order.
type Message struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	AuthorAddress string
	Body          string
	CreatedAt     time.Time
}
