package orders

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dermanow/dermanow/internal/http/httpx"
	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/money"
	"github.com/dermanow/dermanow/internal/order"
)

type itemDTO struct {
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type orderResponse struct {
	ID               uuid.UUID       `json:"id"`
	Items            []itemDTO       `json:"items"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	CharityAddress   string          `json:"charity_address"`
	VendorAddress    string          `json:"vendor_address"`
	FundSource       string          `json:"fund_source"`
	CreatedBy        identity.Role   `json:"created_by"`
	Status           order.Status    `json:"status"`
	AvailableActions []order.Action  `json:"available_actions"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
}

type transitionResponse struct {
	From   order.Status `json:"from"`
	To     order.Status `json:"to"`
	Action order.Action `json:"action"`
	Actor  string       `json:"actor,omitempty"`
	At     time.Time    `json:"at"`
}

func toItems(items []itemDTO) ([]order.LineItem, error) {
	out := make([]order.LineItem, 0, len(items))
	for _, it := range items {
		price, err := money.Cents(it.UnitPrice)
		if err != nil {
			return nil, errors.Join(order.ErrInvalidOrder, fmt.Errorf("item %q: %w", it.Name, err))
		}

		out = append(out, order.LineItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: price,
		})
	}

	return out, nil
}

func fromItems(items []order.LineItem) []itemDTO {
	out := make([]itemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, itemDTO{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: httpx.Amount(it.UnitPrice),
		})
	}

	return out
}

// toResponse includes the actions the viewer may take next.
func toResponse(o *order.Order, viewer order.Actor) orderResponse {
	actions := order.AvailableActions(o, viewer)
	if actions == nil {
		actions = []order.Action{}
	}

	return orderResponse{
		ID:               o.ID,
		Items:            fromItems(o.Items),
		TotalPrice:       httpx.Amount(o.TotalPrice),
		CharityAddress:   o.CharityAddress,
		VendorAddress:    o.VendorAddress,
		FundSource:       o.FundSource,
		CreatedBy:        o.CreatedBy,
		Status:           o.Status,
		AvailableActions: actions,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func toResponseList(orders []*order.Order, viewer order.Actor) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toResponse(o, viewer))
	}

	return out
}

func toHistory(ts []order.Transition) []transitionResponse {
	out := make([]transitionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, transitionResponse{From: t.From, To: t.To, Action: t.Action, Actor: t.Actor, At: t.At})
	}

	return out
}
