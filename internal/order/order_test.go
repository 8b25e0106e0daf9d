package order_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dermanow/dermanow/internal/order"
)

func TestTotal(t *testing.T) {
	items := []order.LineItem{
		{Name: "Rice 10kg", Quantity: 10, UnitPrice: 5},
		{Name: "Cooking oil", Quantity: 2, UnitPrice: 50},
	}

	assert.Equal(t, int64(150), order.Total(items))
	assert.Equal(t, int64(0), order.Total(nil))
}

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name    string
		items   []order.LineItem
		wantErr bool
	}{
		{name: "Valid", items: []order.LineItem{{Name: "Blanket", Quantity: 3, UnitPrice: 1200}}},
		{name: "FreeItem", items: []order.LineItem{{Name: "Flyer", Quantity: 100, UnitPrice: 0}}},
		{name: "Empty", wantErr: true},
		{name: "BlankName", items: []order.LineItem{{Name: "  ", Quantity: 1, UnitPrice: 1}}, wantErr: true},
		{name: "ZeroQuantity", items: []order.LineItem{{Name: "Soap", Quantity: 0, UnitPrice: 1}}, wantErr: true},
		{name: "NegativePrice", items: []order.LineItem{{Name: "Soap", Quantity: 1, UnitPrice: -1}}, wantErr: true},
		{
			name:    "Overflow",
			items:   []order.LineItem{{Name: "Gold", Quantity: math.MaxInt64 / 2, UnitPrice: 3}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := order.ValidateItems(tt.items)
			if tt.wantErr {
				assert.ErrorIs(t, err, order.ErrInvalidOrder)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestOrder_Receiver(t *testing.T) {
	assert.Equal(t, "vendor", string(newOrder(order.StatusPending, "charity").Receiver()))
	assert.Equal(t, "charity", string(newOrder(order.StatusPending, "vendor").Receiver()))
}
