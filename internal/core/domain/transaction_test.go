// internal/core/domain/transaction_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr string
	}{
		{
			name: "valid inbound",
			tx:   Transaction{ItemID: "item-1", Direction: DirectionIn, Quantity: 3},
		},
		{
			name:    "missing item id",
			tx:      Transaction{Direction: DirectionIn, Quantity: 3},
			wantErr: "item_id is required",
		},
		{
			name:    "bad direction",
			tx:      Transaction{ItemID: "item-1", Direction: "sideways", Quantity: 3},
			wantErr: "direction must be",
		},
		{
			name:    "zero quantity",
			tx:      Transaction{ItemID: "item-1", Direction: DirectionOut, Quantity: 0},
			wantErr: "quantity must be positive",
		},
		{
			name:    "negative quantity",
			tx:      Transaction{ItemID: "item-1", Direction: DirectionOut, Quantity: -2},
			wantErr: "quantity must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestItem_Apply(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		direction Direction
		quantity  int
		want      int
	}{
		{"inbound adds", 10, DirectionIn, 5, 15},
		{"outbound subtracts", 10, DirectionOut, 3, 7},
		{"outbound clamps at zero", 10, DirectionOut, 15, 0},
		{"outbound exact drain", 10, DirectionOut, 10, 0},
		{"inbound from zero", 0, DirectionIn, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := Item{Quantity: tt.start}
			item.Apply(&Transaction{Direction: tt.direction, Quantity: tt.quantity})
			assert.Equal(t, tt.want, item.Quantity)
		})
	}
}

// The clamp applies per step, so an overdraw followed by an inbound keeps the
// inbound amount instead of netting against the overdraw.
func TestItem_Apply_RunningClamp(t *testing.T) {
	item := Item{Quantity: 10}

	item.Apply(&Transaction{Direction: DirectionOut, Quantity: 15})
	require.Equal(t, 0, item.Quantity)

	item.Apply(&Transaction{Direction: DirectionIn, Quantity: 5})
	assert.Equal(t, 5, item.Quantity)
}
