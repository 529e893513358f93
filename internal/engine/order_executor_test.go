package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcabot/internal/types"
)

func TestReconcile(t *testing.T) {
	none := types.None[float64]()
	tests := []struct {
		name      string
		fill      types.Fill
		wantCost  float64
		wantQty   float64
		wantPrice float64
		wantNotes int
	}{
		{
			name:      "everything reported",
			fill:      types.Fill{Cost: types.Some(9.9), Filled: types.Some(0.0002), Average: types.Some(49500.0)},
			wantCost:  9.9,
			wantQty:   0.0002,
			wantPrice: 49500,
		},
		{
			name:      "filled missing",
			fill:      types.Fill{Cost: types.Some(10.0), Filled: none, Average: types.Some(50000.0)},
			wantCost:  10,
			wantQty:   0.0002,
			wantPrice: 50000,
			wantNotes: 1,
		},
		{
			name:      "average missing",
			fill:      types.Fill{Cost: types.Some(10.0), Filled: types.Some(0.00025), Average: none},
			wantCost:  10,
			wantQty:   0.00025,
			wantPrice: 40000,
			wantNotes: 1,
		},
		{
			name:      "nothing reported",
			fill:      types.Fill{OrderID: "x"},
			wantCost:  10,
			wantQty:   0.0002,
			wantPrice: 50000,
			wantNotes: 3,
		},
		{
			name:      "cost missing but filled and average reported",
			fill:      types.Fill{Filled: types.Some(0.0002), Average: types.Some(49000.0)},
			wantCost:  9.8,
			wantQty:   0.0002,
			wantPrice: 49000,
			wantNotes: 1,
		},
		{
			name:      "zero cost treated as missing",
			fill:      types.Fill{Cost: types.Some(0.0), Average: types.Some(50000.0)},
			wantCost:  10,
			wantQty:   0.0002,
			wantPrice: 50000,
			wantNotes: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := reconcile(tt.fill, 10, 50000)
			assert.InDelta(t, tt.wantCost, ex.Cost, 1e-12)
			assert.InDelta(t, tt.wantQty, ex.Quantity, 1e-12)
			assert.InDelta(t, tt.wantPrice, ex.Price, 1e-9)
			assert.Len(t, ex.Notes, tt.wantNotes)
		})
	}
}

func TestLedgerEntryFromExecution(t *testing.T) {
	ex := execution{Cost: 6.1725, Quantity: 0.000123456789, Price: 50000}
	e, err := ex.ledgerEntry(runDay)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", e.Date.Format("2006-01-02"))
	assert.Equal(t, "6.1725", e.Spend.String())
	assert.Equal(t, "0.00012346", e.Quantity.String())

	_, err = execution{Cost: 5, Quantity: 0, Price: 0}.ledgerEntry(runDay)
	assert.Error(t, err)
}
