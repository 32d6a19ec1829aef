package invoice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceWithAmounts(t *testing.T, total float64, amounts ...float64) *Invoice {
	t.Helper()

	b := NewBuilder(fixedNow).Totals(TotalsParams{InvoiceTotal: total})
	for _, amount := range amounts {
		b.AddItem(ItemParams{PartName: "line", Qty: 1, Rate: amount, Amount: amount})
	}
	inv, err := b.Build()
	require.NoError(t, err)
	return inv
}

func TestInvoice_ValidateTotals(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		amounts  []float64
		wantErr  bool
		computed float64
	}{
		{"exact", 100, []float64{60, 40}, false, 100},
		{"float noise rounds away", 0.3, []float64{0.1, 0.2}, false, 0.3},
		{"one cent short", 100, []float64{50, 49.99}, true, 99.99},
		{"items exceed total by one cent", 99.99, []float64{60, 40}, true, 100},
		{"no items zero total", 0, nil, false, 0},
		{"no items with total", 250, nil, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := invoiceWithAmounts(t, tt.total, tt.amounts...)

			err := inv.ValidateTotals()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var mismatch *TotalsMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, tt.computed, mismatch.Computed)
			assert.Equal(t, tt.total, mismatch.Extracted)
			assert.True(t, errors.Is(err, ErrTotalsMismatch))

			var fieldErr *FieldError
			assert.False(t, errors.As(err, &fieldErr))
		})
	}
}

func TestTotalsMismatchError_Message(t *testing.T) {
	err := invoiceWithAmounts(t, 100, 99.99).ValidateTotals()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100.00")
	assert.Contains(t, err.Error(), "99.99")
}

func TestCheck(t *testing.T) {
	ok := Check(invoiceWithAmounts(t, 100, 100))
	assert.True(t, ok.OK)
	assert.Equal(t, 100.0, ok.Computed)
	assert.Equal(t, 100.0, ok.Extracted)
	assert.Equal(t, 1, ok.ItemCount)
	assert.Empty(t, ok.Message)
	assert.NoError(t, ok.Err)

	bad := Check(invoiceWithAmounts(t, 100, 99.99))
	assert.False(t, bad.OK)
	assert.Equal(t, 99.99, bad.Computed)
	assert.Equal(t, 100.0, bad.Extracted)
	assert.True(t, errors.Is(bad.Err, ErrTotalsMismatch))
	assert.Equal(t, "totals mismatch: computed=99.99, extracted=100.00", bad.Message)
}

func TestCheck_ItemsAboveTotal(t *testing.T) {
	res := Check(invoiceWithAmounts(t, 99.99, 50, 50))

	assert.False(t, res.OK)
	assert.Equal(t, 100.0, res.Computed)
	assert.Equal(t, 99.99, res.Extracted)
	assert.Equal(t, "totals mismatch: computed=100.00, extracted=99.99", res.Message)
}

func TestCheck_ExtractedInvoice(t *testing.T) {
	inv, err := newTestExtractor().Extract("TAX INVOICE\nAcme\nMain Street\nGrand Total: 1,234.50\n")
	require.NoError(t, err)

	res := Check(inv)
	assert.False(t, res.OK)
	assert.Equal(t, 0, res.ItemCount)
	assert.Equal(t, 1234.5, res.Extracted)
}
