package invoice

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ValidateTotals cross-checks the sum of line items against the extracted
// invoice total, both rounded to 2 decimal places. A mismatch is returned as a
// *TotalsMismatchError.
//
// With no line items the computed total is zero, so any non-zero extracted total
// is reported as a mismatch.
func (i *Invoice) ValidateTotals() error {
	computed := sumAmounts(i.items).Round(2)
	extracted := decimal.NewFromFloat(i.totals.p.InvoiceTotal).Round(2)

	if !computed.Equal(extracted) {
		return &TotalsMismatchError{
			Computed:  computed.InexactFloat64(),
			Extracted: extracted.InexactFloat64(),
		}
	}
	return nil
}

// Result is the outcome of Check.
type Result struct {
	OK        bool    `json:"ok"`
	Computed  float64 `json:"computed"`
	Extracted float64 `json:"extracted"`
	ItemCount int     `json:"item_count"`
	Message   string  `json:"message,omitempty"`
	Err       error   `json:"-"`
}

// Check runs the whole-record consistency check. It never fails; callers decide
// whether a mismatch blocks, warns or is ignored.
func Check(inv *Invoice) Result {
	res := Result{
		OK:        true,
		Computed:  sumAmounts(inv.items).Round(2).InexactFloat64(),
		Extracted: decimal.NewFromFloat(inv.totals.p.InvoiceTotal).Round(2).InexactFloat64(),
		ItemCount: len(inv.items),
	}

	if err := inv.ValidateTotals(); err != nil {
		var mismatch *TotalsMismatchError
		if errors.As(err, &mismatch) {
			res.Computed = mismatch.Computed
			res.Extracted = mismatch.Extracted
		}
		res.OK = false
		res.Message = err.Error()
		res.Err = err
	}
	return res
}

// sumAmounts adds item amounts in decimal.
func sumAmounts(items []InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.p.Amount))
	}
	return total
}
