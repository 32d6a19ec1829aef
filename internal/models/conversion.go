package models

import "time"

// Conversion is the journal entry for one document conversion run. The invoice
// itself is not stored.
type Conversion struct {
	ID            string    `json:"id"`
	SourceName    string    `json:"source_name"`
	OutputPath    string    `json:"output_path"`
	Format        string    `json:"format"`
	InvoiceNumber string    `json:"invoice_number"`
	InvoiceTotal  float64   `json:"invoice_total"`
	ComputedTotal float64   `json:"computed_total"`
	TotalsOK      bool      `json:"totals_ok"`
	CheckMessage  string    `json:"check_message,omitempty"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
}
