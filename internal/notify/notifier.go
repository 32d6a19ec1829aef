package notify

import (
	"context"
	"fmt"
)

// MismatchEvent describes a conversion whose line items disagree with the
// extracted invoice total.
type MismatchEvent struct {
	ConversionID  string
	SourceName    string
	InvoiceNumber string
	Computed      float64
	Extracted     float64
}

// Text renders the event as a short operator message.
func (e MismatchEvent) Text() string {
	return fmt.Sprintf("Invoice totals mismatch\nFile: %s\nInvoice: %s\nComputed: %.2f\nExtracted: %.2f\nConversion: %s",
		e.SourceName, e.InvoiceNumber, e.Computed, e.Extracted, e.ConversionID)
}

// Notifier tells operators about totals mismatches.
type Notifier interface {
	NotifyMismatch(ctx context.Context, event MismatchEvent) error
}

// NopNotifier discards events.
type NopNotifier struct{}

func (NopNotifier) NotifyMismatch(context.Context, MismatchEvent) error { return nil }
