package invoice

import (
	"fmt"
	"strings"
	"time"
)

// Builder accumulates invoice parts, starting from the documented sentinels, and
// only fails on structural constraint violations when Build is called.
type Builder struct {
	seller   SellerParams
	customer Customer
	meta     MetaParams
	items    []ItemParams
	totals   TotalsParams
	bank     *BankParams
}

// NewBuilder returns a builder preloaded with sentinel seller, cash customer,
// default invoice number and the given invoice date.
func NewBuilder(invoiceDate time.Time) *Builder {
	return &Builder{
		seller:   SellerParams{Name: UnknownSeller, Address: UnknownAddress},
		customer: CashCustomer(),
		meta:     MetaParams{InvoiceNumber: DefaultInvoiceNumber, InvoiceDate: invoiceDate},
	}
}

// Seller sets the seller; a blank name or address keeps its sentinel.
func (b *Builder) Seller(p SellerParams) *Builder {
	if strings.TrimSpace(p.Name) == "" {
		p.Name = UnknownSeller
	}
	if strings.TrimSpace(p.Address) == "" {
		p.Address = UnknownAddress
	}
	b.seller = p
	return b
}

func (b *Builder) Customer(c Customer) *Builder {
	b.customer = c
	return b
}

// Meta sets the metadata; a blank invoice number or zero date keeps the current value.
func (b *Builder) Meta(p MetaParams) *Builder {
	if strings.TrimSpace(p.InvoiceNumber) == "" {
		p.InvoiceNumber = b.meta.InvoiceNumber
	}
	if p.InvoiceDate.IsZero() {
		p.InvoiceDate = b.meta.InvoiceDate
	}
	b.meta = p
	return b
}

func (b *Builder) AddItem(p ItemParams) *Builder {
	b.items = append(b.items, p)
	return b
}

func (b *Builder) Totals(p TotalsParams) *Builder {
	b.totals = p
	return b
}

func (b *Builder) Bank(p BankParams) *Builder {
	b.bank = &p
	return b
}

// Build constructs the Invoice. The returned error wraps a *FieldError.
func (b *Builder) Build() (*Invoice, error) {
	seller, err := NewSeller(b.seller)
	if err != nil {
		return nil, fmt.Errorf("build invoice: %w", err)
	}

	meta, err := NewInvoiceMeta(b.meta)
	if err != nil {
		return nil, fmt.Errorf("build invoice: %w", err)
	}

	items := make([]InvoiceItem, 0, len(b.items))
	for idx, p := range b.items {
		item, err := NewInvoiceItem(p)
		if err != nil {
			return nil, fmt.Errorf("build invoice: item %d: %w", idx, err)
		}
		items = append(items, item)
	}

	totals, err := NewInvoiceTotals(b.totals)
	if err != nil {
		return nil, fmt.Errorf("build invoice: %w", err)
	}

	var bank *BankDetails
	if b.bank != nil {
		bd := NewBankDetails(*b.bank)
		bank = &bd
	}

	return NewInvoice(seller, b.customer, meta, items, totals, bank), nil
}
