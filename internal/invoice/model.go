package invoice

import (
	"math"
	"strings"
	"time"

	"github.com/garyjia/invoice-converter/pkg/utils"
)

// Sentinel values substituted when a required field cannot be recovered.
const (
	UnknownSeller        = "Unknown Seller"
	UnknownAddress       = "Unknown Address"
	UnknownBank          = "Unknown Bank"
	DefaultInvoiceNumber = "INV-001"
	CashCustomerName     = "Cash/General"
	CashCustomerAddress  = "N/A"
)

// DateLayout is the calendar-date encoding used in JSON and rendered documents.
const DateLayout = "2006-01-02"

// SellerParams carries the inputs for NewSeller. Empty optional fields mean absent.
type SellerParams struct {
	Name    string
	Address string
	Email   string
	Mobile  string
	PAN     string
	GST     string
}

// Seller is the party issuing the invoice.
type Seller struct {
	p SellerParams
}

// NewSeller validates and builds a Seller.
func NewSeller(p SellerParams) (Seller, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Seller{}, newFieldError("seller", "name", p.Name, "is required")
	}
	if strings.TrimSpace(p.Address) == "" {
		return Seller{}, newFieldError("seller", "address", p.Address, "is required")
	}
	if p.Email != "" {
		if err := utils.ValidateEmail(p.Email); err != nil {
			return Seller{}, newFieldError("seller", "email", p.Email, "must be an email address")
		}
	}
	return Seller{p: p}, nil
}

func (s Seller) Name() string { return s.p.Name }
func (s Seller) Address() string { return s.p.Address }
func (s Seller) Email() (string, bool) { return optional(s.p.Email) }
func (s Seller) Mobile() (string, bool) { return optional(s.p.Mobile) }
func (s Seller) PAN() (string, bool) { return optional(s.p.PAN) }
func (s Seller) GST() (string, bool) { return optional(s.p.GST) }

// CustomerParams carries the inputs for NewCustomer.
type CustomerParams struct {
	Name    string
	Address string
	City    string
	State   string
	GST     string
	DLNo    string
}

// Customer is the bill-to party.
type Customer struct {
	p CustomerParams
}

// NewCustomer validates and builds a Customer.
func NewCustomer(p CustomerParams) (Customer, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Customer{}, newFieldError("customer", "name", p.Name, "is required")
	}
	if strings.TrimSpace(p.Address) == "" {
		return Customer{}, newFieldError("customer", "address", p.Address, "is required")
	}
	return Customer{p: p}, nil
}

// CashCustomer returns the placeholder customer used when no bill-to party is known.
func CashCustomer() Customer {
	return Customer{p: CustomerParams{Name: CashCustomerName, Address: CashCustomerAddress}}
}

func (c Customer) Name() string { return c.p.Name }
func (c Customer) Address() string { return c.p.Address }
func (c Customer) City() (string, bool) { return optional(c.p.City) }
func (c Customer) State() (string, bool) { return optional(c.p.State) }
func (c Customer) GST() (string, bool) { return optional(c.p.GST) }
func (c Customer) DLNo() (string, bool) { return optional(c.p.DLNo) }

// MetaParams carries the inputs for NewInvoiceMeta.
type MetaParams struct {
	InvoiceNumber string
	InvoiceDate   time.Time
	InvoiceGroup  string
}

// InvoiceMeta identifies the invoice document.
type InvoiceMeta struct {
	p MetaParams
}

// NewInvoiceMeta validates and builds an InvoiceMeta. The date is truncated to a
// calendar day.
func NewInvoiceMeta(p MetaParams) (InvoiceMeta, error) {
	if strings.TrimSpace(p.InvoiceNumber) == "" {
		return InvoiceMeta{}, newFieldError("invoice_meta", "invoice_number", p.InvoiceNumber, "is required")
	}
	if p.InvoiceDate.IsZero() {
		return InvoiceMeta{}, newFieldError("invoice_meta", "invoice_date", "", "is required")
	}
	p.InvoiceDate = calendarDate(p.InvoiceDate)
	return InvoiceMeta{p: p}, nil
}

func (m InvoiceMeta) InvoiceNumber() string { return m.p.InvoiceNumber }
func (m InvoiceMeta) InvoiceDate() time.Time { return m.p.InvoiceDate }
func (m InvoiceMeta) InvoiceGroup() (string, bool) { return optional(m.p.InvoiceGroup) }

// ItemParams carries the inputs for NewInvoiceItem.
type ItemParams struct {
	PartName   string
	HSNCode    string
	BatchNo    string
	Expiry     string
	MRP        float64
	Qty        float64
	FreeQty    float64
	Rate       float64
	Amount     float64
	GSTPercent float64
}

// InvoiceItem is a single invoice line.
type InvoiceItem struct {
	p ItemParams
}

// NewInvoiceItem validates and builds an InvoiceItem. All numbers must be
// finite; quantity, rate and amount must also be non-negative.
func NewInvoiceItem(p ItemParams) (InvoiceItem, error) {
	checks := []struct {
		field       string
		value       float64
		nonNegative bool
	}{
		{"mrp", p.MRP, false},
		{"qty", p.Qty, true},
		{"free_qty", p.FreeQty, false},
		{"rate", p.Rate, true},
		{"amount", p.Amount, true},
		{"gst_percent", p.GSTPercent, false},
	}
	for _, c := range checks {
		if !isFinite(c.value) {
			return InvoiceItem{}, newNumericFieldError("invoice_item", c.field, c.value, "must be a finite number")
		}
		if c.nonNegative && c.value < 0 {
			return InvoiceItem{}, newNumericFieldError("invoice_item", c.field, c.value, "must be non-negative")
		}
	}
	return InvoiceItem{p: p}, nil
}

func (i InvoiceItem) PartName() string { return i.p.PartName }
func (i InvoiceItem) HSNCode() (string, bool) { return optional(i.p.HSNCode) }
func (i InvoiceItem) BatchNo() (string, bool) { return optional(i.p.BatchNo) }
func (i InvoiceItem) Expiry() (string, bool) { return optional(i.p.Expiry) }
func (i InvoiceItem) MRP() float64 { return i.p.MRP }
func (i InvoiceItem) Qty() float64 { return i.p.Qty }
func (i InvoiceItem) FreeQty() float64 { return i.p.FreeQty }
func (i InvoiceItem) Rate() float64 { return i.p.Rate }
func (i InvoiceItem) Amount() float64 { return i.p.Amount }
func (i InvoiceItem) GSTPercent() float64 { return i.p.GSTPercent }

// TotalsParams carries the inputs for NewInvoiceTotals.
type TotalsParams struct {
	BasicTotal        float64
	DiscountTotal     float64
	TaxableTotal      float64
	InvoiceTotal      float64
	InvoiceTotalWords string
}

// InvoiceTotals holds the document-level amounts.
type InvoiceTotals struct {
	p TotalsParams
}

// NewInvoiceTotals validates and builds InvoiceTotals. All amounts must be
// finite and the invoice total non-negative.
func NewInvoiceTotals(p TotalsParams) (InvoiceTotals, error) {
	amounts := []struct {
		field string
		value float64
	}{
		{"basic_total", p.BasicTotal},
		{"discount_total", p.DiscountTotal},
		{"taxable_total", p.TaxableTotal},
		{"invoice_total", p.InvoiceTotal},
	}
	for _, a := range amounts {
		if !isFinite(a.value) {
			return InvoiceTotals{}, newNumericFieldError("totals", a.field, a.value, "must be a finite number")
		}
	}
	if p.InvoiceTotal < 0 {
		return InvoiceTotals{}, newNumericFieldError("totals", "invoice_total", p.InvoiceTotal, "cannot be negative")
	}
	return InvoiceTotals{p: p}, nil
}

func (t InvoiceTotals) BasicTotal() float64 { return t.p.BasicTotal }
func (t InvoiceTotals) DiscountTotal() float64 { return t.p.DiscountTotal }
func (t InvoiceTotals) TaxableTotal() float64 { return t.p.TaxableTotal }
func (t InvoiceTotals) InvoiceTotal() float64 { return t.p.InvoiceTotal }
func (t InvoiceTotals) InvoiceTotalWords() (string, bool) { return optional(t.p.InvoiceTotalWords) }

// BankParams carries the inputs for NewBankDetails.
type BankParams struct {
	BankName    string
	AccountName string
	IFSC        string
	AccountNo   string
	UPI         string
}

// BankDetails holds the seller's payment coordinates.
type BankDetails struct {
	p BankParams
}

// NewBankDetails builds BankDetails, substituting UnknownBank for a blank bank name.
func NewBankDetails(p BankParams) BankDetails {
	if strings.TrimSpace(p.BankName) == "" {
		p.BankName = UnknownBank
	}
	return BankDetails{p: p}
}

func (b BankDetails) BankName() string { return b.p.BankName }
func (b BankDetails) AccountName() (string, bool) { return optional(b.p.AccountName) }
func (b BankDetails) IFSC() (string, bool) { return optional(b.p.IFSC) }
func (b BankDetails) AccountNo() (string, bool) { return optional(b.p.AccountNo) }
func (b BankDetails) UPI() (string, bool) { return optional(b.p.UPI) }

// Invoice is the aggregate root produced by one extraction run.
type Invoice struct {
	seller   Seller
	customer Customer
	meta     InvoiceMeta
	items    []InvoiceItem
	totals   InvoiceTotals
	bank     *BankDetails
}

// NewInvoice assembles an Invoice. bank may be nil. The items slice is copied.
func NewInvoice(seller Seller, customer Customer, meta InvoiceMeta, items []InvoiceItem, totals InvoiceTotals, bank *BankDetails) *Invoice {
	inv := &Invoice{
		seller:   seller,
		customer: customer,
		meta:     meta,
		items:    append([]InvoiceItem(nil), items...),
		totals:   totals,
	}
	if bank != nil {
		b := *bank
		inv.bank = &b
	}
	return inv
}

func (i *Invoice) Seller() Seller { return i.seller }
func (i *Invoice) Customer() Customer { return i.customer }
func (i *Invoice) Meta() InvoiceMeta { return i.meta }
func (i *Invoice) Totals() InvoiceTotals { return i.totals }

// Items returns a copy of the line items in document order.
func (i *Invoice) Items() []InvoiceItem {
	return append([]InvoiceItem(nil), i.items...)
}

// BankDetails returns the bank details and whether they are present.
func (i *Invoice) BankDetails() (BankDetails, bool) {
	if i.bank == nil {
		return BankDetails{}, false
	}
	return *i.bank, true
}

// ComputedTotal is the sum of all line item amounts.
func (i *Invoice) ComputedTotal() float64 {
	var total float64
	for _, item := range i.items {
		total += item.p.Amount
	}
	return total
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func optional(s string) (string, bool) {
	return s, s != ""
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
