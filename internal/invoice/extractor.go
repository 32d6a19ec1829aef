package invoice

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/invoice-converter/pkg/utils"
	"go.uber.org/zap"
)

// textRule is one labelled pattern with the value used when it does not match.
// The first capture group holds the value.
type textRule struct {
	name     string
	pattern  *regexp.Regexp
	fallback string
}

func (r textRule) apply(text string) Field[string] {
	if matches := r.pattern.FindStringSubmatch(text); len(matches) > 1 {
		if v := strings.TrimSpace(matches[1]); v != "" {
			return Found(v)
		}
	}
	return Defaulted(r.fallback)
}

// Bank labels take the rest of the line as value.
var bankRules = []textRule{
	{"bank_name", regexp.MustCompile(`(?i)Bank Name[ \t]*[:\-][ \t]*(.*)`), UnknownBank},
	{"account_name", regexp.MustCompile(`(?i)Account Name[ \t]*[:\-][ \t]*(.*)`), ""},
	{"ifsc", regexp.MustCompile(`(?i)IFSC Code[ \t]*[:\-][ \t]*([A-Z0-9]+)`), ""},
	{"account_no", regexp.MustCompile(`(?i)Account No[ \t]*[:\-][ \t]*(\d+)`), ""},
	{"upi", regexp.MustCompile(`(?i)Bank UPI[ \t]*[:\-][ \t]*(\S+)`), ""},
}

var (
	emailRule = textRule{
		name:    "seller_email",
		pattern: regexp.MustCompile(`([a-zA-Z0-9_.+\-]+@[a-zA-Z0-9\-]+\.[a-zA-Z0-9.\-]+)`),
	}
	mobileRule = textRule{
		name:    "seller_mobile",
		pattern: regexp.MustCompile(`(\+?\d[\d -]{8,12}\d)`),
	}
	invoiceNumberRule = textRule{
		name:     "invoice_number",
		pattern:  regexp.MustCompile(`(?i)Invoice No\.?\s*[:\-]?\s*([A-Za-z0-9/\-]+)`),
		fallback: DefaultInvoiceNumber,
	}
	invoiceDateRule = textRule{
		name:    "invoice_date",
		pattern: regexp.MustCompile(`(?i)Date\s*[:\-]?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	}
	invoiceTotalPattern = regexp.MustCompile(`(?i)(?:Grand Total|Invoice Total)\s*[:\-]?\s*([\d,]+\.?\d*)`)
)

// Extractor recovers an Invoice from the plain text of a document using
// independent pattern rules. Lookups that fail fall back to documented defaults.
type Extractor struct {
	clock  Clock
	logger *zap.Logger
}

// NewExtractor creates an extractor. A nil clock uses the system clock and a nil
// logger discards output.
func NewExtractor(clock Clock, logger *zap.Logger) *Extractor {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		clock:  clock,
		logger: logger,
	}
}

// Extract is a convenience wrapper around a system-clock Extractor.
func Extract(text string) (*Invoice, error) {
	return NewExtractor(nil, nil).Extract(text)
}

// Extract builds an Invoice from text. The only expected error is
// ErrNoExtractableContent for blank input.
func (e *Extractor) Extract(text string) (*Invoice, error) {
	inv, _, err := e.ExtractWithReport(text)
	return inv, err
}

// ExtractWithReport is Extract plus a per-field found/defaulted report.
func (e *Extractor) ExtractWithReport(text string) (*Invoice, Report, error) {
	var report Report

	if strings.TrimSpace(text) == "" {
		return nil, report, ErrNoExtractableContent
	}

	now := e.now()
	b := NewBuilder(now)

	b.Bank(e.extractBank(text, &report))
	b.Seller(e.extractSeller(text, &report))
	b.Totals(e.extractTotals(text, &report))
	b.Meta(e.extractMeta(text, now, &report))
	b.Customer(CashCustomer())

	inv, err := b.Build()
	if err != nil {
		return nil, report, err
	}

	e.logger.Debug("Invoice extracted",
		zap.String("invoice_number", inv.Meta().InvoiceNumber()),
		zap.Float64("invoice_total", inv.Totals().InvoiceTotal()),
		zap.Strings("defaulted", report.Defaulted()),
		zap.Float64("confidence", report.Confidence()))

	return inv, report, nil
}

func (e *Extractor) extractBank(text string, report *Report) BankParams {
	values := make(map[string]string, len(bankRules))
	for _, rule := range bankRules {
		f := e.applyRule(rule, text, report)
		values[rule.name] = f.Value
	}
	return BankParams{
		BankName:    values["bank_name"],
		AccountName: values["account_name"],
		IFSC:        values["ifsc"],
		AccountNo:   values["account_no"],
		UPI:         values["upi"],
	}
}

// extractSeller assumes line 0 is a title banner such as "TAX INVOICE", line 1
// the seller name and line 2 the seller address.
func (e *Extractor) extractSeller(text string, report *Report) SellerParams {
	lines := nonEmptyLines(text)

	name := Defaulted(UnknownSeller)
	if len(lines) > 1 {
		name = Found(lines[1])
	}
	address := Defaulted(UnknownAddress)
	if len(lines) > 2 {
		address = Found(lines[2])
	}
	report.record("seller_name", name.Source)
	report.record("seller_address", address.Source)

	email := emailRule.apply(text)
	if email.IsFound() {
		// sentence punctuation directly after an address is captured by the pattern
		email.Value = strings.TrimRight(email.Value, ".-")
		if err := utils.ValidateEmail(email.Value); err != nil {
			e.logger.Debug("Discarding malformed seller email", zap.String("email", email.Value))
			email = Defaulted("")
		}
	}
	report.record(emailRule.name, email.Source)

	mobile := e.applyRule(mobileRule, text, report)

	return SellerParams{
		Name:    name.Value,
		Address: address.Value,
		Email:   email.Value,
		Mobile:  mobile.Value,
	}
}

// extractTotals takes the first labelled grand/invoice total. Unparseable
// numerals leave the total at zero. The same value serves as taxable total.
func (e *Extractor) extractTotals(text string, report *Report) TotalsParams {
	total := Defaulted(0.0)
	if matches := invoiceTotalPattern.FindStringSubmatch(text); len(matches) > 1 {
		raw := strings.ReplaceAll(matches[1], ",", "")
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			total = Found(amount)
		} else {
			e.logger.Debug("Ignoring malformed invoice total",
				zap.String("raw", matches[1]),
				zap.Error(err))
		}
	}
	report.record("invoice_total", total.Source)

	return TotalsParams{
		TaxableTotal: total.Value,
		InvoiceTotal: total.Value,
	}
}

// extractMeta recovers the invoice number. The invoice date always comes from
// the clock; a date-like token is only noted in the report.
func (e *Extractor) extractMeta(text string, now time.Time, report *Report) MetaParams {
	number := e.applyRule(invoiceNumberRule, text, report)

	if candidate := invoiceDateRule.apply(text); candidate.IsFound() {
		report.DateCandidate = candidate.Value
	}
	report.record(invoiceDateRule.name, SourceDefault)

	return MetaParams{
		InvoiceNumber: number.Value,
		InvoiceDate:   now,
	}
}

// now reads the clock, falling back to the system time when the clock reports
// the zero time.
func (e *Extractor) now() time.Time {
	t := e.clock.Now()
	if t.IsZero() {
		e.logger.Warn("Clock returned zero time, using system time")
		return time.Now()
	}
	return t
}

func (e *Extractor) applyRule(rule textRule, text string, report *Report) Field[string] {
	f := rule.apply(text)
	report.record(rule.name, f.Source)
	if !f.IsFound() {
		e.logger.Debug("Field not found, using default",
			zap.String("field", rule.name),
			zap.String("default", f.Value))
	}
	return f
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
