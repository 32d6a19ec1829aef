package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/garyjia/invoice-converter/internal/invoice"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrUnknownFormat is returned by New for an output format with no renderer.
var ErrUnknownFormat = errors.New("unknown output format")

// Output formats
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Renderer writes an invoice as a document.
type Renderer interface {
	Render(ctx context.Context, inv *invoice.Invoice, w io.Writer) error
	// Extension is the file extension of the produced document, without dot.
	Extension() string
}

// Options configures the renderers returned by New.
type Options struct {
	// ExcelTemplate is an optional workbook whose first sheet receives the data.
	ExcelTemplate string
	// Title is printed at the top of rendered documents.
	Title string
}

// New returns the renderer for format ("xlsx" or "pdf", case-insensitive).
func New(format string, opts Options, logger *zap.Logger) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatXLSX:
		return NewExcelRenderer(opts.ExcelTemplate, opts.Title, logger), nil
	case FormatPDF:
		return NewPDFRenderer(opts.Title, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

const defaultTitle = "TAX INVOICE"

var moneyPrinter = message.NewPrinter(language.English)

// formatMoney renders an amount with thousands separators and 2 decimals.
func formatMoney(amount float64) string {
	rounded := decimal.NewFromFloat(amount).Round(2).InexactFloat64()
	return moneyPrinter.Sprintf("%.2f", rounded)
}

// totalInWords prefers the words printed on the document over generated ones.
func totalInWords(totals invoice.InvoiceTotals) string {
	if words, ok := totals.InvoiceTotalWords(); ok {
		return words
	}
	return AmountInWords(totals.InvoiceTotal())
}

func orDash(s string, ok bool) string {
	if !ok {
		return "-"
	}
	return s
}

func title(t string) string {
	if strings.TrimSpace(t) == "" {
		return defaultTitle
	}
	return t
}
