package render

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/garyjia/invoice-converter/internal/invoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func sampleInvoice(t *testing.T) *invoice.Invoice {
	t.Helper()

	inv, err := invoice.NewBuilder(time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)).
		Seller(invoice.SellerParams{Name: "Acme Traders", Address: "Main Street", Email: "sales@acme.com"}).
		Meta(invoice.MetaParams{InvoiceNumber: "A-1001"}).
		AddItem(invoice.ItemParams{PartName: "Gauze", HSNCode: "3005", Qty: 2, Rate: 617.25, Amount: 1234.5, GSTPercent: 12}).
		Totals(invoice.TotalsParams{TaxableTotal: 1234.5, InvoiceTotal: 1234.5}).
		Bank(invoice.BankParams{BankName: "First National", IFSC: "FNBK0001234"}).
		Build()
	require.NoError(t, err)
	return inv
}

func TestNew(t *testing.T) {
	r, err := New("XLSX", Options{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "xlsx", r.Extension())

	r, err = New("pdf", Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "pdf", r.Extension())

	_, err = New("docx", Options{}, nil)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestExcelRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	err := NewExcelRenderer("", "", zap.NewNop()).Render(context.Background(), sampleInvoice(t), &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, defaultTitle, rows[0][0])

	pairs := make(map[string]string)
	for _, r := range rows {
		if len(r) < 2 {
			continue
		}
		if _, seen := pairs[r[0]]; !seen {
			pairs[r[0]] = r[1]
		}
	}
	assert.Equal(t, "Acme Traders", pairs["Name"])
	assert.Equal(t, "A-1001", pairs["Invoice No"])
	assert.Equal(t, "2026-03-14", pairs["Invoice Date"])
	assert.Equal(t, "1234.5", pairs["Invoice Total"])
	assert.Equal(t, "One Thousand Two Hundred Thirty Four and 50/100 Only", pairs["Amount in Words"])
	assert.Equal(t, "First National", pairs["Bank Name"])
	assert.Equal(t, "-", pairs["UPI"])
	assert.Equal(t, "3005", pairs["Gauze"])
}

func TestExcelRenderer_Template(t *testing.T) {
	tmpl := excelize.NewFile()
	require.NoError(t, tmpl.SetSheetName("Sheet1", "Layout"))
	path := t.TempDir() + "/template.xlsx"
	require.NoError(t, tmpl.SaveAs(path))
	require.NoError(t, tmpl.Close())

	var buf bytes.Buffer
	err := NewExcelRenderer(path, "PROFORMA", zap.NewNop()).Render(context.Background(), sampleInvoice(t), &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue("Layout", "A1")
	require.NoError(t, err)
	assert.Equal(t, "PROFORMA", value)
}

func TestExcelRenderer_MissingTemplate(t *testing.T) {
	err := NewExcelRenderer(t.TempDir()+"/missing.xlsx", "", nil).
		Render(context.Background(), sampleInvoice(t), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPDFRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	err := NewPDFRenderer("", zap.NewNop()).Render(context.Background(), sampleInvoice(t), &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestPDFRenderer_NoItemsNoBank(t *testing.T) {
	inv, err := invoice.NewBuilder(time.Now()).Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewPDFRenderer("", nil).Render(context.Background(), inv, &buf))
	assert.NotZero(t, buf.Len())
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPDFRenderer("", nil).Render(ctx, sampleInvoice(t), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)

	err = NewExcelRenderer("", "", nil).Render(ctx, sampleInvoice(t), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "Zero Only"},
		{0.5, "Zero and 50/100 Only"},
		{7, "Seven Only"},
		{15, "Fifteen Only"},
		{40.05, "Forty and 05/100 Only"},
		{100, "One Hundred Only"},
		{1234.5, "One Thousand Two Hundred Thirty Four and 50/100 Only"},
		{1000000, "One Million Only"},
		{2005019.99, "Two Million Five Thousand Nineteen and 99/100 Only"},
		{-12, "Twelve Only"},
		{math.Pow(2, 64), "18446744073709552000 Only"},
		{1e23, "100000000000000000000000 Only"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AmountInWords(tt.amount), tt.amount)
	}
}

func TestAmountInWords_LargestSpelledScale(t *testing.T) {
	words := AmountInWords(1e19)
	assert.Equal(t, "Ten Quintillion Only", words)
	assert.NotContains(t, AmountInWords(1e23), "Quadrillion")
	assert.Empty(t, AmountInWords(math.NaN()))
	assert.Empty(t, AmountInWords(math.Inf(1)))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0.00", formatMoney(0))
	assert.Equal(t, "1,234.50", formatMoney(1234.5))
	assert.Equal(t, "1,000,000.00", formatMoney(1000000))
}

func TestTotalInWords_PrefersDocumentWords(t *testing.T) {
	totals, err := invoice.NewInvoiceTotals(invoice.TotalsParams{InvoiceTotal: 10, InvoiceTotalWords: "Ten Rupees"})
	require.NoError(t, err)
	assert.Equal(t, "Ten Rupees", totalInWords(totals))
}
