package render

import (
	"context"
	"fmt"
	"io"

	"github.com/garyjia/invoice-converter/internal/invoice"
	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/zap"
)

var (
	colorPrimary = &props.Color{Red: 33, Green: 37, Blue: 41}
	colorMuted   = &props.Color{Red: 110, Green: 110, Blue: 110}
)

// PDFRenderer lays the invoice out on A4 pages.
type PDFRenderer struct {
	title  string
	logger *zap.Logger
}

// NewPDFRenderer creates a PDF renderer.
func NewPDFRenderer(title string, logger *zap.Logger) *PDFRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFRenderer{title: title, logger: logger}
}

func (r *PDFRenderer) Extension() string { return FormatPDF }

// Render generates the PDF and writes it to w.
func (r *PDFRenderer) Render(ctx context.Context, inv *invoice.Invoice, w io.Writer) error {
	seller := inv.Seller()

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title(r.title)+" "+inv.Meta().InvoiceNumber(), true).
		WithAuthor(seller.Name(), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(r.headerRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(itemHeaderRow())
	m.AddRows(itemRows(inv.Items())...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv.Totals()))
	m.AddRows(wordsRow(inv.Totals()))

	if bank, ok := inv.BankDetails(); ok {
		m.AddRows(line.NewRow(3))
		m.AddRows(bankRow(bank))
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}

	n, err := w.Write(doc.GetBytes())
	if err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	r.logger.Debug("PDF document rendered",
		zap.String("invoice_number", inv.Meta().InvoiceNumber()),
		zap.Int("bytes", n))
	return nil
}

func (r *PDFRenderer) headerRow(inv *invoice.Invoice) core.Row {
	seller := inv.Seller()
	meta := inv.Meta()

	return row.New(18).Add(
		col.New(7).Add(
			text.New(seller.Name(), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(seller.Address(), props.Text{
				Size: 8, Top: 9, Color: colorMuted,
			}),
		),
		col.New(5).Add(
			text.New(title(r.title), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(meta.InvoiceNumber(), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date: "+meta.InvoiceDate().Format(invoice.DateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorMuted,
			}),
		),
	)
}

func partiesRow(inv *invoice.Invoice) core.Row {
	seller := inv.Seller()
	customer := inv.Customer()

	return row.New(22).Add(
		col.New(6).Add(
			text.New("SELLER", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New("Email: "+orDash(seller.Email()), props.Text{Size: 8, Top: 6}),
			text.New("Mobile: "+orDash(seller.Mobile()), props.Text{Size: 8, Top: 11}),
			text.New(fmt.Sprintf("PAN: %s   GST: %s", orDash(seller.PAN()), orDash(seller.GST())),
				props.Text{Size: 8, Top: 16}),
		),
		col.New(6).Add(
			text.New("BILL TO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(customer.Name(), props.Text{Style: fontstyle.Bold, Size: 9, Top: 6}),
			text.New(customer.Address(), props.Text{Size: 8, Top: 11}),
			text.New("GST: "+orDash(customer.GST()), props.Text{Size: 8, Top: 16}),
		),
	)
}

func itemHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Part Name", 4, align.Left),
		h("HSN", 2, align.Left),
		h("Qty", 1, align.Center),
		h("Rate", 2, align.Right),
		h("GST %", 1, align.Center),
		h("Amount", 2, align.Right),
	)
}

func itemRows(items []invoice.InvoiceItem) []core.Row {
	if len(items) == 0 {
		return []core.Row{
			row.New(7).Add(col.New(12).Add(
				text.New("No line items", props.Text{Size: 8, Top: 1, Color: colorMuted, Align: align.Center}),
			)),
		}
	}

	rows := make([]core.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, row.New(7).Add(
			col.New(4).Add(text.New(item.PartName(), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(orDash(item.HSNCode()), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%g", item.Qty()), props.Text{Size: 8, Top: 1, Align: align.Center})),
			col.New(2).Add(text.New(formatMoney(item.Rate()), props.Text{Size: 8, Top: 1, Align: align.Right, Right: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%g%%", item.GSTPercent()), props.Text{Size: 8, Top: 1, Align: align.Center})),
			col.New(2).Add(text.New(formatMoney(item.Amount()), props.Text{Size: 8, Top: 1, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

func totalsRow(totals invoice.InvoiceTotals) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}

	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Basic Total:", 1),
			label("Discount:", 7),
			label("Taxable Total:", 13),
			label("INVOICE TOTAL:", 19),
		),
		col.New(3).Add(
			value(formatMoney(totals.BasicTotal()), 1),
			value(formatMoney(totals.DiscountTotal()), 7),
			value(formatMoney(totals.TaxableTotal()), 13),
			value(formatMoney(totals.InvoiceTotal()), 19),
		),
	)
}

func wordsRow(totals invoice.InvoiceTotals) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New("Amount in words: "+totalInWords(totals), props.Text{Size: 8, Top: 2, Color: colorMuted}),
	))
}

func bankRow(bank invoice.BankDetails) core.Row {
	return row.New(28).Add(col.New(12).Add(
		text.New("BANK DETAILS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New("Bank Name: "+bank.BankName(), props.Text{Size: 8, Top: 6}),
		text.New("Account Name: "+orDash(bank.AccountName()), props.Text{Size: 8, Top: 11}),
		text.New(fmt.Sprintf("Account No: %s   IFSC: %s", orDash(bank.AccountNo()), orDash(bank.IFSC())),
			props.Text{Size: 8, Top: 16}),
		text.New("UPI: "+orDash(bank.UPI()), props.Text{Size: 8, Top: 21}),
	))
}
