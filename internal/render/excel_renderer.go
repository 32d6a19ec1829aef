package render

import (
	"context"
	"fmt"
	"io"

	"github.com/garyjia/invoice-converter/internal/invoice"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const sheetName = "Invoice"

// ExcelRenderer writes the invoice into a single-sheet workbook, one section
// after another: seller, customer, invoice details, items, totals and bank.
type ExcelRenderer struct {
	templatePath string
	title        string
	logger       *zap.Logger
}

// NewExcelRenderer creates an Excel renderer. When templatePath is set the data
// is written into the first sheet of that workbook.
func NewExcelRenderer(templatePath, title string, logger *zap.Logger) *ExcelRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExcelRenderer{
		templatePath: templatePath,
		title:        title,
		logger:       logger,
	}
}

func (r *ExcelRenderer) Extension() string { return FormatXLSX }

// Render writes the workbook to w.
func (r *ExcelRenderer) Render(ctx context.Context, inv *invoice.Invoice, w io.Writer) error {
	f, sheet, err := r.open()
	if err != nil {
		return err
	}
	defer f.Close()

	s := &sheetWriter{f: f, sheet: sheet, logger: r.logger, row: 1}
	if err := s.prepareStyles(); err != nil {
		return err
	}

	s.heading(title(r.title))
	s.blank()

	seller := inv.Seller()
	s.heading("Seller")
	s.pair("Name", seller.Name())
	s.pair("Address", seller.Address())
	s.pair("Email", orDash(seller.Email()))
	s.pair("Mobile", orDash(seller.Mobile()))
	s.pair("PAN", orDash(seller.PAN()))
	s.pair("GST", orDash(seller.GST()))
	s.blank()

	customer := inv.Customer()
	s.heading("Customer")
	s.pair("Name", customer.Name())
	s.pair("Address", customer.Address())
	s.pair("City", orDash(customer.City()))
	s.pair("State", orDash(customer.State()))
	s.pair("GST", orDash(customer.GST()))
	s.pair("DL No", orDash(customer.DLNo()))
	s.blank()

	meta := inv.Meta()
	s.heading("Invoice Details")
	s.pair("Invoice No", meta.InvoiceNumber())
	s.pair("Invoice Date", meta.InvoiceDate().Format(invoice.DateLayout))
	s.pair("Invoice Group", orDash(meta.InvoiceGroup()))
	s.blank()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.heading("Items")
	s.header("Part Name", "HSN", "Batch", "Expiry", "MRP", "Qty", "Free", "Rate", "GST %", "Amount")
	for _, item := range inv.Items() {
		s.values(
			item.PartName(),
			orDash(item.HSNCode()),
			orDash(item.BatchNo()),
			orDash(item.Expiry()),
			item.MRP(),
			item.Qty(),
			item.FreeQty(),
			item.Rate(),
			item.GSTPercent(),
			item.Amount(),
		)
	}
	s.blank()

	totals := inv.Totals()
	s.heading("Totals")
	s.amount("Basic Total", totals.BasicTotal())
	s.amount("Discount", totals.DiscountTotal())
	s.amount("Taxable Total", totals.TaxableTotal())
	s.amount("Invoice Total", totals.InvoiceTotal())
	s.pair("Amount in Words", totalInWords(totals))
	s.blank()

	if bank, ok := inv.BankDetails(); ok {
		s.heading("Bank Details")
		s.pair("Bank Name", bank.BankName())
		s.pair("Account Name", orDash(bank.AccountName()))
		s.pair("IFSC Code", orDash(bank.IFSC()))
		s.pair("Account No", orDash(bank.AccountNo()))
		s.pair("UPI", orDash(bank.UPI()))
	}

	if err := f.SetColWidth(sheet, "A", "A", 22); err != nil {
		r.logger.Warn("Failed to set column width", zap.Error(err))
	}
	if err := f.SetColWidth(sheet, "B", "B", 40); err != nil {
		r.logger.Warn("Failed to set column width", zap.Error(err))
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	r.logger.Debug("Excel document rendered",
		zap.String("invoice_number", meta.InvoiceNumber()),
		zap.Int("rows", s.row-1))
	return nil
}

func (r *ExcelRenderer) open() (*excelize.File, string, error) {
	if r.templatePath == "" {
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
			f.Close()
			return nil, "", fmt.Errorf("failed to name sheet: %w", err)
		}
		return f, sheetName, nil
	}

	f, err := excelize.OpenFile(r.templatePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open template: %w", err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, "", fmt.Errorf("template has no sheets")
	}
	return f, sheets[0], nil
}

// sheetWriter appends rows to a sheet. Cell errors are logged, not returned.
type sheetWriter struct {
	f         *excelize.File
	sheet     string
	logger    *zap.Logger
	row       int
	boldStyle int
}

func (s *sheetWriter) prepareStyles() error {
	id, err := s.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	s.boldStyle = id
	return nil
}

func (s *sheetWriter) heading(label string) {
	cell := s.setRow(label)
	if err := s.f.SetCellStyle(s.sheet, cell, cell, s.boldStyle); err != nil {
		s.logger.Warn("Failed to style cell", zap.String("cell", cell), zap.Error(err))
	}
}

func (s *sheetWriter) header(labels ...string) {
	values := make([]interface{}, len(labels))
	for i, l := range labels {
		values[i] = l
	}
	first := s.setRow(values...)
	last, _ := excelize.CoordinatesToCellName(len(labels), s.row-1)
	if err := s.f.SetCellStyle(s.sheet, first, last, s.boldStyle); err != nil {
		s.logger.Warn("Failed to style cell", zap.String("cell", first), zap.Error(err))
	}
}

func (s *sheetWriter) pair(label, value string) {
	s.setRow(label, value)
}

func (s *sheetWriter) amount(label string, value float64) {
	s.setRow(label, value)
}

func (s *sheetWriter) values(values ...interface{}) {
	s.setRow(values...)
}

func (s *sheetWriter) blank() {
	s.row++
}

// setRow writes values from column A of the current row, advances the cursor
// and returns the name of the first cell.
func (s *sheetWriter) setRow(values ...interface{}) string {
	cell, _ := excelize.CoordinatesToCellName(1, s.row)
	s.row++
	if err := s.f.SetSheetRow(s.sheet, cell, &values); err != nil {
		s.logger.Warn("Failed to set row",
			zap.String("sheet", s.sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
	return cell
}
