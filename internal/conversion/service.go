package conversion

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/garyjia/invoice-converter/internal/document"
	"github.com/garyjia/invoice-converter/internal/invoice"
	"github.com/garyjia/invoice-converter/internal/models"
	"github.com/garyjia/invoice-converter/internal/notify"
	"github.com/garyjia/invoice-converter/internal/render"
	"github.com/garyjia/invoice-converter/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Journal records conversion runs.
type Journal interface {
	Create(ctx context.Context, tx *sql.Tx, c *models.Conversion) error
	List(ctx context.Context, limit int) ([]*models.Conversion, error)
}

// RendererFactory returns the renderer for an output format.
type RendererFactory func(format string) (render.Renderer, error)

// Dependencies are the collaborators of a Service. Journal and Notifier may be nil.
type Dependencies struct {
	Reader    document.TextReader
	Storage   storage.FileStorage
	Journal   Journal
	Notifier  notify.Notifier
	Extractor *invoice.Extractor
	Renderers RendererFactory
}

// Options tunes a Service.
type Options struct {
	DefaultFormat string
	KeepUploads   bool
	Render        render.Options
}

// Request is one uploaded document to convert.
type Request struct {
	FileName string
	Content  []byte
	// Format is "xlsx" or "pdf"; empty uses the default format.
	Format string
}

// Extraction is an extracted invoice with its consistency check and field report.
type Extraction struct {
	Invoice *invoice.Invoice `json:"invoice"`
	Check   invoice.Result   `json:"check"`
	Report  invoice.Report   `json:"report"`
}

// Result describes a completed conversion.
type Result struct {
	Extraction
	ID         string `json:"id"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
}

// Service converts uploaded invoice PDFs into rendered documents.
type Service struct {
	reader        document.TextReader
	storage       storage.FileStorage
	journal       Journal
	notifier      notify.Notifier
	extractor     *invoice.Extractor
	renderers     RendererFactory
	defaultFormat string
	keepUploads   bool
	newID         func() string
	now           func() time.Time
	logger        *zap.Logger
}

// NewService creates a conversion service.
func NewService(deps Dependencies, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		reader:        deps.Reader,
		storage:       deps.Storage,
		journal:       deps.Journal,
		notifier:      deps.Notifier,
		extractor:     deps.Extractor,
		renderers:     deps.Renderers,
		defaultFormat: opts.DefaultFormat,
		keepUploads:   opts.KeepUploads,
		newID:         uuid.NewString,
		now:           time.Now,
		logger:        logger,
	}

	if s.notifier == nil {
		s.notifier = notify.NopNotifier{}
	}
	if s.extractor == nil {
		s.extractor = invoice.NewExtractor(nil, logger)
	}
	if s.renderers == nil {
		renderOpts := opts.Render
		s.renderers = func(format string) (render.Renderer, error) {
			return render.New(format, renderOpts, logger)
		}
	}
	if s.defaultFormat == "" {
		s.defaultFormat = render.FormatXLSX
	}
	return s
}

// ExtractText extracts an invoice from plain text and checks its totals. A
// totals mismatch is reported in the check result, never as an error.
func (s *Service) ExtractText(ctx context.Context, text string) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inv, report, err := s.extractor.ExtractWithReport(text)
	if err != nil {
		return nil, err
	}

	check := invoice.Check(inv)
	if !check.OK {
		s.logger.Warn("Invoice totals mismatch",
			zap.String("invoice_number", inv.Meta().InvoiceNumber()),
			zap.Float64("computed", check.Computed),
			zap.Float64("extracted", check.Extracted))
	}

	return &Extraction{Invoice: inv, Check: check, Report: report}, nil
}

// Convert stores the upload, extracts the invoice from its text layer, renders
// it and journals the run.
func (s *Service) Convert(ctx context.Context, req Request) (*Result, error) {
	if len(req.Content) == 0 {
		return nil, ErrEmptyUpload
	}
	if !strings.EqualFold(filepath.Ext(req.FileName), ".pdf") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, req.FileName)
	}

	format := req.Format
	if format == "" {
		format = s.defaultFormat
	}
	renderer, err := s.renderers(format)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	logger := s.logger.With(zap.String("conversion_id", id))
	logger.Info("Starting conversion",
		zap.String("file_name", req.FileName),
		zap.Int("size", len(req.Content)),
		zap.String("format", renderer.Extension()))

	uploadPath, err := s.storage.SaveUpload(id, req.FileName, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if !s.keepUploads {
		defer func() {
			if err := s.storage.RemoveUpload(id); err != nil {
				logger.Warn("Failed to remove upload", zap.Error(err))
			}
		}()
	}

	text, err := s.reader.ReadText(ctx, uploadPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if document.IsBlank(text) {
		logger.Info("Document has no text layer")
		return nil, fmt.Errorf("%w: no text found in document, scanned PDFs are not supported",
			invoice.ErrNoExtractableContent)
	}

	extraction, err := s.ExtractText(ctx, text)
	if err != nil {
		return nil, err
	}

	outputPath, err := s.render(ctx, id, renderer, extraction.Invoice)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Extraction: *extraction,
		ID:         id,
		Format:     renderer.Extension(),
		OutputPath: outputPath,
	}

	s.record(ctx, logger, req.FileName, result)

	if !extraction.Check.OK {
		s.notifyMismatch(ctx, logger, req.FileName, result)
	}

	logger.Info("Conversion completed",
		zap.String("output_path", outputPath),
		zap.Bool("totals_ok", extraction.Check.OK),
		zap.Float64("confidence", extraction.Report.Confidence()))

	return result, nil
}

// History lists recent conversions, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*models.Conversion, error) {
	if s.journal == nil {
		return []*models.Conversion{}, nil
	}
	return s.journal.List(ctx, limit)
}

func (s *Service) render(ctx context.Context, id string, renderer render.Renderer, inv *invoice.Invoice) (string, error) {
	w, outputPath, err := s.storage.CreateOutput(id, renderer.Extension())
	if err != nil {
		return "", fmt.Errorf("failed to create output: %w", err)
	}

	renderErr := renderer.Render(ctx, inv, w)
	closeErr := w.Close()
	if renderErr != nil {
		return "", fmt.Errorf("failed to render document: %w", renderErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("failed to write output: %w", closeErr)
	}
	return outputPath, nil
}

// record journals the run. Journal failures are logged; the rendered document
// is still returned.
func (s *Service) record(ctx context.Context, logger *zap.Logger, sourceName string, result *Result) {
	if s.journal == nil {
		return
	}

	entry := &models.Conversion{
		ID:            result.ID,
		SourceName:    sourceName,
		OutputPath:    result.OutputPath,
		Format:        result.Format,
		InvoiceNumber: result.Invoice.Meta().InvoiceNumber(),
		InvoiceTotal:  result.Check.Extracted,
		ComputedTotal: result.Check.Computed,
		TotalsOK:      result.Check.OK,
		CheckMessage:  result.Check.Message,
		Confidence:    result.Report.Confidence(),
		CreatedAt:     s.now(),
	}
	if err := s.journal.Create(ctx, nil, entry); err != nil {
		logger.Error("Failed to journal conversion", zap.Error(err))
	}
}

func (s *Service) notifyMismatch(ctx context.Context, logger *zap.Logger, sourceName string, result *Result) {
	event := notify.MismatchEvent{
		ConversionID:  result.ID,
		SourceName:    sourceName,
		InvoiceNumber: result.Invoice.Meta().InvoiceNumber(),
		Computed:      result.Check.Computed,
		Extracted:     result.Check.Extracted,
	}
	if err := s.notifier.NotifyMismatch(ctx, event); err != nil {
		logger.Warn("Failed to send mismatch notification", zap.Error(err))
	}
}
