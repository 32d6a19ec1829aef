package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

var (
	// ErrDocumentNotFound is returned when the source file does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrUnsupportedFormat is returned for files that are not PDFs.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// TextReader turns a document on disk into plain text.
type TextReader interface {
	ReadText(ctx context.Context, path string) (string, error)
}

// PDFTextReader reads the text layer of PDF files using mupdf.
type PDFTextReader struct {
	logger *zap.Logger
}

// NewPDFTextReader creates a new PDF text reader
func NewPDFTextReader(logger *zap.Logger) *PDFTextReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFTextReader{logger: logger}
}

// ReadText concatenates the text of every page in order. Each page with text is
// followed by a newline; pages without a text layer are skipped.
func (r *PDFTextReader) ReadText(ctx context.Context, path string) (string, error) {
	doc, err := r.open(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	r.logger.Debug("Reading PDF text",
		zap.String("path", path),
		zap.Int("total_pages", pageCount))

	var sb strings.Builder
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := doc.Text(pageNum)
		if err != nil {
			r.logger.Warn("Failed to extract page text",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func (r *PDFTextReader) open(path string) (*fitz.Document, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return doc, nil
}

// IsBlank reports whether text carries no extractable content, as with scanned
// documents that have no text layer.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
