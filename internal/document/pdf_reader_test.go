package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// writeTextPDF writes a minimal PDF with one page per entry in pages. An empty
// entry produces a page without any text.
func writeTextPDF(t *testing.T, pages ...string) string {
	t.Helper()

	var (
		buf     bytes.Buffer
		offsets []int
	)
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	// 1 catalog, 2 page tree, 3 font, then a page and its content per page.
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	buf.WriteString("%PDF-1.4\n")
	object("<< /Type /Catalog /Pages 2 0 R >>")
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	object("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i, text := range pages {
		object(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))

		var stream string
		if text != "" {
			stream = fmt.Sprintf("BT /F1 24 Tf 72 700 Td (%s) Tj ET", text)
		}
		object(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	path := filepath.Join(t.TempDir(), "invoice.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestPDFTextReader_ReadText(t *testing.T) {
	reader := NewPDFTextReader(zap.NewNop())

	text, err := reader.ReadText(context.Background(), writeTextPDF(t, "TAX INVOICE", "Grand Total 1234"))
	require.NoError(t, err)

	first := strings.Index(text, "TAX INVOICE")
	second := strings.Index(text, "Grand Total 1234")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
	assert.Contains(t, text[first:second], "\n")
	assert.True(t, strings.HasSuffix(text, "\n"))
}

func TestPDFTextReader_SkipsBlankPages(t *testing.T) {
	reader := NewPDFTextReader(zap.NewNop())
	ctx := context.Background()

	withoutBlank, err := reader.ReadText(ctx, writeTextPDF(t, "Page one", "Page three"))
	require.NoError(t, err)
	withBlank, err := reader.ReadText(ctx, writeTextPDF(t, "Page one", "", "Page three"))
	require.NoError(t, err)

	assert.Equal(t, withoutBlank, withBlank)
}

func TestPDFTextReader_NoTextLayer(t *testing.T) {
	text, err := NewPDFTextReader(nil).ReadText(context.Background(), writeTextPDF(t, "", ""))
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.True(t, IsBlank(text))
}

func TestPDFTextReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPDFTextReader(nil).ReadText(ctx, writeTextPDF(t, "Page one"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPDFTextReader_UnsupportedFormat(t *testing.T) {
	reader := NewPDFTextReader(zap.NewNop())

	for _, name := range []string{"invoice.txt", "scan.png", "noext"} {
		_, err := reader.ReadText(context.Background(), filepath.Join(t.TempDir(), name))
		assert.True(t, errors.Is(err, ErrUnsupportedFormat), name)
	}
}

func TestPDFTextReader_NotFound(t *testing.T) {
	reader := NewPDFTextReader(nil)

	_, err := reader.ReadText(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.True(t, errors.Is(err, ErrDocumentNotFound))

	_, err = reader.ReadText(context.Background(), filepath.Join(t.TempDir(), "missing.PDF"))
	assert.True(t, errors.Is(err, ErrDocumentNotFound))
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \n\t\n"))
	assert.False(t, IsBlank("TAX INVOICE"))
}
