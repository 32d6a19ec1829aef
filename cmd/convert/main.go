// Command convert extracts one invoice offline and optionally renders it.
//
//	convert -in invoice.pdf -out invoice.xlsx
//	convert -text invoice.txt -fixed-date 2026-03-14
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-converter/internal/document"
	"github.com/garyjia/invoice-converter/internal/invoice"
	"github.com/garyjia/invoice-converter/internal/render"
	"github.com/garyjia/invoice-converter/pkg/utils"
)

type output struct {
	Invoice *invoice.Invoice `json:"invoice"`
	Check   invoice.Result   `json:"check"`
	Report  invoice.Report   `json:"report"`
}

func main() {
	var (
		inPath    = flag.String("in", "", "invoice PDF to read")
		textPath  = flag.String("text", "", "plain text file to read instead of a PDF")
		outPath   = flag.String("out", "", "rendered output file (.xlsx or .pdf)")
		format    = flag.String("format", "", "output format, defaults to the -out extension")
		template  = flag.String("template", "", "Excel template for xlsx output")
		fixedDate = flag.String("fixed-date", "", "invoice date as YYYY-MM-DD, defaults to today")
		logLevel  = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      *logLevel,
		OutputPath: "stderr",
		Format:     "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if (*inPath == "") == (*textPath == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -in or -text is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	text, err := readInput(ctx, *inPath, *textPath, logger)
	if err != nil {
		logger.Fatal("Failed to read input", zap.Error(err))
	}

	clock := invoice.Clock(invoice.SystemClock{})
	if *fixedDate != "" {
		date, err := time.Parse(invoice.DateLayout, *fixedDate)
		if err != nil {
			logger.Fatal("Invalid -fixed-date", zap.String("value", *fixedDate), zap.Error(err))
		}
		clock = invoice.FixedClock(date)
	}

	inv, report, err := invoice.NewExtractor(clock, logger).ExtractWithReport(text)
	if errors.Is(err, invoice.ErrNoExtractableContent) {
		logger.Fatal("No text found in document, scanned PDFs are not supported")
	}
	if err != nil {
		logger.Fatal("Extraction failed", zap.Error(err))
	}

	check := invoice.Check(inv)
	if !check.OK {
		logger.Warn("Totals mismatch", zap.String("message", check.Message))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output{Invoice: inv, Check: check, Report: report}); err != nil {
		logger.Fatal("Failed to write JSON", zap.Error(err))
	}

	if *outPath == "" {
		return
	}

	if *format == "" {
		*format = strings.TrimPrefix(filepath.Ext(*outPath), ".")
	}
	renderer, err := render.New(*format, render.Options{ExcelTemplate: *template}, logger)
	if err != nil {
		logger.Fatal("Failed to create renderer", zap.Error(err))
	}

	if err := writeRendered(ctx, renderer, inv, *outPath); err != nil {
		logger.Fatal("Failed to render invoice", zap.Error(err))
	}
	logger.Info("Invoice rendered", zap.String("path", *outPath))
}

func readInput(ctx context.Context, pdfPath, textPath string, logger *zap.Logger) (string, error) {
	if textPath != "" {
		data, err := os.ReadFile(textPath)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return document.NewPDFTextReader(logger).ReadText(ctx, pdfPath)
}

func writeRendered(ctx context.Context, renderer render.Renderer, inv *invoice.Invoice, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := renderer.Render(ctx, inv, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
