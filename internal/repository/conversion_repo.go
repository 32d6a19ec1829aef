package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garyjia/invoice-converter/internal/models"
	"go.uber.org/zap"
)

// ErrConversionNotFound is returned when no journal entry has the requested ID.
var ErrConversionNotFound = errors.New("conversion not found")

const defaultListLimit = 50

// ConversionRepository handles conversion journal database operations
type ConversionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewConversionRepository creates a new conversion repository
func NewConversionRepository(db *sql.DB, logger *zap.Logger) *ConversionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a journal entry. tx may be nil.
func (r *ConversionRepository) Create(ctx context.Context, tx *sql.Tx, c *models.Conversion) error {
	query := `
		INSERT INTO conversions (
			id, source_name, output_path, format, invoice_number,
			invoice_total, computed_total, totals_ok, check_message,
			confidence, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	args := []interface{}{
		c.ID,
		c.SourceName,
		c.OutputPath,
		c.Format,
		c.InvoiceNumber,
		c.InvoiceTotal,
		c.ComputedTotal,
		c.TotalsOK,
		c.CheckMessage,
		c.Confidence,
		c.CreatedAt.UTC(),
	}

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		r.logger.Error("Failed to create conversion record",
			zap.String("conversion_id", c.ID),
			zap.Error(err))
		return fmt.Errorf("failed to create conversion: %w", err)
	}
	return nil
}

// GetByID retrieves one journal entry.
func (r *ConversionRepository) GetByID(ctx context.Context, id string) (*models.Conversion, error) {
	query := selectConversions + ` WHERE id = ?`

	c, err := scanConversion(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversion: %w", err)
	}
	return c, nil
}

// List returns the most recent entries first. A non-positive limit uses the default.
func (r *ConversionRepository) List(ctx context.Context, limit int) ([]*models.Conversion, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := selectConversions + ` ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list conversions", zap.Error(err))
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	defer rows.Close()

	records := make([]*models.Conversion, 0)
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

// CountMismatches returns how many journaled runs failed the totals check.
func (r *ConversionRepository) CountMismatches(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversions WHERE totals_ok = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count mismatches: %w", err)
	}
	return n, nil
}

const selectConversions = `
	SELECT id, source_name, output_path, format, invoice_number,
		invoice_total, computed_total, totals_ok, check_message,
		confidence, created_at
	FROM conversions`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConversion(row rowScanner) (*models.Conversion, error) {
	var c models.Conversion
	err := row.Scan(
		&c.ID,
		&c.SourceName,
		&c.OutputPath,
		&c.Format,
		&c.InvoiceNumber,
		&c.InvoiceTotal,
		&c.ComputedTotal,
		&c.TotalsOK,
		&c.CheckMessage,
		&c.Confidence,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
