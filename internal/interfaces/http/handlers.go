package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-converter/internal/conversion"
	"github.com/garyjia/invoice-converter/internal/document"
	"github.com/garyjia/invoice-converter/internal/invoice"
	"github.com/garyjia/invoice-converter/internal/models"
	"github.com/garyjia/invoice-converter/internal/render"
)

// ConversionService is the application service behind the handlers.
type ConversionService interface {
	Convert(ctx context.Context, req conversion.Request) (*conversion.Result, error)
	ExtractText(ctx context.Context, text string) (*conversion.Extraction, error)
	History(ctx context.Context, limit int) ([]*models.Conversion, error)
}

// Response headers set on document downloads.
const (
	HeaderTotalsCheck  = "X-Totals-Check"
	HeaderConversionID = "X-Conversion-ID"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	service       ConversionService
	maxUploadSize int64
	logger        *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(service ConversionService, maxUploadSize int64, logger *zap.Logger) *Handlers {
	return &Handlers{
		service:       service,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ExtractRequest is the body of POST /api/extract.
type ExtractRequest struct {
	Text string `json:"text"`
}

// ListConversionsRequest represents query parameters for listing conversions
type ListConversionsRequest struct {
	Limit int `form:"limit"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// Extract handles POST /api/extract
func (h *Handlers) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	extraction, err := h.service.ExtractText(c.Request.Context(), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    extraction,
	})
}

// Convert handles POST /api/convert?format=xlsx|pdf with a multipart "file"
// field and returns the rendered document.
func (h *Handlers) Convert(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, Response{
				Success: false,
				Error:   "uploaded file is too large",
			})
			return
		}
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "missing file field",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.service.Convert(c.Request.Context(), conversion.Request{
		FileName: fileHeader.Filename,
		Content:  content,
		Format:   c.Query("format"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	check := "ok"
	if !result.Check.OK {
		check = "mismatch"
	}
	c.Header(HeaderTotalsCheck, check)
	c.Header(HeaderConversionID, result.ID)
	c.FileAttachment(result.OutputPath, downloadName(fileHeader.Filename, result.Format))
}

// ListConversions handles GET /api/conversions
func (h *Handlers) ListConversions(c *gin.Context) {
	var req ListConversionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	records, err := h.service.History(c.Request.Context(), req.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(status, Response{Success: false, Error: "internal server error"})
		return
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	var fieldErr *invoice.FieldError
	switch {
	case errors.Is(err, invoice.ErrNoExtractableContent), errors.As(err, &fieldErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, conversion.ErrUnsupportedFile), errors.Is(err, document.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, conversion.ErrEmptyUpload), errors.Is(err, render.ErrUnknownFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// downloadName turns "march invoice.pdf" into "march invoice.xlsx".
func downloadName(uploadName, ext string) string {
	base := filepath.Base(strings.ReplaceAll(uploadName, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "invoice"
	}
	return base + "." + ext
}
