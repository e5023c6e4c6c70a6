package printing

import (
	"context"
	"time"
)

// PaperSize names a supported page format
type PaperSize string

// Supported paper sizes
const (
	PaperSizeA4     PaperSize = "A4"
	PaperSizeLetter PaperSize = "LETTER"
)

// Dimensions returns width and height in millimeters
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperSizeLetter:
		return 215.9, 279.4
	default:
		return 210, 297
	}
}

// IsValid reports whether p is a supported size
func (p PaperSize) IsValid() bool {
	return p == PaperSizeA4 || p == PaperSizeLetter
}

// Margins are page margins in millimeters
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins is used when a request leaves margins empty
var DefaultMargins = Margins{Top: 12, Right: 12, Bottom: 12, Left: 12}

// RenderRequest asks for HTML to be printed to PDF
type RenderRequest struct {
	HTML       string
	PaperSize  PaperSize
	Landscape  bool
	Margins    Margins
	Title      string
	FooterHTML string
	// Timeout overrides the renderer default
	Timeout time.Duration
}

// RenderResult is a printed document
type RenderResult struct {
	PDFData        []byte
	RenderDuration time.Duration
}

// PDFRenderer prints HTML documents
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeTemplateFailed   = "TEMPLATE_FAILED"
)

// RenderError is a rendering failure with a machine readable code
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NewRenderError creates a RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}
