package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Invoice formats
const (
	InvoiceFormatHTML = "html"
	InvoiceFormatPDF  = "pdf"
)

var (
	// ErrPDFUnavailable is returned for PDF invoices when no printer is configured
	ErrPDFUnavailable = shared.NewDomainError("NOT_IMPLEMENTED", "PDF invoices are not enabled on this server")
	// ErrInvalidInvoiceFormat is returned for unknown format values
	ErrInvalidInvoiceFormat = shared.NewDomainError("INVALID_INPUT", "Invoice format must be html or pdf")
)

// InvoiceDocument is everything an invoice template needs
type InvoiceDocument struct {
	Order    OrderResponse
	IssuedAt time.Time
}

// InvoiceRenderer turns an invoice document into a printable file
type InvoiceRenderer interface {
	RenderHTML(ctx context.Context, doc *InvoiceDocument) ([]byte, error)
	// RenderPDF returns ErrPDFUnavailable when PDF output is disabled
	RenderPDF(ctx context.Context, doc *InvoiceDocument) ([]byte, error)
}

// InvoiceFile is a rendered invoice ready to be sent
type InvoiceFile struct {
	ContentType string
	Filename    string
	Body        []byte
}

// Invoice renders the invoice of an order for its owner or an admin
func (s *OrderService) Invoice(ctx context.Context, id uuid.UUID, requester Requester, format string) (*InvoiceFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = InvoiceFormatHTML
	}
	if format != InvoiceFormatHTML && format != InvoiceFormatPDF {
		return nil, ErrInvalidInvoiceFormat
	}
	if s.invoices == nil {
		return nil, shared.NewDomainError("NOT_IMPLEMENTED", "Invoices are not enabled on this server")
	}

	o, err := s.findAuthorized(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	doc := &InvoiceDocument{
		Order:    ToOrderResponse(o, s.lookupUser(ctx, o.UserID)),
		IssuedAt: time.Now().UTC(),
	}

	file := &InvoiceFile{Filename: fmt.Sprintf("invoice-%s.%s", o.OrderNumber, format)}
	switch format {
	case InvoiceFormatPDF:
		file.ContentType = "application/pdf"
		file.Body, err = s.invoices.RenderPDF(ctx, doc)
	default:
		file.ContentType = "text/html; charset=utf-8"
		file.Body, err = s.invoices.RenderHTML(ctx, doc)
	}
	if err != nil {
		if _, ok := shared.AsDomainError(err); !ok {
			s.logger.Error("Invoice rendering failed",
				zap.String("order_number", o.OrderNumber),
				zap.String("format", format),
				zap.Error(err))
			return nil, fmt.Errorf("failed to render invoice: %w", err)
		}
		return nil, err
	}
	return file, nil
}
