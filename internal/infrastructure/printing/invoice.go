package printing

import (
	"context"
	"time"

	orderapp "github.com/ecomstore/backend/internal/application/order"
	"go.uber.org/zap"
)

const (
	invoiceTemplate  = "invoice.html.tmpl"
	defaultStoreName = "EcomStore"
	invoiceFooter    = `<div style="font-size:8px;width:100%;text-align:center;color:#666">` +
		`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`
)

// invoiceView is the data bound to the invoice template
type invoiceView struct {
	StoreName string
	Order     orderapp.OrderResponse
	IssuedAt  time.Time
}

// InvoiceRenderer renders order invoices as HTML and, with a PDF renderer, as PDF
type InvoiceRenderer struct {
	engine    *TemplateEngine
	pdf       PDFRenderer
	paper     PaperSize
	storeName string
	logger    *zap.Logger
}

// InvoiceOption configures an InvoiceRenderer
type InvoiceOption func(*InvoiceRenderer)

// WithPDFRenderer enables PDF invoices
func WithPDFRenderer(pdf PDFRenderer) InvoiceOption {
	return func(r *InvoiceRenderer) {
		r.pdf = pdf
	}
}

// WithPaperSize sets the PDF page format; A4 by default
func WithPaperSize(size PaperSize) InvoiceOption {
	return func(r *InvoiceRenderer) {
		r.paper = size
	}
}

// WithStoreName sets the seller name printed in the header
func WithStoreName(name string) InvoiceOption {
	return func(r *InvoiceRenderer) {
		r.storeName = name
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) InvoiceOption {
	return func(r *InvoiceRenderer) {
		r.logger = logger
	}
}

// NewInvoiceRenderer parses the invoice template
func NewInvoiceRenderer(opts ...InvoiceOption) (*InvoiceRenderer, error) {
	engine, err := NewTemplateEngine()
	if err != nil {
		return nil, err
	}
	r := &InvoiceRenderer{
		engine:    engine,
		paper:     PaperSizeA4,
		storeName: defaultStoreName,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RenderHTML renders the invoice page
func (r *InvoiceRenderer) RenderHTML(_ context.Context, doc *orderapp.InvoiceDocument) ([]byte, error) {
	return r.engine.Render(invoiceTemplate, invoiceView{
		StoreName: r.storeName,
		Order:     doc.Order,
		IssuedAt:  doc.IssuedAt,
	})
}

// RenderPDF prints the invoice page. Without a PDF renderer it returns
// orderapp.ErrPDFUnavailable.
func (r *InvoiceRenderer) RenderPDF(ctx context.Context, doc *orderapp.InvoiceDocument) ([]byte, error) {
	if r.pdf == nil {
		return nil, orderapp.ErrPDFUnavailable
	}
	html, err := r.RenderHTML(ctx, doc)
	if err != nil {
		return nil, err
	}
	result, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:       string(html),
		PaperSize:  r.paper,
		Title:      "Invoice " + doc.Order.OrderNumber,
		FooterHTML: invoiceFooter,
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Invoice printed",
		zap.String("order_number", doc.Order.OrderNumber),
		zap.Duration("duration", result.RenderDuration))
	return result.PDFData, nil
}

// Close releases the PDF renderer
func (r *InvoiceRenderer) Close() error {
	if r.pdf == nil {
		return nil
	}
	return r.pdf.Close()
}

var _ orderapp.InvoiceRenderer = (*InvoiceRenderer)(nil)
