package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	orderapp "github.com/ecomstore/backend/internal/application/order"
	"github.com/ecomstore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	return m.Called().Error(0)
}

func invoiceFixture() *orderapp.InvoiceDocument {
	created := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	eta := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	return &orderapp.InvoiceDocument{
		IssuedAt: time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC),
		Order: orderapp.OrderResponse{
			ID:          uuid.MustParse("5f0c6d1e-8a43-4b8e-9a51-3c2d8e1f7a10"),
			OrderNumber: "ORD-1767600000000-0042",
			Items: []orderapp.OrderItemResponse{
				{
					Product:   uuid.MustParse("9b2e4c1a-1f6d-4e7b-8c3a-2d5f6e7a8b90"),
					Name:      "4K Television",
					Price:     decimal.RequireFromString("1299.00"),
					Quantity:  1,
					LineTotal: decimal.RequireFromString("1299.00"),
				},
				{
					Product:   uuid.MustParse("0c1d2e3f-4a5b-4c6d-8e7f-9a0b1c2d3e4f"),
					Name:      "Salt & Pepper Set",
					Price:     decimal.RequireFromString("12.50"),
					Quantity:  2,
					LineTotal: decimal.RequireFromString("25.00"),
				},
			},
			ShippingAddress: valueobject.AddressDTO{
				FullName: "Jane Smith",
				Street:   "42 Elm Street",
				City:     "Portland",
				State:    "OR",
				ZipCode:  "97201",
				Country:  "USA",
			},
			PaymentMethod:     "credit_card",
			PaymentStatus:     "paid",
			OrderStatus:       "shipped",
			Subtotal:          decimal.RequireFromString("1324.00"),
			ShippingFee:       decimal.Zero,
			Tax:               decimal.RequireFromString("132.40"),
			TotalAmount:       decimal.RequireFromString("1456.40"),
			TrackingNumber:    "1Z999AA10123456784",
			EstimatedDelivery: &eta,
			CreatedAt:         created,
			UpdatedAt:         created,
		},
	}
}

func TestInvoiceRenderer_RenderHTML(t *testing.T) {
	r, err := NewInvoiceRenderer()
	require.NoError(t, err)

	html, err := r.RenderHTML(context.Background(), invoiceFixture())
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "invoice", html)
}

func TestInvoiceRenderer_RenderHTML_OptionalSections(t *testing.T) {
	r, err := NewInvoiceRenderer(WithStoreName("Corner Shop"))
	require.NoError(t, err)

	doc := invoiceFixture()
	doc.Order.TrackingNumber = ""
	doc.Order.EstimatedDelivery = nil
	doc.Order.ShippingAddress.FullName = ""
	doc.Order.ShippingAddress.State = ""

	html, err := r.RenderHTML(context.Background(), doc)
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "<h1>Corner Shop</h1>")
	assert.Contains(t, out, "<address>\n42 Elm Street<br>\nPortland 97201<br>")
	assert.NotContains(t, out, "Tracking number")
	assert.NotContains(t, out, "Estimated delivery")
}

func TestInvoiceRenderer_RenderPDF(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		r, err := NewInvoiceRenderer()
		require.NoError(t, err)
		_, err = r.RenderPDF(ctx, invoiceFixture())
		assert.ErrorIs(t, err, orderapp.ErrPDFUnavailable)
		assert.NoError(t, r.Close())
	})

	t.Run("prints the invoice html", func(t *testing.T) {
		pdf := new(MockPDFRenderer)
		pdf.On("Render", ctx, mock.MatchedBy(func(req *RenderRequest) bool {
			return req.PaperSize == PaperSizeLetter &&
				req.Title == "Invoice ORD-1767600000000-0042" &&
				req.FooterHTML != "" &&
				len(req.HTML) > 0
		})).Return(&RenderResult{PDFData: []byte("%PDF-1.7")}, nil)
		pdf.On("Close").Return(nil)

		r, err := NewInvoiceRenderer(WithPDFRenderer(pdf), WithPaperSize(PaperSizeLetter))
		require.NoError(t, err)
		data, err := r.RenderPDF(ctx, invoiceFixture())
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.7"), data)
		require.NoError(t, r.Close())
		pdf.AssertExpectations(t)
	})

	t.Run("render failures surface", func(t *testing.T) {
		pdf := new(MockPDFRenderer)
		pdf.On("Render", ctx, mock.Anything).Return(nil, NewRenderError(ErrCodeRenderTimeout, "timed out", nil))

		r, err := NewInvoiceRenderer(WithPDFRenderer(pdf))
		require.NoError(t, err)
		_, err = r.RenderPDF(ctx, invoiceFixture())
		var renderErr *RenderError
		require.True(t, errors.As(err, &renderErr))
		assert.Equal(t, ErrCodeRenderTimeout, renderErr.Code)
	})
}
