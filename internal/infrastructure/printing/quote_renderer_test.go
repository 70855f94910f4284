package printing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/application/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingRenderer struct {
	req    *RenderRequest
	err    error
	closed bool
}

func (c *capturingRenderer) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	c.req = req
	if c.err != nil {
		return nil, c.err
	}
	return &RenderResult{PDFData: []byte("%PDF-1.4")}, nil
}

func (c *capturingRenderer) Close() error {
	c.closed = true
	return nil
}

func sampleQuote() trade.QuoteDocument {
	delivery := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	customer := &trade.OrderCustomer{
		ID:          uuid.New(),
		DisplayName: "ana rojas",
		TaxID:       "12345678-5",
		Email:       "ana@aceros.cl",
		Address:     "Av. Industrial 123",
		Commune:     "Quilicura",
		City:        "Santiago",
	}
	return trade.QuoteDocument{
		Store: trade.StoreInfo{
			Name:  "Pozinox",
			TaxID: "76.123.456-7",
			Email: "ventas@pozinox.cl",
		},
		VATPercent: decimal.NewFromInt(19),
		Customer:   customer,
		IssuedAt:   time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC),
		Order: trade.OrderResponse{
			OrderNumber:   "POZ20240503001",
			Status:        "confirmed",
			PaymentMethod: "transfer",
			Subtotal:      decimal.NewFromInt(100000),
			Discount:      decimal.NewFromInt(15000),
			Tax:           decimal.NewFromInt(18050),
			Total:         decimal.NewFromInt(113050),
			Notes:         "Retiro en bodega",
			DeliveryDate:  &delivery,
			Lines: []trade.OrderLineResponse{{
				ProductCode:     "PL-A36-3",
				ProductName:     "Plancha A36 3mm",
				Quantity:        2,
				UnitPrice:       decimal.NewFromInt(50000),
				DiscountPercent: decimal.NewFromInt(5),
				Subtotal:        decimal.NewFromInt(95000),
			}},
		},
	}
}

func TestQuoteRenderer_RenderHTML(t *testing.T) {
	r, err := NewQuoteRenderer(&capturingRenderer{}, nil)
	require.NoError(t, err)

	t.Run("order", func(t *testing.T) {
		out, err := r.RenderHTML(sampleQuote())
		require.NoError(t, err)

		assert.Contains(t, out, "ORDEN DE COMPRA")
		assert.Contains(t, out, "N° POZ20240503001")
		assert.Contains(t, out, "Emitida: 03-05-2024")
		assert.Contains(t, out, "Entrega estimada: 10-05-2024")
		assert.Contains(t, out, "Estado: Confirmado")
		assert.Contains(t, out, "Ana Rojas")
		assert.Contains(t, out, "Av. Industrial 123, Quilicura, Santiago")
		assert.Contains(t, out, "$50.000")
		assert.Contains(t, out, "-$15.000")
		assert.Contains(t, out, "IVA (19%)")
		assert.Contains(t, out, "$113.050")
		assert.Contains(t, out, "Forma de pago: Transferencia bancaria")
		assert.Contains(t, out, "Retiro en bodega")
	})

	t.Run("quote", func(t *testing.T) {
		doc := sampleQuote()
		doc.Order.IsQuote = true
		doc.Order.PaymentMethod = ""
		doc.Order.Discount = decimal.Zero
		doc.Customer = nil

		out, err := r.RenderHTML(doc)
		require.NoError(t, err)
		assert.Contains(t, out, "COTIZACIÓN")
		assert.Contains(t, out, "Estado: Borrador")
		assert.NotContains(t, out, "Forma de pago")
		assert.NotContains(t, out, "Descuento")
		assert.NotContains(t, out, "Cliente")
	})
}

func TestQuoteRenderer_RenderQuote(t *testing.T) {
	t.Run("passes the document to the PDF renderer", func(t *testing.T) {
		pdf := &capturingRenderer{}
		r, err := NewQuoteRenderer(pdf, nil)
		require.NoError(t, err)

		data, err := r.RenderQuote(context.Background(), sampleQuote())
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4"), data)
		require.NotNil(t, pdf.req)
		assert.Equal(t, "POZ20240503001", pdf.req.Title)
		assert.Contains(t, pdf.req.HTML, "Plancha A36 3mm")
		assert.Contains(t, pdf.req.FooterHTML, "pageNumber")

		require.NoError(t, r.Close())
		assert.True(t, pdf.closed)
	})

	t.Run("renderer failure", func(t *testing.T) {
		pdf := &capturingRenderer{err: NewRenderError(ErrCodeRenderTimeout, "timed out", nil)}
		r, err := NewQuoteRenderer(pdf, nil)
		require.NoError(t, err)

		_, err = r.RenderQuote(context.Background(), sampleQuote())
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeRenderTimeout, renderErr.Code)
	})
}
