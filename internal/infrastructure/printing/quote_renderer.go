package printing

import (
	"context"
	"html/template"

	"github.com/pozinox/backend/internal/application/trade"
	"go.uber.org/zap"
)

const quoteTemplateName = "quote"

const quoteTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<title>{{if .Order.IsQuote}}Cotización{{else}}Orden{{end}} {{.Order.OrderNumber}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 11px; color: #222; }
  header { display: flex; justify-content: space-between; border-bottom: 2px solid #1f4e79; padding-bottom: 8px; }
  header h1 { margin: 0; color: #1f4e79; font-size: 20px; }
  .doc { text-align: right; }
  .doc .number { font-size: 16px; font-weight: bold; }
  section { margin-top: 14px; }
  table { width: 100%; border-collapse: collapse; }
  th { background: #1f4e79; color: #fff; text-align: left; padding: 5px; }
  td { border-bottom: 1px solid #ddd; padding: 5px; }
  .num { text-align: right; }
  .totals { width: 40%; margin-left: auto; }
  .totals td { border: none; }
  .grand td { font-weight: bold; font-size: 13px; border-top: 2px solid #1f4e79; }
  .notes { white-space: pre-wrap; }
</style>
</head>
<body>
<header>
  <div>
    <h1>{{.Store.Name}}</h1>
    <div>RUT {{.Store.TaxID}}</div>
    <div>{{.Store.Address}}</div>
    <div>{{.Store.Phone}} · {{.Store.Email}}</div>
  </div>
  <div class="doc">
    <div>{{if .Order.IsQuote}}COTIZACIÓN{{else}}ORDEN DE COMPRA{{end}}</div>
    <div class="number">N° {{.Order.OrderNumber}}</div>
    <div>Emitida: {{formatDate .IssuedAt}}</div>
    {{with .Order.DeliveryDate}}<div>Entrega estimada: {{formatDate .}}</div>{{end}}
    <div>Estado: {{.StatusLabel}}</div>
  </div>
</header>

{{with .Customer}}
<section>
  <strong>Cliente</strong>
  <div>{{title .DisplayName}}</div>
  <div>RUT {{.TaxID}}</div>
  <div>{{.Email}}{{with .Phone}} · {{.}}{{end}}</div>
  {{if .Address}}<div>{{.Address}}{{with .Commune}}, {{.}}{{end}}{{with .City}}, {{.}}{{end}}</div>{{end}}
</section>
{{end}}

<section>
  <table>
    <thead>
      <tr><th>Código</th><th>Producto</th><th class="num">Cantidad</th><th class="num">Precio unitario</th><th class="num">Desc.</th><th class="num">Subtotal</th></tr>
    </thead>
    <tbody>
    {{range .Order.Lines}}
      <tr>
        <td>{{.ProductCode}}</td>
        <td>{{.ProductName}}</td>
        <td class="num">{{formatNumber .Quantity}}</td>
        <td class="num">{{formatCLP .UnitPrice}}</td>
        <td class="num">{{if .DiscountPercent.IsPositive}}{{formatPercent .DiscountPercent}}{{end}}</td>
        <td class="num">{{formatCLP .Subtotal}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>
</section>

<section>
  <table class="totals">
    <tr><td>Neto</td><td class="num">{{formatCLP .Order.Subtotal}}</td></tr>
    {{if .Order.Discount.IsPositive}}<tr><td>Descuento</td><td class="num">-{{formatCLP .Order.Discount}}</td></tr>{{end}}
    <tr><td>IVA ({{formatPercent .VATPercent}})</td><td class="num">{{formatCLP .Order.Tax}}</td></tr>
    <tr class="grand"><td>Total</td><td class="num">{{formatCLP .Order.Total}}</td></tr>
  </table>
</section>

{{with .PaymentMethodLabel}}<section>Forma de pago: {{.}}</section>{{end}}
{{with .Order.Notes}}<section><strong>Observaciones</strong><div class="notes">{{.}}</div></section>{{end}}
</body>
</html>`

var orderStatusLabels = map[string]string{
	"pending":   "Pendiente",
	"confirmed": "Confirmado",
	"preparing": "En preparación",
	"ready":     "Listo para despacho",
	"shipped":   "Despachado",
	"delivered": "Entregado",
	"cancelled": "Cancelado",
}

var paymentMethodLabels = map[string]string{
	"cash":     "Efectivo",
	"transfer": "Transferencia bancaria",
	"card":     "Tarjeta",
	"check":    "Cheque",
}

// quoteView adds display labels to the document
type quoteView struct {
	trade.QuoteDocument
	StatusLabel        string
	PaymentMethodLabel string
}

// QuoteRenderer prints quotes and orders to PDF
type QuoteRenderer struct {
	engine   *TemplateEngine
	tmpl     *template.Template
	renderer PDFRenderer
	logger   *zap.Logger
}

// NewQuoteRenderer creates a QuoteRenderer on top of a PDF renderer
func NewQuoteRenderer(renderer PDFRenderer, logger *zap.Logger) (*QuoteRenderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := NewTemplateEngine()
	tmpl, err := engine.Parse(quoteTemplateName, quoteTemplate)
	if err != nil {
		return nil, err
	}
	return &QuoteRenderer{engine: engine, tmpl: tmpl, renderer: renderer, logger: logger}, nil
}

// RenderHTML renders the quote document to HTML
func (q *QuoteRenderer) RenderHTML(doc trade.QuoteDocument) (string, error) {
	view := quoteView{
		QuoteDocument:      doc,
		StatusLabel:        label(orderStatusLabels, doc.Order.Status),
		PaymentMethodLabel: label(paymentMethodLabels, doc.Order.PaymentMethod),
	}
	if doc.Order.IsQuote {
		view.StatusLabel = "Borrador"
	}
	return q.engine.Execute(q.tmpl, view)
}

// RenderQuote renders the quote document to PDF
func (q *QuoteRenderer) RenderQuote(ctx context.Context, doc trade.QuoteDocument) ([]byte, error) {
	html, err := q.RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	result, err := q.renderer.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      doc.Order.OrderNumber,
		FooterHTML: `<div style="font-size:8px;width:100%;text-align:center;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`,
	})
	if err != nil {
		q.logger.Error("Failed to render quote PDF",
			zap.String("order_number", doc.Order.OrderNumber),
			zap.Error(err))
		return nil, err
	}
	return result.PDFData, nil
}

// Close releases the underlying PDF renderer
func (q *QuoteRenderer) Close() error {
	return q.renderer.Close()
}

func label(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

var _ trade.QuoteRenderer = (*QuoteRenderer)(nil)
