package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
)

const invoiceTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1a1a2e;">
  <h2>Invoice {{.Invoice.InvoiceNumber}}</h2>
  <p>Dear {{.Client.Name}},</p>
  <p>{{.Invoice.Title}}{{if .Invoice.Description}} &mdash; {{.Invoice.Description}}{{end}}</p>
  <table style="border-collapse: collapse; width: 100%;">
    <thead>
      <tr>
        <th style="text-align: left; border-bottom: 1px solid #ccc;">Description</th>
        <th style="text-align: right; border-bottom: 1px solid #ccc;">Qty</th>
        <th style="text-align: right; border-bottom: 1px solid #ccc;">Unit price</th>
        <th style="text-align: right; border-bottom: 1px solid #ccc;">Amount</th>
      </tr>
    </thead>
    <tbody>
      {{range .Invoice.LineItems}}
      <tr>
        <td>{{.Description}}{{if .IsLateFee}} (late fee){{end}}</td>
        <td style="text-align: right;">{{.Quantity}}</td>
        <td style="text-align: right;">{{.UnitPrice.StringFixed 2}}</td>
        <td style="text-align: right;">{{.Amount.StringFixed 2}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
  <p style="text-align: right;">
    Subtotal: {{.Invoice.Subtotal.StringFixed 2}}<br>
    Tax: {{.Invoice.TaxAmount.StringFixed 2}}<br>
    <strong>Total: {{.Invoice.TotalAmount.StringFixed 2}}</strong><br>
    {{if .Invoice.AmountPaid.IsPositive}}Paid to date: {{.Invoice.AmountPaid.StringFixed 2}}<br>{{end}}
  </p>
  <p>Payment is due by <strong>{{.Invoice.DueDate.Format "January 2, 2006"}}</strong>.</p>
</body>
</html>`

// HTMLRenderer renders invoices into HTML mail bodies.
type HTMLRenderer struct {
	tmpl *template.Template
}

var _ portssvc.InvoiceRendererSvc = (*HTMLRenderer)(nil)

// NewHTMLRenderer parses the invoice template. The template is compiled in,
// so a parse failure is a programming error.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("invoice").Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// RenderInvoiceHTML renders the invoice and client into the mail body.
func (r *HTMLRenderer) RenderInvoiceHTML(invoice domain.Invoice, client domain.Client) (string, error) {
	data := struct {
		Invoice domain.Invoice
		Client  domain.Client
	}{Invoice: invoice, Client: client}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render invoice %s: %w", invoice.InvoiceID, err)
	}
	return sb.String(), nil
}
