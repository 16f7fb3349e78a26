package render_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/BizPilotApp/bizpilot_backend/internal/render"
)

func TestRenderInvoiceHTML(t *testing.T) {
	r, err := render.NewHTMLRenderer()
	require.NoError(t, err)

	invoice := domain.Invoice{
		InvoiceID:     "inv-1",
		InvoiceNumber: "INV-000123",
		Title:         "April consulting",
		Subtotal:      decimal.NewFromInt(1000),
		TaxAmount:     decimal.NewFromInt(100),
		TotalAmount:   decimal.NewFromInt(1100),
		AmountPaid:    decimal.NewFromInt(400),
		DueDate:       time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		LineItems: []domain.LineItem{
			{Description: "Consulting hours", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(100), Amount: decimal.NewFromInt(1100)},
		},
	}
	client := domain.Client{Name: "Acme Corp", Email: "billing@acme.test"}

	html, err := r.RenderInvoiceHTML(invoice, client)
	require.NoError(t, err)

	assert.Contains(t, html, "INV-000123")
	assert.Contains(t, html, "Acme Corp")
	assert.Contains(t, html, "Consulting hours")
	assert.Contains(t, html, "1100.00")
	assert.Contains(t, html, "May 15, 2024")
	assert.Contains(t, html, "Paid to date: 400.00")
}

func TestRenderInvoiceHTML_EscapesClientInput(t *testing.T) {
	r, err := render.NewHTMLRenderer()
	require.NoError(t, err)

	invoice := domain.Invoice{
		InvoiceNumber: "INV-000124",
		Title:         "<script>alert(1)</script>",
		DueDate:       time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
	}
	client := domain.Client{Name: "Acme"}

	html, err := r.RenderInvoiceHTML(invoice, client)
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
}

func TestRenderInvoiceHTML_MarksLateFeeLines(t *testing.T) {
	r, err := render.NewHTMLRenderer()
	require.NoError(t, err)

	invoice := domain.Invoice{
		InvoiceNumber: "INV-000125",
		DueDate:       time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		LineItems: []domain.LineItem{
			{Description: "Late fee (PERCENTAGE)", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50), Amount: decimal.NewFromInt(50), IsLateFee: true},
		},
	}

	html, err := r.RenderInvoiceHTML(invoice, domain.Client{Name: "Acme"})
	require.NoError(t, err)

	assert.Contains(t, html, "(late fee)")
}
