package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
)

func TestApplyPayment(t *testing.T) {
	now := date(2024, time.June, 10)
	dueTomorrow := date(2024, time.June, 11)
	dueYesterday := date(2024, time.June, 9)
	paymentDate := date(2024, time.June, 8)

	tests := []struct {
		name       string
		invoice    domain.Invoice
		amount     decimal.Decimal
		wantErr    error
		wantPaid   decimal.Decimal
		wantStatus domain.InvoiceStatus
	}{
		{
			name:       "partial payment before due date",
			invoice:    domain.Invoice{Status: domain.InvoiceSent, TotalAmount: d("1000"), DueDate: dueTomorrow},
			amount:     d("400"),
			wantPaid:   d("400"),
			wantStatus: domain.InvoicePartial,
		},
		{
			name:       "partial payment past due date",
			invoice:    domain.Invoice{Status: domain.InvoiceOverdue, TotalAmount: d("1000"), DueDate: dueYesterday},
			amount:     d("400"),
			wantPaid:   d("400"),
			wantStatus: domain.InvoiceOverdue,
		},
		{
			name:       "settling payment yields paid even past due",
			invoice:    domain.Invoice{Status: domain.InvoiceOverdue, TotalAmount: d("1000"), AmountPaid: d("600"), DueDate: dueYesterday},
			amount:     d("400"),
			wantPaid:   d("1000"),
			wantStatus: domain.InvoicePaid,
		},
		{
			name:       "payment against a draft moves it into the billed flow",
			invoice:    domain.Invoice{Status: domain.InvoiceDraft, TotalAmount: d("1000"), DueDate: dueTomorrow},
			amount:     d("250"),
			wantPaid:   d("250"),
			wantStatus: domain.InvoicePartial,
		},
		{
			name:       "payment settling a draft in full",
			invoice:    domain.Invoice{Status: domain.InvoiceDraft, TotalAmount: d("1000"), DueDate: dueTomorrow},
			amount:     d("1000"),
			wantPaid:   d("1000"),
			wantStatus: domain.InvoicePaid,
		},
		{
			name:    "canceled invoice refuses payments",
			invoice: domain.Invoice{Status: domain.InvoiceCanceled, TotalAmount: d("1000"), DueDate: dueTomorrow},
			amount:  d("100"),
			wantErr: apperrors.ErrInvalidState,
		},
		{
			name:    "overpayment rejected",
			invoice: domain.Invoice{Status: domain.InvoicePartial, TotalAmount: d("1000"), AmountPaid: d("700"), DueDate: dueTomorrow},
			amount:  d("500"),
			wantErr: apperrors.ErrOverpayment,
		},
		{
			name:       "exact balance is not an overpayment",
			invoice:    domain.Invoice{Status: domain.InvoicePartial, TotalAmount: d("1000"), AmountPaid: d("700"), DueDate: dueTomorrow},
			amount:     d("300"),
			wantPaid:   d("1000"),
			wantStatus: domain.InvoicePaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effect, err := domain.ApplyPayment(tt.invoice, tt.amount, paymentDate, now)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, effect.AmountPaid.Equal(tt.wantPaid), "amount paid was %s", effect.AmountPaid)
			assert.Equal(t, tt.wantStatus, effect.Status)
		})
	}
}

func TestApplyPayment_PaidAtStampsPaymentDate(t *testing.T) {
	now := date(2024, time.June, 10)
	paymentDate := date(2024, time.June, 7)
	invoice := domain.Invoice{Status: domain.InvoiceSent, TotalAmount: d("500"), DueDate: date(2024, time.June, 20)}

	effect, err := domain.ApplyPayment(invoice, d("500"), paymentDate, now)

	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePaid, effect.Status)
	require.NotNil(t, effect.PaidAt)
	assert.True(t, effect.PaidAt.Equal(paymentDate), "paid_at was %s", effect.PaidAt)
}

func TestApplyPayment_PartialLeavesPaidAtUnset(t *testing.T) {
	now := date(2024, time.June, 10)
	invoice := domain.Invoice{Status: domain.InvoiceSent, TotalAmount: d("500"), DueDate: date(2024, time.June, 20)}

	effect, err := domain.ApplyPayment(invoice, d("100"), now, now)

	require.NoError(t, err)
	assert.Nil(t, effect.PaidAt)
}

func TestVoidPayment(t *testing.T) {
	now := date(2024, time.June, 10)
	dueTomorrow := date(2024, time.June, 11)
	dueYesterday := date(2024, time.June, 9)
	settled := date(2024, time.June, 5)

	tests := []struct {
		name       string
		invoice    domain.Invoice
		amount     decimal.Decimal
		wantPaid   decimal.Decimal
		wantStatus domain.InvoiceStatus
		wantPaidAt bool
	}{
		{
			name:       "void below fully paid clears paid_at",
			invoice:    domain.Invoice{Status: domain.InvoicePaid, TotalAmount: d("1000"), AmountPaid: d("1000"), PaidAt: &settled, DueDate: dueTomorrow},
			amount:     d("400"),
			wantPaid:   d("600"),
			wantStatus: domain.InvoicePartial,
		},
		{
			name:       "void of the only payment reverts to sent",
			invoice:    domain.Invoice{Status: domain.InvoicePartial, TotalAmount: d("1000"), AmountPaid: d("400"), DueDate: dueTomorrow},
			amount:     d("400"),
			wantPaid:   d("0"),
			wantStatus: domain.InvoiceSent,
		},
		{
			name:       "void past due goes overdue",
			invoice:    domain.Invoice{Status: domain.InvoicePaid, TotalAmount: d("1000"), AmountPaid: d("1000"), PaidAt: &settled, DueDate: dueYesterday},
			amount:     d("1000"),
			wantPaid:   d("0"),
			wantStatus: domain.InvoiceOverdue,
		},
		{
			name:       "amount paid floors at zero",
			invoice:    domain.Invoice{Status: domain.InvoicePartial, TotalAmount: d("1000"), AmountPaid: d("300"), DueDate: dueTomorrow},
			amount:     d("500"),
			wantPaid:   d("0"),
			wantStatus: domain.InvoiceSent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effect := domain.VoidPayment(tt.invoice, tt.amount, now)

			assert.True(t, effect.AmountPaid.Equal(tt.wantPaid), "amount paid was %s", effect.AmountPaid)
			assert.Equal(t, tt.wantStatus, effect.Status)
			if tt.wantPaidAt {
				assert.NotNil(t, effect.PaidAt)
			} else {
				assert.Nil(t, effect.PaidAt)
			}
		})
	}
}

func TestRecordThenVoidRoundTrip(t *testing.T) {
	now := date(2024, time.June, 10)
	invoice := domain.Invoice{
		Status:      domain.InvoiceSent,
		TotalAmount: d("1000"),
		AmountPaid:  decimal.Zero,
		DueDate:     date(2024, time.June, 20),
	}

	recorded, err := domain.ApplyPayment(invoice, d("1000"), now, now)
	require.NoError(t, err)
	require.Equal(t, domain.InvoicePaid, recorded.Status)

	afterRecord := invoice
	afterRecord.AmountPaid = recorded.AmountPaid
	afterRecord.Status = recorded.Status
	afterRecord.PaidAt = recorded.PaidAt

	voided := domain.VoidPayment(afterRecord, d("1000"), now)

	assert.True(t, voided.AmountPaid.Equal(invoice.AmountPaid), "amount paid was %s", voided.AmountPaid)
	assert.Equal(t, invoice.Status, voided.Status)
	assert.Nil(t, voided.PaidAt)
}
