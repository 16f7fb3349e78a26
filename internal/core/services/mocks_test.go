package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
)

// --- Mock InvoiceRepository ---

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	args := m.Called(ctx, invoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListInvoices(ctx context.Context, filter domain.InvoiceFilter, limit int, nextToken *string) ([]domain.Invoice, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var invoices []domain.Invoice
	if args.Get(0) != nil {
		invoices = args.Get(0).([]domain.Invoice)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return invoices, token, args.Error(2)
}

func (m *MockInvoiceRepository) UpdateInvoiceDetails(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	args := m.Called(ctx, invoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, invoiceID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CancelInvoice(ctx context.Context, invoiceID string, canceledBy string, canceledAt time.Time) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, canceledBy, canceledAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) DeleteInvoice(ctx context.Context, invoiceID string) error {
	args := m.Called(ctx, invoiceID)
	return args.Error(0)
}

func (m *MockInvoiceRepository) MarkOverdueInvoices(ctx context.Context, asOf time.Time, updatedBy string) (int64, error) {
	args := m.Called(ctx, asOf, updatedBy)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) ListOverdueInvoices(ctx context.Context, asOf time.Time) ([]domain.Invoice, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ApplyLateFee(ctx context.Context, invoiceID string, fee domain.LineItem, updatedBy string, updatedAt time.Time) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, fee, updatedBy, updatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

// --- Mock PaymentRepository ---

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) RecordPayment(ctx context.Context, payment domain.Payment) (*domain.Payment, *domain.Invoice, error) {
	args := m.Called(ctx, payment)
	var p *domain.Payment
	if args.Get(0) != nil {
		p = args.Get(0).(*domain.Payment)
	}
	var inv *domain.Invoice
	if args.Get(1) != nil {
		inv = args.Get(1).(*domain.Invoice)
	}
	return p, inv, args.Error(2)
}

func (m *MockPaymentRepository) VoidPayment(ctx context.Context, paymentID string, voidedBy string, voidedAt time.Time) (*domain.Invoice, error) {
	args := m.Called(ctx, paymentID, voidedBy, voidedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPayments(ctx context.Context, filter domain.PaymentFilter, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var payments []domain.Payment
	if args.Get(0) != nil {
		payments = args.Get(0).([]domain.Payment)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return payments, token, args.Error(2)
}

func (m *MockPaymentRepository) GetPaymentStatistics(ctx context.Context, filter domain.PaymentFilter) (*domain.PaymentStatistics, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentStatistics), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentMethodByID(ctx context.Context, methodID string) (*domain.PaymentMethod, error) {
	args := m.Called(ctx, methodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentMethod), args.Error(1)
}

// --- Mock RecurringRepository ---

type MockRecurringRepository struct {
	mock.Mock
}

func (m *MockRecurringRepository) SaveRecurringInvoice(ctx context.Context, template domain.RecurringInvoice) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockRecurringRepository) FindRecurringInvoiceByID(ctx context.Context, recurringID string) (*domain.RecurringInvoice, error) {
	args := m.Called(ctx, recurringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringInvoice), args.Error(1)
}

func (m *MockRecurringRepository) ListRecurringInvoices(ctx context.Context, status *domain.RecurringStatus, limit int, nextToken *string) ([]domain.RecurringInvoice, *string, error) {
	args := m.Called(ctx, status, limit, nextToken)
	var templates []domain.RecurringInvoice
	if args.Get(0) != nil {
		templates = args.Get(0).([]domain.RecurringInvoice)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return templates, token, args.Error(2)
}

func (m *MockRecurringRepository) ListDueTemplates(ctx context.Context, asOf time.Time) ([]domain.RecurringInvoice, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringInvoice), args.Error(1)
}

func (m *MockRecurringRepository) ListActiveTemplates(ctx context.Context) ([]domain.RecurringInvoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringInvoice), args.Error(1)
}

func (m *MockRecurringRepository) UpdateRecurringStatus(ctx context.Context, recurringID string, status domain.RecurringStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, recurringID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockRecurringRepository) ReactivateRecurring(ctx context.Context, recurringID string, nextDate time.Time, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, recurringID, nextDate, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockRecurringRepository) GenerateInvoice(ctx context.Context, invoice domain.Invoice, template domain.RecurringInvoice) (*domain.Invoice, error) {
	args := m.Called(ctx, invoice, template)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

// --- Mock ReportingRepository ---

type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) GetRevenueSummaryData(ctx context.Context, from, to time.Time) (*domain.RevenueSummary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevenueSummary), args.Error(1)
}

func (m *MockReportingRepository) GetRevenueTrendsData(ctx context.Context, from, to time.Time) ([]domain.RevenueTrendPoint, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RevenueTrendPoint), args.Error(1)
}

func (m *MockReportingRepository) GetAgingData(ctx context.Context, asOf time.Time) ([]domain.AgingBucket, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AgingBucket), args.Error(1)
}

func (m *MockReportingRepository) GetClientPaymentBehaviorData(ctx context.Context) ([]domain.ClientPaymentBehavior, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClientPaymentBehavior), args.Error(1)
}

func (m *MockReportingRepository) GetMonthlyCollected(ctx context.Context, from, to time.Time) ([]domain.MonthlyAmount, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthlyAmount), args.Error(1)
}

// --- Mock ClientDirectory ---

type MockClientDirectory struct {
	mock.Mock
}

func (m *MockClientDirectory) GetClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

// --- Mock Notification ---

type MockNotification struct {
	mock.Mock
}

func (m *MockNotification) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// --- Mock PaymentService (for invoice MarkAsPaid delegation) ---

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, invoiceID string, req dto.RecordPaymentRequest, creatorID string) (*domain.Payment, *domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, req, creatorID)
	var p *domain.Payment
	if args.Get(0) != nil {
		p = args.Get(0).(*domain.Payment)
	}
	var inv *domain.Invoice
	if args.Get(1) != nil {
		inv = args.Get(1).(*domain.Invoice)
	}
	return p, inv, args.Error(2)
}

func (m *MockPaymentService) VoidPayment(ctx context.Context, paymentID string, voiderID string) (*domain.Invoice, error) {
	args := m.Called(ctx, paymentID, voiderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListPaymentsResponse), args.Error(1)
}

func (m *MockPaymentService) GetPaymentStatistics(ctx context.Context, params dto.PaymentStatisticsParams) (*domain.PaymentStatistics, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentStatistics), args.Error(1)
}

// --- Fake cache (recording, for cache-path assertions) ---

type fakeCache struct {
	values  map[string]string
	cleared []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	c.values[key] = value
}

func (c *fakeCache) ClearPattern(ctx context.Context, pattern string) {
	c.cleared = append(c.cleared, pattern)
	c.values = make(map[string]string)
}
