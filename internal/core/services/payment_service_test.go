package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	mockPaymentRepo *MockPaymentRepository
	mockInvoiceRepo *MockInvoiceRepository
	cache           *fakeCache
	service         portssvc.PaymentSvcFacade
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.mockInvoiceRepo = new(MockInvoiceRepository)
	suite.cache = newFakeCache()
	suite.service = services.NewPaymentService(suite.mockPaymentRepo, suite.mockInvoiceRepo, suite.cache)
}

func (suite *PaymentServiceTestSuite) validRequest(methodID string) dto.RecordPaymentRequest {
	return dto.RecordPaymentRequest{
		Amount:      decimal.NewFromInt(400),
		MethodID:    methodID,
		PaymentDate: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_Success() {
	ctx := context.Background()
	invoiceID := uuid.NewString()
	methodID := uuid.NewString()
	creatorID := uuid.NewString()
	req := suite.validRequest(methodID)

	updatedInvoice := &domain.Invoice{
		InvoiceID:   invoiceID,
		Status:      domain.InvoicePartial,
		TotalAmount: decimal.NewFromInt(1000),
		AmountPaid:  decimal.NewFromInt(400),
	}

	suite.mockPaymentRepo.On("FindPaymentMethodByID", ctx, methodID).Return(&domain.PaymentMethod{MethodID: methodID, IsActive: true}, nil).Once()
	suite.mockPaymentRepo.On("RecordPayment", ctx, mock.MatchedBy(func(p domain.Payment) bool {
		return p.InvoiceID == invoiceID &&
			p.Amount.Equal(req.Amount) &&
			p.MethodID == methodID &&
			p.CreatedBy == creatorID &&
			p.PaymentID != ""
	})).Return(&domain.Payment{PaymentID: uuid.NewString(), InvoiceID: invoiceID, Amount: req.Amount}, updatedInvoice, nil).Once()

	payment, invoice, err := suite.service.RecordPayment(ctx, invoiceID, req, creatorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(payment)
	suite.Equal(domain.InvoicePartial, invoice.Status)
	suite.Contains(suite.cache.cleared, "reports:*")
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_NonPositiveAmount() {
	ctx := context.Background()
	req := suite.validRequest(uuid.NewString())
	req.Amount = decimal.Zero

	payment, invoice, err := suite.service.RecordPayment(ctx, uuid.NewString(), req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(payment)
	suite.Nil(invoice)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "RecordPayment", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_InactiveMethod() {
	ctx := context.Background()
	methodID := uuid.NewString()
	req := suite.validRequest(methodID)

	suite.mockPaymentRepo.On("FindPaymentMethodByID", ctx, methodID).Return(&domain.PaymentMethod{MethodID: methodID, IsActive: false}, nil).Once()

	payment, _, err := suite.service.RecordPayment(ctx, uuid.NewString(), req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(payment)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_OverpaymentPassedThrough() {
	ctx := context.Background()
	invoiceID := uuid.NewString()
	methodID := uuid.NewString()
	req := suite.validRequest(methodID)
	req.Amount = decimal.NewFromInt(5000)

	suite.mockPaymentRepo.On("FindPaymentMethodByID", ctx, methodID).Return(&domain.PaymentMethod{MethodID: methodID, IsActive: true}, nil).Once()
	suite.mockPaymentRepo.On("RecordPayment", ctx, mock.AnythingOfType("domain.Payment")).Return(nil, nil, apperrors.ErrOverpayment).Once()

	payment, invoice, err := suite.service.RecordPayment(ctx, invoiceID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrOverpayment)
	suite.Nil(payment)
	suite.Nil(invoice)
	suite.Empty(suite.cache.cleared)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_CanceledInvoiceRefused() {
	ctx := context.Background()
	methodID := uuid.NewString()
	req := suite.validRequest(methodID)

	suite.mockPaymentRepo.On("FindPaymentMethodByID", ctx, methodID).Return(&domain.PaymentMethod{MethodID: methodID, IsActive: true}, nil).Once()
	suite.mockPaymentRepo.On("RecordPayment", ctx, mock.AnythingOfType("domain.Payment")).Return(nil, nil, apperrors.ErrInvalidState).Once()

	_, _, err := suite.service.RecordPayment(ctx, uuid.NewString(), req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *PaymentServiceTestSuite) TestVoidPayment_RestoresInvoice() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	voiderID := uuid.NewString()
	restored := &domain.Invoice{
		InvoiceID:   uuid.NewString(),
		Status:      domain.InvoiceSent,
		TotalAmount: decimal.NewFromInt(1000),
		AmountPaid:  decimal.Zero,
	}

	suite.mockPaymentRepo.On("VoidPayment", ctx, paymentID, voiderID, mock.AnythingOfType("time.Time")).Return(restored, nil).Once()

	invoice, err := suite.service.VoidPayment(ctx, paymentID, voiderID)

	suite.Require().NoError(err)
	suite.Equal(domain.InvoiceSent, invoice.Status)
	suite.True(invoice.AmountPaid.IsZero())
	suite.Contains(suite.cache.cleared, "reports:*")
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestVoidPayment_NotFound() {
	ctx := context.Background()
	paymentID := uuid.NewString()

	suite.mockPaymentRepo.On("VoidPayment", ctx, paymentID, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil, apperrors.ErrNotFound).Once()

	invoice, err := suite.service.VoidPayment(ctx, paymentID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(invoice)
}

func (suite *PaymentServiceTestSuite) TestListPayments_AmountRangeValidation() {
	ctx := context.Background()
	minAmount := decimal.NewFromInt(500)
	maxAmount := decimal.NewFromInt(100)
	params := dto.ListPaymentsParams{MinAmount: &minAmount, MaxAmount: &maxAmount}

	resp, err := suite.service.ListPayments(ctx, params)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(resp)
}

func (suite *PaymentServiceTestSuite) TestGetPaymentStatistics_EmptyLedger() {
	ctx := context.Background()
	zeroStats := &domain.PaymentStatistics{
		Count:         0,
		TotalAmount:   decimal.Zero,
		AverageAmount: decimal.Zero,
		ByMethod:      map[string]decimal.Decimal{},
	}

	suite.mockPaymentRepo.On("GetPaymentStatistics", ctx, mock.AnythingOfType("domain.PaymentFilter")).Return(zeroStats, nil).Once()

	stats, err := suite.service.GetPaymentStatistics(ctx, dto.PaymentStatisticsParams{})

	suite.Require().NoError(err)
	suite.EqualValues(0, stats.Count)
	suite.True(stats.TotalAmount.IsZero())
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
