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
	"github.com/BizPilotApp/bizpilot_backend/internal/platform/config"
)

type OverdueServiceTestSuite struct {
	suite.Suite
	mockInvoiceRepo  *MockInvoiceRepository
	mockClientDir    *MockClientDirectory
	mockNotification *MockNotification
	service          portssvc.OverdueSvcFacade
}

func (suite *OverdueServiceTestSuite) SetupTest() {
	suite.mockInvoiceRepo = new(MockInvoiceRepository)
	suite.mockClientDir = new(MockClientDirectory)
	suite.mockNotification = new(MockNotification)
	cfg := &config.Config{
		LateFeeType:    "PERCENTAGE",
		LateFeeValue:   "5",
		JobItemTimeout: 30 * time.Second,
	}
	suite.service = services.NewOverdueService(suite.mockInvoiceRepo, suite.mockClientDir, suite.mockNotification, nil, cfg)
}

func overdueInvoice(total int64) domain.Invoice {
	return domain.Invoice{
		InvoiceID:     uuid.NewString(),
		InvoiceNumber: "INV-000011",
		ClientID:      uuid.NewString(),
		Status:        domain.InvoiceOverdue,
		TotalAmount:   decimal.NewFromInt(total),
		AmountPaid:    decimal.Zero,
		DueDate:       time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *OverdueServiceTestSuite) TestDetectOverdue_CountsTransitions() {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)

	suite.mockInvoiceRepo.On("MarkOverdueInvoices", ctx, now, "system").Return(int64(3), nil).Once()

	result := suite.service.DetectOverdue(ctx, now)

	suite.Equal(3, result.Processed)
	suite.Empty(result.Errors)
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
}

func (suite *OverdueServiceTestSuite) TestDetectOverdue_SecondRunNoChange() {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)

	suite.mockInvoiceRepo.On("MarkOverdueInvoices", ctx, now, "system").Return(int64(3), nil).Once()
	suite.mockInvoiceRepo.On("MarkOverdueInvoices", ctx, now, "system").Return(int64(0), nil).Once()

	first := suite.service.DetectOverdue(ctx, now)
	second := suite.service.DetectOverdue(ctx, now)

	suite.Equal(3, first.Processed)
	suite.Equal(0, second.Processed)
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
}

func (suite *OverdueServiceTestSuite) TestApplyLateFee_PercentageOfTotal() {
	ctx := context.Background()
	invoice := overdueInvoice(1000)
	actorID := uuid.NewString()

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, invoice.InvoiceID).Return(&invoice, nil).Once()
	suite.mockInvoiceRepo.On("ApplyLateFee", ctx, invoice.InvoiceID, mock.MatchedBy(func(fee domain.LineItem) bool {
		return fee.IsLateFee &&
			fee.Amount.Equal(decimal.NewFromInt(50)) &&
			fee.Quantity.Equal(decimal.NewFromInt(1)) &&
			fee.TaxRate.IsZero()
	}), actorID, mock.AnythingOfType("time.Time")).Return(&domain.Invoice{
		InvoiceID:   invoice.InvoiceID,
		Status:      domain.InvoiceOverdue,
		TotalAmount: decimal.NewFromInt(1050),
	}, nil).Once()

	updated, err := suite.service.ApplyLateFee(ctx, invoice.InvoiceID, dto.ApplyLateFeeRequest{FeeType: "PERCENTAGE", Value: "5"}, actorID)

	suite.Require().NoError(err)
	suite.True(updated.TotalAmount.Equal(decimal.NewFromInt(1050)))
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
}

func (suite *OverdueServiceTestSuite) TestApplyLateFee_FixedAmount() {
	ctx := context.Background()
	invoice := overdueInvoice(200)
	actorID := uuid.NewString()

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, invoice.InvoiceID).Return(&invoice, nil).Once()
	suite.mockInvoiceRepo.On("ApplyLateFee", ctx, invoice.InvoiceID, mock.MatchedBy(func(fee domain.LineItem) bool {
		return fee.IsLateFee && fee.Amount.Equal(decimal.NewFromInt(25))
	}), actorID, mock.AnythingOfType("time.Time")).Return(&invoice, nil).Once()

	_, err := suite.service.ApplyLateFee(ctx, invoice.InvoiceID, dto.ApplyLateFeeRequest{FeeType: "FIXED", Value: "25"}, actorID)

	suite.Require().NoError(err)
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
}

func (suite *OverdueServiceTestSuite) TestApplyLateFee_NotOverdue() {
	ctx := context.Background()
	invoice := overdueInvoice(1000)
	invoice.Status = domain.InvoiceSent

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, invoice.InvoiceID).Return(&invoice, nil).Once()

	updated, err := suite.service.ApplyLateFee(ctx, invoice.InvoiceID, dto.ApplyLateFeeRequest{FeeType: "FIXED", Value: "25"}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.Nil(updated)
	suite.mockInvoiceRepo.AssertNotCalled(suite.T(), "ApplyLateFee", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OverdueServiceTestSuite) TestApplyLateFee_BadValue() {
	ctx := context.Background()

	updated, err := suite.service.ApplyLateFee(ctx, uuid.NewString(), dto.ApplyLateFeeRequest{FeeType: "FIXED", Value: "not-a-number"}, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(updated)
}

func (suite *OverdueServiceTestSuite) TestApplyLateFees_SkipsInvoicesWithFee() {
	ctx := context.Background()
	now := time.Date(2024, 5, 6, 6, 0, 0, 0, time.UTC)

	withFee := overdueInvoice(1000)
	withFee.LineItems = []domain.LineItem{{LineItemID: uuid.NewString(), IsLateFee: true}}
	fresh := overdueInvoice(400)

	suite.mockInvoiceRepo.On("ListOverdueInvoices", ctx, now).Return([]domain.Invoice{withFee, fresh}, nil).Once()
	suite.mockInvoiceRepo.On("ApplyLateFee", mock.Anything, fresh.InvoiceID, mock.MatchedBy(func(fee domain.LineItem) bool {
		return fee.IsLateFee && fee.Amount.Equal(decimal.NewFromInt(20))
	}), "system", mock.AnythingOfType("time.Time")).Return(&fresh, nil).Once()
	suite.mockClientDir.On("GetClientByID", mock.Anything, fresh.ClientID).Return(&domain.Client{ClientID: fresh.ClientID, Email: "client@test"}, nil).Once()
	suite.mockNotification.On("Send", mock.Anything, "client@test", mock.Anything, mock.Anything).Return(nil).Once()

	result := suite.service.ApplyLateFees(ctx, now)

	suite.Equal(1, result.Processed)
	suite.Equal(1, result.Generated)
	suite.Empty(result.Errors)
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
	suite.mockNotification.AssertExpectations(suite.T())
}

func (suite *OverdueServiceTestSuite) TestApplyLateFees_FailureIsolated() {
	ctx := context.Background()
	now := time.Date(2024, 5, 6, 6, 0, 0, 0, time.UTC)

	broken := overdueInvoice(100)
	healthy := overdueInvoice(200)

	suite.mockInvoiceRepo.On("ListOverdueInvoices", ctx, now).Return([]domain.Invoice{broken, healthy}, nil).Once()
	suite.mockInvoiceRepo.On("ApplyLateFee", mock.Anything, broken.InvoiceID, mock.Anything, "system", mock.AnythingOfType("time.Time")).Return(nil, apperrors.ErrInternal).Once()
	suite.mockInvoiceRepo.On("ApplyLateFee", mock.Anything, healthy.InvoiceID, mock.Anything, "system", mock.AnythingOfType("time.Time")).Return(&healthy, nil).Once()
	suite.mockClientDir.On("GetClientByID", mock.Anything, healthy.ClientID).Return(&domain.Client{ClientID: healthy.ClientID, Email: "ok@test"}, nil).Once()
	suite.mockNotification.On("Send", mock.Anything, "ok@test", mock.Anything, mock.Anything).Return(nil).Once()

	result := suite.service.ApplyLateFees(ctx, now)

	suite.Equal(2, result.Processed)
	suite.Equal(1, result.Generated)
	suite.Len(result.Errors, 1)
	suite.Contains(result.Errors[0], broken.InvoiceID)
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
}

func TestOverdueServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OverdueServiceTestSuite))
}
