package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
)

type RecurringServiceTestSuite struct {
	suite.Suite
	mockRecurringRepo *MockRecurringRepository
	mockClientDir     *MockClientDirectory
	service           portssvc.RecurringSvcFacade
}

func (suite *RecurringServiceTestSuite) SetupTest() {
	suite.mockRecurringRepo = new(MockRecurringRepository)
	suite.mockClientDir = new(MockClientDirectory)
	suite.service = services.NewRecurringService(suite.mockRecurringRepo, suite.mockClientDir, nil, 30, 30*time.Second)
}

func weeklyTemplate(nextDate time.Time) domain.RecurringInvoice {
	return domain.RecurringInvoice{
		RecurringInvoiceID:   uuid.NewString(),
		ClientID:             uuid.NewString(),
		Title:                "Weekly retainer",
		Frequency:            domain.FrequencyWeekly,
		StartDate:            nextDate,
		NextDate:             nextDate,
		OccurrencesGenerated: 0,
		PaymentTermDays:      14,
		Status:               domain.RecurringActive,
		LineItems: []domain.RecurringLineItem{
			{LineItemID: uuid.NewString(), Description: "Retainer", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(500), TaxRate: decimal.Zero},
		},
	}
}

func (suite *RecurringServiceTestSuite) TestCreateRecurringInvoice_Success() {
	ctx := context.Background()
	clientID := uuid.NewString()
	creatorID := uuid.NewString()
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	req := dto.CreateRecurringInvoiceRequest{
		ClientID:  clientID,
		Title:     "Monthly hosting",
		Frequency: "MONTHLY",
		StartDate: start,
		LineItems: []dto.LineItemRequest{
			{Description: "Hosting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
		},
	}

	suite.mockClientDir.On("GetClientByID", ctx, clientID).Return(&domain.Client{ClientID: clientID}, nil).Once()
	suite.mockRecurringRepo.On("SaveRecurringInvoice", ctx, mock.MatchedBy(func(t domain.RecurringInvoice) bool {
		return t.ClientID == clientID &&
			t.Status == domain.RecurringActive &&
			t.NextDate.Equal(start) &&
			t.OccurrencesGenerated == 0 &&
			t.PaymentTermDays == 30 &&
			t.CreatedBy == creatorID
	})).Return(nil).Once()

	template, err := suite.service.CreateRecurringInvoice(ctx, req, creatorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(template)
	suite.Equal(domain.FrequencyMonthly, template.Frequency)
	suite.mockRecurringRepo.AssertExpectations(suite.T())
}

func (suite *RecurringServiceTestSuite) TestCreateRecurringInvoice_BadFrequency() {
	ctx := context.Background()
	req := dto.CreateRecurringInvoiceRequest{
		ClientID:  uuid.NewString(),
		Title:     "Broken",
		Frequency: "FORTNIGHTLY",
		StartDate: time.Now(),
		LineItems: []dto.LineItemRequest{{Description: "X", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)}},
	}

	template, err := suite.service.CreateRecurringInvoice(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(template)
	suite.mockRecurringRepo.AssertNotCalled(suite.T(), "SaveRecurringInvoice", mock.Anything, mock.Anything)
}

func (suite *RecurringServiceTestSuite) TestCreateRecurringInvoice_ZeroTotalRejected() {
	ctx := context.Background()
	clientID := uuid.NewString()
	req := dto.CreateRecurringInvoiceRequest{
		ClientID:  clientID,
		Title:     "Free tier",
		Frequency: "MONTHLY",
		StartDate: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		LineItems: []dto.LineItemRequest{
			{Description: "Gratis", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.Zero},
		},
	}

	suite.mockClientDir.On("GetClientByID", ctx, clientID).Return(&domain.Client{ClientID: clientID}, nil).Once()

	template, err := suite.service.CreateRecurringInvoice(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(template)
	suite.mockRecurringRepo.AssertNotCalled(suite.T(), "SaveRecurringInvoice", mock.Anything, mock.Anything)
}

func (suite *RecurringServiceTestSuite) TestGenerateDueInvoices_WeeklyAdvance() {
	ctx := context.Background()
	now := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	template := weeklyTemplate(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))

	suite.mockRecurringRepo.On("ListDueTemplates", ctx, now).Return([]domain.RecurringInvoice{template}, nil).Once()
	suite.mockRecurringRepo.On("GenerateInvoice", mock.Anything, mock.MatchedBy(func(inv domain.Invoice) bool {
		return inv.ClientID == template.ClientID &&
			inv.Status == domain.InvoiceDraft &&
			inv.TotalAmount.Equal(decimal.NewFromInt(500)) &&
			inv.RecurringInvoiceID != nil &&
			*inv.RecurringInvoiceID == template.RecurringInvoiceID &&
			inv.DueDate.Equal(time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC))
	}), mock.MatchedBy(func(t domain.RecurringInvoice) bool {
		return t.NextDate.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)) &&
			t.OccurrencesGenerated == 1
	})).Return(&domain.Invoice{InvoiceID: uuid.NewString(), InvoiceNumber: "INV-000100"}, nil).Once()

	result := suite.service.GenerateDueInvoices(ctx, now)

	suite.Equal(1, result.Processed)
	suite.Equal(1, result.Generated)
	suite.Empty(result.Errors)
	suite.mockRecurringRepo.AssertExpectations(suite.T())
}

func (suite *RecurringServiceTestSuite) TestGenerateDueInvoices_ExhaustedTemplateCanceled() {
	ctx := context.Background()
	now := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	maxOcc := 3
	template := weeklyTemplate(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	template.MaxOccurrences = &maxOcc
	template.OccurrencesGenerated = 3

	suite.mockRecurringRepo.On("ListDueTemplates", ctx, now).Return([]domain.RecurringInvoice{template}, nil).Once()
	suite.mockRecurringRepo.On("UpdateRecurringStatus", mock.Anything, template.RecurringInvoiceID, domain.RecurringCanceled, "system", mock.AnythingOfType("time.Time")).Return(nil).Once()

	result := suite.service.GenerateDueInvoices(ctx, now)

	suite.Equal(1, result.Processed)
	suite.Equal(0, result.Generated)
	suite.Empty(result.Errors)
	suite.mockRecurringRepo.AssertNotCalled(suite.T(), "GenerateInvoice", mock.Anything, mock.Anything, mock.Anything)
	suite.mockRecurringRepo.AssertExpectations(suite.T())
}

func (suite *RecurringServiceTestSuite) TestGenerateDueInvoices_FailureIsolated() {
	ctx := context.Background()
	now := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	broken := weeklyTemplate(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	healthy := weeklyTemplate(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))

	suite.mockRecurringRepo.On("ListDueTemplates", ctx, now).Return([]domain.RecurringInvoice{broken, healthy}, nil).Once()
	suite.mockRecurringRepo.On("GenerateInvoice", mock.Anything, mock.Anything, mock.MatchedBy(func(t domain.RecurringInvoice) bool {
		return t.RecurringInvoiceID == broken.RecurringInvoiceID
	})).Return(nil, assert.AnError).Once()
	suite.mockRecurringRepo.On("GenerateInvoice", mock.Anything, mock.Anything, mock.MatchedBy(func(t domain.RecurringInvoice) bool {
		return t.RecurringInvoiceID == healthy.RecurringInvoiceID
	})).Return(&domain.Invoice{InvoiceID: uuid.NewString()}, nil).Once()

	result := suite.service.GenerateDueInvoices(ctx, now)

	suite.Equal(2, result.Processed)
	suite.Equal(1, result.Generated)
	suite.Len(result.Errors, 1)
	suite.Contains(result.Errors[0], broken.RecurringInvoiceID)
	suite.mockRecurringRepo.AssertExpectations(suite.T())
}

func (suite *RecurringServiceTestSuite) TestCancelRecurringInvoice_AlreadyCanceled() {
	ctx := context.Background()
	template := weeklyTemplate(time.Now())
	template.Status = domain.RecurringCanceled

	suite.mockRecurringRepo.On("FindRecurringInvoiceByID", ctx, template.RecurringInvoiceID).Return(&template, nil).Once()

	result, err := suite.service.CancelRecurringInvoice(ctx, template.RecurringInvoiceID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.Nil(result)
}

func (suite *RecurringServiceTestSuite) TestReactivateRecurringInvoice_FastForwards() {
	ctx := context.Background()
	actorID := uuid.NewString()
	template := weeklyTemplate(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC))
	template.Status = domain.RecurringCanceled

	suite.mockRecurringRepo.On("FindRecurringInvoiceByID", ctx, template.RecurringInvoiceID).Return(&template, nil).Once()
	// One repository write carries both the status flip and the new schedule.
	suite.mockRecurringRepo.On("ReactivateRecurring", ctx, template.RecurringInvoiceID, mock.MatchedBy(func(next time.Time) bool {
		return next.After(time.Now())
	}), actorID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := suite.service.ReactivateRecurringInvoice(ctx, template.RecurringInvoiceID, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.RecurringActive, result.Status)
	suite.True(result.NextDate.After(time.Now()))
	suite.mockRecurringRepo.AssertNotCalled(suite.T(), "UpdateRecurringStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRecurringRepo.AssertExpectations(suite.T())
}

func (suite *RecurringServiceTestSuite) TestReactivateRecurringInvoice_ExhaustedRefused() {
	ctx := context.Background()
	maxOcc := 5
	template := weeklyTemplate(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC))
	template.Status = domain.RecurringCanceled
	template.MaxOccurrences = &maxOcc
	template.OccurrencesGenerated = 5

	suite.mockRecurringRepo.On("FindRecurringInvoiceByID", ctx, template.RecurringInvoiceID).Return(&template, nil).Once()

	result, err := suite.service.ReactivateRecurringInvoice(ctx, template.RecurringInvoiceID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.Nil(result)
	suite.mockRecurringRepo.AssertNotCalled(suite.T(), "ReactivateRecurring", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecurringServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecurringServiceTestSuite))
}
