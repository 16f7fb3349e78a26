package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/services"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockRecurringRepo *MockRecurringRepository
	cache             *fakeCache
	service           portssvc.ReportingSvcFacade
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockRecurringRepo = new(MockRecurringRepository)
	suite.cache = newFakeCache()
	suite.service = services.NewReportingService(suite.mockReportingRepo, suite.mockRecurringRepo, suite.cache, 5*time.Minute)
}

func (suite *ReportingServiceTestSuite) TestRevenueSummary_ZeroRows() {
	ctx := context.Background()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	empty := &domain.RevenueSummary{
		CountByStatus:    map[domain.InvoiceStatus]int64{},
		TotalInvoiced:    decimal.Zero,
		TotalCollected:   decimal.Zero,
		TotalOutstanding: decimal.Zero,
		TotalOverdue:     decimal.Zero,
	}

	suite.mockReportingRepo.On("GetRevenueSummaryData", ctx, from, to).Return(empty, nil).Once()

	summary, err := suite.service.RevenueSummary(ctx, from, to)

	suite.Require().NoError(err)
	suite.EqualValues(0, summary.InvoiceCount)
	suite.True(summary.TotalInvoiced.IsZero())
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestRevenueSummary_SecondCallServedFromCache() {
	ctx := context.Background()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	summary := &domain.RevenueSummary{
		InvoiceCount:  7,
		CountByStatus: map[domain.InvoiceStatus]int64{domain.InvoicePaid: 7},
		TotalInvoiced: decimal.NewFromInt(7000),
	}

	suite.mockReportingRepo.On("GetRevenueSummaryData", ctx, from, to).Return(summary, nil).Once()

	first, err := suite.service.RevenueSummary(ctx, from, to)
	suite.Require().NoError(err)
	second, err := suite.service.RevenueSummary(ctx, from, to)
	suite.Require().NoError(err)

	suite.EqualValues(7, first.InvoiceCount)
	suite.EqualValues(7, second.InvoiceCount)
	suite.True(second.TotalInvoiced.Equal(decimal.NewFromInt(7000)))
	// the repo was hit exactly once
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestRevenueSummary_NilCacheComputesDirectly() {
	ctx := context.Background()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	svc := services.NewReportingService(suite.mockReportingRepo, suite.mockRecurringRepo, nil, 0)
	summary := &domain.RevenueSummary{InvoiceCount: 2, CountByStatus: map[domain.InvoiceStatus]int64{}}

	suite.mockReportingRepo.On("GetRevenueSummaryData", ctx, from, to).Return(summary, nil).Twice()

	_, err := svc.RevenueSummary(ctx, from, to)
	suite.Require().NoError(err)
	_, err = svc.RevenueSummary(ctx, from, to)
	suite.Require().NoError(err)

	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestRevenueSummary_InvertedPeriod() {
	ctx := context.Background()
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	summary, err := suite.service.RevenueSummary(ctx, from, to)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(summary)
}

func (suite *ReportingServiceTestSuite) TestRevenueTrends_ZeroFillsEmptyMonths() {
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	// only April has data
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	points := []domain.RevenueTrendPoint{
		{Month: april, Invoiced: decimal.NewFromInt(900), Collected: decimal.NewFromInt(400)},
	}

	suite.mockReportingRepo.On("GetRevenueTrendsData", ctx,
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)).Return(points, nil).Once()

	trends, err := suite.service.RevenueTrends(ctx, 3, now)

	suite.Require().NoError(err)
	suite.Require().Len(trends, 3)
	suite.True(trends[0].Invoiced.Equal(decimal.NewFromInt(900)))
	suite.True(trends[1].Invoiced.IsZero())
	suite.True(trends[2].Invoiced.IsZero())
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestRevenueTrends_MonthsOutOfRange() {
	ctx := context.Background()

	trends, err := suite.service.RevenueTrends(ctx, 0, time.Now())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(trends)
}

func (suite *ReportingServiceTestSuite) TestAgingReport_PassesThrough() {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	buckets := []domain.AgingBucket{
		{Label: "0-30", InvoiceCount: 2, Outstanding: decimal.NewFromInt(300)},
		{Label: "31-60", InvoiceCount: 0, Outstanding: decimal.Zero},
		{Label: "61-90", InvoiceCount: 1, Outstanding: decimal.NewFromInt(50)},
		{Label: ">90", InvoiceCount: 0, Outstanding: decimal.Zero},
	}

	suite.mockReportingRepo.On("GetAgingData", ctx, now).Return(buckets, nil).Once()

	report, err := suite.service.AgingReport(ctx, now)

	suite.Require().NoError(err)
	suite.Require().Len(report, 4)
	suite.Equal("0-30", report[0].Label)
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestForecast_ProjectsRecurringAndHistory() {
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	monthly := domain.RecurringInvoice{
		RecurringInvoiceID: uuid.NewString(),
		Frequency:          domain.FrequencyMonthly,
		StartDate:          time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		NextDate:           time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		Status:             domain.RecurringActive,
		LineItems: []domain.RecurringLineItem{
			{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100), TaxRate: decimal.Zero},
		},
	}

	suite.mockRecurringRepo.On("ListActiveTemplates", ctx).Return([]domain.RecurringInvoice{monthly}, nil).Once()
	suite.mockReportingRepo.On("GetMonthlyCollected", ctx,
		time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)).Return([]domain.MonthlyAmount{
		{Month: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(600)},
		{Month: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(400)},
	}, nil).Once()

	forecast, err := suite.service.Forecast(ctx, 2, now)

	suite.Require().NoError(err)
	suite.Require().Len(forecast, 2)
	// July and August each get one monthly generation of 100
	suite.True(forecast[0].Month.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
	suite.True(forecast[0].RecurringExpected.Equal(decimal.NewFromInt(100)))
	suite.True(forecast[1].RecurringExpected.Equal(decimal.NewFromInt(100)))
	// historical average over the two recorded months
	suite.True(forecast[0].HistoricalAverage.Equal(decimal.NewFromInt(500)))
	suite.mockReportingRepo.AssertExpectations(suite.T())
	suite.mockRecurringRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestClientPaymentBehavior_Empty() {
	ctx := context.Background()

	suite.mockReportingRepo.On("GetClientPaymentBehaviorData", ctx).Return([]domain.ClientPaymentBehavior{}, nil).Once()

	rows, err := suite.service.ClientPaymentBehavior(ctx)

	suite.Require().NoError(err)
	suite.Empty(rows)
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
