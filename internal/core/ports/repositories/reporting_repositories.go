package repositories

import (
	"context"
	"time"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
)

// ReportingRepository provides read-only rollups over the invoice and
// payment tables. All queries tolerate zero rows and return zero values.
type ReportingRepository interface {
	GetRevenueSummaryData(ctx context.Context, from, to time.Time) (*domain.RevenueSummary, error)

	// GetRevenueTrendsData returns per-month invoiced and collected amounts.
	GetRevenueTrendsData(ctx context.Context, from, to time.Time) ([]domain.RevenueTrendPoint, error)

	// GetAgingData buckets overdue balances by days past due as of asOf.
	GetAgingData(ctx context.Context, asOf time.Time) ([]domain.AgingBucket, error)

	GetClientPaymentBehaviorData(ctx context.Context) ([]domain.ClientPaymentBehavior, error)

	// GetMonthlyCollected returns collected amounts per month for the window,
	// feeding the forecast's historical average.
	GetMonthlyCollected(ctx context.Context, from, to time.Time) ([]domain.MonthlyAmount, error)
}
