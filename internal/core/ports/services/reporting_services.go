package services

import (
	"context"
	"time"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
)

// ReportingSvcFacade provides read-only financial rollups. Results are
// computable from the invoice and payment tables alone; the cache is a
// latency optimization, never a correctness dependency.
type ReportingSvcFacade interface {
	RevenueSummary(ctx context.Context, from, to time.Time) (*domain.RevenueSummary, error)

	// RevenueTrends returns the last `months` months of invoiced vs collected.
	RevenueTrends(ctx context.Context, months int, now time.Time) ([]domain.RevenueTrendPoint, error)

	// AgingReport buckets overdue balances (0-30, 31-60, 61-90, >90 days).
	AgingReport(ctx context.Context, now time.Time) ([]domain.AgingBucket, error)

	ClientPaymentBehavior(ctx context.Context) ([]domain.ClientPaymentBehavior, error)

	// Forecast projects `months` future months from active recurring
	// templates plus the historical monthly collection average.
	Forecast(ctx context.Context, months int, now time.Time) ([]domain.ForecastPoint, error)
}
