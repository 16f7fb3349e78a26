package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	portsrepo "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/repositories"
	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
)

const (
	// reportKeyPrefix namespaces cached reports so mutations can clear them
	// with one pattern.
	reportKeyPrefix = "reports:"

	maxTrendMonths    = 36
	maxForecastMonths = 24
	historyWindow     = 12
)

// reportingService computes financial rollups. Every result is derivable from
// the database directly; the cache only shortcuts repeat reads.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	recurringRepo portsrepo.RecurringRepositoryFacade
	cache         portssvc.CacheSvc
	cacheTTL      time.Duration
}

// NewReportingService creates a new ReportingService. A nil cache is valid
// and disables caching.
func NewReportingService(
	reportingRepo portsrepo.ReportingRepository,
	recurringRepo portsrepo.RecurringRepositoryFacade,
	cache portssvc.CacheSvc,
	cacheTTL time.Duration,
) portssvc.ReportingSvcFacade {
	return &reportingService{
		reportingRepo: reportingRepo,
		recurringRepo: recurringRepo,
		cache:         cache,
		cacheTTL:      cacheTTL,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// cached runs compute through the cache when one is configured. Cache
// failures (bad payloads) fall back to direct computation.
func cached[T any](ctx context.Context, s *reportingService, key string, compute func() (T, error)) (T, error) {
	var zero T
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var value T
			if err := json.Unmarshal([]byte(raw), &value); err == nil {
				return value, nil
			}
			s.LogWarn(ctx, "Discarding undecodable cached report", slog.String("key", key))
		}
	}

	value, err := compute()
	if err != nil {
		return zero, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(value); err == nil {
			s.cache.Set(ctx, key, string(raw), s.cacheTTL)
		}
	}
	return value, nil
}

// RevenueSummary returns the headline rollup for [from, to].
func (s *reportingService) RevenueSummary(ctx context.Context, from, to time.Time) (*domain.RevenueSummary, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: period end precedes period start", apperrors.ErrValidation)
	}

	key := fmt.Sprintf("%ssummary:%s:%s", reportKeyPrefix, from.Format("2006-01-02"), to.Format("2006-01-02"))
	return cached(ctx, s, key, func() (*domain.RevenueSummary, error) {
		summary, err := s.reportingRepo.GetRevenueSummaryData(ctx, from, to)
		if err != nil {
			s.LogError(ctx, err, "Failed to compute revenue summary")
			return nil, fmt.Errorf("failed to compute revenue summary: %w", err)
		}
		return summary, nil
	})
}

// RevenueTrends returns the last `months` months of invoiced vs collected,
// one point per month, zero-filled for empty months.
func (s *reportingService) RevenueTrends(ctx context.Context, months int, now time.Time) ([]domain.RevenueTrendPoint, error) {
	if months <= 0 || months > maxTrendMonths {
		return nil, fmt.Errorf("%w: months must be between 1 and %d", apperrors.ErrValidation, maxTrendMonths)
	}

	key := fmt.Sprintf("%strends:%d:%s", reportKeyPrefix, months, now.Format("2006-01"))
	return cached(ctx, s, key, func() ([]domain.RevenueTrendPoint, error) {
		end := monthStart(now).AddDate(0, 1, 0)
		start := monthStart(now).AddDate(0, -(months - 1), 0)

		points, err := s.reportingRepo.GetRevenueTrendsData(ctx, start, end)
		if err != nil {
			s.LogError(ctx, err, "Failed to compute revenue trends")
			return nil, fmt.Errorf("failed to compute revenue trends: %w", err)
		}

		byMonth := make(map[time.Time]domain.RevenueTrendPoint, len(points))
		for _, p := range points {
			byMonth[monthStart(p.Month)] = p
		}

		filled := make([]domain.RevenueTrendPoint, 0, months)
		for m := start; m.Before(end); m = m.AddDate(0, 1, 0) {
			if p, ok := byMonth[m]; ok {
				filled = append(filled, p)
				continue
			}
			filled = append(filled, domain.RevenueTrendPoint{
				Month:     m,
				Invoiced:  decimal.Zero,
				Collected: decimal.Zero,
			})
		}
		return filled, nil
	})
}

// AgingReport buckets overdue balances by days past due.
func (s *reportingService) AgingReport(ctx context.Context, now time.Time) ([]domain.AgingBucket, error) {
	key := fmt.Sprintf("%saging:%s", reportKeyPrefix, now.Format("2006-01-02"))
	return cached(ctx, s, key, func() ([]domain.AgingBucket, error) {
		buckets, err := s.reportingRepo.GetAgingData(ctx, now)
		if err != nil {
			s.LogError(ctx, err, "Failed to compute aging report")
			return nil, fmt.Errorf("failed to compute aging report: %w", err)
		}
		return buckets, nil
	})
}

// ClientPaymentBehavior summarizes payment behavior per client.
func (s *reportingService) ClientPaymentBehavior(ctx context.Context) ([]domain.ClientPaymentBehavior, error) {
	key := reportKeyPrefix + "client-behavior"
	return cached(ctx, s, key, func() ([]domain.ClientPaymentBehavior, error) {
		rows, err := s.reportingRepo.GetClientPaymentBehaviorData(ctx)
		if err != nil {
			s.LogError(ctx, err, "Failed to compute client payment behavior")
			return nil, fmt.Errorf("failed to compute client payment behavior: %w", err)
		}
		return rows, nil
	})
}

// Forecast projects the next `months` months: scheduled recurring amounts per
// month plus the trailing twelve-month collection average.
func (s *reportingService) Forecast(ctx context.Context, months int, now time.Time) ([]domain.ForecastPoint, error) {
	if months <= 0 || months > maxForecastMonths {
		return nil, fmt.Errorf("%w: months must be between 1 and %d", apperrors.ErrValidation, maxForecastMonths)
	}

	key := fmt.Sprintf("%sforecast:%d:%s", reportKeyPrefix, months, now.Format("2006-01"))
	return cached(ctx, s, key, func() ([]domain.ForecastPoint, error) {
		templates, err := s.recurringRepo.ListActiveTemplates(ctx)
		if err != nil {
			s.LogError(ctx, err, "Failed to list active templates for forecast")
			return nil, fmt.Errorf("failed to compute forecast: %w", err)
		}

		historyStart := monthStart(now).AddDate(0, -historyWindow, 0)
		collected, err := s.reportingRepo.GetMonthlyCollected(ctx, historyStart, monthStart(now))
		if err != nil {
			s.LogError(ctx, err, "Failed to load collection history for forecast")
			return nil, fmt.Errorf("failed to compute forecast: %w", err)
		}
		average := decimal.Zero
		if len(collected) > 0 {
			total := decimal.Zero
			for _, m := range collected {
				total = total.Add(m.Amount)
			}
			average = total.Div(decimal.NewFromInt(int64(len(collected)))).Round(2)
		}

		horizonStart := monthStart(now).AddDate(0, 1, 0)
		horizonEnd := horizonStart.AddDate(0, months, 0)
		expected := make(map[time.Time]decimal.Decimal, months)
		for _, template := range templates {
			addTemplateProjection(expected, template, horizonStart, horizonEnd)
		}

		points := make([]domain.ForecastPoint, 0, months)
		for m := horizonStart; m.Before(horizonEnd); m = m.AddDate(0, 1, 0) {
			amount, ok := expected[m]
			if !ok {
				amount = decimal.Zero
			}
			points = append(points, domain.ForecastPoint{
				Month:             m,
				RecurringExpected: amount,
				HistoricalAverage: average,
			})
		}
		return points, nil
	})
}

// addTemplateProjection walks a template's schedule through the horizon,
// accumulating its per-generation total into the month it falls in.
func addTemplateProjection(expected map[time.Time]decimal.Decimal, template domain.RecurringInvoice, horizonStart, horizonEnd time.Time) {
	perGeneration := decimal.Zero
	for _, item := range template.LineItems {
		perGeneration = perGeneration.Add(domain.LineAmount(item.Quantity, item.UnitPrice, item.TaxRate))
	}
	if perGeneration.IsZero() {
		return
	}

	anchorDay := template.StartDate.Day()
	occurrences := template.OccurrencesGenerated
	date := template.NextDate
	for date.Before(horizonEnd) {
		if template.MaxOccurrences != nil && occurrences >= *template.MaxOccurrences {
			return
		}
		if template.EndDate != nil && domain.StartOfDay(date).After(domain.StartOfDay(*template.EndDate)) {
			return
		}
		if !date.Before(horizonStart) {
			m := monthStart(date)
			expected[m] = expected[m].Add(perGeneration)
		}
		occurrences++
		date = template.Frequency.Advance(date, anchorDay)
	}
}

// monthStart truncates t to the first instant of its month, in UTC.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
