package pgsql

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	portsrepo "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for read-only reporting rollups.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// GetRevenueSummaryData aggregates invoices created within the period.
// Canceled invoices are counted but excluded from the monetary totals.
func (r *PgxReportingRepository) GetRevenueSummaryData(ctx context.Context, from, to time.Time) (*domain.RevenueSummary, error) {
	query := `
		SELECT status, COUNT(*),
		       COALESCE(SUM(total_amount), 0),
		       COALESCE(SUM(amount_paid), 0)
		FROM invoices
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY status;
	`
	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query revenue summary", err)
	}
	defer rows.Close()

	summary := domain.RevenueSummary{
		CountByStatus:    map[domain.InvoiceStatus]int64{},
		TotalInvoiced:    decimal.Zero,
		TotalCollected:   decimal.Zero,
		TotalOutstanding: decimal.Zero,
		TotalOverdue:     decimal.Zero,
	}
	for rows.Next() {
		var status string
		var count int64
		var invoiced, collected decimal.Decimal
		if err := rows.Scan(&status, &count, &invoiced, &collected); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan revenue summary row", err)
		}
		summary.InvoiceCount += count
		summary.CountByStatus[domain.InvoiceStatus(status)] = count
		if domain.InvoiceStatus(status) == domain.InvoiceCanceled {
			continue
		}
		summary.TotalInvoiced = summary.TotalInvoiced.Add(invoiced)
		summary.TotalCollected = summary.TotalCollected.Add(collected)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(invoiced.Sub(collected))
		if domain.InvoiceStatus(status) == domain.InvoiceOverdue {
			summary.TotalOverdue = summary.TotalOverdue.Add(invoiced.Sub(collected))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating revenue summary rows", err)
	}
	return &summary, nil
}

// GetRevenueTrendsData returns per-month invoiced and collected amounts for
// [from, to). Months without activity are absent; the service zero-fills them.
func (r *PgxReportingRepository) GetRevenueTrendsData(ctx context.Context, from, to time.Time) ([]domain.RevenueTrendPoint, error) {
	byMonth := map[time.Time]*domain.RevenueTrendPoint{}

	invoicedQuery := `
		SELECT date_trunc('month', created_at), COALESCE(SUM(total_amount), 0)
		FROM invoices
		WHERE status <> 'CANCELED' AND created_at >= $1 AND created_at < $2
		GROUP BY 1;
	`
	if err := r.collectMonthly(ctx, invoicedQuery, from, to, func(month time.Time, amount decimal.Decimal) {
		point := trendPoint(byMonth, month)
		point.Invoiced = amount
	}); err != nil {
		return nil, err
	}

	collectedQuery := `
		SELECT date_trunc('month', p.payment_date), COALESCE(SUM(p.amount), 0)
		FROM invoice_payments p
		WHERE p.payment_date >= $1 AND p.payment_date < $2
		GROUP BY 1;
	`
	if err := r.collectMonthly(ctx, collectedQuery, from, to, func(month time.Time, amount decimal.Decimal) {
		point := trendPoint(byMonth, month)
		point.Collected = amount
	}); err != nil {
		return nil, err
	}

	points := make([]domain.RevenueTrendPoint, 0, len(byMonth))
	for _, point := range byMonth {
		points = append(points, *point)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month.Before(points[j].Month) })
	return points, nil
}

func trendPoint(byMonth map[time.Time]*domain.RevenueTrendPoint, month time.Time) *domain.RevenueTrendPoint {
	key := month.UTC()
	if point, ok := byMonth[key]; ok {
		return point
	}
	point := &domain.RevenueTrendPoint{Month: key, Invoiced: decimal.Zero, Collected: decimal.Zero}
	byMonth[key] = point
	return point
}

// collectMonthly runs a (month, amount) aggregation query and feeds each row
// to the callback.
func (r *PgxReportingRepository) collectMonthly(ctx context.Context, query string, from, to time.Time, visit func(time.Time, decimal.Decimal)) error {
	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return apperrors.NewAppError(500, "failed to query monthly aggregation", err)
	}
	defer rows.Close()

	for rows.Next() {
		var month time.Time
		var amount decimal.Decimal
		if err := rows.Scan(&month, &amount); err != nil {
			return apperrors.NewAppError(500, "failed to scan monthly aggregation row", err)
		}
		visit(month, amount)
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewAppError(500, "error iterating monthly aggregation rows", err)
	}
	return nil
}

var agingLabels = []string{"0-30", "31-60", "61-90", ">90"}

// GetAgingData buckets overdue balances by days past due. All four buckets are
// always returned, zero-valued when empty.
func (r *PgxReportingRepository) GetAgingData(ctx context.Context, asOf time.Time) ([]domain.AgingBucket, error) {
	query := `
		SELECT CASE
		         WHEN ($1::date - due_date::date) <= 30 THEN '0-30'
		         WHEN ($1::date - due_date::date) <= 60 THEN '31-60'
		         WHEN ($1::date - due_date::date) <= 90 THEN '61-90'
		         ELSE '>90'
		       END,
		       COUNT(*),
		       COALESCE(SUM(total_amount - amount_paid), 0)
		FROM invoices
		WHERE status = 'OVERDUE'
		GROUP BY 1;
	`
	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query aging report", err)
	}
	defer rows.Close()

	byLabel := map[string]domain.AgingBucket{}
	for rows.Next() {
		var bucket domain.AgingBucket
		if err := rows.Scan(&bucket.Label, &bucket.InvoiceCount, &bucket.Outstanding); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan aging report row", err)
		}
		byLabel[bucket.Label] = bucket
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating aging report rows", err)
	}

	buckets := make([]domain.AgingBucket, 0, len(agingLabels))
	for _, label := range agingLabels {
		if bucket, ok := byLabel[label]; ok {
			buckets = append(buckets, bucket)
			continue
		}
		buckets = append(buckets, domain.AgingBucket{Label: label, Outstanding: decimal.Zero})
	}
	return buckets, nil
}

// GetClientPaymentBehaviorData summarizes payment behavior per client over all
// non-canceled invoices. Days-to-pay averages only fully paid invoices.
func (r *PgxReportingRepository) GetClientPaymentBehaviorData(ctx context.Context) ([]domain.ClientPaymentBehavior, error) {
	query := `
		SELECT client_id,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'PAID'),
		       COALESCE(AVG(EXTRACT(EPOCH FROM (paid_at - created_at)) / 86400.0) FILTER (WHERE paid_at IS NOT NULL), 0),
		       COALESCE(SUM(total_amount - amount_paid), 0)
		FROM invoices
		WHERE status <> 'CANCELED'
		GROUP BY client_id
		ORDER BY client_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query client payment behavior", err)
	}
	defer rows.Close()

	behaviors := []domain.ClientPaymentBehavior{}
	for rows.Next() {
		var b domain.ClientPaymentBehavior
		if err := rows.Scan(&b.ClientID, &b.InvoiceCount, &b.PaidCount, &b.AvgDaysToPay, &b.Outstanding); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan client payment behavior row", err)
		}
		b.AvgDaysToPay = b.AvgDaysToPay.Round(1)
		behaviors = append(behaviors, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating client payment behavior rows", err)
	}
	return behaviors, nil
}

// GetMonthlyCollected returns collected amounts per month for [from, to).
func (r *PgxReportingRepository) GetMonthlyCollected(ctx context.Context, from, to time.Time) ([]domain.MonthlyAmount, error) {
	query := `
		SELECT date_trunc('month', payment_date), COALESCE(SUM(amount), 0)
		FROM invoice_payments
		WHERE payment_date >= $1 AND payment_date < $2
		GROUP BY 1
		ORDER BY 1;
	`
	amounts := []domain.MonthlyAmount{}
	err := r.collectMonthly(ctx, query, from, to, func(month time.Time, amount decimal.Decimal) {
		amounts = append(amounts, domain.MonthlyAmount{Month: month.UTC(), Amount: amount})
	})
	if err != nil {
		return nil, err
	}
	return amounts, nil
}
