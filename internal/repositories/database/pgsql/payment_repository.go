package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	portsrepo "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/repositories"
	"github.com/BizPilotApp/bizpilot_backend/internal/models"
	"github.com/BizPilotApp/bizpilot_backend/internal/utils/mapping"
	"github.com/BizPilotApp/bizpilot_backend/internal/utils/pagination"
)

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for the payment ledger.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const paymentColumns = `payment_id, invoice_id, amount, method_id, payment_date, reference, notes, created_at, created_by`

func scanPayment(row pgx.Row) (*models.InvoicePayment, error) {
	var m models.InvoicePayment
	err := row.Scan(
		&m.PaymentID,
		&m.InvoiceID,
		&m.Amount,
		&m.MethodID,
		&m.PaymentDate,
		&m.Reference,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordPayment inserts the ledger entry and rolls its amount into the owning
// invoice inside one transaction. The invoice row is locked first so two
// concurrent payments against the same invoice serialize and the second sees
// the updated amount_paid.
func (r *PgxPaymentRepository) RecordPayment(ctx context.Context, payment domain.Payment) (*domain.Payment, *domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Rollback(ctx, tx)

	invoice, err := lockInvoiceTx(ctx, tx, payment.InvoiceID)
	if err != nil {
		return nil, nil, err
	}
	effect, err := domain.ApplyPayment(mapping.ToDomainInvoice(*invoice), payment.Amount, payment.PaymentDate, payment.CreatedAt)
	if err != nil {
		return nil, nil, err
	}

	m := mapping.ToModelPayment(payment)
	insertQuery := `
		INSERT INTO invoice_payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.PaymentID,
		m.InvoiceID,
		m.Amount,
		m.MethodID,
		m.PaymentDate,
		m.Reference,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to insert payment "+m.PaymentID, err)
	}

	updateQuery := `
		UPDATE invoices
		SET amount_paid = $2, status = $3, paid_at = $4, last_updated_at = $5, last_updated_by = $6
		WHERE invoice_id = $1;
	`
	_, err = tx.Exec(ctx, updateQuery, invoice.InvoiceID, effect.AmountPaid, string(effect.Status), effect.PaidAt, payment.CreatedAt, payment.CreatedBy)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to update invoice "+invoice.InvoiceID+" after payment", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	invoice.AmountPaid = effect.AmountPaid
	invoice.Status = models.InvoiceStatus(effect.Status)
	invoice.PaidAt = effect.PaidAt
	invoice.LastUpdatedAt = payment.CreatedAt
	invoice.LastUpdatedBy = payment.CreatedBy
	updated := mapping.ToDomainInvoice(*invoice)
	saved := mapping.ToDomainPayment(m)
	return &saved, &updated, nil
}

// VoidPayment deletes the ledger entry and reverses its effect on the owning
// invoice. The payment row itself is gone afterwards; the invoice keeps an
// accurate amount_paid derived from the remaining entries.
func (r *PgxPaymentRepository) VoidPayment(ctx context.Context, paymentID string, voidedBy string, voidedAt time.Time) (*domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	query := `SELECT ` + paymentColumns + ` FROM invoice_payments WHERE payment_id = $1;`
	payment, err := scanPayment(tx.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment "+paymentID, err)
	}

	invoice, err := lockInvoiceTx(ctx, tx, payment.InvoiceID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_payments WHERE payment_id = $1;`, paymentID); err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete payment "+paymentID, err)
	}

	effect := domain.VoidPayment(mapping.ToDomainInvoice(*invoice), payment.Amount, voidedAt)

	updateQuery := `
		UPDATE invoices
		SET amount_paid = $2, status = $3, paid_at = $4, last_updated_at = $5, last_updated_by = $6
		WHERE invoice_id = $1;
	`
	_, err = tx.Exec(ctx, updateQuery, invoice.InvoiceID, effect.AmountPaid, string(effect.Status), effect.PaidAt, voidedAt, voidedBy)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to update invoice "+invoice.InvoiceID+" after void", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	invoice.AmountPaid = effect.AmountPaid
	invoice.Status = models.InvoiceStatus(effect.Status)
	invoice.PaidAt = effect.PaidAt
	invoice.LastUpdatedAt = voidedAt
	invoice.LastUpdatedBy = voidedBy
	updated := mapping.ToDomainInvoice(*invoice)
	return &updated, nil
}

func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM invoice_payments WHERE payment_id = $1;`
	m, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment by ID "+paymentID, err)
	}
	payment := mapping.ToDomainPayment(*m)
	return &payment, nil
}

// appendPaymentFilter adds the filter's WHERE conditions to the query. The
// invoices table is joined by the caller when a client filter is present.
func appendPaymentFilter(query string, args []interface{}, filter domain.PaymentFilter) (string, []interface{}) {
	if filter.InvoiceID != nil {
		args = append(args, *filter.InvoiceID)
		query += ` AND p.invoice_id = $` + strconv.Itoa(len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += ` AND i.client_id = $` + strconv.Itoa(len(args))
	}
	if filter.MethodID != nil {
		args = append(args, *filter.MethodID)
		query += ` AND p.method_id = $` + strconv.Itoa(len(args))
	}
	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		query += ` AND p.payment_date >= $` + strconv.Itoa(len(args))
	}
	if filter.ToDate != nil {
		args = append(args, *filter.ToDate)
		query += ` AND p.payment_date <= $` + strconv.Itoa(len(args))
	}
	if filter.MinAmount != nil {
		args = append(args, *filter.MinAmount)
		query += ` AND p.amount >= $` + strconv.Itoa(len(args))
	}
	if filter.MaxAmount != nil {
		args = append(args, *filter.MaxAmount)
		query += ` AND p.amount <= $` + strconv.Itoa(len(args))
	}
	return query, args
}

// ListPayments retrieves a filtered page of ledger entries using token
// pagination over (created_at, payment_id).
func (r *PgxPaymentRepository) ListPayments(ctx context.Context, filter domain.PaymentFilter, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `
		SELECT p.payment_id, p.invoice_id, p.amount, p.method_id, p.payment_date, p.reference, p.notes, p.created_at, p.created_by
		FROM invoice_payments p
		JOIN invoices i ON i.invoice_id = p.invoice_id
		WHERE 1=1`
	args := []interface{}{}
	query, args = appendPaymentFilter(query, args, filter)

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastID)
		query += ` AND (p.created_at, p.payment_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY p.created_at DESC, p.payment_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query payments", err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		m, err := scanPayment(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan payment row", err)
		}
		payments = append(payments, mapping.ToDomainPayment(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating payment rows", err)
	}

	var token *string
	if len(payments) > limit {
		payments = payments[:limit]
		last := payments[len(payments)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.PaymentID)
		token = &t
	}
	return payments, token, nil
}

// GetPaymentStatistics aggregates the filtered ledger. An empty ledger yields
// zero values rather than NULL scans.
func (r *PgxPaymentRepository) GetPaymentStatistics(ctx context.Context, filter domain.PaymentFilter) (*domain.PaymentStatistics, error) {
	totalsQuery := `
		SELECT COUNT(*), COALESCE(SUM(p.amount), 0), COALESCE(AVG(p.amount), 0)
		FROM invoice_payments p
		JOIN invoices i ON i.invoice_id = p.invoice_id
		WHERE 1=1`
	args := []interface{}{}
	totalsQuery, args = appendPaymentFilter(totalsQuery, args, filter)

	stats := domain.PaymentStatistics{ByMethod: map[string]decimal.Decimal{}}
	err := r.Pool.QueryRow(ctx, totalsQuery+`;`, args...).Scan(&stats.Count, &stats.TotalAmount, &stats.AverageAmount)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to aggregate payment statistics", err)
	}

	byMethodQuery := `
		SELECT pm.name, COALESCE(SUM(p.amount), 0)
		FROM invoice_payments p
		JOIN invoices i ON i.invoice_id = p.invoice_id
		JOIN payment_methods pm ON pm.method_id = p.method_id
		WHERE 1=1`
	methodArgs := []interface{}{}
	byMethodQuery, methodArgs = appendPaymentFilter(byMethodQuery, methodArgs, filter)
	byMethodQuery += ` GROUP BY pm.name;`

	rows, err := r.Pool.Query(ctx, byMethodQuery, methodArgs...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to aggregate payments by method", err)
	}
	defer rows.Close()

	for rows.Next() {
		var method string
		var amount decimal.Decimal
		if err := rows.Scan(&method, &amount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment method aggregate row", err)
		}
		stats.ByMethod[method] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payment method aggregate rows", err)
	}
	return &stats, nil
}

func (r *PgxPaymentRepository) FindPaymentMethodByID(ctx context.Context, methodID string) (*domain.PaymentMethod, error) {
	query := `SELECT method_id, name, is_active FROM payment_methods WHERE method_id = $1;`
	var m models.PaymentMethod
	err := r.Pool.QueryRow(ctx, query, methodID).Scan(&m.MethodID, &m.Name, &m.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment method "+methodID, err)
	}
	method := mapping.ToDomainPaymentMethod(m)
	return &method, nil
}
