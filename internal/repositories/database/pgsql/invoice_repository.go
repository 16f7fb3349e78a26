package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	portsrepo "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/repositories"
	"github.com/BizPilotApp/bizpilot_backend/internal/models"
	"github.com/BizPilotApp/bizpilot_backend/internal/utils/mapping"
	"github.com/BizPilotApp/bizpilot_backend/internal/utils/pagination"
)

type PgxInvoiceRepository struct {
	BaseRepository
}

// newPgxInvoiceRepository creates a new repository for invoice and line item data.
func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

const invoiceColumns = `invoice_id, invoice_number, client_id, title, description, status,
	subtotal, tax_amount, total_amount, amount_paid, due_date, paid_at, recurring_invoice_id,
	created_at, created_by, last_updated_at, last_updated_by`

const lineItemColumns = `line_item_id, invoice_id, description, quantity, unit_price, tax_rate, amount, is_late_fee, created_at`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.InvoiceNumber,
		&m.ClientID,
		&m.Title,
		&m.Description,
		&m.Status,
		&m.Subtotal,
		&m.TaxAmount,
		&m.TotalAmount,
		&m.AmountPaid,
		&m.DueDate,
		&m.PaidAt,
		&m.RecurringInvoiceID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// insertInvoiceTx inserts the invoice row and its line items inside tx,
// assigning the invoice number from the database sequence. Shared by
// SaveInvoice and the recurring generator.
func insertInvoiceTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) (*domain.Invoice, error) {
	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&seq); err != nil {
		return nil, apperrors.NewAppError(500, "failed to fetch next invoice number", err)
	}
	invoice.InvoiceNumber = fmt.Sprintf("INV-%06d", seq)

	m := mapping.ToModelInvoice(invoice)
	invoiceQuery := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := tx.Exec(ctx, invoiceQuery,
		m.InvoiceID,
		m.InvoiceNumber,
		m.ClientID,
		m.Title,
		m.Description,
		m.Status,
		m.Subtotal,
		m.TaxAmount,
		m.TotalAmount,
		m.AmountPaid,
		m.DueDate,
		m.PaidAt,
		m.RecurringInvoiceID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert invoice "+m.InvoiceID, err)
	}

	if err := insertLineItemsTx(ctx, tx, invoice.LineItems); err != nil {
		return nil, err
	}

	return &invoice, nil
}

func insertLineItemsTx(ctx context.Context, tx pgx.Tx, items []domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	itemQuery := `
		INSERT INTO invoice_line_items (` + lineItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for _, item := range items {
		mi := mapping.ToModelLineItem(item)
		batch.Queue(itemQuery,
			mi.LineItemID,
			mi.InvoiceID,
			mi.Description,
			mi.Quantity,
			mi.UnitPrice,
			mi.TaxRate,
			mi.Amount,
			mi.IsLateFee,
			mi.CreatedAt,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert invoice line items", err)
	}
	return nil
}

// SaveInvoice inserts the invoice and its line items in one transaction.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	saved, err := insertInvoiceTx(ctx, tx, invoice)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return saved, nil
}

// FindInvoiceByID retrieves an invoice with its line items.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`
	m, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find invoice by ID "+invoiceID, err)
	}

	invoice := mapping.ToDomainInvoice(*m)
	items, err := r.findLineItems(ctx, []string{invoiceID})
	if err != nil {
		return nil, err
	}
	invoice.LineItems = items[invoiceID]
	return &invoice, nil
}

// findLineItems loads the line items for a set of invoices, keyed by invoice ID.
func (r *PgxInvoiceRepository) findLineItems(ctx context.Context, invoiceIDs []string) (map[string][]domain.LineItem, error) {
	query := `
		SELECT ` + lineItemColumns + `
		FROM invoice_line_items
		WHERE invoice_id = ANY($1)
		ORDER BY created_at, line_item_id;
	`
	rows, err := r.Pool.Query(ctx, query, invoiceIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query invoice line items", err)
	}
	defer rows.Close()

	byInvoice := make(map[string][]domain.LineItem, len(invoiceIDs))
	for rows.Next() {
		var mi models.InvoiceLineItem
		err := rows.Scan(
			&mi.LineItemID,
			&mi.InvoiceID,
			&mi.Description,
			&mi.Quantity,
			&mi.UnitPrice,
			&mi.TaxRate,
			&mi.Amount,
			&mi.IsLateFee,
			&mi.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan invoice line item row", err)
		}
		byInvoice[mi.InvoiceID] = append(byInvoice[mi.InvoiceID], mapping.ToDomainLineItem(mi))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating invoice line item rows", err)
	}
	return byInvoice, nil
}

// ListInvoices retrieves a filtered page of invoices using token pagination
// over (created_at, invoice_id). Line items are not loaded for listings.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, filter domain.InvoiceFilter, limit int, nextToken *string) ([]domain.Invoice, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := []interface{}{}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += ` AND client_id = $` + strconv.Itoa(len(args))
	}
	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		query += ` AND due_date >= $` + strconv.Itoa(len(args))
	}
	if filter.ToDate != nil {
		args = append(args, *filter.ToDate)
		query += ` AND due_date <= $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastID)
		query += ` AND (created_at, invoice_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY created_at DESC, invoice_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query invoices", err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		m, err := scanInvoice(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan invoice row", err)
		}
		invoices = append(invoices, mapping.ToDomainInvoice(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating invoice rows", err)
	}

	var token *string
	if len(invoices) > limit {
		invoices = invoices[:limit]
		last := invoices[len(invoices)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.InvoiceID)
		token = &t
	}
	return invoices, token, nil
}

// UpdateInvoiceDetails rewrites the invoice row and replaces its non-late-fee
// line items in one transaction holding the row lock.
func (r *PgxInvoiceRepository) UpdateInvoiceDetails(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	current, err := lockInvoiceTx(ctx, tx, invoice.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.TotalAmount.LessThan(current.AmountPaid) {
		return nil, apperrors.ErrOverpayment
	}

	m := mapping.ToModelInvoice(invoice)
	updateQuery := `
		UPDATE invoices
		SET title = $2, description = $3, subtotal = $4, tax_amount = $5, total_amount = $6,
		    due_date = $7, last_updated_at = $8, last_updated_by = $9
		WHERE invoice_id = $1;
	`
	_, err = tx.Exec(ctx, updateQuery,
		m.InvoiceID,
		m.Title,
		m.Description,
		m.Subtotal,
		m.TaxAmount,
		m.TotalAmount,
		m.DueDate,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to update invoice "+m.InvoiceID, err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM invoice_line_items WHERE invoice_id = $1 AND is_late_fee = FALSE;`, m.InvoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to clear invoice line items for "+m.InvoiceID, err)
	}
	if err := insertLineItemsTx(ctx, tx, invoice.LineItems); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return r.FindInvoiceByID(ctx, invoice.InvoiceID)
}

// lockInvoiceTx fetches the invoice row FOR UPDATE inside tx.
func lockInvoiceTx(ctx context.Context, tx pgx.Tx, invoiceID string) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1 FOR UPDATE;`
	m, err := scanInvoice(tx.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock invoice "+invoiceID, err)
	}
	return m, nil
}

// CancelInvoice cancels the invoice inside one transaction holding the row
// lock. The no-payments rule is checked against the ledger under that lock,
// so a payment committing concurrently either lands before the lock (and the
// cancel is refused) or waits until the cancel has committed (and is refused
// against the canceled invoice).
func (r *PgxInvoiceRepository) CancelInvoice(ctx context.Context, invoiceID string, canceledBy string, canceledAt time.Time) (*domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	current, err := lockInvoiceTx(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if current.Status == models.Paid || current.Status == models.Canceled {
		return nil, fmt.Errorf("%w: invoice %s is already %s", apperrors.ErrInvalidState, invoiceID, current.Status)
	}
	if current.AmountPaid.IsPositive() {
		return nil, fmt.Errorf("%w: invoice %s has recorded payments and cannot be canceled", apperrors.ErrInvalidState, invoiceID)
	}
	// amount_paid can be zero after voids; the ledger rows are the authority.
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM invoice_payments WHERE invoice_id = $1;`, invoiceID).Scan(&count); err != nil {
		return nil, apperrors.NewAppError(500, "failed to count payments of invoice "+invoiceID, err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: invoice %s has recorded payments and cannot be canceled", apperrors.ErrInvalidState, invoiceID)
	}

	updateQuery := `
		UPDATE invoices
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE invoice_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, invoiceID, string(domain.InvoiceCanceled), canceledAt, canceledBy); err != nil {
		return nil, apperrors.NewAppError(500, "failed to cancel invoice "+invoiceID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	current.Status = models.Canceled
	current.LastUpdatedAt = canceledAt
	current.LastUpdatedBy = canceledBy
	canceled := mapping.ToDomainInvoice(*current)
	return &canceled, nil
}

// UpdateInvoiceStatus performs a pure status relabeling.
func (r *PgxInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE invoices
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE invoice_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, invoiceID, string(status), updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of invoice "+invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteInvoice removes an invoice and its line items.
func (r *PgxInvoiceRepository) DeleteInvoice(ctx context.Context, invoiceID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_line_items WHERE invoice_id = $1;`, invoiceID); err != nil {
		return apperrors.NewAppError(500, "failed to delete line items of invoice "+invoiceID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE invoice_id = $1;`, invoiceID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete invoice "+invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// MarkOverdueInvoices relabels sent/partial invoices past due in one UPDATE.
// Invoices already overdue are not matched, so repeated runs change nothing.
func (r *PgxInvoiceRepository) MarkOverdueInvoices(ctx context.Context, asOf time.Time, updatedBy string) (int64, error) {
	query := `
		UPDATE invoices
		SET status = 'OVERDUE', last_updated_at = $1, last_updated_by = $2
		WHERE status IN ('SENT', 'PARTIAL') AND due_date < $3;
	`
	tag, err := r.Pool.Exec(ctx, query, asOf, updatedBy, domain.StartOfDay(asOf))
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to mark overdue invoices", err)
	}
	return tag.RowsAffected(), nil
}

// ListOverdueInvoices returns overdue invoices with their line items loaded.
func (r *PgxInvoiceRepository) ListOverdueInvoices(ctx context.Context, asOf time.Time) ([]domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE status = 'OVERDUE'
		ORDER BY due_date, invoice_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query overdue invoices", err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	ids := []string{}
	for rows.Next() {
		m, err := scanInvoice(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan overdue invoice row", err)
		}
		invoices = append(invoices, mapping.ToDomainInvoice(*m))
		ids = append(ids, m.InvoiceID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating overdue invoice rows", err)
	}
	if len(invoices) == 0 {
		return invoices, nil
	}

	itemsByInvoice, err := r.findLineItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].LineItems = itemsByInvoice[invoices[i].InvoiceID]
	}
	return invoices, nil
}

// ApplyLateFee appends the fee line item and folds its amount into the
// invoice totals inside one transaction holding the row lock.
func (r *PgxInvoiceRepository) ApplyLateFee(ctx context.Context, invoiceID string, fee domain.LineItem, updatedBy string, updatedAt time.Time) (*domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	current, err := lockInvoiceTx(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.Overdue {
		return nil, apperrors.ErrInvalidState
	}

	fee.InvoiceID = invoiceID
	if err := insertLineItemsTx(ctx, tx, []domain.LineItem{fee}); err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE invoices
		SET subtotal = subtotal + $2, total_amount = total_amount + $2,
		    last_updated_at = $3, last_updated_by = $4
		WHERE invoice_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, invoiceID, fee.Amount, updatedAt, updatedBy); err != nil {
		return nil, apperrors.NewAppError(500, "failed to apply late fee to invoice "+invoiceID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return r.FindInvoiceByID(ctx, invoiceID)
}
