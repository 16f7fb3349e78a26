package pgsql

import (
	"context"
	"errors"
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

type PgxRecurringRepository struct {
	BaseRepository
}

// newPgxRecurringRepository creates a new repository for recurring invoice templates.
func newPgxRecurringRepository(pool *pgxpool.Pool) portsrepo.RecurringRepositoryFacade {
	return &PgxRecurringRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.RecurringRepositoryFacade = (*PgxRecurringRepository)(nil)

const recurringColumns = `recurring_invoice_id, client_id, title, description, frequency,
	start_date, end_date, max_occurrences, next_date, occurrences_generated, payment_term_days,
	status, created_at, created_by, last_updated_at, last_updated_by`

const recurringItemColumns = `line_item_id, recurring_invoice_id, description, quantity, unit_price, tax_rate`

func scanRecurringInvoice(row pgx.Row) (*models.RecurringInvoice, error) {
	var m models.RecurringInvoice
	err := row.Scan(
		&m.RecurringInvoiceID,
		&m.ClientID,
		&m.Title,
		&m.Description,
		&m.Frequency,
		&m.StartDate,
		&m.EndDate,
		&m.MaxOccurrences,
		&m.NextDate,
		&m.OccurrencesGenerated,
		&m.PaymentTermDays,
		&m.Status,
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

// SaveRecurringInvoice inserts the template and its line-item snapshot in one
// transaction.
func (r *PgxRecurringRepository) SaveRecurringInvoice(ctx context.Context, template domain.RecurringInvoice) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelRecurringInvoice(template)
	templateQuery := `
		INSERT INTO recurring_invoices (` + recurringColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, templateQuery,
		m.RecurringInvoiceID,
		m.ClientID,
		m.Title,
		m.Description,
		m.Frequency,
		m.StartDate,
		m.EndDate,
		m.MaxOccurrences,
		m.NextDate,
		m.OccurrencesGenerated,
		m.PaymentTermDays,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert recurring invoice "+m.RecurringInvoiceID, err)
	}

	if len(template.LineItems) > 0 {
		batch := &pgx.Batch{}
		itemQuery := `
			INSERT INTO recurring_invoice_line_items (` + recurringItemColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6);
		`
		for _, item := range template.LineItems {
			mi := mapping.ToModelRecurringLineItem(item)
			batch.Queue(itemQuery, mi.LineItemID, mi.RecurringInvoiceID, mi.Description, mi.Quantity, mi.UnitPrice, mi.TaxRate)
		}
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to insert recurring invoice line items", err)
		}
	}

	return r.Commit(ctx, tx)
}

// FindRecurringInvoiceByID retrieves a template with its line-item snapshot.
func (r *PgxRecurringRepository) FindRecurringInvoiceByID(ctx context.Context, recurringID string) (*domain.RecurringInvoice, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_invoices WHERE recurring_invoice_id = $1;`
	m, err := scanRecurringInvoice(r.Pool.QueryRow(ctx, query, recurringID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find recurring invoice by ID "+recurringID, err)
	}

	template := mapping.ToDomainRecurringInvoice(*m)
	items, err := r.findSnapshotItems(ctx, []string{recurringID})
	if err != nil {
		return nil, err
	}
	template.LineItems = items[recurringID]
	return &template, nil
}

// findSnapshotItems loads snapshot line items for a set of templates, keyed by
// template ID.
func (r *PgxRecurringRepository) findSnapshotItems(ctx context.Context, recurringIDs []string) (map[string][]domain.RecurringLineItem, error) {
	query := `
		SELECT ` + recurringItemColumns + `
		FROM recurring_invoice_line_items
		WHERE recurring_invoice_id = ANY($1)
		ORDER BY line_item_id;
	`
	rows, err := r.Pool.Query(ctx, query, recurringIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query recurring invoice line items", err)
	}
	defer rows.Close()

	byTemplate := make(map[string][]domain.RecurringLineItem, len(recurringIDs))
	for rows.Next() {
		var mi models.RecurringInvoiceLineItem
		err := rows.Scan(&mi.LineItemID, &mi.RecurringInvoiceID, &mi.Description, &mi.Quantity, &mi.UnitPrice, &mi.TaxRate)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan recurring line item row", err)
		}
		byTemplate[mi.RecurringInvoiceID] = append(byTemplate[mi.RecurringInvoiceID], mapping.ToDomainRecurringLineItem(mi))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating recurring line item rows", err)
	}
	return byTemplate, nil
}

// ListRecurringInvoices retrieves a page of templates using token pagination
// over (created_at, recurring_invoice_id). Snapshots are not loaded for listings.
func (r *PgxRecurringRepository) ListRecurringInvoices(ctx context.Context, status *domain.RecurringStatus, limit int, nextToken *string) ([]domain.RecurringInvoice, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + recurringColumns + ` FROM recurring_invoices WHERE 1=1`
	args := []interface{}{}

	if status != nil {
		args = append(args, string(*status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastID)
		query += ` AND (created_at, recurring_invoice_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY created_at DESC, recurring_invoice_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query recurring invoices", err)
	}
	defer rows.Close()

	templates := []domain.RecurringInvoice{}
	for rows.Next() {
		m, err := scanRecurringInvoice(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan recurring invoice row", err)
		}
		templates = append(templates, mapping.ToDomainRecurringInvoice(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating recurring invoice rows", err)
	}

	var token *string
	if len(templates) > limit {
		templates = templates[:limit]
		last := templates[len(templates)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.RecurringInvoiceID)
		token = &t
	}
	return templates, token, nil
}

// listTemplates runs a template query and attaches each template's snapshot.
func (r *PgxRecurringRepository) listTemplates(ctx context.Context, query string, args ...interface{}) ([]domain.RecurringInvoice, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query recurring invoice templates", err)
	}
	defer rows.Close()

	templates := []domain.RecurringInvoice{}
	ids := []string{}
	for rows.Next() {
		m, err := scanRecurringInvoice(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan recurring invoice row", err)
		}
		templates = append(templates, mapping.ToDomainRecurringInvoice(*m))
		ids = append(ids, m.RecurringInvoiceID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating recurring invoice rows", err)
	}
	if len(templates) == 0 {
		return templates, nil
	}

	itemsByTemplate, err := r.findSnapshotItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		templates[i].LineItems = itemsByTemplate[templates[i].RecurringInvoiceID]
	}
	return templates, nil
}

// ListDueTemplates returns active templates whose next generation date has
// arrived, oldest first so a backlog is worked off in order.
func (r *PgxRecurringRepository) ListDueTemplates(ctx context.Context, asOf time.Time) ([]domain.RecurringInvoice, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_invoices
		WHERE status = 'ACTIVE' AND next_date <= $1
		ORDER BY next_date, recurring_invoice_id;
	`
	return r.listTemplates(ctx, query, asOf)
}

// ListActiveTemplates returns every active template with its snapshot.
func (r *PgxRecurringRepository) ListActiveTemplates(ctx context.Context) ([]domain.RecurringInvoice, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_invoices
		WHERE status = 'ACTIVE'
		ORDER BY next_date, recurring_invoice_id;
	`
	return r.listTemplates(ctx, query)
}

func (r *PgxRecurringRepository) UpdateRecurringStatus(ctx context.Context, recurringID string, status domain.RecurringStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE recurring_invoices
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE recurring_invoice_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, recurringID, string(status), updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of recurring invoice "+recurringID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ReactivateRecurring resumes a template with its fast-forwarded next date.
// Status and schedule move in one statement.
func (r *PgxRecurringRepository) ReactivateRecurring(ctx context.Context, recurringID string, nextDate time.Time, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE recurring_invoices
		SET status = 'ACTIVE', next_date = $2, last_updated_at = $3, last_updated_by = $4
		WHERE recurring_invoice_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, recurringID, nextDate, updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to reactivate recurring invoice "+recurringID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GenerateInvoice persists a generated invoice and the advanced template
// schedule in one transaction, so a crash mid-run never leaves an invoice
// without the matching schedule advance (or the reverse).
func (r *PgxRecurringRepository) GenerateInvoice(ctx context.Context, invoice domain.Invoice, template domain.RecurringInvoice) (*domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	saved, err := insertInvoiceTx(ctx, tx, invoice)
	if err != nil {
		return nil, err
	}

	scheduleQuery := `
		UPDATE recurring_invoices
		SET next_date = $2, occurrences_generated = $3, last_updated_at = $4, last_updated_by = $5
		WHERE recurring_invoice_id = $1;
	`
	tag, err := tx.Exec(ctx, scheduleQuery,
		template.RecurringInvoiceID,
		template.NextDate,
		template.OccurrencesGenerated,
		template.LastUpdatedAt,
		template.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to advance schedule of recurring invoice "+template.RecurringInvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return saved, nil
}
