package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	invoiceRepo := newPgxInvoiceRepository(dbPool)
	paymentRepo := newPgxPaymentRepository(dbPool)
	recurringRepo := newPgxRecurringRepository(dbPool)
	reportingRepo := newPgxReportingRepository(dbPool)
	clientRepo := newPgxClientRepository(dbPool)

	return &portsrepo.RepositoryProvider{
		InvoiceRepo:   invoiceRepo,
		PaymentRepo:   paymentRepo,
		RecurringRepo: recurringRepo,
		ReportingRepo: reportingRepo,
		ClientRepo:    clientRepo,
	}
}
