package services

import (
	portsrepo "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/repositories"
	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/platform/config"
)

// Collaborators are the external-facing adapters the services depend on.
// Notification, Renderer and Cache may be nil; the services degrade
// gracefully without them.
type Collaborators struct {
	Notification portssvc.NotificationSvc
	Renderer     portssvc.InvoiceRendererSvc
	Cache        portssvc.CacheSvc
}

// NewServiceContainer wires all services and their dependencies.
func NewServiceContainer(cfg *config.Config, repos *portsrepo.RepositoryProvider, collab Collaborators) *portssvc.ServiceContainer {
	clientDirectory := NewClientDirectoryService(repos.ClientRepo)

	paymentService := NewPaymentService(repos.PaymentRepo, repos.InvoiceRepo, collab.Cache)
	invoiceService := NewInvoiceService(
		repos.InvoiceRepo,
		clientDirectory,
		WithPaymentService(paymentService),
		WithNotification(collab.Notification),
		WithRenderer(collab.Renderer),
		WithReportCache(collab.Cache),
	)
	recurringService := NewRecurringService(repos.RecurringRepo, clientDirectory, collab.Cache, cfg.DefaultPaymentTermDays, cfg.JobItemTimeout)
	overdueService := NewOverdueService(repos.InvoiceRepo, clientDirectory, collab.Notification, collab.Cache, cfg)
	reportingService := NewReportingService(repos.ReportingRepo, repos.RecurringRepo, collab.Cache, cfg.ReportCacheTTL)

	return &portssvc.ServiceContainer{
		Invoice:   invoiceService,
		Payment:   paymentService,
		Recurring: recurringService,
		Overdue:   overdueService,
		Reporting: reportingService,

		ClientDirectory: clientDirectory,
		Notification:    collab.Notification,
		Renderer:        collab.Renderer,
	}
}
