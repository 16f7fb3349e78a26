package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
	"github.com/BizPilotApp/bizpilot_backend/internal/middleware"
)

// LogSender is the default NotificationSvc adapter: it logs the mail instead
// of delivering it. A real SMTP/provider adapter replaces it in deployments
// that send mail.
type LogSender struct{}

var _ portssvc.NotificationSvc = (*LogSender)(nil)

// NewLogSender creates a LogSender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send logs the outgoing mail.
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("%w: notification recipient is empty", apperrors.ErrExternalService)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Outgoing mail",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(body)))
	return nil
}
