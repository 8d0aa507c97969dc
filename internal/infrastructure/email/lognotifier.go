package email

import (
	"context"

	"github.com/orris-inc/tenancy/internal/application/notification"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

// LogNotifier writes notifications to the log. Wired when email is disabled.
type LogNotifier struct {
	logger logger.Interface
}

func NewLogNotifier(log logger.Interface) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) Notify(_ context.Context, tenantID uint, msg notification.Notification) error {
	n.logger.Infow("notification",
		"tenant_id", tenantID,
		"kind", msg.Kind,
		"title", msg.Title,
		"message", msg.Message,
	)
	return nil
}
