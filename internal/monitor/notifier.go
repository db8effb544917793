package monitor

import (
	"context"

	"github.com/jonesrussell/feedgate/internal/logger"
)

// LogNotifier writes alerts to the structured log. It is the default
// notifier when no external alerting channel is configured.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier creates a notifier that logs alerts.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

// SendAlert logs the alert payload at a level matching its status.
func (n *LogNotifier) SendAlert(_ context.Context, alert AlertPayload) error {
	fields := []logger.Field{
		logger.String("title", alert.Title),
		logger.String("status", alert.Status),
		logger.Strings("messages", alert.Messages),
		logger.Time("timestamp", alert.Timestamp),
	}

	if alert.Status == StatusCritical {
		n.logger.Error("system health alert", fields...)
	} else {
		n.logger.Warn("system health alert", fields...)
	}

	return nil
}
