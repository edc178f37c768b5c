package alerts

import (
	"go.uber.org/zap"

	"github.com/breachradar/breach-risk-backend/internal/domain/alert"
)

// Notifier receives alerts the manager deems worth pushing out. The manager
// only invokes it for critical alerts; implementations decide the channel
// (log line, email, webhook).
type Notifier interface {
	Notify(a alert.Alert)
}

// LogNotifier is the default notifier: it writes critical alerts to the
// structured log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(a alert.Alert) {
	n.logger.Warn("critical alert raised",
		zap.String("alert_id", a.ID.String()),
		zap.String("issue_type", a.IssueType.String()),
		zap.String("description", a.Description),
		zap.Time("raised_at", a.RaisedAt))
}
