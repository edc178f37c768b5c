package collector

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/breachradar/breach-risk-backend/internal/domain/event"
)

// authLogRecord is the on-disk shape of one authentication log line.
type authLogRecord struct {
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
}

// LogCollector reads authentication events from a JSON log file. A missing
// or unreadable file is not an error: it degrades to an empty event stream,
// which the detectors treat as "no data".
type LogCollector struct {
	path   string
	logger *zap.Logger
}

func NewLogCollector(path string, logger *zap.Logger) *LogCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogCollector{path: path, logger: logger}
}

// AuthEvents returns the normalized authentication events from the log
// file. The returned slice is never nil.
func (c *LogCollector) AuthEvents() []event.AuthEvent {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("auth log file not found", zap.String("path", c.path))
		} else {
			c.logger.Warn("auth log file unreadable", zap.String("path", c.path), zap.Error(err))
		}
		return []event.AuthEvent{}
	}

	var records []authLogRecord
	if err := json.Unmarshal(data, &records); err != nil {
		c.logger.Warn("auth log file is not valid JSON", zap.String("path", c.path), zap.Error(err))
		return []event.AuthEvent{}
	}

	events := make([]event.AuthEvent, 0, len(records))
	for _, rec := range records {
		outcome := event.OutcomeFailure
		if rec.Action == "login_success" {
			outcome = event.OutcomeSuccess
		} else if rec.Action != "login_failed" {
			// Unrecognized actions are dropped, not errors.
			continue
		}
		events = append(events, event.AuthEvent{
			Actor:      rec.User,
			Outcome:    outcome,
			Timestamp:  rec.Timestamp,
			SourceAddr: rec.IP,
		})
	}

	c.logger.Info("collected authentication events",
		zap.String("path", c.path),
		zap.Int("count", len(events)))
	return events
}
