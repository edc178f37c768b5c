package alert

import (
	"time"

	"github.com/google/uuid"

	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

// Alert is a persisted, deduplicated record derived from an issue. Alerts
// are never mutated after creation; the manager only appends and evicts.
type Alert struct {
	ID          uuid.UUID      `json:"id"`
	IssueType   issue.Type     `json:"issue_type"`
	Severity    issue.Severity `json:"severity"`
	Description string         `json:"description"`
	RaisedAt    time.Time      `json:"raised_at"`
}

// FromIssue derives a new alert from an issue, stamped with a fresh ID.
func FromIssue(is issue.Issue, raisedAt time.Time) Alert {
	return Alert{
		ID:          uuid.New(),
		IssueType:   is.Type,
		Severity:    is.Severity,
		Description: is.Description,
		RaisedAt:    raisedAt,
	}
}
