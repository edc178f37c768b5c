package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/breachradar/breach-risk-backend/internal/domain/alert"
	domainerrors "github.com/breachradar/breach-risk-backend/internal/domain/errors"
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

// alertRepository implements AlertRepository using PostgreSQL
type alertRepository struct {
	db dbtx
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *sql.DB) AlertRepository {
	return &alertRepository{db: db}
}

// SaveBatch inserts one scan's raised alerts
func (r *alertRepository) SaveBatch(ctx context.Context, alerts []alert.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	query := `
		INSERT INTO alerts (id, issue_type, severity, description, raised_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, a := range alerts {
		_, err := r.db.ExecContext(ctx, query,
			a.ID, a.IssueType.String(), a.Severity.String(), a.Description, a.RaisedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save alert %s: %w", a.ID, err)
		}
	}
	return nil
}

// List returns up to limit alerts, most recent first
func (r *alertRepository) List(ctx context.Context, limit int) ([]alert.Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, issue_type, severity, description, raised_at
		FROM alerts
		ORDER BY raised_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, domainerrors.Wrap(err, "failed to query alerts")
	}
	defer rows.Close()

	var alerts []alert.Alert
	for rows.Next() {
		var (
			a        alert.Alert
			typeStr  string
			sevStr   string
		)
		if err := rows.Scan(&a.ID, &typeStr, &sevStr, &a.Description, &a.RaisedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		if t, ok := issue.ParseType(typeStr); ok {
			a.IssueType = t
		}
		if sev, ok := issue.ParseSeverity(sevStr); ok {
			a.Severity = sev
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert rows: %w", err)
	}

	return alerts, nil
}
