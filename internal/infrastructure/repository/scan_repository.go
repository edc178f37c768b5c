package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domainerrors "github.com/breachradar/breach-risk-backend/internal/domain/errors"
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
	"github.com/breachradar/breach-risk-backend/internal/service/risk"
	"github.com/breachradar/breach-risk-backend/internal/service/scan"
)

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// scanResultRepository implements ScanResultRepository using PostgreSQL
type scanResultRepository struct {
	db dbtx
}

// NewScanResultRepository creates a new scan result repository
func NewScanResultRepository(db *sql.DB) ScanResultRepository {
	return &scanResultRepository{db: db}
}

// Save inserts a completed scan result
func (r *scanResultRepository) Save(ctx context.Context, res *scan.Result) error {
	issuesJSON, err := json.Marshal(res.Issues)
	if err != nil {
		return fmt.Errorf("failed to marshal issues: %w", err)
	}

	summary := make(map[string]int, len(res.AlertSummary))
	for sev, count := range res.AlertSummary {
		summary[sev.String()] = count
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal alert summary: %w", err)
	}

	recsJSON, err := json.Marshal(res.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	query := `
		INSERT INTO scan_results (
			id, risk_score, risk_level, issues, alert_summary,
			recommendations, scanned_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		res.ID, res.RiskScore, res.RiskLevel.String(),
		issuesJSON, summaryJSON, recsJSON, res.ScannedAt,
	)
	if err != nil {
		return domainerrors.Wrap(err, "failed to save scan result")
	}

	return nil
}

// GetLatest returns the most recently persisted scan result
func (r *scanResultRepository) GetLatest(ctx context.Context) (*scan.Result, error) {
	query := `
		SELECT id, risk_score, risk_level, issues, alert_summary,
		       recommendations, scanned_at
		FROM scan_results
		ORDER BY scanned_at DESC
		LIMIT 1
	`

	var (
		res         scan.Result
		levelStr    string
		issuesJSON  []byte
		summaryJSON []byte
		recsJSON    []byte
	)

	err := r.db.QueryRowContext(ctx, query).Scan(
		&res.ID, &res.RiskScore, &levelStr,
		&issuesJSON, &summaryJSON, &recsJSON, &res.ScannedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainerrors.NewNotFoundError("scan result")
		}
		return nil, domainerrors.Wrap(err, "failed to query latest scan result")
	}

	res.RiskLevel = risk.ParseLevel(levelStr)

	if err := json.Unmarshal(issuesJSON, &res.Issues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal issues: %w", err)
	}

	var summary map[string]int
	if err := json.Unmarshal(summaryJSON, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert summary: %w", err)
	}
	res.AlertSummary = make(map[issue.Severity]int, len(summary))
	for name, count := range summary {
		if sev, ok := issue.ParseSeverity(name); ok {
			res.AlertSummary[sev] = count
		}
	}

	if err := json.Unmarshal(recsJSON, &res.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
	}

	return &res, nil
}
