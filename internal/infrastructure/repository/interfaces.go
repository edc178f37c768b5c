package repository

import (
	"context"

	"github.com/breachradar/breach-risk-backend/internal/domain/alert"
	"github.com/breachradar/breach-risk-backend/internal/service/scan"
)

// ScanResultRepository persists scan results.
type ScanResultRepository interface {
	Save(ctx context.Context, r *scan.Result) error
	GetLatest(ctx context.Context) (*scan.Result, error)
}

// AlertRepository persists raised alerts.
type AlertRepository interface {
	SaveBatch(ctx context.Context, as []alert.Alert) error
	List(ctx context.Context, limit int) ([]alert.Alert, error)
}

// Store bundles both repositories behind scan.ResultStore.
type Store struct {
	Results ScanResultRepository
	Alerts  AlertRepository
}

func (s *Store) SaveResult(ctx context.Context, r *scan.Result) error {
	return s.Results.Save(ctx, r)
}

func (s *Store) SaveAlerts(ctx context.Context, as []alert.Alert) error {
	return s.Alerts.SaveBatch(ctx, as)
}
