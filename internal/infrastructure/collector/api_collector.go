package collector

import (
	"strings"

	"go.uber.org/zap"

	"github.com/breachradar/breach-risk-backend/internal/domain/event"
)

// APICollector produces endpoint descriptors for a configured path list. It
// simulates the probe a real deployment would run against live endpoints:
// admin, database and dump paths come back sensitive and exposed, health
// paths come back public, everything else properly protected.
type APICollector struct {
	paths  []string
	logger *zap.Logger
}

func NewAPICollector(paths []string, logger *zap.Logger) *APICollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APICollector{paths: paths, logger: logger}
}

// Endpoints probes the configured paths. The returned slice is never nil.
func (c *APICollector) Endpoints() []event.Endpoint {
	endpoints := make([]event.Endpoint, 0, len(c.paths))
	for _, path := range c.paths {
		endpoints = append(endpoints, c.probe(path))
	}

	c.logger.Info("scanned API endpoints", zap.Int("count", len(endpoints)))
	return endpoints
}

func (c *APICollector) probe(path string) event.Endpoint {
	switch {
	case strings.Contains(path, "admin"), strings.Contains(path, "database"), strings.Contains(path, "dump"):
		return event.Endpoint{
			Path:         path,
			RequiresAuth: false,
			Public:       true,
			Sensitivity:  event.SensitivitySensitive,
		}
	case strings.Contains(path, "health"):
		return event.Endpoint{
			Path:         path,
			RequiresAuth: false,
			Public:       true,
			Sensitivity:  event.SensitivityNormal,
		}
	default:
		return event.Endpoint{
			Path:         path,
			RequiresAuth: true,
			Public:       false,
			Sensitivity:  event.SensitivityNormal,
		}
	}
}
