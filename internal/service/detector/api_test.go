package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breachradar/breach-risk-backend/internal/domain/event"
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

func TestAPIDetector_DetectEndpoints(t *testing.T) {
	tests := []struct {
		name      string
		endpoint  event.Endpoint
		wantTypes []issue.Type
	}{
		{
			name: "protected sensitive endpoint is clean",
			endpoint: event.Endpoint{
				Path:         "/api/users",
				RequiresAuth: true,
				Public:       false,
				Sensitivity:  event.SensitivitySensitive,
			},
			wantTypes: nil,
		},
		{
			name: "sensitive endpoint without auth",
			endpoint: event.Endpoint{
				Path:         "/api/users",
				RequiresAuth: false,
				Public:       false,
				Sensitivity:  event.SensitivitySensitive,
			},
			wantTypes: []issue.Type{issue.TypeMissingAuth},
		},
		{
			name: "public sensitive endpoint",
			endpoint: event.Endpoint{
				Path:         "/api/admin/settings",
				RequiresAuth: true,
				Public:       true,
				Sensitivity:  event.SensitivitySensitive,
			},
			wantTypes: []issue.Type{issue.TypeExposedEndpoint},
		},
		{
			name: "both predicates fire independently",
			endpoint: event.Endpoint{
				Path:         "/api/database/dump",
				RequiresAuth: false,
				Public:       true,
				Sensitivity:  event.SensitivitySensitive,
			},
			wantTypes: []issue.Type{issue.TypeMissingAuth, issue.TypeExposedEndpoint},
		},
		{
			name: "non-sensitive endpoints are out of scope",
			endpoint: event.Endpoint{
				Path:         "/api/health",
				RequiresAuth: false,
				Public:       true,
				Sensitivity:  event.SensitivityNormal,
			},
			wantTypes: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewAPIDetector()

			issues := d.DetectEndpoints([]event.Endpoint{tt.endpoint})

			require.Len(t, issues, len(tt.wantTypes))
			for i, want := range tt.wantTypes {
				assert.Equal(t, want, issues[i].Type)
				assert.Equal(t, issue.SeverityCritical, issues[i].Severity)
				assert.Contains(t, issues[i].Description, tt.endpoint.Path)
			}
		})
	}
}

func TestAPIDetector_EmptyInput(t *testing.T) {
	d := NewAPIDetector()
	assert.Empty(t, d.DetectEndpoints(nil))
	assert.Empty(t, d.DetectEndpoints([]event.Endpoint{}))
}

func TestAPIDetector_DetectedAtClock(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	d := NewAPIDetector()
	d.now = func() time.Time { return fixed }

	issues := d.DetectEndpoints([]event.Endpoint{{
		Path:        "/api/users",
		Public:      true,
		Sensitivity: event.SensitivitySensitive,
	}})

	require.Len(t, issues, 2)
	for _, is := range issues {
		assert.Equal(t, fixed, is.DetectedAt)
	}
}
