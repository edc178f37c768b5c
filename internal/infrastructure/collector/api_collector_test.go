package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breachradar/breach-risk-backend/internal/domain/event"
)

func TestAPICollector_Endpoints(t *testing.T) {
	tests := []struct {
		path             string
		wantRequiresAuth bool
		wantPublic       bool
		wantSensitivity  event.Sensitivity
	}{
		{"/api/admin/settings", false, true, event.SensitivitySensitive},
		{"/api/database/dump", false, true, event.SensitivitySensitive},
		{"/api/health", false, true, event.SensitivityNormal},
		{"/api/users", true, false, event.SensitivityNormal},
		{"/api/data/export", true, false, event.SensitivityNormal},
	}

	paths := make([]string, 0, len(tests))
	for _, tt := range tests {
		paths = append(paths, tt.path)
	}

	endpoints := NewAPICollector(paths, nil).Endpoints()
	require.Len(t, endpoints, len(tests))

	for i, tt := range tests {
		ep := endpoints[i]
		assert.Equal(t, tt.path, ep.Path)
		assert.Equal(t, tt.wantRequiresAuth, ep.RequiresAuth, tt.path)
		assert.Equal(t, tt.wantPublic, ep.Public, tt.path)
		assert.Equal(t, tt.wantSensitivity, ep.Sensitivity, tt.path)
	}
}

func TestAPICollector_NoPaths(t *testing.T) {
	endpoints := NewAPICollector(nil, nil).Endpoints()
	assert.NotNil(t, endpoints)
	assert.Empty(t, endpoints)
}
