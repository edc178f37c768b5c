package issue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypeRoundTrip(t *testing.T) {
	types := []Type{
		TypeBruteForce,
		TypeSuspiciousLoginTime,
		TypeExposedEndpoint,
		TypeMissingAuth,
		TypeDefaultCredentials,
		TypePublicEndpoint,
		TypeMultipleIPAccess,
	}

	for _, typ := range types {
		got, ok := ParseType(typ.String())
		assert.True(t, ok, typ.String())
		assert.Equal(t, typ, got)
	}

	_, ok := ParseType("bogus")
	assert.False(t, ok)
}

func TestDefaultSeverity(t *testing.T) {
	tests := []struct {
		typ  Type
		want Severity
	}{
		{TypeBruteForce, SeverityCritical},
		{TypeExposedEndpoint, SeverityCritical},
		{TypeMissingAuth, SeverityCritical},
		{TypeSuspiciousLoginTime, SeverityWarning},
		{TypeMultipleIPAccess, SeverityWarning},
		{TypeDefaultCredentials, SeverityInfo},
		{TypePublicEndpoint, SeverityInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.DefaultSeverity(), tt.typ.String())
	}
}

func TestNewFixesSeverityFromType(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	is := New(TypeBruteForce, "too many failures", ts)

	assert.Equal(t, SeverityCritical, is.Severity)
	assert.Equal(t, "too many failures", is.Description)
	assert.Equal(t, ts, is.DetectedAt)
}

func TestSeverityRoundTrip(t *testing.T) {
	for _, sev := range []Severity{SeverityInfo, SeverityWarning, SeverityCritical} {
		got, ok := ParseSeverity(sev.String())
		assert.True(t, ok)
		assert.Equal(t, sev, got)
	}

	_, ok := ParseSeverity("bogus")
	assert.False(t, ok)
}
