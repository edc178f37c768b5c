package detector

import (
	"github.com/breachradar/breach-risk-backend/internal/domain/event"
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

// AuthEventDetector evaluates authentication events.
//
// Detectors are pure: they hold configuration only, never cross-call state,
// and may run concurrently with each other. Implementations must not modify
// their input and must return issues in a deterministic order for a given
// input.
type AuthEventDetector interface {
	DetectAuth(events []event.AuthEvent) []issue.Issue
	Name() string
}

// EndpointDetector evaluates API endpoint descriptors.
type EndpointDetector interface {
	DetectEndpoints(endpoints []event.Endpoint) []issue.Issue
	Name() string
}

// CombinedDetector evaluates both streams. The misconfiguration detector is
// the only implementation.
type CombinedDetector interface {
	Detect(events []event.AuthEvent, endpoints []event.Endpoint) []issue.Issue
	Name() string
}
