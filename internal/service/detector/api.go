package detector

import (
	"fmt"
	"time"

	"github.com/breachradar/breach-risk-backend/internal/domain/event"
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

// APIDetector flags sensitive endpoints that lack required protections. A
// single descriptor may legitimately produce both a missing-auth and an
// exposed-endpoint issue; the predicates are independent.
type APIDetector struct {
	now func() time.Time
}

func NewAPIDetector() *APIDetector {
	return &APIDetector{now: time.Now}
}

func (d *APIDetector) Name() string {
	return "api_security"
}

func (d *APIDetector) DetectEndpoints(endpoints []event.Endpoint) []issue.Issue {
	var issues []issue.Issue
	detectedAt := d.now()

	for _, ep := range endpoints {
		if ep.Sensitivity != event.SensitivitySensitive {
			continue
		}
		if !ep.RequiresAuth {
			issues = append(issues, issue.New(
				issue.TypeMissingAuth,
				fmt.Sprintf("sensitive endpoint %q does not require authentication", ep.Path),
				detectedAt,
			))
		}
		if ep.Public {
			issues = append(issues, issue.New(
				issue.TypeExposedEndpoint,
				fmt.Sprintf("sensitive endpoint %q is publicly accessible", ep.Path),
				detectedAt,
			))
		}
	}
	return issues
}
