package detector

import (
	"fmt"
	"strings"
	"time"

	"github.com/breachradar/breach-risk-backend/internal/domain/event"
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

// MisconfigConfig holds the misconfiguration detector settings.
type MisconfigConfig struct {
	// DefaultUsernames lists well-known account names whose presence in the
	// authentication stream is reported. Matching is case-insensitive.
	DefaultUsernames []string
}

func DefaultMisconfigConfig() MisconfigConfig {
	return MisconfigConfig{
		DefaultUsernames: []string{"admin", "root", "administrator", "test", "guest"},
	}
}

// MisconfigDetector flags known-bad patterns: default account names in use
// and endpoints exposed to the public. The public-endpoint rule only covers
// non-sensitive endpoints; public sensitive endpoints are the API detector's
// exposed-endpoint rule, keeping the two predicates disjoint.
type MisconfigDetector struct {
	usernames map[string]struct{}
	now       func() time.Time
}

func NewMisconfigDetector(cfg MisconfigConfig) *MisconfigDetector {
	usernames := make(map[string]struct{}, len(cfg.DefaultUsernames))
	for _, name := range cfg.DefaultUsernames {
		usernames[strings.ToLower(name)] = struct{}{}
	}
	return &MisconfigDetector{usernames: usernames, now: time.Now}
}

func (d *MisconfigDetector) Name() string {
	return "misconfiguration"
}

func (d *MisconfigDetector) Detect(events []event.AuthEvent, endpoints []event.Endpoint) []issue.Issue {
	issues := d.detectDefaultCredentials(events)
	issues = append(issues, d.detectPublicEndpoints(endpoints)...)
	return issues
}

// detectDefaultCredentials emits one issue per distinct matching actor,
// deduplicated across repeated events within the scan.
func (d *MisconfigDetector) detectDefaultCredentials(events []event.AuthEvent) []issue.Issue {
	var issues []issue.Issue
	reported := make(map[string]struct{})
	detectedAt := d.now()

	for _, ev := range events {
		key := strings.ToLower(ev.Actor)
		if _, ok := d.usernames[key]; !ok {
			continue
		}
		if _, done := reported[key]; done {
			continue
		}
		reported[key] = struct{}{}
		issues = append(issues, issue.New(
			issue.TypeDefaultCredentials,
			fmt.Sprintf("default account name %q is in use", ev.Actor),
			detectedAt,
		))
	}
	return issues
}

func (d *MisconfigDetector) detectPublicEndpoints(endpoints []event.Endpoint) []issue.Issue {
	var issues []issue.Issue
	detectedAt := d.now()

	for _, ep := range endpoints {
		if !ep.Public || ep.Sensitivity == event.SensitivitySensitive {
			continue
		}
		issues = append(issues, issue.New(
			issue.TypePublicEndpoint,
			fmt.Sprintf("endpoint %q is publicly accessible", ep.Path),
			detectedAt,
		))
	}
	return issues
}
