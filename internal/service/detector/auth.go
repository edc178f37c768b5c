package detector

import (
	"fmt"
	"time"

	"github.com/breachradar/breach-risk-backend/internal/domain/event"
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

// AuthConfig holds the authentication detector thresholds.
type AuthConfig struct {
	// BruteForceThreshold is the number of failures an actor may accumulate
	// before being flagged. Strictly more than the threshold triggers;
	// exactly the threshold does not.
	BruteForceThreshold int

	// SuspiciousHourStart and SuspiciousHourEnd bound the hour-of-day range
	// (inclusive on both ends) during which any authentication activity is
	// reported.
	SuspiciousHourStart int
	SuspiciousHourEnd   int
}

// DefaultAuthConfig returns the stock thresholds: more than 3 failures per
// actor, suspicious window 00:00-05:59.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		BruteForceThreshold: 3,
		SuspiciousHourStart: 0,
		SuspiciousHourEnd:   5,
	}
}

// AuthDetector flags brute-force attempts, off-hours activity and accounts
// used from multiple addresses.
type AuthDetector struct {
	cfg AuthConfig
}

func NewAuthDetector(cfg AuthConfig) *AuthDetector {
	return &AuthDetector{cfg: cfg}
}

func (d *AuthDetector) Name() string {
	return "authentication"
}

// DetectAuth evaluates the full provided window of authentication events.
// Empty input yields empty output.
func (d *AuthDetector) DetectAuth(events []event.AuthEvent) []issue.Issue {
	issues := d.detectBruteForce(events)
	issues = append(issues, d.detectSuspiciousHours(events)...)
	issues = append(issues, d.detectMultipleIPAccess(events)...)
	return issues
}

// detectBruteForce counts failures per actor over the whole window and emits
// one critical issue per actor exceeding the threshold. Actors are reported
// in first-seen order so output is deterministic.
func (d *AuthDetector) detectBruteForce(events []event.AuthEvent) []issue.Issue {
	failures := make(map[string]int)
	var order []string

	for _, ev := range events {
		if ev.Outcome != event.OutcomeFailure {
			continue
		}
		if _, seen := failures[ev.Actor]; !seen {
			order = append(order, ev.Actor)
		}
		failures[ev.Actor]++
	}

	var issues []issue.Issue
	for _, actor := range order {
		count := failures[actor]
		if count <= d.cfg.BruteForceThreshold {
			continue
		}
		issues = append(issues, issue.New(
			issue.TypeBruteForce,
			fmt.Sprintf("actor %q had %d failed login attempts", actor, count),
			lastTimestamp(events),
		))
	}
	return issues
}

// detectSuspiciousHours reports every event inside the suspicious window,
// one issue per qualifying record. Events are independently reportable, so
// there is no per-actor deduplication here.
func (d *AuthDetector) detectSuspiciousHours(events []event.AuthEvent) []issue.Issue {
	var issues []issue.Issue
	for _, ev := range events {
		hour := ev.Timestamp.Hour()
		if hour < d.cfg.SuspiciousHourStart || hour > d.cfg.SuspiciousHourEnd {
			continue
		}
		issues = append(issues, issue.New(
			issue.TypeSuspiciousLoginTime,
			fmt.Sprintf("actor %q authenticated at suspicious hour %02d:00 from %s", ev.Actor, hour, ev.SourceAddr),
			ev.Timestamp,
		))
	}
	return issues
}

// detectMultipleIPAccess flags actors whose successful logins come from more
// than one distinct source address, which can indicate credential sharing or
// a compromised account. One issue per actor, first-seen order.
func (d *AuthDetector) detectMultipleIPAccess(events []event.AuthEvent) []issue.Issue {
	addrs := make(map[string]map[string]struct{})
	var order []string

	for _, ev := range events {
		if ev.Outcome != event.OutcomeSuccess {
			continue
		}
		if _, seen := addrs[ev.Actor]; !seen {
			addrs[ev.Actor] = make(map[string]struct{})
			order = append(order, ev.Actor)
		}
		addrs[ev.Actor][ev.SourceAddr] = struct{}{}
	}

	var issues []issue.Issue
	for _, actor := range order {
		count := len(addrs[actor])
		if count <= 1 {
			continue
		}
		issues = append(issues, issue.New(
			issue.TypeMultipleIPAccess,
			fmt.Sprintf("actor %q logged in from %d different addresses", actor, count),
			lastTimestamp(events),
		))
	}
	return issues
}

func lastTimestamp(events []event.AuthEvent) (ts time.Time) {
	for _, ev := range events {
		if ev.Timestamp.After(ts) {
			ts = ev.Timestamp
		}
	}
	return ts
}
