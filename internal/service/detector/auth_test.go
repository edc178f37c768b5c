package detector

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breachradar/breach-risk-backend/internal/domain/event"
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

func failureAt(actor string, ts time.Time) event.AuthEvent {
	return event.AuthEvent{
		Actor:      actor,
		Outcome:    event.OutcomeFailure,
		Timestamp:  ts,
		SourceAddr: "10.0.0.1",
	}
}

func successAt(actor string, ts time.Time) event.AuthEvent {
	return event.AuthEvent{
		Actor:      actor,
		Outcome:    event.OutcomeSuccess,
		Timestamp:  ts,
		SourceAddr: "10.0.0.1",
	}
}

func TestAuthDetector_BruteForce(t *testing.T) {
	// Noon keeps these events out of the suspicious-hours window.
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		threshold  int
		events     []event.AuthEvent
		wantActors []string
	}{
		{
			name:       "empty input yields no issues",
			threshold:  3,
			events:     nil,
			wantActors: nil,
		},
		{
			name:      "exactly at threshold does not trigger",
			threshold: 3,
			events: []event.AuthEvent{
				failureAt("alice", base),
				failureAt("alice", base.Add(time.Minute)),
				failureAt("alice", base.Add(2 * time.Minute)),
			},
			wantActors: nil,
		},
		{
			name:      "one past threshold triggers",
			threshold: 3,
			events: []event.AuthEvent{
				failureAt("alice", base),
				failureAt("alice", base.Add(time.Minute)),
				failureAt("alice", base.Add(2 * time.Minute)),
				failureAt("alice", base.Add(3 * time.Minute)),
			},
			wantActors: []string{"alice"},
		},
		{
			name:      "successes do not count toward failures",
			threshold: 3,
			events: []event.AuthEvent{
				failureAt("alice", base),
				successAt("alice", base.Add(time.Minute)),
				successAt("alice", base.Add(2 * time.Minute)),
				failureAt("alice", base.Add(3 * time.Minute)),
				failureAt("alice", base.Add(4 * time.Minute)),
			},
			wantActors: nil,
		},
		{
			name:      "per-actor counting with first-seen ordering",
			threshold: 1,
			events: []event.AuthEvent{
				failureAt("bob", base),
				failureAt("alice", base.Add(time.Minute)),
				failureAt("bob", base.Add(2 * time.Minute)),
				failureAt("alice", base.Add(3 * time.Minute)),
			},
			wantActors: []string{"bob", "alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewAuthDetector(AuthConfig{
				BruteForceThreshold: tt.threshold,
				SuspiciousHourStart: 0,
				SuspiciousHourEnd:   5,
			})

			issues := d.DetectAuth(tt.events)

			require.Len(t, issues, len(tt.wantActors))
			for i, is := range issues {
				assert.Equal(t, issue.TypeBruteForce, is.Type)
				assert.Equal(t, issue.SeverityCritical, is.Severity)
				assert.Contains(t, is.Description, tt.wantActors[i])
			}
		})
	}
}

func TestAuthDetector_BruteForceDeterministic(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	events := []event.AuthEvent{
		failureAt("carol", base),
		failureAt("alice", base.Add(time.Second)),
		failureAt("bob", base.Add(2 * time.Second)),
		failureAt("carol", base.Add(3 * time.Second)),
		failureAt("alice", base.Add(4 * time.Second)),
		failureAt("bob", base.Add(5 * time.Second)),
	}

	d := NewAuthDetector(AuthConfig{BruteForceThreshold: 1, SuspiciousHourEnd: 5})

	first := d.DetectAuth(events)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.DetectAuth(events))
	}
}

func TestAuthDetector_SuspiciousHours(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		hour      int
		wantIssue bool
	}{
		{"start of window", 0, true},
		{"inside window", 3, true},
		{"end of window is inclusive", 5, true},
		{"just past window", 6, false},
		{"daytime", 14, false},
		{"just before midnight", 23, false},
	}

	d := NewAuthDetector(DefaultAuthConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := successAt("alice", day.Add(time.Duration(tt.hour)*time.Hour))

			issues := d.DetectAuth([]event.AuthEvent{ev})

			if !tt.wantIssue {
				assert.Empty(t, issues)
				return
			}
			require.Len(t, issues, 1)
			assert.Equal(t, issue.TypeSuspiciousLoginTime, issues[0].Type)
			assert.Equal(t, issue.SeverityWarning, issues[0].Severity)
			assert.Equal(t, ev.Timestamp, issues[0].DetectedAt)
		})
	}
}

func TestAuthDetector_SuspiciousHoursPerRecord(t *testing.T) {
	// Three off-hours events by the same actor are three separate issues.
	night := time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)
	events := []event.AuthEvent{
		successAt("alice", night),
		failureAt("alice", night.Add(time.Minute)),
		successAt("alice", night.Add(2 * time.Minute)),
	}

	d := NewAuthDetector(DefaultAuthConfig())
	issues := d.DetectAuth(events)

	require.Len(t, issues, 3)
	for _, is := range issues {
		assert.Equal(t, issue.TypeSuspiciousLoginTime, is.Type)
	}
}

func TestAuthDetector_MultipleIPAccess(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	successFrom := func(actor, addr string, ts time.Time) event.AuthEvent {
		return event.AuthEvent{Actor: actor, Outcome: event.OutcomeSuccess, Timestamp: ts, SourceAddr: addr}
	}
	failureFrom := func(actor, addr string, ts time.Time) event.AuthEvent {
		return event.AuthEvent{Actor: actor, Outcome: event.OutcomeFailure, Timestamp: ts, SourceAddr: addr}
	}

	tests := []struct {
		name       string
		events     []event.AuthEvent
		wantActors []string
		wantCounts []int
	}{
		{
			name: "single address is clean",
			events: []event.AuthEvent{
				successFrom("alice", "10.0.0.1", base),
				successFrom("alice", "10.0.0.1", base.Add(time.Minute)),
			},
			wantActors: nil,
		},
		{
			name: "two addresses flag once",
			events: []event.AuthEvent{
				successFrom("alice", "10.0.0.1", base),
				successFrom("alice", "203.0.113.7", base.Add(time.Minute)),
				successFrom("alice", "10.0.0.1", base.Add(2 * time.Minute)),
			},
			wantActors: []string{"alice"},
			wantCounts: []int{2},
		},
		{
			name: "failures do not count toward addresses",
			events: []event.AuthEvent{
				failureFrom("alice", "10.0.0.1", base),
				failureFrom("alice", "203.0.113.7", base.Add(time.Minute)),
				successFrom("alice", "10.0.0.1", base.Add(2 * time.Minute)),
			},
			wantActors: nil,
		},
		{
			name: "per-actor with first-seen ordering",
			events: []event.AuthEvent{
				successFrom("bob", "10.0.0.1", base),
				successFrom("alice", "10.0.0.2", base.Add(time.Minute)),
				successFrom("bob", "10.0.0.3", base.Add(2 * time.Minute)),
				successFrom("alice", "10.0.0.4", base.Add(3 * time.Minute)),
				successFrom("alice", "10.0.0.5", base.Add(4 * time.Minute)),
			},
			wantActors: []string{"bob", "alice"},
			wantCounts: []int{2, 3},
		},
	}

	d := NewAuthDetector(DefaultAuthConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []issue.Issue
			for _, is := range d.DetectAuth(tt.events) {
				if is.Type == issue.TypeMultipleIPAccess {
					got = append(got, is)
				}
			}

			require.Len(t, got, len(tt.wantActors))
			for i, is := range got {
				assert.Equal(t, issue.SeverityWarning, is.Severity)
				assert.Contains(t, is.Description, tt.wantActors[i])
				assert.Contains(t, is.Description, fmt.Sprintf("%d different addresses", tt.wantCounts[i]))
			}
		})
	}
}

func TestAuthDetector_DoubledWindowStillOneIssuePerActor(t *testing.T) {
	// The same events fed twice within one scan still yield exactly one
	// brute-force issue per actor, and one multiple-address issue per actor.
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	events := []event.AuthEvent{
		failureAt("alice", base),
		failureAt("alice", base.Add(time.Minute)),
		failureAt("alice", base.Add(2 * time.Minute)),
		failureAt("alice", base.Add(3 * time.Minute)),
		{Actor: "bob", Outcome: event.OutcomeSuccess, Timestamp: base.Add(4 * time.Minute), SourceAddr: "10.0.0.1"},
		{Actor: "bob", Outcome: event.OutcomeSuccess, Timestamp: base.Add(5 * time.Minute), SourceAddr: "203.0.113.7"},
	}

	doubled := append(append([]event.AuthEvent{}, events...), events...)

	d := NewAuthDetector(DefaultAuthConfig())
	issues := d.DetectAuth(doubled)

	counts := make(map[issue.Type]int)
	for _, is := range issues {
		counts[is.Type]++
	}
	assert.Equal(t, 1, counts[issue.TypeBruteForce])
	assert.Equal(t, 1, counts[issue.TypeMultipleIPAccess])

	// The failure tally reflects the doubled window.
	for _, is := range issues {
		if is.Type == issue.TypeBruteForce {
			assert.Contains(t, is.Description, "8 failed login attempts")
		}
	}
}

func TestAuthDetector_Stateless(t *testing.T) {
	// Repeated calls must not accumulate failure counts across scans.
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	events := []event.AuthEvent{
		failureAt("alice", base),
		failureAt("alice", base.Add(time.Minute)),
	}

	d := NewAuthDetector(AuthConfig{BruteForceThreshold: 3, SuspiciousHourEnd: 5})

	assert.Empty(t, d.DetectAuth(events))
	assert.Empty(t, d.DetectAuth(events))
}
