package risk

import (
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

// Level is the discrete risk category derived from a score.
type Level int

const (
	LevelUnknown Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "LOW"
	case LevelMedium:
		return "MEDIUM"
	case LevelHigh:
		return "HIGH"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Weights maps each severity to the points it contributes per issue.
type Weights struct {
	Critical int
	Warning  int
	Info     int
}

// Thresholds holds the lower bound of each level above LOW. A score below
// Medium is LOW; the table must be strictly increasing.
type Thresholds struct {
	Medium   int
	High     int
	Critical int
}

func DefaultWeights() Weights {
	return Weights{Critical: 25, Warning: 10, Info: 5}
}

func DefaultThresholds() Thresholds {
	return Thresholds{Medium: 30, High: 60, Critical: 90}
}

// Assessment is the scorer's output for one issue set.
type Assessment struct {
	Score           int
	Level           Level
	SeverityCounts  map[issue.Severity]int
	Recommendations []string
}

// Scorer computes a weighted risk score, level and recommendations from the
// concatenated issue set of one scan. It is a pure function of its input and
// configuration: no hidden state, total on any well-formed input.
type Scorer struct {
	weights    Weights
	thresholds Thresholds
}

func NewScorer(weights Weights, thresholds Thresholds) *Scorer {
	return &Scorer{weights: weights, thresholds: thresholds}
}

// Score aggregates the issues of one scan. The score is unbounded: it is a
// relative severity signal, not a percentage.
func (s *Scorer) Score(issues []issue.Issue) Assessment {
	counts := map[issue.Severity]int{
		issue.SeverityCritical: 0,
		issue.SeverityWarning:  0,
		issue.SeverityInfo:     0,
	}

	score := 0
	for _, is := range issues {
		counts[is.Severity]++
		score += s.weight(is.Severity)
	}

	return Assessment{
		Score:           score,
		Level:           s.LevelFor(score),
		SeverityCounts:  counts,
		Recommendations: Recommendations(issues),
	}
}

// LevelFor resolves a score against the threshold table. Boundaries are
// inclusive on the lower bound: a score equal to Medium is MEDIUM.
func (s *Scorer) LevelFor(score int) Level {
	switch {
	case score >= s.thresholds.Critical:
		return LevelCritical
	case score >= s.thresholds.High:
		return LevelHigh
	case score >= s.thresholds.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

func (s *Scorer) weight(sev issue.Severity) int {
	switch sev {
	case issue.SeverityCritical:
		return s.weights.Critical
	case issue.SeverityWarning:
		return s.weights.Warning
	case issue.SeverityInfo:
		return s.weights.Info
	default:
		return 0
	}
}
