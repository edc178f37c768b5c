package event

import (
	"time"
)

// AuthEvent is a single normalized authentication attempt. Events are
// produced by the collection layer and consumed read-only by detectors.
type AuthEvent struct {
	Actor      string    `json:"actor"`
	Outcome    Outcome   `json:"outcome"`
	Timestamp  time.Time `json:"timestamp"`
	SourceAddr string    `json:"source_addr"`
}

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}
