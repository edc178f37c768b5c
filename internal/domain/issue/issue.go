package issue

import (
	"time"
)

// Type identifies a detected security condition. The set is closed: every
// consumer switches over it exhaustively, and each type carries a fixed
// default severity.
type Type int

const (
	TypeBruteForce Type = iota
	TypeSuspiciousLoginTime
	TypeExposedEndpoint
	TypeMissingAuth
	TypeDefaultCredentials
	TypePublicEndpoint
	TypeMultipleIPAccess
)

func (t Type) String() string {
	switch t {
	case TypeBruteForce:
		return "brute_force"
	case TypeSuspiciousLoginTime:
		return "suspicious_login_time"
	case TypeExposedEndpoint:
		return "exposed_endpoint"
	case TypeMissingAuth:
		return "missing_auth"
	case TypeDefaultCredentials:
		return "default_credentials"
	case TypePublicEndpoint:
		return "public_endpoint"
	case TypeMultipleIPAccess:
		return "multiple_ip_access"
	default:
		return "unknown"
	}
}

// DefaultSeverity returns the severity an issue of this type is emitted with.
// Detectors never override it.
func (t Type) DefaultSeverity() Severity {
	switch t {
	case TypeBruteForce, TypeExposedEndpoint, TypeMissingAuth:
		return SeverityCritical
	case TypeSuspiciousLoginTime, TypeMultipleIPAccess:
		return SeverityWarning
	case TypeDefaultCredentials, TypePublicEndpoint:
		return SeverityInfo
	default:
		return SeverityInfo
	}
}

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Issue is a single detected security condition. Issues are created by
// detectors and are immutable afterwards.
type Issue struct {
	Type        Type      `json:"type"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	DetectedAt  time.Time `json:"detected_at"`
}

// New builds an issue with the severity fixed by its type.
func New(t Type, description string, detectedAt time.Time) Issue {
	return Issue{
		Type:        t,
		Severity:    t.DefaultSeverity(),
		Description: description,
		DetectedAt:  detectedAt,
	}
}
