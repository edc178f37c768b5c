package event

// Endpoint describes one API endpoint as observed by the collection layer.
type Endpoint struct {
	Path         string      `json:"path"`
	RequiresAuth bool        `json:"requires_auth"`
	Public       bool        `json:"public"`
	Sensitivity  Sensitivity `json:"sensitivity"`
}

type Sensitivity int

const (
	SensitivityNormal Sensitivity = iota
	SensitivitySensitive
)

func (s Sensitivity) String() string {
	switch s {
	case SensitivityNormal:
		return "normal"
	case SensitivitySensitive:
		return "sensitive"
	default:
		return "unknown"
	}
}
