package risk

// ParseLevel maps a stored level name back to its Level. Unrecognized input
// maps to UNKNOWN.
func ParseLevel(s string) Level {
	switch s {
	case "LOW":
		return LevelLow
	case "MEDIUM":
		return LevelMedium
	case "HIGH":
		return LevelHigh
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelUnknown
	}
}
