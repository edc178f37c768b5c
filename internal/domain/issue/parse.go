package issue

// ParseType maps a stored type name back to its Type. The boolean reports
// whether the name was recognized.
func ParseType(s string) (Type, bool) {
	switch s {
	case "brute_force":
		return TypeBruteForce, true
	case "suspicious_login_time":
		return TypeSuspiciousLoginTime, true
	case "exposed_endpoint":
		return TypeExposedEndpoint, true
	case "missing_auth":
		return TypeMissingAuth, true
	case "default_credentials":
		return TypeDefaultCredentials, true
	case "public_endpoint":
		return TypePublicEndpoint, true
	case "multiple_ip_access":
		return TypeMultipleIPAccess, true
	default:
		return TypeBruteForce, false
	}
}

// ParseSeverity maps a stored severity name back to its Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "INFO":
		return SeverityInfo, true
	case "WARNING":
		return SeverityWarning, true
	case "CRITICAL":
		return SeverityCritical, true
	default:
		return SeverityInfo, false
	}
}
