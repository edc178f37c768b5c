package risk

import (
	"sort"

	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

// recommendationFor maps each issue type to its canned remediation advice.
func recommendationFor(t issue.Type) string {
	switch t {
	case issue.TypeBruteForce:
		return "Lock accounts after repeated failed logins and enable multi-factor authentication"
	case issue.TypeSuspiciousLoginTime:
		return "Alert on off-hours access and review authentication logs regularly"
	case issue.TypeExposedEndpoint:
		return "Restrict public access to sensitive endpoints behind a gateway or allowlist"
	case issue.TypeMissingAuth:
		return "Require authentication on all sensitive API endpoints"
	case issue.TypeDefaultCredentials:
		return "Rename or disable default accounts and enforce a strong password policy"
	case issue.TypePublicEndpoint:
		return "Review publicly reachable endpoints and confirm each is intentionally exposed"
	case issue.TypeMultipleIPAccess:
		return "Investigate accounts used from multiple addresses and rotate credentials if unrecognized"
	default:
		return ""
	}
}

// Recommendations derives advice from the distinct issue types present, one
// string per type encountered at least once. Output is ordered by the
// severity of the triggering type (critical first), then by type for a
// stable order, and deduplicated.
func Recommendations(issues []issue.Issue) []string {
	types := make(map[issue.Type]struct{})
	for _, is := range issues {
		types[is.Type] = struct{}{}
	}

	ordered := make([]issue.Type, 0, len(types))
	for t := range types {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool {
		si, sj := ordered[i].DefaultSeverity(), ordered[j].DefaultSeverity()
		if si != sj {
			return si > sj
		}
		return ordered[i] < ordered[j]
	})

	var recs []string
	seen := make(map[string]struct{})
	for _, t := range ordered {
		rec := recommendationFor(t)
		if rec == "" {
			continue
		}
		if _, dup := seen[rec]; dup {
			continue
		}
		seen[rec] = struct{}{}
		recs = append(recs, rec)
	}
	return recs
}
