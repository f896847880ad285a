package assignment

import (
	"strings"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/logger"
)

// ZipMatches reports whether a lead's zip code satisfies a rule's pattern
// set. A pattern is either an exact 5-digit code or a prefix followed by
// "*" (e.g. "900*"). An empty pattern set means "match any zip".
//
// A lead without a zip code only matches the empty pattern set: incomplete
// geographic data must not silently match a geographically scoped rule.
// Malformed patterns never match and never panic; they are logged once per
// evaluation for operator visibility.
func ZipMatches(zipCode string, patterns []string) bool {
	zip := strings.ToUpper(strings.TrimSpace(zipCode))

	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !validPattern(p) {
			logger.Warn("skipping malformed zip pattern", "pattern", p)
			continue
		}
		valid = append(valid, p)
	}

	// Empty set (after dropping malformed entries a malformed-only set is
	// NOT empty: the rule stays geographically scoped and is ineligible).
	if len(patterns) == 0 {
		return true
	}

	if zip == "" {
		return false
	}

	for _, p := range valid {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(zip, prefix) {
				return true
			}
			continue
		}
		if zip == p {
			return true
		}
	}
	return false
}

// validPattern accepts an exact 5-digit code or a 1-4 digit prefix ending
// in a single wildcard.
func validPattern(p string) bool {
	if prefix, ok := strings.CutSuffix(p, "*"); ok {
		return len(prefix) >= 1 && len(prefix) <= 4 && allDigits(prefix)
	}
	return len(p) == 5 && allDigits(p)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
