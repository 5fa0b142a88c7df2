// Package filter implements the lead inclusion policy. Passes is a pure
// predicate: two calls with the same lead and policy always agree.
package filter

import (
	"strings"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/model"
)

// WebsitePolicy governs whether leads with or without a website are kept.
type WebsitePolicy string

const (
	// AllowAll applies no website constraint.
	AllowAll WebsitePolicy = "allow_all"
	// ExcludeMissing rejects leads that have no website.
	ExcludeMissing WebsitePolicy = "exclude_missing"
	// OnlyMissing rejects leads that have a website.
	OnlyMissing WebsitePolicy = "only_missing"
)

// ResolvePolicy returns the effective website policy. The explicit
// website_policy key always wins when present; the legacy
// require_missing_website boolean is consulted only when it is absent
// (true maps to only_missing, false to allow_all).
func ResolvePolicy(cfg config.FiltersConfig) WebsitePolicy {
	if cfg.WebsitePolicy != "" {
		return WebsitePolicy(strings.ToLower(cfg.WebsitePolicy))
	}
	if cfg.RequireMissingWebsite != nil {
		if *cfg.RequireMissingWebsite {
			return OnlyMissing
		}
		return AllowAll
	}
	return AllowAll
}

// Passes reports whether lead clears both filter axes: startup exclusion and
// the website policy.
func Passes(lead model.Lead, cfg config.FiltersConfig) bool {
	if cfg.ExcludeStartups && isStartup(lead, cfg.StartupKeywords) {
		return false
	}

	switch ResolvePolicy(cfg) {
	case ExcludeMissing:
		if lead.Website == "" {
			return false
		}
	case OnlyMissing:
		if lead.Website != "" {
			return false
		}
	}
	return true
}

// isStartup reports whether any keyword appears (case-insensitive) in the
// lead's name, category, or website.
func isStartup(lead model.Lead, keywords []string) bool {
	var parts []string
	for _, p := range []string{lead.Name, lead.Category, lead.Website} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	hay := strings.ToLower(strings.Join(parts, " "))
	for _, kw := range keywords {
		if kw != "" && strings.Contains(hay, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
