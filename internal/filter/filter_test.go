package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func TestResolvePolicy_ExplicitKeyWins(t *testing.T) {
	cfg := config.FiltersConfig{
		WebsitePolicy:         "only_missing",
		RequireMissingWebsite: boolPtr(false),
	}
	assert.Equal(t, OnlyMissing, ResolvePolicy(cfg))
}

func TestResolvePolicy_LegacyBoolean(t *testing.T) {
	assert.Equal(t, OnlyMissing, ResolvePolicy(config.FiltersConfig{RequireMissingWebsite: boolPtr(true)}))
	assert.Equal(t, AllowAll, ResolvePolicy(config.FiltersConfig{RequireMissingWebsite: boolPtr(false)}))
}

func TestResolvePolicy_DefaultsToAllowAll(t *testing.T) {
	assert.Equal(t, AllowAll, ResolvePolicy(config.FiltersConfig{}))
}

func TestResolvePolicy_CaseInsensitive(t *testing.T) {
	assert.Equal(t, ExcludeMissing, ResolvePolicy(config.FiltersConfig{WebsitePolicy: "Exclude_Missing"}))
}

func TestPasses_WebsitePolicies(t *testing.T) {
	withSite := model.Lead{Name: "Acme Plumbing", Website: "http://acme.example"}
	noSite := model.Lead{Name: "Acme Plumbing"}

	tests := []struct {
		policy       string
		withSiteWant bool
		noSiteWant   bool
	}{
		{"allow_all", true, true},
		{"exclude_missing", true, false},
		{"only_missing", false, true},
	}
	for _, tt := range tests {
		cfg := config.FiltersConfig{WebsitePolicy: tt.policy}
		assert.Equal(t, tt.withSiteWant, Passes(withSite, cfg), "policy %s with site", tt.policy)
		assert.Equal(t, tt.noSiteWant, Passes(noSite, cfg), "policy %s without site", tt.policy)
	}
}

func TestPasses_StartupExclusion(t *testing.T) {
	cfg := config.FiltersConfig{
		ExcludeStartups: true,
		StartupKeywords: []string{"startup", "saas"},
		WebsitePolicy:   "allow_all",
	}

	assert.False(t, Passes(model.Lead{Name: "Rocket Startup Inc"}, cfg))
	assert.False(t, Passes(model.Lead{Name: "Acme", Category: "SaaS tools"}, cfg))
	assert.False(t, Passes(model.Lead{Name: "Acme", Website: "http://best-saas.example"}, cfg))
	assert.True(t, Passes(model.Lead{Name: "Acme Plumbing"}, cfg))
}

func TestPasses_StartupCheckSkippedWhenDisabled(t *testing.T) {
	cfg := config.FiltersConfig{
		ExcludeStartups: false,
		StartupKeywords: []string{"startup"},
		WebsitePolicy:   "allow_all",
	}
	assert.True(t, Passes(model.Lead{Name: "Rocket Startup Inc"}, cfg))
}

func TestPasses_IsPure(t *testing.T) {
	lead := model.Lead{Name: "Acme", Website: "http://acme.example"}
	cfg := config.FiltersConfig{WebsitePolicy: "exclude_missing"}
	first := Passes(lead, cfg)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Passes(lead, cfg))
	}
}
