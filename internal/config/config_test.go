package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "data/leads.db", cfg.App.DBPath)
	assert.True(t, cfg.App.SaveToDB)
	assert.Equal(t, 20*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 200*time.Millisecond, cfg.App.RequestDelay())

	assert.True(t, cfg.Sources.Overpass.Enabled)
	assert.Equal(t, []string{"craft=plumber"}, cfg.Sources.Overpass.TagFilters)
	assert.Equal(t, []string{"Austin, TX"}, cfg.Sources.Overpass.Cities)
	assert.False(t, cfg.Sources.Places.Enabled)
	assert.False(t, cfg.Sources.MapsBrowser.Enabled)

	assert.True(t, cfg.Filters.ExcludeStartups)
	assert.Equal(t, "exclude_missing", cfg.Filters.WebsitePolicy)
	assert.Nil(t, cfg.Filters.RequireMissingWebsite)

	assert.True(t, cfg.Enrichment.FetchWebsiteForEmail)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  db_path: /tmp/other.db
  request_timeout_s: 5.5
sources:
  osm_overpass:
    enabled: false
    cities: ["Dallas, TX", "Houston, TX"]
filters:
  website_policy: only_missing
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.App.DBPath)
	assert.Equal(t, 5500*time.Millisecond, cfg.App.RequestTimeout())
	assert.False(t, cfg.Sources.Overpass.Enabled)
	assert.Equal(t, []string{"Dallas, TX", "Houston, TX"}, cfg.Sources.Overpass.Cities)
	assert.Equal(t, "only_missing", cfg.Filters.WebsitePolicy)
	// Untouched keys keep their defaults.
	assert.Equal(t, "data/leads.csv", cfg.App.ExportPath)
}

func TestLoad_LegacyWebsiteBooleanOnlyWhenPresent(t *testing.T) {
	path := writeConfig(t, `
filters:
  website_policy: ""
  require_missing_website: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Filters.RequireMissingWebsite)
	assert.True(t, *cfg.Filters.RequireMissingWebsite)

	path = writeConfig(t, `
filters:
  website_policy: ""
`)
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Filters.RequireMissingWebsite)
}

func TestLoad_PlacesKeyEnvFallback(t *testing.T) {
	t.Setenv("GOOGLE_PLACES_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Sources.Places.APIKey)
}

func TestLoad_ConfiguredKeyBeatsEnvFallback(t *testing.T) {
	t.Setenv("GOOGLE_PLACES_API_KEY", "env-key")

	path := writeConfig(t, `
sources:
  google_places:
    api_key: file-key
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.Sources.Places.APIKey)
}

func TestLoad_MalformedFileIsError(t *testing.T) {
	path := writeConfig(t, "app: [not: a map")
	_, err := Load(path)
	assert.Error(t, err)
}
