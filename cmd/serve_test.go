package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadfinder/internal/config"
)

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "Y"} {
		assert.True(t, parseBool(v), "value %q", v)
	}
	for _, v := range []string{"", "0", "false", "no", "maybe"} {
		assert.False(t, parseBool(v), "value %q", v)
	}
}

func TestApplyMapsOverrides_NoOpWithoutParams(t *testing.T) {
	c := &config.Config{}
	applyMapsOverrides(c, "", "", "")
	assert.False(t, c.Sources.MapsBrowser.Enabled)
}

func TestApplyMapsOverrides_ForceEnablesAndParses(t *testing.T) {
	c := &config.Config{}
	c.Sources.MapsBrowser.MaxResults = 40

	applyMapsOverrides(c, "real estate agent", " Austin, Dallas ,", "15")
	gm := c.Sources.MapsBrowser
	assert.True(t, gm.Enabled)
	assert.Equal(t, "real estate agent", gm.Query)
	assert.Equal(t, []string{"Austin", "Dallas"}, gm.Cities)
	assert.Equal(t, 15, gm.MaxResults)
}

func TestApplyMapsOverrides_BadMaxResultsIgnored(t *testing.T) {
	c := &config.Config{}
	c.Sources.MapsBrowser.MaxResults = 40
	applyMapsOverrides(c, "agents", "", "lots")
	assert.True(t, c.Sources.MapsBrowser.Enabled)
	assert.Equal(t, 40, c.Sources.MapsBrowser.MaxResults)
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleExport_MissingOutIs400(t *testing.T) {
	rec := httptest.NewRecorder()
	handleExport(rec, httptest.NewRequest(http.MethodPost, "/export", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExport_WritesCSV(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	dbPath := filepath.Join(dir, "leads.db")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("app:\n  db_path: %s\n", dbPath)), 0o644))

	out := filepath.Join(dir, "leads.csv")
	target := "/export?" + url.Values{
		"out":         {out},
		"config_path": {cfgPath},
	}.Encode()

	rec := httptest.NewRecorder()
	handleExport(rec, httptest.NewRequest(http.MethodPost, target, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, out, body["exported_to"])

	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestHandleConfig_HonorsConfigPathParam(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server:\n  port: 9999\n"), 0o644))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/config?config_path="+url.QueryEscape(cfgPath), nil)
	handleConfig(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got config.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 9999, got.Server.Port)
}
