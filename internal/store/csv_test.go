package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadfinder/internal/model"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV_HeaderOnlyWhenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, WriteCSV(path, nil))

	rows := readCSV(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, csvHeader, rows[0])
}

func TestWriteCSV_RowsAndEmptyFields(t *testing.T) {
	lead := model.Lead{
		Name:      "Acme Plumbing",
		Phone:     "+15551234567",
		City:      "Austin, TX",
		Source:    "websites",
		CreatedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, WriteCSV(path, []model.Lead{lead}))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"Acme Plumbing", "", "+15551234567", "", "Austin, TX", "websites", "",
		"2026-08-28T12:00:00Z",
	}, rows[1])
}

func TestWriteCSV_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "leads.csv")
	require.NoError(t, WriteCSV(path, nil))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
