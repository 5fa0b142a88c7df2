package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadfinder/internal/model"
)

// csvHeader is the fixed export column order.
var csvHeader = []string{"name", "email", "phone", "website", "city", "source", "category", "created_at"}

// WriteCSV writes leads to a CSV file at path, creating parent directories.
// Empty optional fields render as empty strings.
func WriteCSV(path string, leads []model.Lead) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "csv: create export dir")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "csv: create file")
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for _, l := range leads {
		row := []string{
			l.Name, l.Email, l.Phone, l.Website, l.City, l.Source, l.Category,
			l.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "csv: write row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "csv: flush")
}
