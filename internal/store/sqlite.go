// Package store persists leads in SQLite and exports them to CSV.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadfinder/internal/model"
)

// Store is a SQLite-backed lead store. Deduplication rides on a unique index
// over (name, city, website); conflicting writes merge field-wise, so
// concurrent writers from separate processes stay row-level safe.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrap(err, "store: create db dir")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS leads (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	website    TEXT NOT NULL DEFAULT '',
	city       TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT '',
	category   TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS leads_unique ON leads (name, city, website);
`

// Init creates the schema. Safe to call on every open.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: init schema")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts the lead or merges it into the existing row with the same
// (name, city, website) identity. Non-empty incoming email/phone/source/
// category overwrite; empty values never erase; the identity columns and
// created_at are untouched on conflict, so created_at stays first-seen time.
func (s *Store) Upsert(ctx context.Context, lead model.Lead) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO leads (name, email, phone, website, city, source, category, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name, city, website) DO UPDATE SET
	email    = CASE WHEN excluded.email    != '' THEN excluded.email    ELSE leads.email    END,
	phone    = CASE WHEN excluded.phone    != '' THEN excluded.phone    ELSE leads.phone    END,
	source   = CASE WHEN excluded.source   != '' THEN excluded.source   ELSE leads.source   END,
	category = CASE WHEN excluded.category != '' THEN excluded.category ELSE leads.category END`,
		lead.Name, lead.Email, lead.Phone, lead.Website, lead.City,
		lead.Source, lead.Category, lead.CreatedAt.UTC().Format(time.RFC3339),
	)
	return eris.Wrapf(err, "store: upsert %q", lead.Name)
}

// FetchAll returns every stored lead, newest first.
func (s *Store) FetchAll(ctx context.Context) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, email, phone, website, city, source, category, created_at
FROM leads ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "store: fetch all")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var created string
		if err := rows.Scan(&l.Name, &l.Email, &l.Phone, &l.Website, &l.City, &l.Source, &l.Category, &created); err != nil {
			return nil, eris.Wrap(err, "store: scan lead")
		}
		ts, err := time.Parse(time.RFC3339, created)
		if err != nil {
			ts = time.Now().UTC()
		}
		l.CreatedAt = ts
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "store: iterate leads")
}

// ExportCSV writes every stored lead to a CSV file at path.
func (s *Store) ExportCSV(ctx context.Context, path string) error {
	leads, err := s.FetchAll(ctx)
	if err != nil {
		return err
	}
	return WriteCSV(path, leads)
}
