package nominatim

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Cache is a durable map from the original city query string to its resolved
// Place. Entries never expire. The file is read fully on load and rewritten
// fully on save, not streamed.
type Cache struct {
	path    string
	entries map[string]Place
}

// LoadCache reads the cache file at path. A missing or unreadable file yields
// an empty cache; geocoding just starts cold.
func LoadCache(path string) *Cache {
	c := &Cache{path: path, entries: make(map[string]Place)}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		zap.L().Warn("nominatim: cache file corrupt, starting fresh",
			zap.String("path", path),
			zap.Error(err),
		)
		c.entries = make(map[string]Place)
	}
	return c
}

// Get returns the cached Place for query, if any.
func (c *Cache) Get(query string) (Place, bool) {
	p, ok := c.entries[query]
	return p, ok
}

// Put records a resolved Place under the original query string.
func (c *Cache) Put(query string, p Place) {
	c.entries[query] = p
}

// Save writes the whole cache back to disk, pretty-printed with sorted keys.
func (c *Cache) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return eris.Wrap(err, "nominatim: create cache dir")
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return eris.Wrap(err, "nominatim: marshal cache")
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return eris.Wrap(err, "nominatim: write cache")
	}
	return nil
}
