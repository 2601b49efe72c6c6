package server

import (
	"encoding/json"
	"errors"

	"github.com/cockroachdb/pebble"

	"example.com/pdbgate/internal/report"
)

// Cache maps content digests to finished extractions so repeated requests
// for the same bytes skip the parse entirely. A nil *Cache disables
// caching; every lookup misses and every store is a no-op.
type Cache struct {
	db *pebble.DB
}

// OpenCache opens (or creates) the digest cache at dir.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache dir is empty")
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Get returns the cached extraction for digest, if any. Undecodable
// entries count as misses.
func (c *Cache) Get(digest string) (report.Extraction, bool) {
	if c == nil || digest == "" {
		return report.Extraction{}, false
	}
	data, closer, err := c.db.Get([]byte(digest))
	if err != nil {
		return report.Extraction{}, false
	}
	defer closer.Close()
	var ext report.Extraction
	if err := json.Unmarshal(data, &ext); err != nil {
		return report.Extraction{}, false
	}
	return ext, true
}

// Put stores the extraction under its content digest.
func (c *Cache) Put(digest string, ext report.Extraction) error {
	if c == nil || digest == "" {
		return nil
	}
	data, err := json.Marshal(ext)
	if err != nil {
		return err
	}
	return c.db.Set([]byte(digest), data, pebble.NoSync)
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}
