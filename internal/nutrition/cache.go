package nutrition

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cockroachdb/pebble"
)

// PebbleCache keeps nutrition responses on disk keyed by search term.
type PebbleCache struct {
	db  *pebble.DB
	ttl time.Duration
	now func() time.Time
}

type cacheEntry struct {
	FetchedAt int64           `json:"fetchedAt"`
	Body      json.RawMessage `json:"body"`
}

// OpenPebbleCache opens (or creates) the cache directory. A ttl <= 0 keeps
// entries forever.
func OpenPebbleCache(dir string, ttl time.Duration) (*PebbleCache, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleCache{db: d, ttl: ttl, now: time.Now}, nil
}

func (p *PebbleCache) Close() error { return p.db.Close() }

func cacheKey(searchTerm string) []byte {
	return []byte("fruit/" + searchTerm)
}

func (p *PebbleCache) Get(searchTerm string) ([]byte, bool) {
	v, closer, err := p.db.Get(cacheKey(searchTerm))
	if err != nil {
		return nil, false
	}
	defer closer.Close()

	var e cacheEntry
	if err := json.Unmarshal(v, &e); err != nil {
		return nil, false
	}
	if p.ttl > 0 && p.now().Sub(time.Unix(0, e.FetchedAt)) > p.ttl {
		return nil, false
	}
	return append([]byte(nil), e.Body...), true
}

func (p *PebbleCache) Put(searchTerm string, body []byte) error {
	b, err := json.Marshal(cacheEntry{FetchedAt: p.now().UnixNano(), Body: body})
	if err != nil {
		return err
	}
	return p.db.Set(cacheKey(searchTerm), b, pebble.Sync)
}
