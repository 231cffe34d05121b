package internal

import (
	"encoding/json"
	"strings"
)

type CatalogEntry struct {
	Label      string  `json:"label"`
	SearchTerm *string `json:"searchTerm"`
	Position   int     `json:"position"`
}

// ResolvedSearchTerm is the key used for nutrition lookups; it falls back to
// the display label when no override is set.
func (e CatalogEntry) ResolvedSearchTerm() string {
	if e.SearchTerm != nil && strings.TrimSpace(*e.SearchTerm) != "" {
		return *e.SearchTerm
	}
	return e.Label
}

type OrderRecord struct {
	ID          int64  `json:"id"`
	Ingredients string `json:"ingredients"`
	Canonical   string `json:"canonical"`
	Rule        string `json:"rule"`
	NameOnOrder string `json:"nameOnOrder"`
	ByteLength  int    `json:"byteLength"`
	Hex         string `json:"hex"`
	Hash64      *int64 `json:"hash64"`
	OrderFilled bool   `json:"orderFilled"`
	CreatedAt   string `json:"createdAt"`
}

type NutritionResult struct {
	Label      string          `json:"label"`
	SearchTerm string          `json:"searchTerm"`
	Status     int             `json:"status,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
	Cached     bool            `json:"cached,omitempty"`
	Err        error           `json:"-"`
}

func (r NutritionResult) OK() bool {
	return r.Err == nil
}

// MarshalJSON adds the error text, which json cannot encode from an error value.
func (r NutritionResult) MarshalJSON() ([]byte, error) {
	type alias NutritionResult
	out := struct {
		alias
		Error string `json:"error,omitempty"`
	}{alias: alias(r)}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

type OrderEvent struct {
	OrderID     int64  `json:"orderId"`
	NameOnOrder string `json:"nameOnOrder"`
	Ingredients string `json:"ingredients"`
	Canonical   string `json:"canonical"`
	Rule        string `json:"rule"`
	ByteLength  int    `json:"byteLength"`
	Hex         string `json:"hex"`
	Hash64      *int64 `json:"hash64"`
	SubmittedAt string `json:"submittedAt"`
}
