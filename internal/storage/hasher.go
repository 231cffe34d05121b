package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"modernc.org/sqlite"
)

// The SQLite store has no built-in HASH(); this registers one so that the
// database owns the algorithm, as it would on a warehouse. hash(text) returns
// xxhash64 of the UTF-8 bytes reinterpreted as a signed 64-bit integer.
// Pointing HASH_QUERY at a different function changes every comparison
// against externally supplied target hashes.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("hash", 1, sqlHash)
}

func sqlHash(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return int64(xxhash.Sum64String(v)), nil
	case []byte:
		return int64(xxhash.Sum64(v)), nil
	default:
		return int64(xxhash.Sum64String(fmt.Sprint(v))), nil
	}
}

// SQLHasher delegates the canonical hash to the database.
type SQLHasher struct {
	conn  *sql.DB
	query string
}

func (d *DB) Hasher(query string) *SQLHasher {
	if strings.TrimSpace(query) == "" {
		query = "SELECT hash(?)"
	}
	return &SQLHasher{conn: d.conn, query: query}
}

func (h *SQLHasher) Hash64(ctx context.Context, s string) (int64, error) {
	var v sql.NullInt64
	if err := h.conn.QueryRowContext(ctx, h.query, s).Scan(&v); err != nil {
		return 0, fmt.Errorf("hash query: %w", err)
	}
	if !v.Valid {
		return 0, errors.New("hash query returned NULL")
	}
	return v.Int64, nil
}
