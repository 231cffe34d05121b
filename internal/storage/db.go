package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"smoothies/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS fruit_options (
  fruit_name TEXT PRIMARY KEY,
  search_on TEXT,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ingredients TEXT NOT NULL,
  canonical TEXT NOT NULL,
  canonical_rule TEXT NOT NULL,
  name_on_order TEXT NOT NULL,
  byte_length INTEGER NOT NULL,
  hex TEXT NOT NULL,
  hash64 INTEGER,
  order_filled INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertFruitOptions(entries []internal.CatalogEntry) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO fruit_options (fruit_name, search_on, position) VALUES (?, ?, ?)
ON CONFLICT(fruit_name) DO UPDATE SET
  search_on=COALESCE(excluded.search_on, fruit_options.search_on),
  position=excluded.position
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.Label, e.SearchTerm, e.Position); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) CountFruitOptions() (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM fruit_options`).Scan(&n)
	return n, err
}

// FillMissingSearchTerms copies fruit_name into every NULL search_on.
func (d *DB) FillMissingSearchTerms() (int64, error) {
	res, err := d.conn.Exec(`UPDATE fruit_options SET search_on = fruit_name WHERE search_on IS NULL`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) SetSearchTerm(label, searchTerm string) error {
	res, err := d.conn.Exec(`UPDATE fruit_options SET search_on = ? WHERE fruit_name = ?`, searchTerm, label)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("fruit option not found: %s", label)
	}
	return nil
}

func (d *DB) ListFruitOptions() ([]internal.CatalogEntry, error) {
	rows, err := d.conn.Query(`SELECT fruit_name, search_on, position FROM fruit_options ORDER BY position ASC, fruit_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CatalogEntry
	for rows.Next() {
		var e internal.CatalogEntry
		if err := rows.Scan(&e.Label, &e.SearchTerm, &e.Position); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *DB) GetFruitOption(label string) (*internal.CatalogEntry, error) {
	var e internal.CatalogEntry
	err := d.conn.QueryRow(`SELECT fruit_name, search_on, position FROM fruit_options WHERE fruit_name = ?`, label).
		Scan(&e.Label, &e.SearchTerm, &e.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// InsertOrder appends an order row. Orders are never updated or deleted here.
func (d *DB) InsertOrder(rec internal.OrderRecord) (int64, error) {
	result, err := d.conn.Exec(`
INSERT INTO orders (ingredients, canonical, canonical_rule, name_on_order, byte_length, hex, hash64)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, rec.Ingredients, rec.Canonical, rec.Rule, rec.NameOnOrder, rec.ByteLength, rec.Hex, rec.Hash64)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) ListOrders(limit int) ([]internal.OrderRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.conn.Query(`
SELECT id, ingredients, canonical, canonical_rule, name_on_order, byte_length, hex, hash64, order_filled, created_at
FROM orders ORDER BY id ASC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.OrderRecord
	for rows.Next() {
		var r internal.OrderRecord
		if err := rows.Scan(&r.ID, &r.Ingredients, &r.Canonical, &r.Rule, &r.NameOnOrder, &r.ByteLength, &r.Hex, &r.Hash64, &r.OrderFilled, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
