package introspection

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const ddlCache = `
CREATE TABLE IF NOT EXISTS introspection_snapshots (
  key        TEXT PRIMARY KEY,
  payload    TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
`

// Cache persists introspection snapshots in a SQLite file so a process can
// skip catalog queries at startup.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// OpenCache opens (creating if needed) the snapshot cache at path.
func OpenCache(ctx context.Context, path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open introspection cache: %w", err)
	}
	if _, err := db.ExecContext(ctx, ddlCache); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create introspection cache: %w", err)
	}
	return &Cache{db: db, now: time.Now}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// CacheKey identifies a snapshot by database identity and exposed namespaces.
func CacheKey(database string, namespaces []string) string {
	ns := append([]string(nil), namespaces...)
	sort.Strings(ns)
	sum := sha256.Sum256([]byte(database + "\x00" + strings.Join(ns, ",")))
	return hex.EncodeToString(sum[:])
}

// Get returns the snapshot stored under key. The boolean is false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (*Result, bool, error) {
	var payload string
	err := c.db.QueryRowContext(ctx, "SELECT payload FROM introspection_snapshots WHERE key = ?", key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read introspection cache: %w", err)
	}
	var r Result
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, false, fmt.Errorf("decode introspection cache: %w", err)
	}
	return r.Index(), true, nil
}

// Put stores r under key, replacing any previous snapshot.
func (c *Cache) Put(ctx context.Context, key string, r *Result) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode introspection cache: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		"INSERT INTO introspection_snapshots(key, payload, created_at) VALUES(?, ?, ?) ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at",
		key, string(b), c.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("write introspection cache: %w", err)
	}
	return nil
}
