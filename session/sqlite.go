package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteCache backs the session store with a local SQLite file for
// single-binary deployments.
type SQLiteCache struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS agent_kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Close() error { return c.db.Close() }

func (c *SQLiteCache) Set(ctx context.Context, key string, val []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO agent_kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, val)
	if err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var val []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM agent_kv WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return val, true, nil
}

func (c *SQLiteCache) Del(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM agent_kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("sqlite del %s: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT key FROM agent_kv WHERE key LIKE ? || '%'`, prefix)
	if err != nil {
		return nil, fmt.Errorf("sqlite keys %s: %w", prefix, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("sqlite keys %s: %w", prefix, err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
