package buildcache

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// sqlCache is a Cache backed by a database/sql connection, shared by the
// SQLite, Postgres, and MySQL backends — they differ only in driver name,
// DSN, and placeholder syntax, the way the teacher's pkg/database keeps
// one query shape across SQLiteDB/mysql.go/postgres.go.
type sqlCache struct {
	db        *sql.DB
	driver    string
	tableDDL  string
	upsertSQL string
	selectSQL string
}

const ddlTemplate = `CREATE TABLE IF NOT EXISTS vexc_interface_cache (
	cache_key TEXT PRIMARY KEY,
	data BLOB NOT NULL
)`

// NewSQLite opens (creating if absent) a SQLite-backed interface cache at
// path. An empty path uses an in-memory database, matching the teacher's
// SQLiteDB.Connect default.
func NewSQLite(path string) (Cache, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	return openSQLCache("sqlite", dsn,
		ddlTemplate,
		"INSERT INTO vexc_interface_cache(cache_key, data) VALUES(?, ?) ON CONFLICT(cache_key) DO UPDATE SET data = excluded.data",
		"SELECT data FROM vexc_interface_cache WHERE cache_key = ?")
}

// NewPostgres opens a Postgres-backed interface cache using dsn.
func NewPostgres(dsn string) (Cache, error) {
	return openSQLCache("postgres", dsn,
		`CREATE TABLE IF NOT EXISTS vexc_interface_cache (cache_key TEXT PRIMARY KEY, data BYTEA NOT NULL)`,
		"INSERT INTO vexc_interface_cache(cache_key, data) VALUES($1, $2) ON CONFLICT(cache_key) DO UPDATE SET data = excluded.data",
		"SELECT data FROM vexc_interface_cache WHERE cache_key = $1")
}

// NewMySQL opens a MySQL-backed interface cache using dsn.
func NewMySQL(dsn string) (Cache, error) {
	return openSQLCache("mysql", dsn,
		`CREATE TABLE IF NOT EXISTS vexc_interface_cache (cache_key VARCHAR(255) PRIMARY KEY, data BLOB NOT NULL)`,
		"INSERT INTO vexc_interface_cache(cache_key, data) VALUES(?, ?) ON DUPLICATE KEY UPDATE data = VALUES(data)",
		"SELECT data FROM vexc_interface_cache WHERE cache_key = ?")
}

func openSQLCache(driver, dsn, ddl, upsert, sel string) (Cache, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("buildcache: opening %s: %w", driver, err)
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("buildcache: creating table on %s: %w", driver, err)
	}
	return &sqlCache{db: db, driver: driver, tableDDL: ddl, upsertSQL: upsert, selectSQL: sel}, nil
}

func (c *sqlCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx, c.selectSQL, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("buildcache: %s get: %w", c.driver, err)
	}
	return data, true, nil
}

func (c *sqlCache) Put(ctx context.Context, key string, data []byte) error {
	if _, err := c.db.ExecContext(ctx, c.upsertSQL, key, data); err != nil {
		return fmt.Errorf("buildcache: %s put: %w", c.driver, err)
	}
	return nil
}

func (c *sqlCache) Close() error { return c.db.Close() }
