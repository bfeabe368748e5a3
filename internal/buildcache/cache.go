// Package buildcache implements a content-hash keyed cache of serialized
// ClassInterface blobs. The driver looks each source file's hash up and
// reports a hit in its result, but compiles the file either way.
//
// Grounded on the teacher's pkg/database package: a small Cache interface
// with one implementation per driver, all behind database/sql except for
// Redis. vexc.yaml's cacheBackend field (internal/config) selects which
// backend Open wires up.
package buildcache

import "context"

// Cache stores and retrieves serialized ClassInterface bytes keyed by a
// content hash of the compiled source file.
type Cache interface {
	// Get returns the cached interface bytes for key, or ok=false on a
	// cache miss.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Put stores data under key.
	Put(ctx context.Context, key string, data []byte) error
	// Close releases the backend's resources.
	Close() error
}

// Backend names a supported Cache implementation, selected by
// internal/config.Project.CacheBackend.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
)
