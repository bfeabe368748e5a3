package buildcache

import (
	"fmt"

	"github.com/vexlang/vexc/internal/config"
)

// Open selects and opens the Cache backend named by proj.CacheBackend,
// using the matching connection settings from proj.Cache.
func Open(proj config.Project) (Cache, error) {
	switch Backend(proj.CacheBackend) {
	case "", BackendSQLite:
		return NewSQLite(proj.Cache.SQLitePath)
	case BackendRedis:
		return NewRedis(proj.Cache.RedisAddr)
	case BackendPostgres:
		return NewPostgres(proj.Cache.PostgresDSN)
	case BackendMySQL:
		return NewMySQL(proj.Cache.MySQLDSN)
	default:
		return nil, fmt.Errorf("buildcache: unknown backend %q", proj.CacheBackend)
	}
}
