package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Project is the decoded shape of a vexc.yaml project file: where sources
// live, where build output goes, and which interface-cache backend to
// use. Grounded on the teacher's docs/config packages, which likewise
// decode their one structured non-JSON file with yaml.v3.
type Project struct {
	SourceRoot   string     `yaml:"sourceRoot"`
	BuildDir     string     `yaml:"buildDir"`
	OptLevel     int        `yaml:"optLevel"`
	CacheBackend string     `yaml:"cacheBackend"`
	Cache        CacheConf  `yaml:"cache"`
	Telemetry    Telemetry  `yaml:"telemetry"`
}

// CacheConf configures whichever buildcache backend CacheBackend selects.
type CacheConf struct {
	SQLitePath string `yaml:"sqlitePath"`
	RedisAddr  string `yaml:"redisAddr"`
	PostgresDSN string `yaml:"postgresDSN"`
	MySQLDSN   string `yaml:"mysqlDSN"`
}

// Telemetry configures compile-phase metrics and tracing export.
type Telemetry struct {
	MetricsAddr string `yaml:"metricsAddr"`
	OTLPEndpoint string `yaml:"otlpEndpoint"`
	Stdout      bool   `yaml:"stdout"`
}

// Defaults returns a Project populated with package-level defaults, ready
// to be overlaid by a decoded vexc.yaml.
func Defaults() Project {
	return Project{
		BuildDir:     DefaultBuildDir,
		OptLevel:     DefaultOptLevel,
		CacheBackend: DefaultCacheBackend,
	}
}

// Load reads and decodes a vexc.yaml project file at path, overlaying it
// onto Defaults(). A missing file is not an error: the defaults are
// returned unchanged.
func Load(path string) (Project, error) {
	p := Defaults()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return p, nil
}
