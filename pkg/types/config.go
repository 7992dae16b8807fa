package types

import "github.com/cockroachdb/errors"

// Config holds backend selection and parameters for Backend.Attach.
type Config struct {
	Backend      string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir      string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	SyncStrategy string `json:"sync_strategy,omitempty" yaml:"sync_strategy,omitempty" mapstructure:"sync_strategy"`
	InMemory     bool   `json:"in_memory,omitempty" yaml:"in_memory,omitempty" mapstructure:"in_memory"`

	// CacheSize bounds the kb ancestry cache. Zero selects DefaultCacheSize;
	// a negative value disables caching.
	CacheSize int `json:"cache_size,omitempty" yaml:"cache_size,omitempty" mapstructure:"cache_size"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Sync strategies control when the SQLite backend rewrites its JSONL files.
const (
	SyncImmediate = "immediate"
	SyncOnClose   = "on_close"
)

// DefaultCacheSize is the number of ancestor chains the kb keeps memoized.
const DefaultCacheSize = 1024

// Config validation errors.
var (
	ErrBackendEmpty        = errors.New("backend must not be empty")
	ErrBackendUnknown      = errors.New("unknown backend")
	ErrSyncStrategyUnknown = errors.New("unknown sync strategy")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
	BackendBadger: true,
}

var knownSyncStrategies = map[string]bool{
	"":            true,
	SyncImmediate: true,
	SyncOnClose:   true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return errors.Wrapf(ErrBackendUnknown, "backend %q", c.Backend)
	}
	if !knownSyncStrategies[c.SyncStrategy] {
		return errors.Wrapf(ErrSyncStrategyUnknown, "sync strategy %q", c.SyncStrategy)
	}
	return nil
}

// GetSyncStrategy returns the effective sync strategy, defaulting to
// SyncImmediate.
func (c Config) GetSyncStrategy() string {
	if c.SyncStrategy == "" {
		return SyncImmediate
	}
	return c.SyncStrategy
}

// GetCacheSize returns the effective ancestry cache size. Zero means caching
// is disabled.
func (c Config) GetCacheSize() int {
	switch {
	case c.CacheSize == 0:
		return DefaultCacheSize
	case c.CacheSize < 0:
		return 0
	default:
		return c.CacheSize
	}
}
