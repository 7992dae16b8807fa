package cli

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/kgraph/internal/paths"
	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// Config keys in config.yaml.
const (
	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeySyncStrategy = "sync_strategy"
	cfgKeyCacheSize    = "cache_size"

	defaultBackend = types.BackendSQLite
)

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Backend      string `yaml:"backend"`
	DataDir      string `yaml:"data_dir,omitempty"`
	SyncStrategy string `yaml:"sync_strategy,omitempty"`
	CacheSize    int    `yaml:"cache_size,omitempty"`
}

// loadConfig reads config.yaml from configDir. A missing file is not an
// error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetConfigFile(filepath.Join(configDir, paths.ConfigFileName))
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, errors.Wrap(err, "read config")
	}
	return v, nil
}

// resolveConfig combines flags, config.yaml and the environment into a
// backend configuration.
func resolveConfig() (types.Config, string, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return types.Config{}, "", errors.Wrap(err, "resolve config dir")
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, "", err
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, "", errors.Wrap(err, "resolve data dir")
	}

	backend := flags.backend
	if backend == "" {
		backend = v.GetString(cfgKeyBackend)
	}

	cfg := types.Config{
		Backend:      backend,
		DataDir:      dataDir,
		SyncStrategy: v.GetString(cfgKeySyncStrategy),
		CacheSize:    v.GetInt(cfgKeyCacheSize),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, "", err
	}
	return cfg, configDir, nil
}

// writeConfigIfMissing creates config.yaml recording cfg. An existing file
// is left untouched.
func writeConfigIfMissing(configDir string, cfg types.Config) (bool, error) {
	path := filepath.Join(configDir, paths.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, errors.Wrap(err, "create config directory")
	}

	data, err := yaml.Marshal(&configFile{
		Backend:      cfg.Backend,
		DataDir:      cfg.DataDir,
		SyncStrategy: cfg.SyncStrategy,
		CacheSize:    cfg.CacheSize,
	})
	if err != nil {
		return false, errors.Wrap(err, "marshal config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, errors.Wrap(err, "write config")
	}
	return true, nil
}
