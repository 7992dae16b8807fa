// Package paths resolves the kgraph configuration and data directories.
// Each resolver follows the same precedence: explicit flag, then
// environment, then the platform default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "kgraph"

// ConfigFileName is the configuration file inside the config directory.
const ConfigFileName = "config.yaml"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "KGRAPH_CONFIG_DIR"
	EnvDataDir   = "KGRAPH_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// userDir returns $<xdgEnv>/kgraph on Linux, falling back to
// ~/<linuxFallback...>/kgraph, and os.UserConfigDir()/kgraph elsewhere.
func userDir(xdgEnv string, linuxFallback ...string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, linuxFallback...)
	return filepath.Join(append(parts, AppName)...), nil
}

// DefaultConfigDir returns the platform-specific configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/kgraph (fallback ~/.config/kgraph)
// macOS:   ~/Library/Application Support/kgraph
// Windows: %APPDATA%/kgraph
func DefaultConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific data directory.
//
// Linux:   $XDG_DATA_HOME/kgraph (fallback ~/.local/share/kgraph)
// macOS and Windows: same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	return userDir("XDG_DATA_HOME", ".local", "share")
}

// ResolveConfigDir returns flag, else $KGRAPH_CONFIG_DIR, else
// DefaultConfigDir(). Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns flag, else the data_dir from config.yaml, else
// $KGRAPH_DATA_DIR, else DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, v := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if v != "" {
			return filepath.Abs(v)
		}
	}
	return DefaultDataDir()
}
