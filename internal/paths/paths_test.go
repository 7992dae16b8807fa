package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform swaps the platform hooks for the duration of a test.
func fakePlatform(t *testing.T, goos, home, userConfig string) {
	t.Helper()
	if filepath.Separator != '/' {
		t.Skip("expectations use slash-separated paths")
	}
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	platformDir.goos = goos
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return userConfig, nil }
}

func TestDefaultDirs(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		xdgConfig  string
		xdgData    string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux with XDG",
			goos:       "linux",
			xdgConfig:  "/xdg/config",
			xdgData:    "/xdg/data",
			wantConfig: "/xdg/config/kgraph",
			wantData:   "/xdg/data/kgraph",
		},
		{
			name:       "linux fallback",
			goos:       "linux",
			wantConfig: "/home/u/.config/kgraph",
			wantData:   "/home/u/.local/share/kgraph",
		},
		{
			name:       "darwin",
			goos:       "darwin",
			xdgConfig:  "/ignored",
			wantConfig: "/home/u/Library/Application Support/kgraph",
			wantData:   "/home/u/Library/Application Support/kgraph",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakePlatform(t, tt.goos, "/home/u", "/home/u/Library/Application Support")
			t.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)
			t.Setenv("XDG_DATA_HOME", tt.xdgData)

			got, err := DefaultConfigDir()
			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, got)

			got, err = DefaultDataDir()
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, got)
		})
	}
}

func TestResolveConfigDir(t *testing.T) {
	fakePlatform(t, "linux", "/home/u", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{"flag wins over env", "/explicit/config", "/env/config", "/explicit/config"},
		{"env wins when flag empty", "", "/env/config", "/env/config"},
		{"platform default when both empty", "", "", "/home/u/.config/kgraph"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	fakePlatform(t, "linux", "/home/u", "")
	t.Setenv("XDG_DATA_HOME", "")

	tests := []struct {
		name        string
		flag        string
		configValue string
		envVal      string
		want        string
	}{
		{"flag wins over all", "/flag/data", "/config/data", "/env/data", "/flag/data"},
		{"config.yaml wins over env", "", "/config/data", "/env/data", "/config/data"},
		{"env wins when flag and config empty", "", "", "/env/data", "/env/data"},
		{"platform default when all empty", "", "", "", "/home/u/.local/share/kgraph"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_RelativeBecomesAbsolute(t *testing.T) {
	t.Setenv(EnvConfigDir, "relative/env")
	got, err := ResolveConfigDir("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)

	t.Setenv(EnvDataDir, "")
	got, err = ResolveDataDir("", "relative/config")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
}
