package types

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "valid sqlite config",
			config: Config{Backend: BackendSQLite, DataDir: "/tmp/data"},
		},
		{
			name:   "valid badger in-memory config",
			config: Config{Backend: BackendBadger, InMemory: true},
		},
		{
			name:   "memory backend needs no data dir",
			config: Config{Backend: BackendMemory},
		},
		{
			name:   "on_close sync strategy",
			config: Config{Backend: BackendSQLite, SyncStrategy: SyncOnClose},
		},
		{
			name:    "unknown sync strategy",
			config:  Config{Backend: BackendSQLite, SyncStrategy: "batch"},
			wantErr: ErrSyncStrategyUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, SyncImmediate, Config{}.GetSyncStrategy())
	assert.Equal(t, SyncOnClose, Config{SyncStrategy: SyncOnClose}.GetSyncStrategy())

	assert.Equal(t, DefaultCacheSize, Config{}.GetCacheSize())
	assert.Equal(t, 0, Config{CacheSize: -1}.GetCacheSize())
	assert.Equal(t, 16, Config{CacheSize: 16}.GetCacheSize())
}
