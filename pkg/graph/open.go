// Package graph is the public entry point to the kgraph storage backends.
// It exposes factories for each backend while keeping implementations
// internal.
//
// Example:
//
//	g, err := graph.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".kgraph",
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	defer g.Detach()
//	k, err := kb.Initialize(g)
package graph

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/kgraph/internal/badger"
	"github.com/mesh-intelligence/kgraph/internal/memory"
	"github.com/mesh-intelligence/kgraph/internal/sqlite"
	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// NewBackend returns a detached backend for the named backend type.
func NewBackend(name string, logger *zap.SugaredLogger) (types.Backend, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	switch name {
	case types.BackendMemory:
		g := memory.New()
		// A fresh memory graph starts attached; detach so every backend
		// follows the same lifecycle.
		_ = g.Detach()
		return g, nil
	case types.BackendSQLite:
		return sqlite.NewBackend(logger.Named("sqlite")), nil
	case types.BackendBadger:
		return badger.NewBackend(logger.Named("badger")), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, errors.Wrapf(types.ErrBackendUnknown, "backend %q", name)
	}
}

// Open creates the backend named by config and attaches it.
func Open(config types.Config, logger *zap.SugaredLogger) (types.Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	b, err := NewBackend(config.Backend, logger)
	if err != nil {
		return nil, err
	}
	if err := b.Attach(config); err != nil {
		return nil, errors.Wrapf(err, "attaching %s backend", config.Backend)
	}
	return b, nil
}
