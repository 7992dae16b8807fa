package cli

import (
	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/kgraph/internal/logging"
	"github.com/mesh-intelligence/kgraph/pkg/graph"
	"github.com/mesh-intelligence/kgraph/pkg/kb"
	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// openKB attaches the configured backend and opens a knowledge base on it.
// The caller must call the returned close function.
func openKB() (*kb.KB, func() error, error) {
	cfg, _, err := resolveConfig()
	if err != nil {
		return nil, nil, err
	}
	return openKBWith(cfg)
}

func openKBWith(cfg types.Config) (*kb.KB, func() error, error) {
	g, err := graph.Open(cfg, logging.Logger)
	if err != nil {
		return nil, nil, err
	}
	k, err := kb.Initialize(g,
		kb.WithLogger(logging.Named("kb")),
		kb.WithCacheSize(cfg.GetCacheSize()))
	if err != nil {
		_ = g.Detach()
		return nil, nil, errors.Wrap(err, "open knowledge base")
	}
	return k, g.Detach, nil
}

// withKB runs fn against the configured knowledge base and detaches
// afterwards, reporting the first error.
func withKB(fn func(k *kb.KB) error) (err error) {
	k, closeFn, err := openKB()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "detach")
		}
	}()
	return fn(k)
}

// resolveRef turns a command-line reference into a node id. Decimal
// strings are ids; anything else is looked up as a unique name.
func resolveRef(k *kb.KB, ref string) (types.NodeID, error) {
	if id, err := types.ParseNodeID(ref); err == nil {
		if _, err := k.GetNode(id); err != nil {
			return 0, err
		}
		return id, nil
	}
	return k.FindUnique(ref)
}

func resolveRefs(k *kb.KB, refs ...string) ([]types.NodeID, error) {
	ids := make([]types.NodeID, len(refs))
	for i, ref := range refs {
		id, err := resolveRef(k, ref)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
