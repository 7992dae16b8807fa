// Package kb is the kgraph core: a strongly-typed knowledge graph layered over
// any types.Graph. It provides the relation layer (flags and attributes), the
// archetype inheritance engine with owner/value constraints, the meta layer,
// and the individuation marker.
//
// A KB performs no locking. Each goroutine should own its own KB.
package kb

import (
	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/kgraph/internal/memory"
	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// KB is a knowledge base over a graph.
type KB struct {
	g         types.Graph
	log       *zap.SugaredLogger
	cacheSize int

	// ancestors memoizes AncestorsOf; nil when caching is disabled.
	ancestors *lru.Cache[types.NodeID, []types.NodeID]
}

// Option configures a KB.
type Option func(*KB)

// WithLogger sets the logger used for debug output. A nil logger is ignored.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(k *KB) {
		if logger != nil {
			k.log = logger
		}
	}
}

// WithCacheSize bounds the ancestry cache. Zero or less disables it.
func WithCacheSize(n int) Option {
	return func(k *KB) {
		k.cacheSize = n
	}
}

// Initialize returns a KB over g. An empty graph is seeded with the
// bootstrap archetypes; a populated graph is checked for them and
// ErrBootstrapMismatch is returned if they are not where they belong.
func Initialize(g types.Graph, opts ...Option) (*KB, error) {
	k := &KB{
		g:         g,
		log:       zap.NewNop().Sugar(),
		cacheSize: types.DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.cacheSize > 0 {
		cache, err := lru.New[types.NodeID, []types.NodeID](k.cacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "creating ancestry cache")
		}
		k.ancestors = cache
	}

	size, err := g.Size()
	if err != nil {
		return nil, errors.Wrap(err, "reading graph size")
	}
	if size == 0 {
		if err := k.seed(); err != nil {
			return nil, err
		}
		k.log.Debugw("seeded bootstrap archetypes", "count", len(bootstrapNodes))
		return k, nil
	}
	if err := k.verify(size); err != nil {
		return nil, err
	}
	k.log.Debugw("opened existing graph", "nodes", size)
	return k, nil
}

// New returns a KB over a fresh in-memory graph.
func New(opts ...Option) *KB {
	k, err := Initialize(memory.New(), opts...)
	if err != nil {
		// Seeding an empty in-memory graph has no failure path.
		panic(err)
	}
	return k
}

// Graph returns the underlying graph.
func (k *KB) Graph() types.Graph {
	return k.g
}

// Reset starts over on a fresh in-memory graph holding only the bootstrap
// archetypes. The KB is detached from its previous graph, which keeps its
// content and stays attached; Graph returns the new graph afterwards.
func (k *KB) Reset() error {
	k.g = memory.New()
	k.purge()
	return k.seed()
}

// atomic runs fn as one unit of work on the graph. On failure every write
// fn made is rolled back and the ancestry cache is dropped, since it may
// hold chains computed from rolled-back edges.
func (k *KB) atomic(fn func() error) error {
	err := k.g.Update(fn)
	if err != nil {
		k.purge()
	}
	return err
}

// atomicID is atomic for operations that create a node.
func (k *KB) atomicID(fn func() (types.NodeID, error)) (types.NodeID, error) {
	var id types.NodeID
	err := k.atomic(func() error {
		var err error
		id, err = fn()
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (k *KB) purge() {
	if k.ancestors != nil {
		k.ancestors.Purge()
	}
}

// exists returns ErrNotFound, wrapped with the id, when id is unknown.
func (k *KB) exists(id types.NodeID) error {
	ok, err := k.g.HasNode(id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(types.ErrNotFound, "node %d", id)
	}
	return nil
}

func (k *KB) existsAll(ids ...types.NodeID) error {
	for _, id := range ids {
		if err := k.exists(id); err != nil {
			return err
		}
	}
	return nil
}
