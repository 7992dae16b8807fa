// Package memory implements the in-memory kgraph backend. It is the default
// backend for embedded use and the reference the persistent backends are
// tested against. It performs no locking; each goroutine owns its Graph.
package memory

import (
	"cmp"
	"slices"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

var _ types.Backend = (*Graph)(nil)

type edgeKey struct {
	node     types.NodeID
	edgeType types.NodeID
}

// Graph is an in-memory types.Backend.
type Graph struct {
	detached bool

	// undo holds the inverse of every write made inside Update, newest
	// last; nil outside a unit.
	inUpdate bool
	undo     []func()

	names    []string
	hasName  []bool
	values   map[types.NodeID]string
	byName   map[string][]types.NodeID
	flags    map[types.NodeID][]types.NodeID
	outgoing map[edgeKey][]types.NodeID
	incoming map[edgeKey][]types.NodeID
}

// New returns an empty, attached graph.
func New() *Graph {
	g := &Graph{}
	g.reset()
	return g
}

func (g *Graph) reset() {
	g.names = nil
	g.hasName = nil
	g.values = make(map[types.NodeID]string)
	g.byName = make(map[string][]types.NodeID)
	g.flags = make(map[types.NodeID][]types.NodeID)
	g.outgoing = make(map[edgeKey][]types.NodeID)
	g.incoming = make(map[edgeKey][]types.NodeID)
}

// Attach re-initializes a detached graph. The memory backend ignores
// DataDir and SyncStrategy.
func (g *Graph) Attach(config types.Config) error {
	if !g.detached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	g.reset()
	g.detached = false
	return nil
}

// Detach drops the graph contents. Idempotent.
func (g *Graph) Detach() error {
	if g.detached {
		return nil
	}
	g.reset()
	g.detached = true
	return nil
}

// Update runs fn and rolls back its writes if it fails.
func (g *Graph) Update(fn func() error) error {
	if g.detached {
		return types.ErrDetached
	}
	if g.inUpdate {
		return fn()
	}
	g.inUpdate = true
	err := fn()
	undo := g.undo
	g.inUpdate, g.undo = false, nil
	if err != nil {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}
	return err
}

// record registers the inverse of a write made inside Update.
func (g *Graph) record(inverse func()) {
	if g.inUpdate {
		g.undo = append(g.undo, inverse)
	}
}

func (g *Graph) exists(id types.NodeID) bool {
	return uint64(id) < uint64(len(g.names))
}

// AddNode allocates the next id.
func (g *Graph) AddNode() (types.NodeID, error) {
	if g.detached {
		return 0, types.ErrDetached
	}
	id := types.NodeID(len(g.names))
	g.names = append(g.names, "")
	g.hasName = append(g.hasName, false)
	g.record(func() {
		g.setName(id, "", false)
		g.names = g.names[:id]
		g.hasName = g.hasName[:id]
		delete(g.values, id)
	})
	return id, nil
}

// HasNode reports whether id was allocated.
func (g *Graph) HasNode(id types.NodeID) (bool, error) {
	if g.detached {
		return false, types.ErrDetached
	}
	return g.exists(id), nil
}

// Size returns the node count.
func (g *Graph) Size() (int, error) {
	if g.detached {
		return 0, types.ErrDetached
	}
	return len(g.names), nil
}

// SetNodeName overwrites the node's name.
func (g *Graph) SetNodeName(id types.NodeID, name string) error {
	if g.detached {
		return types.ErrDetached
	}
	if !g.exists(id) {
		return types.ErrNotFound
	}
	oldName, had := g.names[id], g.hasName[id]
	g.record(func() { g.setName(id, oldName, had) })
	g.setName(id, name, true)
	return nil
}

// setName moves id in the name index. has false leaves it unnamed.
func (g *Graph) setName(id types.NodeID, name string, has bool) {
	if g.hasName[id] {
		old := g.names[id]
		g.byName[old] = remove(g.byName[old], id)
		if len(g.byName[old]) == 0 {
			delete(g.byName, old)
		}
	}
	g.names[id] = name
	g.hasName[id] = has
	if has {
		g.byName[name] = insert(g.byName[name], id)
	}
}

// NodeName returns the node's name.
func (g *Graph) NodeName(id types.NodeID) (string, bool, error) {
	if g.detached {
		return "", false, types.ErrDetached
	}
	if !g.exists(id) {
		return "", false, types.ErrNotFound
	}
	return g.names[id], g.hasName[id], nil
}

// SetNodeValue overwrites the node's value.
func (g *Graph) SetNodeValue(id types.NodeID, value string) error {
	if g.detached {
		return types.ErrDetached
	}
	if !g.exists(id) {
		return types.ErrNotFound
	}
	old, had := g.values[id]
	g.record(func() {
		if had {
			g.values[id] = old
		} else {
			delete(g.values, id)
		}
	})
	g.values[id] = value
	return nil
}

// NodeValue returns the node's value.
func (g *Graph) NodeValue(id types.NodeID) (string, bool, error) {
	if g.detached {
		return "", false, types.ErrDetached
	}
	if !g.exists(id) {
		return "", false, types.ErrNotFound
	}
	v, ok := g.values[id]
	return v, ok, nil
}

// Lookup returns all nodes with the given name.
func (g *Graph) Lookup(name string) ([]types.NodeID, error) {
	if g.detached {
		return nil, types.ErrDetached
	}
	return slices.Clone(g.byName[name]), nil
}

// AddFlag sets a flag on a node.
func (g *Graph) AddFlag(id, flag types.NodeID) error {
	if g.detached {
		return types.ErrDetached
	}
	if _, found := slices.BinarySearch(g.flags[id], flag); found {
		return nil
	}
	g.flags[id] = insert(g.flags[id], flag)
	g.record(func() { g.flags[id] = remove(g.flags[id], flag) })
	return nil
}

// HasFlag reports whether the flag is set on the node.
func (g *Graph) HasFlag(id, flag types.NodeID) (bool, error) {
	if g.detached {
		return false, types.ErrDetached
	}
	_, found := slices.BinarySearch(g.flags[id], flag)
	return found, nil
}

// AddEdge adds a labelled edge.
func (g *Graph) AddEdge(from, edgeType, to types.NodeID) error {
	if g.detached {
		return types.ErrDetached
	}
	if g.hasEdge(from, edgeType, to) {
		return nil
	}
	g.link(from, edgeType, to)
	g.record(func() { g.unlink(from, edgeType, to) })
	return nil
}

// RemoveEdge removes a labelled edge.
func (g *Graph) RemoveEdge(from, edgeType, to types.NodeID) error {
	if g.detached {
		return types.ErrDetached
	}
	if !g.hasEdge(from, edgeType, to) {
		return nil
	}
	g.unlink(from, edgeType, to)
	g.record(func() { g.link(from, edgeType, to) })
	return nil
}

func (g *Graph) hasEdge(from, edgeType, to types.NodeID) bool {
	_, found := slices.BinarySearch(g.outgoing[edgeKey{from, edgeType}], to)
	return found
}

func (g *Graph) link(from, edgeType, to types.NodeID) {
	out := edgeKey{from, edgeType}
	in := edgeKey{to, edgeType}
	g.outgoing[out] = insert(g.outgoing[out], to)
	g.incoming[in] = insert(g.incoming[in], from)
}

func (g *Graph) unlink(from, edgeType, to types.NodeID) {
	out := edgeKey{from, edgeType}
	in := edgeKey{to, edgeType}
	g.outgoing[out] = remove(g.outgoing[out], to)
	g.incoming[in] = remove(g.incoming[in], from)
	if len(g.outgoing[out]) == 0 {
		delete(g.outgoing, out)
	}
	if len(g.incoming[in]) == 0 {
		delete(g.incoming, in)
	}
}

// HasEdge reports whether the labelled edge exists.
func (g *Graph) HasEdge(from, edgeType, to types.NodeID) (bool, error) {
	if g.detached {
		return false, types.ErrDetached
	}
	return g.hasEdge(from, edgeType, to), nil
}

// OutgoingNodes returns edge targets in ascending order.
func (g *Graph) OutgoingNodes(from, edgeType types.NodeID) ([]types.NodeID, error) {
	if g.detached {
		return nil, types.ErrDetached
	}
	return slices.Clone(g.outgoing[edgeKey{from, edgeType}]), nil
}

// IncomingNodes returns edge sources in ascending order.
func (g *Graph) IncomingNodes(to, edgeType types.NodeID) ([]types.NodeID, error) {
	if g.detached {
		return nil, types.ErrDetached
	}
	return slices.Clone(g.incoming[edgeKey{to, edgeType}]), nil
}

// Edges returns every edge ordered by (From, Type, To).
func (g *Graph) Edges() ([]types.Edge, error) {
	if g.detached {
		return nil, types.ErrDetached
	}
	var edges []types.Edge
	for k, targets := range g.outgoing {
		for _, to := range targets {
			edges = append(edges, types.Edge{From: k.node, Type: k.edgeType, To: to})
		}
	}
	slices.SortFunc(edges, compareEdges)
	return edges, nil
}

func compareEdges(a, b types.Edge) int {
	if c := cmp.Compare(a.From, b.From); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Type, b.Type); c != 0 {
		return c
	}
	return cmp.Compare(a.To, b.To)
}

// insert adds id to a sorted slice, keeping set semantics.
func insert(ids []types.NodeID, id types.NodeID) []types.NodeID {
	i, found := slices.BinarySearch(ids, id)
	if found {
		return ids
	}
	return slices.Insert(ids, i, id)
}

func remove(ids []types.NodeID, id types.NodeID) []types.NodeID {
	i, found := slices.BinarySearch(ids, id)
	if !found {
		return ids
	}
	return slices.Delete(ids, i, i+1)
}
