package types

import "github.com/cockroachdb/errors"

// Graph is the storage contract every kgraph backend satisfies: a directed
// graph of numbered nodes with optional names, unary flags, and edges labelled
// by the id of another node. The kb package assumes nothing else about the
// representation.
//
// Node ids are assigned monotonically by AddNode and are never reused. Lists
// of ids are returned in ascending order.
type Graph interface {
	// AddNode allocates a new, unnamed node.
	AddNode() (NodeID, error)

	// HasNode reports whether id was allocated by this graph.
	HasNode(id NodeID) (bool, error)

	// Size returns the number of nodes.
	Size() (int, error)

	// SetNodeName overwrites the node's name and updates the name index.
	SetNodeName(id NodeID, name string) error

	// NodeName returns the node's name; ok is false for unnamed nodes.
	NodeName(id NodeID) (name string, ok bool, err error)

	// SetNodeValue overwrites the literal value carried by a data node.
	SetNodeValue(id NodeID, value string) error

	// NodeValue returns the node's value; ok is false when none was set.
	NodeValue(id NodeID) (value string, ok bool, err error)

	// Lookup returns every node carrying name. Names are not unique.
	Lookup(name string) ([]NodeID, error)

	// AddFlag attaches a unary flag to a node. Idempotent.
	AddFlag(id, flag NodeID) error

	// HasFlag reports whether the flag is set directly on the node.
	HasFlag(id, flag NodeID) (bool, error)

	// AddEdge adds a labelled edge. Adding an existing edge is a no-op.
	AddEdge(from, edgeType, to NodeID) error

	// RemoveEdge removes a labelled edge if present.
	RemoveEdge(from, edgeType, to NodeID) error

	// HasEdge reports whether the labelled edge exists.
	HasEdge(from, edgeType, to NodeID) (bool, error)

	// OutgoingNodes returns the targets of edges of edgeType leaving from.
	OutgoingNodes(from, edgeType NodeID) ([]NodeID, error)

	// IncomingNodes returns the sources of edges of edgeType entering to.
	IncomingNodes(to, edgeType NodeID) ([]NodeID, error)

	// Edges returns every edge, ordered by (From, Type, To).
	Edges() ([]Edge, error)

	// Update runs fn as one unit of work. When fn returns an error, every
	// write made on the graph during the call is undone and the error is
	// returned. Nested calls join the enclosing unit.
	Update(fn func() error) error
}

// Backend is a Graph with an attach/detach lifecycle. Callers attach to a
// backend, use it as a Graph, and detach when done.
type Backend interface {
	Graph

	// Attach connects the backend to the storage described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, graph operations return ErrDetached.
	Detach() error
}

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("graph backend is detached")
	ErrAlreadyAttached = errors.New("graph backend is already attached")
)

// Knowledge graph errors.
var (
	ErrNotFound                = errors.New("node not found")
	ErrInvalidOwner            = errors.New("invalid relation owner")
	ErrInvalidValue            = errors.New("invalid attribute value")
	ErrTypeConstraintViolation = errors.New("type constraint violation")
	ErrCyclicInheritance       = errors.New("cyclic inheritance")
	ErrAmbiguousName           = errors.New("ambiguous name")
	ErrBootstrapMismatch       = errors.New("graph was not seeded by kgraph")
)
