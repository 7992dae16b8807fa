package types

import (
	"fmt"
	"strconv"
)

// NodeID identifies a node within one graph.
type NodeID uint64

// String renders the id in decimal.
func (id NodeID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseNodeID parses a decimal node id.
func ParseNodeID(s string) (NodeID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing node id %q: %w", s, err)
	}
	return NodeID(v), nil
}

// Node is the atomic unit of the graph.
type Node struct {
	ID   NodeID `json:"id"`
	Name string `json:"name,omitempty"`
}

// Label returns the node name, or its id when unnamed.
func (n Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.String()
}

// Edge is a directed, labelled edge. Type is the id of the node naming the
// relation (inherits, owner, value, ...).
type Edge struct {
	From NodeID `json:"from"`
	Type NodeID `json:"type"`
	To   NodeID `json:"to"`
}

// Flag is a unary fact: Node carries Flag.
type Flag struct {
	Node NodeID `json:"node"`
	Flag NodeID `json:"flag"`
}
