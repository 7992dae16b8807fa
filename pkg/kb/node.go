package kb

import (
	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// CreateNode allocates a node, naming it with the first name given.
func (k *KB) CreateNode(name ...string) (types.NodeID, error) {
	if len(name) == 0 {
		id, err := k.g.AddNode()
		return id, errors.Wrap(err, "creating node")
	}
	return k.atomicID(func() (types.NodeID, error) {
		return k.createNode(name[0])
	})
}

func (k *KB) createNode(name string) (types.NodeID, error) {
	id, err := k.g.AddNode()
	if err != nil {
		return 0, errors.Wrap(err, "creating node")
	}
	if err := k.g.SetNodeName(id, name); err != nil {
		return 0, errors.Wrapf(err, "naming node %d", id)
	}
	return id, nil
}

// GetNode returns the node with the given id.
func (k *KB) GetNode(id types.NodeID) (types.Node, error) {
	if err := k.exists(id); err != nil {
		return types.Node{}, err
	}
	name, _, err := k.g.NodeName(id)
	if err != nil {
		return types.Node{}, err
	}
	return types.Node{ID: id, Name: name}, nil
}

// Label returns the node's name, or its id for unnamed nodes.
func (k *KB) Label(id types.NodeID) string {
	n, err := k.GetNode(id)
	if err != nil {
		return id.String()
	}
	return n.Label()
}

// FindByName returns every node carrying name, in creation order.
func (k *KB) FindByName(name string) ([]types.NodeID, error) {
	return k.g.Lookup(name)
}

// FindUnique returns the single node carrying name.
func (k *KB) FindUnique(name string) (types.NodeID, error) {
	ids, err := k.g.Lookup(name)
	if err != nil {
		return 0, err
	}
	switch len(ids) {
	case 0:
		return 0, errors.Wrapf(types.ErrNotFound, "name %q", name)
	case 1:
		return ids[0], nil
	default:
		return 0, errors.WithHint(
			errors.Wrapf(types.ErrAmbiguousName, "name %q matches %d nodes", name, len(ids)),
			"refer to the node by id")
	}
}

// SetName overwrites the node's name.
func (k *KB) SetName(id types.NodeID, name string) error {
	if err := k.exists(id); err != nil {
		return err
	}
	return k.g.SetNodeName(id, name)
}

// Rename renames the single node currently called oldName.
func (k *KB) Rename(oldName, newName string) (types.NodeID, error) {
	id, err := k.FindUnique(oldName)
	if err != nil {
		return 0, err
	}
	return id, k.g.SetNodeName(id, newName)
}

// Size returns the number of nodes, bootstrap archetypes included.
func (k *KB) Size() (int, error) {
	return k.g.Size()
}
