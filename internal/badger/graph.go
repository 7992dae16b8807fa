package badger

import (
	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v4"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// Name records start with a marker byte so an empty name differs from no
// name.
const (
	unnamed byte = 0
	named   byte = 1
)

func nextID(txn *badger.Txn) (types.NodeID, error) {
	item, err := txn.Get(keyNext)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var next types.NodeID
	err = item.Value(func(val []byte) error {
		next = decodeID(val)
		return nil
	})
	return next, err
}

// AddNode allocates the next id.
func (b *Backend) AddNode() (types.NodeID, error) {
	var id types.NodeID
	err := b.update(func(txn *badger.Txn) error {
		next, err := nextID(txn)
		if err != nil {
			return err
		}
		id = next
		if err := txn.Set(key(prefixName, id), []byte{unnamed}); err != nil {
			return err
		}
		return txn.Set(keyNext, encodeID(id+1))
	})
	if err != nil {
		return 0, errors.Wrap(err, "adding node")
	}
	return id, nil
}

// HasNode reports whether id was allocated.
func (b *Backend) HasNode(id types.NodeID) (bool, error) {
	var ok bool
	err := b.view(func(txn *badger.Txn) error {
		next, err := nextID(txn)
		ok = id < next
		return err
	})
	return ok, err
}

// Size returns the node count.
func (b *Backend) Size() (int, error) {
	var size int
	err := b.view(func(txn *badger.Txn) error {
		next, err := nextID(txn)
		size = int(next)
		return err
	})
	return size, err
}

func readName(txn *badger.Txn, id types.NodeID) (name string, ok bool, err error) {
	item, err := txn.Get(key(prefixName, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, errors.Wrapf(types.ErrNotFound, "node %d", id)
	}
	if err != nil {
		return "", false, err
	}
	err = item.Value(func(val []byte) error {
		if len(val) > 0 && val[0] == named {
			name, ok = string(val[1:]), true
		}
		return nil
	})
	return name, ok, err
}

// SetNodeName overwrites the node's name and moves its index entry.
func (b *Backend) SetNodeName(id types.NodeID, name string) error {
	return b.update(func(txn *badger.Txn) error {
		old, had, err := readName(txn, id)
		if err != nil {
			return err
		}
		if had {
			if err := txn.Delete(indexKey(old, id)); err != nil {
				return err
			}
		}
		if err := txn.Set(key(prefixName, id), append([]byte{named}, name...)); err != nil {
			return err
		}
		return txn.Set(indexKey(name, id), nil)
	})
}

// NodeName returns the node's name.
func (b *Backend) NodeName(id types.NodeID) (string, bool, error) {
	var name string
	var ok bool
	err := b.view(func(txn *badger.Txn) error {
		var err error
		name, ok, err = readName(txn, id)
		return err
	})
	return name, ok, err
}

// SetNodeValue overwrites the node's value.
func (b *Backend) SetNodeValue(id types.NodeID, value string) error {
	return b.update(func(txn *badger.Txn) error {
		ok, err := exists(txn, key(prefixName, id))
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(types.ErrNotFound, "node %d", id)
		}
		return txn.Set(key(prefixValue, id), []byte(value))
	})
}

// NodeValue returns the node's value.
func (b *Backend) NodeValue(id types.NodeID) (string, bool, error) {
	var value string
	var ok bool
	err := b.view(func(txn *badger.Txn) error {
		found, err := exists(txn, key(prefixName, id))
		if err != nil {
			return err
		}
		if !found {
			return errors.Wrapf(types.ErrNotFound, "node %d", id)
		}
		item, err := txn.Get(key(prefixValue, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	return value, ok, err
}

// Lookup returns every node with the given name.
func (b *Backend) Lookup(name string) ([]types.NodeID, error) {
	var ids []types.NodeID
	err := b.view(func(txn *badger.Txn) error {
		var err error
		ids, err = scanSuffixes(txn, indexPrefix(name))
		return err
	})
	return ids, err
}

// AddFlag sets a flag on a node.
func (b *Backend) AddFlag(id, flag types.NodeID) error {
	return b.update(func(txn *badger.Txn) error {
		return txn.Set(key(prefixFlag, id, flag), nil)
	})
}

// HasFlag reports whether the flag is set on the node.
func (b *Backend) HasFlag(id, flag types.NodeID) (bool, error) {
	var ok bool
	err := b.view(func(txn *badger.Txn) error {
		var err error
		ok, err = exists(txn, key(prefixFlag, id, flag))
		return err
	})
	return ok, err
}

// AddEdge writes both index entries of an edge.
func (b *Backend) AddEdge(from, edgeType, to types.NodeID) error {
	return b.update(func(txn *badger.Txn) error {
		if err := txn.Set(key(prefixOutgoing, from, edgeType, to), nil); err != nil {
			return err
		}
		return txn.Set(key(prefixIncoming, to, edgeType, from), nil)
	})
}

// RemoveEdge deletes both index entries of an edge.
func (b *Backend) RemoveEdge(from, edgeType, to types.NodeID) error {
	return b.update(func(txn *badger.Txn) error {
		if err := txn.Delete(key(prefixOutgoing, from, edgeType, to)); err != nil {
			return err
		}
		return txn.Delete(key(prefixIncoming, to, edgeType, from))
	})
}

// HasEdge reports whether the edge exists.
func (b *Backend) HasEdge(from, edgeType, to types.NodeID) (bool, error) {
	var ok bool
	err := b.view(func(txn *badger.Txn) error {
		var err error
		ok, err = exists(txn, key(prefixOutgoing, from, edgeType, to))
		return err
	})
	return ok, err
}

// OutgoingNodes returns edge targets in ascending order.
func (b *Backend) OutgoingNodes(from, edgeType types.NodeID) ([]types.NodeID, error) {
	var ids []types.NodeID
	err := b.view(func(txn *badger.Txn) error {
		var err error
		ids, err = scanSuffixes(txn, key(prefixOutgoing, from, edgeType))
		return err
	})
	return ids, err
}

// IncomingNodes returns edge sources in ascending order.
func (b *Backend) IncomingNodes(to, edgeType types.NodeID) ([]types.NodeID, error) {
	var ids []types.NodeID
	err := b.view(func(txn *badger.Txn) error {
		var err error
		ids, err = scanSuffixes(txn, key(prefixIncoming, to, edgeType))
		return err
	})
	return ids, err
}

// Edges returns every edge ordered by (From, Type, To).
func (b *Backend) Edges() ([]types.Edge, error) {
	var edges []types.Edge
	err := b.view(func(txn *badger.Txn) error {
		prefix := []byte{prefixOutgoing}
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().Key()
			if len(k) != 25 {
				continue
			}
			edges = append(edges, types.Edge{
				From: decodeID(k[1:9]),
				Type: decodeID(k[9:17]),
				To:   decodeID(k[17:25]),
			})
		}
		return nil
	})
	return edges, err
}
