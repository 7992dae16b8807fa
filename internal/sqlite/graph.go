package sqlite

import (
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// AddNode inserts the node with the next id and persists nodes.jsonl.
func (b *Backend) AddNode() (types.NodeID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return 0, types.ErrDetached
	}

	var next int64
	if err := b.q().QueryRow(`SELECT COALESCE(MAX(node_id) + 1, 0) FROM nodes`).Scan(&next); err != nil {
		return 0, errors.Wrap(err, "allocating node id")
	}
	if _, err := b.q().Exec(`INSERT INTO nodes (node_id, name) VALUES (?, NULL)`, next); err != nil {
		return 0, errors.Wrap(err, "inserting node")
	}
	if err := b.persist(nodesFile); err != nil {
		return 0, err
	}
	return types.NodeID(next), nil
}

// HasNode reports whether the node exists.
func (b *Backend) HasNode(id types.NodeID) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	return b.exists(`SELECT 1 FROM nodes WHERE node_id = ?`, int64(id))
}

// Size returns the node count.
func (b *Backend) Size() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return 0, types.ErrDetached
	}
	var n int
	if err := b.q().QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SetNodeName overwrites the node's name.
func (b *Backend) SetNodeName(id types.NodeID, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	res, err := b.q().Exec(`UPDATE nodes SET name = ? WHERE node_id = ?`, name, int64(id))
	if err != nil {
		return errors.Wrapf(err, "naming node %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(types.ErrNotFound, "node %d", id)
	}
	return b.persist(nodesFile)
}

// NodeName returns the node's name.
func (b *Backend) NodeName(id types.NodeID) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return "", false, types.ErrDetached
	}
	var name sql.NullString
	err := b.q().QueryRow(`SELECT name FROM nodes WHERE node_id = ?`, int64(id)).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, errors.Wrapf(types.ErrNotFound, "node %d", id)
	}
	if err != nil {
		return "", false, err
	}
	return name.String, name.Valid, nil
}

// SetNodeValue overwrites the node's value.
func (b *Backend) SetNodeValue(id types.NodeID, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	res, err := b.q().Exec(`UPDATE nodes SET value = ? WHERE node_id = ?`, value, int64(id))
	if err != nil {
		return errors.Wrapf(err, "setting value of node %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(types.ErrNotFound, "node %d", id)
	}
	return b.persist(nodesFile)
}

// NodeValue returns the node's value.
func (b *Backend) NodeValue(id types.NodeID) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return "", false, types.ErrDetached
	}
	var value sql.NullString
	err := b.q().QueryRow(`SELECT value FROM nodes WHERE node_id = ?`, int64(id)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, errors.Wrapf(types.ErrNotFound, "node %d", id)
	}
	if err != nil {
		return "", false, err
	}
	return value.String, value.Valid, nil
}

// Lookup returns every node with the given name.
func (b *Backend) Lookup(name string) ([]types.NodeID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.ids(`SELECT node_id FROM nodes WHERE name = ? ORDER BY node_id`, name)
}

// AddFlag sets a flag on a node.
func (b *Backend) AddFlag(id, flag types.NodeID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	res, err := b.q().Exec(`INSERT OR IGNORE INTO flags (node_id, flag_id) VALUES (?, ?)`, int64(id), int64(flag))
	if err != nil {
		return errors.Wrapf(err, "flagging node %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return b.persist(flagsFile)
}

// HasFlag reports whether the flag is set on the node.
func (b *Backend) HasFlag(id, flag types.NodeID) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	return b.exists(`SELECT 1 FROM flags WHERE node_id = ? AND flag_id = ?`, int64(id), int64(flag))
}

// AddEdge inserts an edge with a fresh UUID v7 id. Existing edges are left
// untouched.
func (b *Backend) AddEdge(from, edgeType, to types.NodeID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	res, err := b.q().Exec(
		`INSERT OR IGNORE INTO edges (edge_id, from_id, type_id, to_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		generateUUID(), int64(from), int64(edgeType), int64(to), now())
	if err != nil {
		return errors.Wrapf(err, "adding edge %d-%d->%d", from, edgeType, to)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return b.persist(edgesFile)
}

// RemoveEdge deletes an edge if present.
func (b *Backend) RemoveEdge(from, edgeType, to types.NodeID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	res, err := b.q().Exec(`DELETE FROM edges WHERE from_id = ? AND type_id = ? AND to_id = ?`,
		int64(from), int64(edgeType), int64(to))
	if err != nil {
		return errors.Wrapf(err, "removing edge %d-%d->%d", from, edgeType, to)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return b.persist(edgesFile)
}

// HasEdge reports whether the edge exists.
func (b *Backend) HasEdge(from, edgeType, to types.NodeID) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	return b.exists(`SELECT 1 FROM edges WHERE from_id = ? AND type_id = ? AND to_id = ?`,
		int64(from), int64(edgeType), int64(to))
}

// OutgoingNodes returns edge targets in ascending order.
func (b *Backend) OutgoingNodes(from, edgeType types.NodeID) ([]types.NodeID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.ids(`SELECT to_id FROM edges WHERE from_id = ? AND type_id = ? ORDER BY to_id`,
		int64(from), int64(edgeType))
}

// IncomingNodes returns edge sources in ascending order.
func (b *Backend) IncomingNodes(to, edgeType types.NodeID) ([]types.NodeID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.ids(`SELECT from_id FROM edges WHERE to_id = ? AND type_id = ? ORDER BY from_id`,
		int64(to), int64(edgeType))
}

// Edges returns every edge ordered by (From, Type, To).
func (b *Backend) Edges() ([]types.Edge, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	rows, err := b.q().Query(`SELECT from_id, type_id, to_id FROM edges ORDER BY from_id, type_id, to_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []types.Edge
	for rows.Next() {
		var from, edgeType, to int64
		if err := rows.Scan(&from, &edgeType, &to); err != nil {
			return nil, err
		}
		edges = append(edges, types.Edge{From: types.NodeID(from), Type: types.NodeID(edgeType), To: types.NodeID(to)})
	}
	return edges, rows.Err()
}

func (b *Backend) exists(query string, args ...any) (bool, error) {
	var one int
	err := b.q().QueryRow(query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *Backend) ids(query string, args ...any) ([]types.NodeID, error) {
	rows, err := b.q().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []types.NodeID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, types.NodeID(id))
	}
	return ids, rows.Err()
}
