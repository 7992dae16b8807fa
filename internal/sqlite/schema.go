package sqlite

// Schema DDL. SQLite is a query cache; the JSONL files are authoritative.
const (
	createNodes = `CREATE TABLE nodes (
    node_id INTEGER PRIMARY KEY,
    name TEXT,
    value TEXT
);`

	createFlags = `CREATE TABLE flags (
    node_id INTEGER NOT NULL,
    flag_id INTEGER NOT NULL,
    PRIMARY KEY (node_id, flag_id)
);`

	createEdges = `CREATE TABLE edges (
    edge_id TEXT PRIMARY KEY,
    from_id INTEGER NOT NULL,
    type_id INTEGER NOT NULL,
    to_id INTEGER NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Index DDL for the traversal queries.
const (
	idxNodesName   = `CREATE INDEX idx_nodes_name ON nodes(name);`
	idxEdgesUnique = `CREATE UNIQUE INDEX idx_edges_unique ON edges(from_id, type_id, to_id);`
	idxEdgesTypeTo = `CREATE INDEX idx_edges_type_to ON edges(to_id, type_id);`
)

var schemaDDL = []string{
	createNodes,
	createFlags,
	createEdges,
}

var indexDDL = []string{
	idxNodesName,
	idxEdgesUnique,
	idxEdgesTypeTo,
}
