package sqlite

import (
	"database/sql"
	"encoding/json"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// loadAllJSONL reads the JSONL files from dataDir into the SQLite tables in a
// single transaction: either every file loads or the database stays empty.
// Malformed lines and rows that violate constraints are skipped. Unknown
// fields are ignored.
func loadAllJSONL(db *sql.DB, dataDir string) (loaded int, err error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "beginning load transaction")
	}
	defer tx.Rollback()

	loaders := []struct {
		file   string
		insert string
		args   func(json.RawMessage) ([]any, bool)
	}{
		{nodesFile, `INSERT OR IGNORE INTO nodes (node_id, name, value) VALUES (?, ?, ?)`, nodeArgs},
		{flagsFile, `INSERT OR IGNORE INTO flags (node_id, flag_id) VALUES (?, ?)`, flagArgs},
		{edgesFile, `INSERT OR IGNORE INTO edges (edge_id, from_id, type_id, to_id, created_at) VALUES (?, ?, ?, ?, ?)`, edgeArgs},
	}

	for _, l := range loaders {
		records, err := readJSONL(filepath.Join(dataDir, l.file))
		if err != nil {
			return 0, errors.Wrapf(err, "reading %s", l.file)
		}
		if len(records) == 0 {
			continue
		}
		n, err := insertRecords(tx, l.insert, records, l.args)
		if err != nil {
			return 0, errors.Wrapf(err, "loading %s", l.file)
		}
		loaded += n
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing load transaction")
	}
	return loaded, nil
}

func insertRecords(tx *sql.Tx, insertSQL string, records []json.RawMessage, args func(json.RawMessage) ([]any, bool)) (int, error) {
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return 0, errors.Wrap(err, "preparing insert")
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		a, ok := args(rec)
		if !ok {
			continue
		}
		res, err := stmt.Exec(a...)
		if err != nil {
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func nodeArgs(rec json.RawMessage) ([]any, bool) {
	var r nodeRecord
	if err := json.Unmarshal(rec, &r); err != nil || r.NodeID < 0 {
		return nil, false
	}
	var name, value any
	if r.Name != nil {
		name = *r.Name
	}
	if r.Value != nil {
		value = *r.Value
	}
	return []any{r.NodeID, name, value}, true
}

func flagArgs(rec json.RawMessage) ([]any, bool) {
	var r flagRecord
	if err := json.Unmarshal(rec, &r); err != nil {
		return nil, false
	}
	return []any{r.NodeID, r.FlagID}, true
}

func edgeArgs(rec json.RawMessage) ([]any, bool) {
	var r edgeRecord
	if err := json.Unmarshal(rec, &r); err != nil || r.EdgeID == "" {
		return nil, false
	}
	return []any{r.EdgeID, r.FromID, r.TypeID, r.ToID, r.CreatedAt}, true
}
