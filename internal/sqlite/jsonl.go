package sqlite

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// JSONL files, one per table.
const (
	nodesFile = "nodes.jsonl"
	flagsFile = "flags.jsonl"
	edgesFile = "edges.jsonl"
)

// nodeRecord is one line of nodes.jsonl.
type nodeRecord struct {
	NodeID int64   `json:"node_id"`
	Name   *string `json:"name"`
	Value  *string `json:"value,omitempty"`
}

// flagRecord is one line of flags.jsonl.
type flagRecord struct {
	NodeID int64 `json:"node_id"`
	FlagID int64 `json:"flag_id"`
}

// edgeRecord is one line of edges.jsonl.
type edgeRecord struct {
	EdgeID    string `json:"edge_id"`
	FromID    int64  `json:"from_id"`
	TypeID    int64  `json:"type_id"`
	ToID      int64  `json:"to_id"`
	CreatedAt string `json:"created_at"`
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line.
// Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "scanning %s", path)
	}
	return records, nil
}

// writeJSONL atomically replaces path with records using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()
	fail := func(err error, msg string) error {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, msg)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail(err, "writing record")
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail(err, "writing newline")
		}
	}
	if err := w.Flush(); err != nil {
		return fail(err, "flushing buffer")
	}
	if err := tmp.Sync(); err != nil {
		return fail(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "renaming temp file")
	}
	return nil
}

// marshalRecords encodes each record as one JSONL line.
func marshalRecords[T any](records []T) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// initJSONLFiles creates empty JSONL files that do not exist yet.
func initJSONLFiles(dataDir string) error {
	for _, name := range []string{nodesFile, flagsFile, edgesFile} {
		path := filepath.Join(dataDir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "checking %s", name)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return errors.Wrapf(err, "creating %s", name)
		}
	}
	return nil
}
