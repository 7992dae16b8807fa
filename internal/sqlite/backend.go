// Package sqlite implements the SQLite storage backend for kgraph. SQLite
// (modernc.org/sqlite, no cgo) serves queries; JSONL files in the data
// directory are the source of truth and are loaded on every Attach.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// DatabaseFile is the SQLite file created in the data directory. It is
// rebuilt from the JSONL files on every Attach.
const DatabaseFile = "kgraph.db"

var _ types.Backend = (*Backend)(nil)

// Backend implements types.Backend using SQLite as the query engine and
// JSONL files as the source of truth. It is safe for concurrent use.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      *zap.SugaredLogger

	// syncStrategy decides when JSONL files are rewritten. With on_close,
	// dirty lists the files to rewrite on Detach.
	syncStrategy string
	dirty        map[string]bool

	// tx is the open unit of work, if any. Files touched inside it are
	// collected in txDirty and persisted on commit.
	tx      *sql.Tx
	txDirty map[string]bool
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// NewBackend creates a detached SQLite backend. A nil logger discards
// output.
func NewBackend(logger *zap.SugaredLogger) *Backend {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Backend{
		log:     logger,
		dirty:   make(map[string]bool),
		txDirty: make(map[string]bool),
	}
}

// Attach creates DataDir if needed, builds a fresh SQLite schema, and loads
// the JSONL files into it. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating data dir %s", dataDir)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return errors.Wrap(err, "opening sqlite")
	}
	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return errors.Wrap(err, "creating schema")
		}
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return err
	}
	loaded, err := loadAllJSONL(db, dataDir)
	if err != nil {
		db.Close()
		return errors.Wrap(err, "load JSONL")
	}

	config.DataDir = dataDir
	b.db = db
	b.config = config
	b.syncStrategy = config.GetSyncStrategy()
	b.dirty = make(map[string]bool)
	b.attached = true

	b.log.Debugw("attached sqlite backend", "data_dir", dataDir, "sync", b.syncStrategy, "rows", loaded)
	return nil
}

// Detach writes pending JSONL changes and closes the database. Detach is
// idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if err := b.flushLocked(); err != nil {
		return errors.Wrap(err, "flush pending writes")
	}
	if err := b.db.Close(); err != nil {
		return err
	}
	b.db = nil
	b.attached = false

	b.log.Debugw("detached sqlite backend", "data_dir", b.config.DataDir)
	return nil
}

// persist records that file changed. With the immediate strategy the file
// is rewritten now; otherwise it is rewritten on Detach. The caller must
// hold the write lock.
func (b *Backend) persist(file string) error {
	if b.tx != nil {
		b.txDirty[file] = true
		return nil
	}
	if b.syncStrategy != types.SyncImmediate {
		b.dirty[file] = true
		return nil
	}
	return b.writeFile(file)
}

// q returns the open transaction, or the database outside one. The caller
// must hold the lock.
func (b *Backend) q() querier {
	if b.tx != nil {
		return b.tx
	}
	return b.db
}

// Update runs fn inside one SQLite transaction. The JSONL files are
// rewritten only after the transaction commits. Operations from other
// goroutines made while fn runs join the transaction.
func (b *Backend) Update(fn func() error) error {
	b.mu.Lock()
	if !b.attached {
		b.mu.Unlock()
		return types.ErrDetached
	}
	if b.tx != nil {
		b.mu.Unlock()
		return fn()
	}
	tx, err := b.db.Begin()
	if err != nil {
		b.mu.Unlock()
		return errors.Wrap(err, "beginning update")
	}
	b.tx = tx
	b.mu.Unlock()

	ferr := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tx = nil
	touched := b.txDirty
	b.txDirty = make(map[string]bool)
	if ferr != nil {
		if err := tx.Rollback(); err != nil {
			b.log.Warnw("rollback failed", "error", err)
		}
		return ferr
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing update")
	}
	for file := range touched {
		if err := b.persist(file); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) flushLocked() error {
	for file := range b.dirty {
		if err := b.writeFile(file); err != nil {
			return errors.Wrapf(err, "flush %s", file)
		}
		delete(b.dirty, file)
	}
	return nil
}

// writeFile dumps the SQLite table behind file into it.
func (b *Backend) writeFile(file string) error {
	var records []json.RawMessage
	var err error
	switch file {
	case nodesFile:
		records, err = b.dumpNodes()
	case flagsFile:
		records, err = b.dumpFlags()
	case edgesFile:
		records, err = b.dumpEdges()
	default:
		return errors.Newf("unknown JSONL file %s", file)
	}
	if err != nil {
		return err
	}
	return writeJSONL(filepath.Join(b.config.DataDir, file), records)
}

func (b *Backend) dumpNodes() ([]json.RawMessage, error) {
	rows, err := b.db.Query(`SELECT node_id, name, value FROM nodes ORDER BY node_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []nodeRecord
	for rows.Next() {
		var r nodeRecord
		var name, value sql.NullString
		if err := rows.Scan(&r.NodeID, &name, &value); err != nil {
			return nil, err
		}
		if name.Valid {
			r.Name = &name.String
		}
		if value.Valid {
			r.Value = &value.String
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return marshalRecords(recs)
}

func (b *Backend) dumpFlags() ([]json.RawMessage, error) {
	rows, err := b.db.Query(`SELECT node_id, flag_id FROM flags ORDER BY node_id, flag_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []flagRecord
	for rows.Next() {
		var r flagRecord
		if err := rows.Scan(&r.NodeID, &r.FlagID); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return marshalRecords(recs)
}

func (b *Backend) dumpEdges() ([]json.RawMessage, error) {
	rows, err := b.db.Query(`SELECT edge_id, from_id, type_id, to_id, created_at FROM edges ORDER BY created_at, edge_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []edgeRecord
	for rows.Next() {
		var r edgeRecord
		if err := rows.Scan(&r.EdgeID, &r.FromID, &r.TypeID, &r.ToID, &r.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return marshalRecords(recs)
}

// generateUUID generates a UUID v7 for edge ids.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
