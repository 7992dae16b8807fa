// Package badger implements a kgraph storage backend on BadgerDB, an
// embedded key-value store. Ids are encoded big-endian so prefix scans
// return them in ascending order.
//
// Key layout:
//
//	meta:next                   next node id
//	n<id>                       name record of a node
//	v<id>                       literal value of a data node
//	x<name>\x00<id>             name index
//	f<id><flag>                 flag
//	o<from><type><to>           outgoing edge
//	i<to><type><from>           incoming edge
package badger

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// Dir is the subdirectory of DataDir holding the Badger files.
const Dir = "badger"

var _ types.Backend = (*Backend)(nil)

var (
	keyNext = []byte("meta:next")

	prefixName     = byte('n')
	prefixValue    = byte('v')
	prefixIndex    = byte('x')
	prefixFlag     = byte('f')
	prefixOutgoing = byte('o')
	prefixIncoming = byte('i')
)

// Backend implements types.Backend on BadgerDB.
type Backend struct {
	mu  sync.RWMutex
	db  *badger.DB
	log *zap.SugaredLogger

	// txn is the open unit of work started by Update, if any.
	txn *badger.Txn
}

// NewBackend creates a detached Badger backend. A nil logger discards
// output, Badger's own included.
func NewBackend(logger *zap.SugaredLogger) *Backend {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Backend{log: logger}
}

// badgerLogger adapts a zap logger to badger.Logger.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

// Attach opens the database under DataDir/badger, or in memory when
// config.InMemory is set.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db != nil {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dataDir := config.DataDir
		if dataDir == "" {
			dataDir = "."
		}
		path := filepath.Join(dataDir, Dir)
		if err := os.MkdirAll(path, 0o750); err != nil {
			return errors.Wrapf(err, "creating database directory %s", path)
		}
		opts = badger.DefaultOptions(path).WithSyncWrites(config.GetSyncStrategy() == types.SyncImmediate)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(badgerLogger{log: b.log.Named("badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return errors.Wrap(err, "open badger database")
	}
	b.db = db
	b.log.Debugw("attached badger backend", "data_dir", config.DataDir, "in_memory", config.InMemory)
	return nil
}

// Detach closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	if err != nil {
		return errors.Wrap(err, "close badger database")
	}
	b.log.Debugw("detached badger backend")
	return nil
}

// view runs fn in a read transaction, or in the open unit of work. The
// backend must be attached.
func (b *Backend) view(fn func(txn *badger.Txn) error) error {
	b.mu.RLock()
	if b.txn == nil {
		defer b.mu.RUnlock()
		if b.db == nil {
			return types.ErrDetached
		}
		return b.db.View(fn)
	}
	b.mu.RUnlock()

	// A Txn is not safe for concurrent use, so reads inside a unit of work
	// take the write lock.
	return b.update(fn)
}

// update runs fn in a write transaction, or in the open unit of work.
// Writes are serialized so the node counter never conflicts.
func (b *Backend) update(fn func(txn *badger.Txn) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return types.ErrDetached
	}
	if b.txn != nil {
		return fn(b.txn)
	}
	return b.db.Update(fn)
}

// Update runs fn inside a single Badger transaction, committed when fn
// succeeds and discarded otherwise. Operations from other goroutines made
// while fn runs join the transaction.
func (b *Backend) Update(fn func() error) error {
	b.mu.Lock()
	if b.db == nil {
		b.mu.Unlock()
		return types.ErrDetached
	}
	if b.txn != nil {
		b.mu.Unlock()
		return fn()
	}
	txn := b.db.NewTransaction(true)
	b.txn = txn
	b.mu.Unlock()

	ferr := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.txn = nil
	if ferr != nil {
		txn.Discard()
		return ferr
	}
	if err := txn.Commit(); err != nil {
		return errors.Wrap(err, "committing update")
	}
	return nil
}

func encodeID(id types.NodeID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

func decodeID(b []byte) types.NodeID {
	return types.NodeID(binary.BigEndian.Uint64(b))
}

func key(prefix byte, ids ...types.NodeID) []byte {
	k := make([]byte, 1, 1+8*len(ids))
	k[0] = prefix
	for _, id := range ids {
		k = append(k, encodeID(id)...)
	}
	return k
}

func indexPrefix(name string) []byte {
	k := make([]byte, 0, len(name)+2)
	k = append(k, prefixIndex)
	k = append(k, name...)
	return append(k, 0)
}

func indexKey(name string, id types.NodeID) []byte {
	return append(indexPrefix(name), encodeID(id)...)
}

// exists reports whether key is present.
func exists(txn *badger.Txn, k []byte) (bool, error) {
	_, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// scanSuffixes returns the id that follows prefix in every key made of
// prefix and one id. Longer keys under the same prefix belong to other
// entries and are skipped.
func scanSuffixes(txn *badger.Txn, prefix []byte) ([]types.NodeID, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []types.NodeID
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		k := it.Item().Key()
		if len(k) != len(prefix)+8 {
			continue
		}
		ids = append(ids, decodeID(k[len(prefix):]))
	}
	return ids, nil
}
