// Package badger stores blobs in a Badger key-value database. Each blob is a
// single key; Put is one transaction and therefore atomic.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/hupe1980/seqgraph/blobstore"
)

// Config configures the database backing a Store.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in memory.
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	// KeyPrefix namespaces the blob keys, so one database can hold several graphs.
	KeyPrefix string
	// Logger receives Badger's internal log. Nil disables it.
	Logger *slog.Logger
}

// DefaultConfig returns a durable on-disk configuration.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store implements blobstore.BlobStore on Badger.
type Store struct {
	db     *badger.DB
	prefix string
	owned  bool
}

// Open opens the database described by cfg. The Store owns the database and
// closes it in Close.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger: path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("badger: create directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}
	return &Store{db: db, prefix: cfg.KeyPrefix, owned: true}, nil
}

// NewStore wraps an already open database. Close leaves db open.
func NewStore(db *badger.DB, keyPrefix string) *Store {
	return &Store{db: db, prefix: keyPrefix}
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *Store) key(name string) []byte {
	return []byte(s.prefix + name)
}

// Open reads the whole blob in one transaction.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return blobstore.NewBytesBlob(data), nil
}

// Put stores data under name.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := blobstore.ValidateName(name); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(name), slices.Clone(data))
	})
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key(name))
	})
}

// List iterates keys only; values are not loaded.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = s.key(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			names = append(names, string(it.Item().Key()[len(s.prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

// RunGC reclaims value log space. Nothing to rewrite and in-memory
// databases are not errors.
func (s *Store) RunGC(discardRatio float64) error {
	err := s.db.RunValueLogGC(discardRatio)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}
