package storage

import (
	"dm-lab/errors"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const maxConflictRetries = 5

// BadgerStore keeps each collection as a single value under "collection:<name>".
type BadgerStore struct {
	db    *badger.DB
	log   *slog.Logger
	opts  Options
	locks map[Collection]*sync.Mutex
}

// OpenBadgerStore opens (or creates) a badger database at path.
func OpenBadgerStore(path string, log *slog.Logger, opts Options) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}
	return NewBadgerStore(db, log, opts), nil
}

func NewBadgerStore(db *badger.DB, log *slog.Logger, opts Options) *BadgerStore {
	return &BadgerStore{db: db, log: log, opts: opts, locks: newLocks()}
}

func collectionKey(c Collection) []byte {
	return []byte("collection:" + string(c))
}

func (s *BadgerStore) EnsureReady() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, c := range Collections {
			_, err := txn.Get(collectionKey(c))
			switch {
			case err == nil:
				continue
			case stderrors.Is(err, badger.ErrKeyNotFound):
				data, err := encodeDocument(nil)
				if err != nil {
					return err
				}
				s.log.Info("Initializing collection", "collection", c)
				if err = txn.Set(collectionKey(c), data); err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrStorageWrite, err)
	}
	return nil
}

func (s *BadgerStore) ReadCollection(c Collection) ([]json.RawMessage, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	var records []json.RawMessage
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		records, err = readTxn(txn, c)
		return err
	})
	if err != nil {
		if s.opts.DegradedReads {
			s.log.Error("Collection unreadable, serving it as empty", "collection", c, "error", err)
			return []json.RawMessage{}, nil
		}
		return nil, err
	}
	return records, nil
}

func readTxn(txn *badger.Txn, c Collection) ([]json.RawMessage, error) {
	item, err := txn.Get(collectionKey(c))
	if err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrStorageRead, c, err)
	}
	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrStorageRead, c, err)
	}
	records, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrStorageRead, c, err)
	}
	return records, nil
}

func (s *BadgerStore) WriteCollection(c Collection, records []json.RawMessage) error {
	if err := validate(c); err != nil {
		return err
	}
	data, err := encodeDocument(records)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", errors.ErrStorageWrite, c, err)
	}
	lock := s.locks[c]
	lock.Lock()
	defer lock.Unlock()

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(collectionKey(c), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errors.ErrStorageWrite, c, err)
	}
	return nil
}

// UpdateCollection runs the read-modify-write in one badger transaction.
// The collection lock already serializes local writers; the retry only covers
// conflicts with writers outside this store instance.
func (s *BadgerStore) UpdateCollection(c Collection, fn UpdateFunc) error {
	if err := validate(c); err != nil {
		return err
	}
	lock := s.locks[c]
	lock.Lock()
	defer lock.Unlock()

	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		var callerErr error
		err = s.db.Update(func(txn *badger.Txn) error {
			records, err := readTxn(txn, c)
			if err != nil {
				callerErr = err
				return err
			}
			next, err := fn(records)
			if err != nil {
				callerErr = err
				return err
			}
			data, err := encodeDocument(next)
			if err != nil {
				return err
			}
			return txn.Set(collectionKey(c), data)
		})
		if callerErr != nil {
			return callerErr
		}
		if !stderrors.Is(err, badger.ErrConflict) {
			break
		}
		s.log.Warn("Transaction conflict, retrying", "collection", c, "attempt", attempt+1)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errors.ErrStorageWrite, c, err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
