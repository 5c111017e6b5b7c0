package storage

import (
	"dm-lab/errors"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// FileStore keeps each collection in its own JSON file under dir.
// New content is published with a rename, so readers always see either the
// previous or the next complete document.
type FileStore struct {
	dir    string
	log    *slog.Logger
	opts   Options
	initMu sync.Mutex
	locks  map[Collection]*sync.Mutex
}

func NewFileStore(dir string, log *slog.Logger, opts Options) *FileStore {
	return &FileStore{dir: dir, log: log, opts: opts, locks: newLocks()}
}

func (s *FileStore) path(c Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

func (s *FileStore) EnsureReady() error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("%w: create %s: %w", errors.ErrStorageWrite, s.dir, err)
	}
	for _, c := range Collections {
		if err := s.ensureCollection(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) ensureCollection(c Collection) error {
	lock := s.locks[c]
	lock.Lock()
	defer lock.Unlock()

	_, err := os.Stat(s.path(c))
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, fs.ErrNotExist):
		s.log.Info("Initializing collection", "collection", c, "path", s.path(c))
		return s.writeLocked(c, nil)
	default:
		return fmt.Errorf("%w: stat %s: %w", errors.ErrStorageWrite, c, err)
	}
}

// ReadCollection returns the records of c. A collection that was never written
// reads as empty.
func (s *FileStore) ReadCollection(c Collection) ([]json.RawMessage, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	records, err := s.readStrict(c)
	if err != nil {
		if s.opts.DegradedReads {
			s.log.Error("Collection unreadable, serving it as empty", "collection", c, "error", err)
			return []json.RawMessage{}, nil
		}
		return nil, err
	}
	return records, nil
}

func (s *FileStore) readStrict(c Collection) ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path(c))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrStorageRead, c, err)
	}
	records, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrStorageRead, c, err)
	}
	return records, nil
}

func (s *FileStore) WriteCollection(c Collection, records []json.RawMessage) error {
	if err := validate(c); err != nil {
		return err
	}
	lock := s.locks[c]
	lock.Lock()
	defer lock.Unlock()
	return s.writeLocked(c, records)
}

func (s *FileStore) UpdateCollection(c Collection, fn UpdateFunc) error {
	if err := validate(c); err != nil {
		return err
	}
	lock := s.locks[c]
	lock.Lock()
	defer lock.Unlock()

	records, err := s.readStrict(c)
	if err != nil {
		return err
	}
	next, err := fn(records)
	if err != nil {
		return err
	}
	return s.writeLocked(c, next)
}

func (s *FileStore) writeLocked(c Collection, records []json.RawMessage) error {
	data, err := encodeDocument(records)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", errors.ErrStorageWrite, c, err)
	}
	if err = writeFileAtomic(s.path(c), data); err != nil {
		return fmt.Errorf("%w: %s: %w", errors.ErrStorageWrite, c, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// writeFileAtomic writes data next to path and renames it into place once synced.
func writeFileAtomic(path string, data []byte) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), filePerm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var _ Store = (*FileStore)(nil)
