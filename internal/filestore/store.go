// Package filestore persists whole collections as JSON documents in a directory.
//
// Every collection lives in <dir>/<name>.json. Reads load the whole file, writes replace it.
// Read-modify-write cycles must run inside WithLock so that concurrent requests against the
// same collection do not lose each other's updates.
package filestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Collection names used by the API
const (
	Products = "products"
	Orders   = "orders"
	Cart     = "cart"
	Users    = "users"
)

// Collections lists every collection the API owns, in seed order
var Collections = []string{Products, Orders, Cart, Users}

var emptyCollection = []byte("[]\n")

// Store reads and writes JSON collections under a single directory
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates dir if needed and initializes every missing collection with an empty array
func New(dir string, collections ...string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{dir: dir, locks: make(map[string]*sync.Mutex)}
	for _, name := range collections {
		if err := s.ensure(name); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dir returns the data directory
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing a collection
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Read decodes the whole collection into dst
func (s *Store) Read(name string, dst any) error {
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.ensure(name); err != nil {
			return err
		}
		data = emptyCollection
	} else if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		data = emptyCollection
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Write replaces the collection with src
func (s *Store) Write(name string, src any) error {
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if bytes.Equal(data, []byte("null")) {
		data = []byte("[]")
	}
	return WriteFileAtomic(s.Path(name), append(data, '\n'))
}

// ReadRaw returns the bytes of the collection file as stored
func (s *Store) ReadRaw(name string) ([]byte, error) {
	if err := s.ensure(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// WriteRaw replaces the collection file with data as given
func (s *Store) WriteRaw(name string, data []byte) error {
	return WriteFileAtomic(s.Path(name), data)
}

// WithLock runs fn while holding the lock of every named collection.
// Locks are taken in sorted order so overlapping callers cannot deadlock.
func (s *Store) WithLock(fn func() error, names ...string) error {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	for _, name := range sorted {
		l := s.lock(name)
		l.Lock()
		defer l.Unlock()
	}

	return fn()
}

func (s *Store) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

func (s *Store) ensure(name string) error {
	path := s.Path(name)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", name, err)
	}
	if err := WriteFileAtomic(path, emptyCollection); err != nil {
		return fmt.Errorf("initialize %s: %w", name, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it into place
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
