package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Seams for the persistence failure and id collision tests.
var (
	renameFile = os.Rename
	nowMillis  = func() int64 { return time.Now().UnixMilli() }
)

const maxIDAttempts = 5

// FileStore keeps the whole collection in one JSON file. Every mutation
// is a read-modify-write of the full document under a single mutex, so
// two overlapping requests can never interleave their load and persist
// phases. Writes go to a temp file first and are renamed into place,
// which keeps the backing file whole across crashes and failed writes.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %v", ErrStorageUnavailable, s.path, err)
	}
	return s.persistLocked(nil)
}

func (s *FileStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *FileStore) LoadAll(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileStore) ReplaceAll(ctx context.Context, products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(products)
}

func (s *FileStore) Upsert(ctx context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.loadLocked()
	if err != nil {
		return Product{}, err
	}

	if p.ID == "" {
		id, err := newID(products)
		if err != nil {
			return Product{}, err
		}
		p.ID = id
	}

	replaced := false
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		products = append([]Product{p}, products...)
	}

	if err := s.persistLocked(products); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.loadLocked()
	if err != nil {
		return err
	}

	kept := products[:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.persistLocked(kept)
}

func (s *FileStore) loadLocked() ([]Product, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, s.path, err)
	}
	return decodeDocument(b)
}

// persistLocked writes the document to a temp file in the same directory
// and renames it over the backing file. A failed write leaves the
// previous document untouched.
func (s *FileStore) persistLocked(products []Product) error {
	b, err := encodeDocument(products)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp file in %s: %v", ErrStorageUnavailable, dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", ErrStorageUnavailable, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrStorageUnavailable, tmpName, err)
	}

	if err := renameFile(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename %s: %v", ErrStorageUnavailable, tmpName, err)
	}
	return nil
}

// newID produces an id unique within the current collection. The first
// candidate is timestamp-based; when a tick collides with a live id the
// next attempts carry a random suffix.
func newID(products []Product) (string, error) {
	base := "p" + strconv.FormatInt(nowMillis(), 10)

	candidate := base
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if !idExists(products, candidate) {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:8]
	}
	return "", fmt.Errorf("could not allocate a unique product id after %d attempts", maxIDAttempts)
}

func idExists(products []Product, id string) bool {
	for _, p := range products {
		if p.ID == id {
			return true
		}
	}
	return false
}
