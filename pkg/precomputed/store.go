package precomputed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/golang/snappy"
	"golang.org/x/exp/maps"
)

// CompressedExt marks a snappy framed artifact
const CompressedExt = ".sz"

// ErrCorrupt is returned when an artifact cannot be decoded
var ErrCorrupt = errors.New("corrupt precomputed artifact")

// Encode writes set as JSON, snappy framed when compressed is set
func Encode(w io.Writer, set Set, compressed bool) error {
	if !compressed {
		return json.NewEncoder(w).Encode(set)
	}
	sw := snappy.NewBufferedWriter(w)
	if err := json.NewEncoder(sw).Encode(set); err != nil {
		sw.Close()
		return err
	}
	return sw.Close()
}

// Decode reads a set written by Encode
func Decode(r io.Reader, compressed bool) (Set, error) {
	if compressed {
		r = snappy.NewReader(r)
	}
	var set Set
	if err := json.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if set == nil {
		set = make(Set)
	}
	return set, nil
}

// Marshal encodes set to bytes
func Marshal(set Set, compressed bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, set, compressed); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Store is a file-backed, read-mostly cache of region results. It is safe
// for concurrent use.
type Store struct {
	path    string
	mu      sync.RWMutex
	results Set
}

// NewStore creates an empty store backed by path
func NewStore(path string) *Store {
	return &Store{path: path, results: make(Set)}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Compressed reports whether the backing file is snappy framed
func (s *Store) Compressed() bool {
	return strings.HasSuffix(s.path, CompressedExt)
}

// Load replaces the cached results with the file contents. A missing file
// leaves the store empty and is not an error.
func (s *Store) Load() error {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open precomputed results: %w", err)
	}
	defer f.Close()

	set, err := Decode(f, s.Compressed())
	if err != nil {
		return fmt.Errorf("%s: %w", s.path, err)
	}

	s.mu.Lock()
	s.results = set
	s.mu.Unlock()
	return nil
}

// Save writes the cached results to a temporary file and renames it over the
// backing file.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := Marshal(s.results, s.Compressed())
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode precomputed results: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write precomputed results: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace precomputed results: %w", err)
	}
	return nil
}

// Bytes returns the encoded form of the cached results
func (s *Store) Bytes() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Marshal(s.results, s.Compressed())
}

// Get returns the cached result for a region
func (s *Store) Get(key string) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[key]
	return r, ok
}

// Put caches a result under its region key
func (s *Store) Put(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.Region] = r
}

// Merge caches every result of set
func (s *Store) Merge(set Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range set {
		s.results[k] = r
	}
}

// Keys returns the cached region keys in ascending order
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := maps.Keys(s.results)
	slices.Sort(keys)
	return keys
}

// Len returns the number of cached regions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
