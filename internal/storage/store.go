package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/citegraph/gref/internal/document"
	"golang.org/x/crypto/blake2b"
)

// Store reads and writes corpus snapshots under a data directory.
// It remembers a fingerprint of the last snapshot read or written per name
// so that saving an unchanged corpus does not touch the file.
type Store struct {
	root string

	mu           sync.Mutex
	fingerprints map[string][blake2b.Size256]byte
}

// NewStore creates a store rooted at dir. An empty dir uses DefaultDataDir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDataDir
	}
	return &Store{
		root:         dir,
		fingerprints: make(map[string][blake2b.Size256]byte),
	}
}

// Root returns the data directory.
func (s *Store) Root() string {
	return s.root
}

// Exists reports whether a snapshot exists for name.
func (s *Store) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	info, err := os.Stat(s.Path(KindSnapshot, name))
	return err == nil && !info.IsDir()
}

// Create writes an empty snapshot for name and returns the empty corpus.
func (s *Store) Create(name string) (document.Corpus, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if s.Exists(name) {
		return nil, fmt.Errorf("corpus %s: %w", name, ErrAlreadyExists)
	}

	corpus := document.Corpus{}
	if _, err := s.Save(name, corpus); err != nil {
		return nil, err
	}
	return corpus, nil
}

// Load reads and validates the snapshot for name.
func (s *Store) Load(name string) (document.Corpus, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(KindSnapshot, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("corpus %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var corpus document.Corpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	if corpus == nil {
		return nil, fmt.Errorf("%w: %s: not a JSON object", ErrMalformed, name)
	}
	if err := corpus.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}

	s.remember(name, data)
	return corpus, nil
}

// Save writes the snapshot for name unless it is byte-identical to the last
// one read or written. It reports whether the file was written.
func (s *Store) Save(name string, corpus document.Corpus) (bool, error) {
	if corpus == nil {
		corpus = document.Corpus{}
	}
	data, err := json.Marshal(corpus)
	if err != nil {
		return false, fmt.Errorf("encoding snapshot: %w", err)
	}

	sum := blake2b.Sum256(data)
	s.mu.Lock()
	prev, ok := s.fingerprints[name]
	s.mu.Unlock()
	if ok && prev == sum && s.Exists(name) {
		return false, nil
	}

	path, err := s.Prepare(KindSnapshot, name)
	if err != nil {
		return false, err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return false, err
	}

	s.remember(name, data)
	return true, nil
}

// List returns the names of all persisted corpora, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, string(KindSnapshot)))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	ext := "." + KindSnapshot.Ext()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

// Forget drops the remembered fingerprint for name.
func (s *Store) Forget(name string) {
	s.mu.Lock()
	delete(s.fingerprints, name)
	s.mu.Unlock()
}

func (s *Store) remember(name string, data []byte) {
	s.mu.Lock()
	s.fingerprints[name] = blake2b.Sum256(data)
	s.mu.Unlock()
}

// writeFileAtomic writes data to a temporary file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}
