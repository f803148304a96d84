// Package storage persists corpus snapshots and lays out exported artifacts
// under a data directory.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDataDir is the data directory used when none is configured.
const DefaultDataDir = "gref"

// Kind names an artifact type. Each kind lives in its own subdirectory.
type Kind string

const (
	KindSnapshot  Kind = "json"
	KindGraph     Kind = "gv"
	KindCytoscape Kind = "cyjs"
	KindHTML      Kind = "html"
	KindPNG       Kind = "png"
	KindSVG       Kind = "svg"
	KindPDF       Kind = "pdf"
	KindCSV       Kind = "csv"
	KindBibTeX    Kind = "bib"
	KindSQLite    Kind = "db"
	KindReport    Kind = "txt"
)

// Kinds lists every artifact kind, snapshot first.
var Kinds = []Kind{
	KindSnapshot, KindGraph, KindCytoscape, KindHTML,
	KindPNG, KindSVG, KindPDF,
	KindCSV, KindBibTeX, KindSQLite, KindReport,
}

var (
	// ErrNotFound is returned when a corpus or artifact does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a corpus whose snapshot exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrMalformed is returned when a snapshot cannot be decoded or fails validation.
	ErrMalformed = errors.New("malformed snapshot")

	// ErrInvalidName is returned for corpus names that are not plain file names.
	ErrInvalidName = errors.New("invalid corpus name")
)

// Ext returns the file extension of the kind, without the dot.
func (k Kind) Ext() string {
	if k == KindCytoscape {
		return "json"
	}
	return string(k)
}

// ParseKind parses an artifact kind name.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return "", fmt.Errorf("unknown artifact kind %q (valid: %s)", s, strings.Join(names, ", "))
}

// ValidateName rejects names that would escape the kind directories.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, os.PathSeparator) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Path returns the path of the artifact of kind for corpus name.
func (s *Store) Path(kind Kind, name string) string {
	return filepath.Join(s.root, string(kind), name+"."+kind.Ext())
}

// Prepare creates the directory for kind and returns the artifact path.
func (s *Store) Prepare(kind Kind, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, string(kind))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s directory: %w", kind, err)
	}
	return s.Path(kind, name), nil
}

// Remove deletes the artifacts of corpus name, of the given kinds or of every
// kind when none are given. It returns the removed paths, or ErrNotFound if
// nothing existed.
func (s *Store) Remove(name string, kinds ...Kind) ([]string, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		kinds = Kinds
	}

	var removed []string
	for _, k := range kinds {
		path := s.Path(k, name)
		err := os.Remove(path)
		if err == nil {
			removed = append(removed, path)
			continue
		}
		if !os.IsNotExist(err) {
			return removed, fmt.Errorf("removing %s: %w", path, err)
		}
	}

	if len(removed) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	s.mu.Lock()
	delete(s.fingerprints, name)
	s.mu.Unlock()
	return removed, nil
}
