// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hashstore persists the set of content hashes of files that have
// already been processed. The whole set is loaded once per run and saved in
// full after every processed file, so an interrupted run keeps its progress.
package hashstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/afero"

	"github.com/pdiddy/paper-renamer/pkg/types"
)

const (
	// DefaultYAMLPath is the state file used when no path is configured.
	DefaultYAMLPath = "hashes.yaml"
	// DefaultSQLitePath is the database file used by the sqlite backend.
	DefaultSQLitePath = "hashes.db"
)

// ErrUnsupportedVersion is returned when a state file declares a format
// version this build does not understand.
var ErrUnsupportedVersion = errors.New("unsupported state file version")

// Store loads and saves a Set.
type Store interface {
	// Load returns the persisted set. Missing state yields an empty set.
	Load(ctx context.Context) (Set, error)
	// Save replaces the persisted set with s.
	Save(ctx context.Context, s Set) error
	Close() error
}

// Set is an unordered set of content hashes.
type Set map[types.ContentHash]struct{}

// NewSet returns a set holding the given hashes.
func NewSet(hashes ...types.ContentHash) Set {
	s := make(Set, len(hashes))
	for _, h := range hashes {
		s.Add(h)
	}
	return s
}

// Has reports whether h is in the set.
func (s Set) Has(h types.ContentHash) bool {
	_, ok := s[h]
	return ok
}

// Add inserts h.
func (s Set) Add(h types.ContentHash) {
	s[h] = struct{}{}
}

// Remove deletes h and reports whether it was present.
func (s Set) Remove(h types.ContentHash) bool {
	if !s.Has(h) {
		return false
	}
	delete(s, h)
	return true
}

// Len returns the number of hashes.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the hashes in ascending order.
func (s Set) Sorted() []types.ContentHash {
	out := make([]types.ContentHash, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Open returns the Store selected by cfg. An empty backend means yaml and an
// empty path means the backend's default file.
func Open(cfg types.StateConfig, fs afero.Fs, log *slog.Logger) (Store, error) {
	if log == nil {
		log = slog.Default()
	}
	switch cfg.Backend {
	case types.StateYAML, "":
		path := cfg.Path
		if path == "" {
			path = DefaultYAMLPath
		}
		return NewYAMLStore(fs, path, log), nil
	case types.StateSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultSQLitePath
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown state backend %q: use yaml or sqlite", cfg.Backend)
	}
}
