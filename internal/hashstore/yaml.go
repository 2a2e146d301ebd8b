// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hashstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-renamer/pkg/types"
)

// stateVersion is the on-disk format version written by YAMLStore.
const stateVersion = 1

// stateFile is the YAML document stored at the state path.
type stateFile struct {
	Version int                 `yaml:"version"`
	Hashes  []types.ContentHash `yaml:"hashes"`
}

// YAMLStore keeps the set in a single versioned YAML file.
type YAMLStore struct {
	fs   afero.Fs
	path string
	log  *slog.Logger
}

// NewYAMLStore returns a store backed by the file at path on fs.
func NewYAMLStore(fsys afero.Fs, path string, log *slog.Logger) *YAMLStore {
	if log == nil {
		log = slog.Default()
	}
	return &YAMLStore{fs: fsys, path: path, log: log}
}

// Path returns the state file location.
func (s *YAMLStore) Path() string {
	return s.path
}

// Load reads the state file. A file that does not exist or cannot be read
// for lack of permission yields an empty set; corrupt content is an error so
// that a later Save cannot silently discard it.
func (s *YAMLStore) Load(_ context.Context) (Set, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewSet(), nil
		}
		if errors.Is(err, fs.ErrPermission) {
			s.log.Warn("state.unreadable", "path", s.path, "error", err)
			return NewSet(), nil
		}
		return nil, fmt.Errorf("reading state file %s: %w", s.path, err)
	}

	var sf stateFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", s.path, err)
	}
	if sf.Version == 0 && len(sf.Hashes) == 0 {
		return NewSet(), nil
	}
	if sf.Version != stateVersion {
		return nil, fmt.Errorf("state file %s has version %d: %w", s.path, sf.Version, ErrUnsupportedVersion)
	}

	return NewSet(sf.Hashes...), nil
}

// defaultFileMode is the mode of a newly created state file. An existing
// file keeps its own mode across saves.
const defaultFileMode fs.FileMode = 0o644

// Save writes the full set to a temporary file next to the state file and
// renames it into place.
func (s *YAMLStore) Save(_ context.Context, set Set) error {
	data, err := yaml.Marshal(stateFile{Version: stateVersion, Hashes: set.Sorted()})
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("writing temporary state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("syncing temporary state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("closing temporary state file: %w", err)
	}

	mode := defaultFileMode
	if info, err := s.fs.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := s.fs.Chmod(tmpName, mode); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("setting mode of temporary state file: %w", err)
	}

	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("replacing state file %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op; the file is not held open between calls.
func (s *YAMLStore) Close() error {
	return nil
}
