// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// The filename is the key name and the trimmed file contents are the value.
//
// Recognised key files: openai-api-key, anthropic-api-key, vertex-project.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Load reads every regular, non-hidden file in dir and returns a map of
// filename to trimmed contents. A missing directory yields an empty map.
// Unreadable files are logged and skipped.
func Load(afs afero.Fs, dir string, log *slog.Logger) (map[string]string, error) {
	entries, err := afero.ReadDir(afs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := afero.ReadFile(afs, filepath.Join(dir, name))
		if err != nil {
			log.Warn("secrets.unreadable", "name", name, "err", err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
