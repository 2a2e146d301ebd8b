// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fingerprint computes the content hash used to recognise files that
// were already processed.
//
// Only the first PrefixSize bytes of a file are hashed. Two files that share
// that prefix are treated as the same file even if they differ later on.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/pdiddy/paper-renamer/pkg/types"
)

// DefaultPrefixSize is the number of leading bytes fed to the digest.
const DefaultPrefixSize = 4096

// Hasher hashes files read through an afero filesystem.
type Hasher struct {
	fs         afero.Fs
	prefixSize int
}

// NewHasher returns a Hasher over fs. A prefixSize of zero or less selects
// DefaultPrefixSize.
func NewHasher(fs afero.Fs, prefixSize int) *Hasher {
	if prefixSize <= 0 {
		prefixSize = DefaultPrefixSize
	}
	return &Hasher{fs: fs, prefixSize: prefixSize}
}

// Hash returns the hex SHA-256 of the first prefix bytes of the file at path.
// Files shorter than the prefix are hashed in full.
func (h *Hasher) Hash(path string) (types.ContentHash, error) {
	f, err := h.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, h.prefixSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	sum := sha256.Sum256(buf[:n])
	return types.ContentHash(hex.EncodeToString(sum[:])), nil
}
