// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ContentHash identifies a file by a digest of its leading bytes.
// It is only ever compared for equality.
type ContentHash string

// Metadata is the bibliographic record extracted from a paper's text.
// All three fields are set whenever a Metadata value is produced.
type Metadata struct {
	// Year is the publication year as text (e.g. "2020").
	Year string `json:"year" yaml:"year"`

	// Title is the paper title as returned by the model.
	Title string `json:"title" yaml:"title"`

	// LastAuthor is the last (corresponding) author, formatted "last_first".
	LastAuthor string `json:"last_author" yaml:"last_author"`
}
