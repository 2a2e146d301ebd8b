// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filename derives the normalized name a paper is stored under.
//
// The name is "<year>_<title>_<author>.pdf". The title is cut to its first
// TitleLimit characters, then its spaces are removed and colons become
// hyphens. The author only loses its spaces. No other characters are
// touched, so a title with a path separator or a character the filesystem
// rejects produces a name the copy or rename will fail on.
package filename

import (
	"strings"

	"github.com/pdiddy/paper-renamer/pkg/types"
)

// TitleLimit is the number of title characters kept, counted before spaces
// are removed.
const TitleLimit = 30

// Ext is appended to every built name.
const Ext = ".pdf"

var titleReplacer = strings.NewReplacer(" ", "", ":", "-")

// Build returns the target filename for m.
func Build(m types.Metadata) string {
	title := []rune(m.Title)
	if len(title) > TitleLimit {
		title = title[:TitleLimit]
	}

	return m.Year + "_" +
		titleReplacer.Replace(string(title)) + "_" +
		strings.ReplaceAll(m.LastAuthor, " ", "") +
		Ext
}
