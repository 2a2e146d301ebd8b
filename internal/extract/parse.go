// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/pdiddy/paper-renamer/pkg/types"
)

// ParseMetadata decodes a model reply. The reply must be exactly one JSON
// object carrying year (number or string), title, and last_author (strings).
// On any other input the returned Metadata is zero and the status says why.
func ParseMetadata(reply string) (types.Metadata, Status) {
	if strings.TrimSpace(reply) == "" {
		return types.Metadata{}, StatusMalformed
	}

	dec := json.NewDecoder(strings.NewReader(reply))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return types.Metadata{}, StatusMalformed
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return types.Metadata{}, StatusMalformed
	}

	year, ok := yearField(fields["year"])
	if !ok {
		return types.Metadata{}, StatusMissingKeys
	}
	title, ok := stringField(fields["title"])
	if !ok {
		return types.Metadata{}, StatusMissingKeys
	}
	author, ok := stringField(fields["last_author"])
	if !ok {
		return types.Metadata{}, StatusMissingKeys
	}

	return types.Metadata{Year: year, Title: title, LastAuthor: author}, StatusFound
}

// yearField accepts a JSON number or a non-blank string.
func yearField(v any) (string, bool) {
	switch y := v.(type) {
	case json.Number:
		return y.String(), true
	case string:
		return stringField(y)
	default:
		return "", false
	}
}

// stringField accepts a string that is not blank. The value is returned as is.
func stringField(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
