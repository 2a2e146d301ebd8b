// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"testing"

	"github.com/pdiddy/paper-renamer/pkg/types"
)

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		want       types.Metadata
		wantStatus Status
	}{
		{
			name:       "integer year",
			reply:      `{"last_author": "Smith_John", "title": "A Study", "year": 2020}`,
			want:       types.Metadata{Year: "2020", Title: "A Study", LastAuthor: "Smith_John"},
			wantStatus: StatusFound,
		},
		{
			name:       "string year",
			reply:      `{"last_author": "Smith_John", "title": "A Study", "year": "2020"}`,
			want:       types.Metadata{Year: "2020", Title: "A Study", LastAuthor: "Smith_John"},
			wantStatus: StatusFound,
		},
		{
			name:       "surrounding whitespace and extra keys",
			reply:      "\n  {\"last_author\": \"Li_Wei\", \"title\": \"T\", \"year\": 1999, \"doi\": \"10.1/x\"}  \n",
			want:       types.Metadata{Year: "1999", Title: "T", LastAuthor: "Li_Wei"},
			wantStatus: StatusFound,
		},
		{"empty", "", types.Metadata{}, StatusMalformed},
		{"blank", "  \n", types.Metadata{}, StatusMalformed},
		{"prose", "Title: A Study", types.Metadata{}, StatusMalformed},
		{"array", `[{"title": "A Study"}]`, types.Metadata{}, StatusMalformed},
		{"null", `null`, types.Metadata{}, StatusMalformed},
		{"trailing text", `{"last_author": "a", "title": "b", "year": 1} thanks!`, types.Metadata{}, StatusMalformed},
		{"truncated", `{"last_author": "a", "title": "b"`, types.Metadata{}, StatusMalformed},
		{"missing year", `{"last_author": "a", "title": "b"}`, types.Metadata{}, StatusMissingKeys},
		{"missing title", `{"last_author": "a", "year": 2001}`, types.Metadata{}, StatusMissingKeys},
		{"missing author", `{"title": "b", "year": 2001}`, types.Metadata{}, StatusMissingKeys},
		{"null title", `{"last_author": "a", "title": null, "year": 2001}`, types.Metadata{}, StatusMissingKeys},
		{"empty author", `{"last_author": " ", "title": "b", "year": 2001}`, types.Metadata{}, StatusMissingKeys},
		{"numeric title", `{"last_author": "a", "title": 42, "year": 2001}`, types.Metadata{}, StatusMissingKeys},
		{"boolean year", `{"last_author": "a", "title": "b", "year": true}`, types.Metadata{}, StatusMissingKeys},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, status := ParseMetadata(tt.reply)
			if status != tt.wantStatus {
				t.Errorf("status = %v, want %v", status, tt.wantStatus)
			}
			if got != tt.want {
				t.Errorf("metadata = %+v, want %+v", got, tt.want)
			}
		})
	}
}
