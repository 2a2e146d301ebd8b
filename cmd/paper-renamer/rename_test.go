// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoPagePDF is a minimal PDF whose first page is blank and whose second
// page carries a title line.
func twoPagePDF() []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj("<< /Type /Pages /Kids [4 0 R 6 0 R] /Count 2 >>")
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i, text := range []string{"", "Deep Residual Learning"} {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		content := ""
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// fakeOpenAI answers every chat completion with fixed metadata and records
// the requested model names.
type fakeOpenAI struct {
	t      *testing.T
	mu     sync.Mutex
	models []string
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model string `json:"model"`
	}
	assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
	f.mu.Lock()
	f.models = append(f.models, req.Model)
	f.mu.Unlock()
	w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":` +
		`"{\"last_author\": \"He Kaiming\", \"title\": \"Deep Residual Learning\", \"year\": 2016}"}}]}`))
}

func (f *fakeOpenAI) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.models...)
}

// resetFlags restores every flag to its default so each Execute starts clean.
func resetFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		reset := func(f *pflag.Flag) {
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}

func TestRenameCommandWiring(t *testing.T) {
	tests := []struct {
		name       string
		args       func(dir string) []string
		wantOut    string
		wantModels []string
		errMsg     string
	}{
		{
			name:       "positional directory with default budget",
			args:       func(dir string) []string { return []string{"rename", dir, "--dry-run"} },
			wantOut:    "would copy   scan.pdf -> 2016_DeepResidualLearning_HeKaiming.pdf",
			wantModels: []string{"gpt-3.5-turbo"},
		},
		{
			name: "directory flag, rename, provider and model",
			args: func(dir string) []string {
				return []string{"rename", "--directory", dir, "--dry-run", "--rename", "--provider", "openai", "--model", "gpt-test"}
			},
			wantOut:    "would rename scan.pdf -> 2016_DeepResidualLearning_HeKaiming.pdf",
			wantModels: []string{"gpt-test"},
		},
		{
			name:    "page budget of one stops at the blank page",
			args:    func(dir string) []string { return []string{"rename", dir, "--dry-run", "--page-budget", "1"} },
			wantOut: "no-meta   scan.pdf (no-metadata)",
		},
		{
			name:   "unknown provider",
			args:   func(dir string) []string { return []string{"rename", dir, "--dry-run", "--provider", "mystery"} },
			errMsg: `unknown model provider "mystery"`,
		},
		{
			name:   "missing directory",
			args:   func(string) []string { return []string{"rename", "--dry-run"} },
			errMsg: "provide a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &fakeOpenAI{t: t}
			ts := httptest.NewServer(server)
			defer ts.Close()

			t.Setenv("PAPER_RENAMER_MODEL_BASE_URL", ts.URL)
			t.Setenv("OPENAI_API_KEY", "sk-test")

			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.pdf"), twoPagePDF(), 0o644))
			statePath := filepath.Join(t.TempDir(), "hashes.yaml")

			resetFlags(rootCmd, renameCmd)
			t.Cleanup(func() { resetFlags(rootCmd, renameCmd) })

			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(io.Discard)
			rootCmd.SetArgs(append(tt.args(dir), "--state", statePath, "--log-level", "error"))
			t.Cleanup(func() {
				rootCmd.SetOut(nil)
				rootCmd.SetErr(nil)
				rootCmd.SetArgs(nil)
			})

			err := rootCmd.Execute()
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)

			assert.Contains(t, out.String(), tt.wantOut)
			assert.Equal(t, tt.wantModels, server.calls())

			// Dry run leaves the directory and the state untouched.
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
			_, err = os.Stat(statePath)
			assert.True(t, os.IsNotExist(err))
		})
	}
}
