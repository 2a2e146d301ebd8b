// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls bibliographic metadata out of a paper by asking a
// language model about its leading pages, one page at a time.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/paper-renamer/internal/llm"
	"github.com/pdiddy/paper-renamer/internal/pdftext"
	"github.com/pdiddy/paper-renamer/pkg/types"
)

// DefaultPageBudget is the number of leading pages tried per document.
const DefaultPageBudget = 3

// sentinel is the reply meaning "nothing extractable on this page". It is
// matched case-insensitively anywhere in the reply.
const sentinel = "none"

// Model answers a metadata question about one page of text. Implementations
// live in package llm; tests supply a mock.
type Model interface {
	Query(ctx context.Context, pageText string) (string, error)
}

// Status classifies the outcome of an extraction.
type Status int

const (
	// StatusFound means Result.Metadata is complete.
	StatusFound Status = iota
	// StatusNoMetadata means no page within the budget produced an accepted reply.
	StatusNoMetadata
	// StatusMalformed means the accepted reply was not a JSON object.
	StatusMalformed
	// StatusMissingKeys means the JSON lacked year, title, or last_author.
	StatusMissingKeys
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNoMetadata:
		return "no-metadata"
	case StatusMalformed:
		return "malformed-response"
	case StatusMissingKeys:
		return "missing-keys"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of Extract. Metadata is meaningful only when Status
// is StatusFound.
type Result struct {
	Status   Status
	Metadata types.Metadata

	// Response is the raw accepted reply, empty if none was accepted.
	Response string
	// Calls is the number of model invocations made.
	Calls int
	// Pages is the number of page indices consumed from the budget.
	Pages int
}

// Found reports whether complete metadata was extracted.
func (r Result) Found() bool {
	return r.Status == StatusFound
}

// Extractor runs the page loop for one document at a time.
type Extractor struct {
	model      Model
	opener     pdftext.Opener
	pageBudget int
	log        *slog.Logger
}

// New returns an Extractor. A PageBudget of zero or less selects DefaultPageBudget.
func New(model Model, opener pdftext.Opener, cfg types.ExtractionConfig, log *slog.Logger) *Extractor {
	budget := cfg.PageBudget
	if budget <= 0 {
		budget = DefaultPageBudget
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{model: model, opener: opener, pageBudget: budget, log: log}
}

// Extract walks pages 0..budget-1 in order. Blank pages are skipped without a
// model call but still use up their index. The first reply that does not
// contain the sentinel is accepted and parsed; later pages are not read.
//
// Errors are reserved for environment failures: the document cannot be
// opened, the model call fails, or ctx is cancelled. Every extraction failure
// is reported through Result.Status instead; a call that yields no reply at
// all (llm.ErrNoReply) counts like the sentinel for that page.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	doc, err := e.opener.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer doc.Close()

	e.logInfo(doc, path)

	var res Result
	accepted := false
	limit := min(doc.NumPages(), e.pageBudget)

	for i := 0; i < limit; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Pages++

		text, err := doc.PageText(i)
		if err != nil {
			e.log.Warn("extract.page.unreadable", "file", path, "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			e.log.Info("extract.page.empty", "file", path, "page", i)
			continue
		}

		reply, err := e.model.Query(ctx, text)
		res.Calls++
		if errors.Is(err, llm.ErrNoReply) {
			e.log.Warn("extract.page.no_reply", "file", path, "page", i, "error", err)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("querying model for page %d of %s: %w", i, path, err)
		}

		if !strings.Contains(strings.ToLower(reply), sentinel) {
			res.Response = reply
			accepted = true
			break
		}
		e.log.Debug("extract.page.sentinel", "file", path, "page", i)
	}

	if !accepted {
		res.Status = StatusNoMetadata
		return res, nil
	}

	res.Metadata, res.Status = ParseMetadata(res.Response)
	return res, nil
}

func (e *Extractor) logInfo(doc pdftext.Document, path string) {
	info, err := doc.Info()
	if err != nil {
		e.log.Debug("extract.info.unavailable", "file", path, "error", err)
		return
	}
	e.log.Debug("extract.info",
		"file", path,
		"title", info.Title,
		"author", info.Author,
		"producer", info.Producer,
		"creator", info.Creator,
		"pages", info.PageCount,
	)
}
