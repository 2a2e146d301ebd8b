// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm asks a language model for the bibliographic metadata on one
// page of a paper. Backends return the model's raw reply; interpreting it is
// left to the caller, which must treat it as untrusted text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/paper-renamer/pkg/types"
)

const defaultTimeout = 60 * time.Second

// ErrNoReply is returned when the provider answered without any reply text,
// as happens when a page trips a safety filter.
var ErrNoReply = errors.New("model returned no reply")

// Model maps the text of one page to the model's reply: either a JSON object
// with last_author, title, and year, or the sentinel "None".
type Model interface {
	Query(ctx context.Context, pageText string) (string, error)
}

// New builds the backend selected by cfg.Model.Provider. The returned close
// function releases backend resources and is never nil.
func New(ctx context.Context, cfg types.Config) (Model, func() error, error) {
	noop := func() error { return nil }

	timeout := cfg.Model.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	switch cfg.Model.Provider {
	case types.ProviderOpenAI, "":
		return NewOpenAI(cfg.Model, client), noop, nil
	case types.ProviderAnthropic:
		return NewClaude(cfg.Model, client), noop, nil
	case types.ProviderVertex:
		v, err := NewVertex(ctx, cfg.Model, cfg.Vertex)
		if err != nil {
			return nil, noop, err
		}
		return v, v.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown model provider %q: use openai, anthropic, or vertex", cfg.Model.Provider)
	}
}
