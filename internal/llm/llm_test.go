// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-renamer/internal/httputil"
	"github.com/pdiddy/paper-renamer/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const metadataJSON = `{"last_author": "Vaswani_Ashish", "title": "Attention Is All You Need", "year": 2017}`

func TestUserPrompt(t *testing.T) {
	got, err := UserPrompt("Deep Residual Learning")
	require.NoError(t, err)
	assert.Contains(t, got, "```Deep Residual Learning```")
	assert.Contains(t, got, "return: None.")
}

func TestOpenAIQuery(t *testing.T) {
	var gotReq openAIRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": metadataJSON}},
			},
		})
	}))
	defer ts.Close()

	m := NewOpenAI(types.ModelConfig{APIKey: "sk-test", BaseURL: ts.URL + "/v1/"}, ts.Client())
	got, err := m.Query(context.Background(), "page one text")
	require.NoError(t, err)

	assert.Equal(t, metadataJSON, got)
	assert.Equal(t, defaultOpenAIModel, gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, SystemPrompt, gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "page one text")
}

func TestOpenAIQueryErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		errMsg  string
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"bad key"}`))
			},
			errMsg: "OpenAI API returned 401",
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"choices": []}`))
			},
			errMsg: "no choices",
		},
		{
			name: "invalid body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`not json`))
			},
			errMsg: "decoding OpenAI response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			m := NewOpenAI(types.ModelConfig{BaseURL: ts.URL}, ts.Client())
			_, err := m.Query(context.Background(), "text")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestOpenAIQueryNoChoicesIsNoReply(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer ts.Close()

	_, err := NewOpenAI(types.ModelConfig{BaseURL: ts.URL}, ts.Client()).Query(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoReply)
}

func TestOpenAIQueryRetriesRateLimit(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "None"}}]}`))
	}))
	defer ts.Close()

	m := NewOpenAI(types.ModelConfig{BaseURL: ts.URL, HTTPConfig: types.HTTPConfig{MaxRetries: 2}}, ts.Client())
	got, err := m.Query(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "None", got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClaudeQuery(t *testing.T) {
	var gotReq claudeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Write([]byte(`{"content": [{"type": "thinking", "text": "hmm"}, {"type": "text", "text": ` +
			jsonString(metadataJSON) + `}]}`))
	}))
	defer ts.Close()

	m := NewClaude(types.ModelConfig{APIKey: "ak-test", BaseURL: ts.URL, Name: "claude-test"}, ts.Client())
	got, err := m.Query(context.Background(), "abstract text")
	require.NoError(t, err)

	assert.Equal(t, metadataJSON, got)
	assert.Equal(t, "claude-test", gotReq.Model)
	assert.Equal(t, SystemPrompt, gotReq.System)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "abstract text")
}

func TestClaudeQueryNoText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"content": []}`))
	}))
	defer ts.Close()

	_, err := NewClaude(types.ModelConfig{BaseURL: ts.URL}, ts.Client()).Query(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
	assert.ErrorIs(t, err, ErrNoReply)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		provider types.ModelProvider
		wantType any
		errMsg   string
	}{
		{"default is openai", "", &OpenAI{}, ""},
		{"openai", types.ProviderOpenAI, &OpenAI{}, ""},
		{"anthropic", types.ProviderAnthropic, &Claude{}, ""},
		{"vertex without project", types.ProviderVertex, nil, "vertex.project"},
		{"unknown", "llama", nil, "unknown model provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.Config{Model: types.ModelConfig{Provider: tt.provider}}
			m, closeFn, err := New(context.Background(), cfg)
			require.NotNil(t, closeFn)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, m)
			assert.NoError(t, closeFn())
		})
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
