// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/pdiddy/paper-renamer/pkg/types"
)

const defaultVertexModel = "gemini-1.5-flash"

// Vertex calls a Gemini model through Vertex AI. Credentials come from
// Application Default Credentials.
type Vertex struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewVertex creates the Vertex AI client and configures the model with the
// system prompt.
func NewVertex(ctx context.Context, cfg types.ModelConfig, vcfg types.VertexConfig) (*Vertex, error) {
	if vcfg.Project == "" || vcfg.Location == "" {
		return nil, fmt.Errorf("vertex provider requires vertex.project and vertex.location")
	}

	client, err := genai.NewClient(ctx, vcfg.Project, vcfg.Location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = defaultVertexModel
	}
	model := client.GenerativeModel(name)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemPrompt)},
	}
	model.SetTemperature(0)

	return &Vertex{client: client, model: model}, nil
}

// Query returns the concatenated text parts of the first candidate.
func (v *Vertex) Query(ctx context.Context, pageText string) (string, error) {
	prompt, err := UserPrompt(pageText)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	resp, err := v.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("calling Vertex AI: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("Vertex AI returned no candidates: %w", ErrNoReply)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("Vertex AI candidate has no text (finish reason %v): %w", resp.Candidates[0].FinishReason, ErrNoReply)
	}
	return b.String(), nil
}

// Close releases the underlying client.
func (v *Vertex) Close() error {
	return v.client.Close()
}
