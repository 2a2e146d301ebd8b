// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ModelProvider identifies the language-model backend used for metadata extraction.
type ModelProvider string

const (
	ProviderOpenAI    ModelProvider = "openai"
	ProviderAnthropic ModelProvider = "anthropic"
	ProviderVertex    ModelProvider = "vertex"
)

// StateBackend identifies where the processed-hash set is persisted.
type StateBackend string

const (
	StateYAML   StateBackend = "yaml"
	StateSQLite StateBackend = "sqlite"
)

// HTTPConfig holds shared HTTP settings for backends that call a REST API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ModelConfig holds settings for the metadata model.
type ModelConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the backend: openai, anthropic, or vertex.
	Provider ModelProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Name is the model identifier (e.g. "gpt-3.5-turbo").
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// BaseURL overrides the API endpoint root. Empty means the provider default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey is the authentication key. It is normally filled from .secrets/ or the environment.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`
}

// VertexConfig holds Google Cloud settings for the vertex provider.
type VertexConfig struct {
	Project  string `json:"project" yaml:"project" mapstructure:"project"`
	Location string `json:"location" yaml:"location" mapstructure:"location"`
}

// ExtractionConfig holds settings for the metadata extraction loop.
type ExtractionConfig struct {
	// PageBudget is the number of leading pages that may be tried (default 3).
	PageBudget int `json:"page_budget" yaml:"page_budget" mapstructure:"page_budget"`
}

// StateConfig selects and locates the processed-hash store.
type StateConfig struct {
	Backend StateBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the state file (yaml) or database file (sqlite).
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups every setting the CLI reads from flags, environment, and config file.
type Config struct {
	Model   ModelConfig      `json:"model" yaml:"model" mapstructure:"model"`
	Vertex  VertexConfig     `json:"vertex" yaml:"vertex" mapstructure:"vertex"`
	Extract ExtractionConfig `json:"extract" yaml:"extract" mapstructure:"extract"`
	State   StateConfig      `json:"state" yaml:"state" mapstructure:"state"`
	Log     LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}
