package llm

import (
	"context"
	"errors"
)

// ErrNoCredential is returned by a ConfigSource when no usable endpoint
// and credential remain for a business code. The executor surfaces it
// unmodified when it never got a single attempt in.
var ErrNoCredential = errors.New("no available credential for business code")

// SchemaSpec describes a structured-output contract for providers that
// support JSON-schema constrained responses.
type SchemaSpec struct {
	Name        string
	Description string
	Schema      any
}

// GenerateOptions holds configuration for a single generation request.
type GenerateOptions struct {
	Model       string
	Temperature float64
	Schema      *SchemaSpec
}

// GenerateOption is a functional option for configuring generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel sets the model identifier to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithSchema requests JSON-schema constrained output. Providers that do
// not support structured output ignore it.
func WithSchema(spec *SchemaSpec) GenerateOption {
	return func(o *GenerateOptions) {
		o.Schema = spec
	}
}

// ChatClient is a single-endpoint text generation client. Implementations
// exist for OpenAI-compatible endpoints and Ollama.
type ChatClient interface {
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)
}

// RuntimeConfig is one resolved (endpoint, model, credential) combination
// for a business code.
type RuntimeConfig struct {
	Provider       string // "openai" or "ollama"
	BaseURL        string
	Model          string
	APIKey         string
	KeyID          string
	DisplayKey     string
	SupportsSchema bool
}

// ConfigSource resolves runtime configurations for business codes and
// records per-credential usage outcomes. The attempted set contains key
// ids that already failed during the current execution and must not be
// handed out again.
type ConfigSource interface {
	RuntimeConfig(ctx context.Context, businessCode string, attempted map[string]bool) (*RuntimeConfig, error)
	RecordKeyUsage(ctx context.Context, keyID string, success bool, errorMessage string) error
}

// TemplateSource looks up the active prompt template for a business code.
type TemplateSource interface {
	ActiveTemplate(ctx context.Context, businessCode string) (string, error)
}
