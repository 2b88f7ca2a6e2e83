package llm

import (
	"context"
	"fmt"

	"github.com/CiZaii/ai-middle-platform/pkg/logger"
)

const defaultMaxKeyAttempts = 5

// ClientFactory builds a ChatClient for a resolved runtime configuration.
type ClientFactory func(cfg *RuntimeConfig) (ChatClient, error)

// Executor runs prompts against the model configured for a business code,
// failing over across credentials. Each attempt uses a fresh runtime
// configuration excluding keys that already failed; per-key outcomes are
// recorded on the config source.
type Executor struct {
	configs        ConfigSource
	factory        ClientFactory
	maxKeyAttempts int
}

// ExecutorParams configures a new Executor. Factory defaults to the
// provider factory in this module; MaxKeyAttempts defaults to 5.
type ExecutorParams struct {
	Configs        ConfigSource
	Factory        ClientFactory
	MaxKeyAttempts int
}

// NewExecutor creates an Executor from the given parameters.
func NewExecutor(params ExecutorParams) *Executor {
	maxAttempts := params.MaxKeyAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxKeyAttempts
	}
	return &Executor{
		configs:        params.Configs,
		factory:        params.Factory,
		maxKeyAttempts: maxAttempts,
	}
}

// Execute sends prompt to the model resolved for businessCode and returns
// the raw text response. On failure it rotates to the next available
// credential, up to the attempt limit. A configuration error (no
// credential at all) is returned unmodified unless a real attempt already
// failed, in which case that attempt's error wins.
func (e *Executor) Execute(ctx context.Context, businessCode string, prompt string, opts ...GenerateOption) (string, error) {
	attempted := make(map[string]bool)
	var lastErr error

	for attempt := 0; attempt < e.maxKeyAttempts; attempt++ {
		cfg, err := e.configs.RuntimeConfig(ctx, businessCode, attempted)
		if err != nil {
			if lastErr != nil {
				return "", lastErr
			}
			return "", err
		}

		client, err := e.factory(cfg)
		if err != nil {
			return "", fmt.Errorf("failed to create chat client for provider %s: %w", cfg.Provider, err)
		}

		callOpts := append([]GenerateOption{WithModel(cfg.Model)}, opts...)
		if !cfg.SupportsSchema {
			callOpts = append(callOpts, WithSchema(nil))
		}

		result, err := client.Generate(ctx, prompt, callOpts...)
		if err == nil {
			e.recordKeyUsage(ctx, cfg, true, "")
			return result, nil
		}

		e.recordKeyUsage(ctx, cfg, false, err.Error())
		if cfg.KeyID != "" {
			attempted[cfg.KeyID] = true
		}
		lastErr = err
		logger.Warn("Chat operation failed",
			"business_code", businessCode,
			"provider", cfg.Provider,
			"key", cfg.DisplayKey,
			"err", err,
		)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", lastErr
}

// ExecuteStructured is Execute with a JSON-schema output contract derived
// from shape. Endpoints without structured-output support receive the
// plain prompt instead; callers must parse tolerantly either way.
func (e *Executor) ExecuteStructured(ctx context.Context, businessCode string, prompt string, name string, description string, shape any) (string, error) {
	spec := &SchemaSpec{
		Name:        name,
		Description: description,
		Schema:      GenerateSchema(shape),
	}
	return e.Execute(ctx, businessCode, prompt, WithSchema(spec))
}

func (e *Executor) recordKeyUsage(ctx context.Context, cfg *RuntimeConfig, success bool, errorMessage string) {
	if cfg.KeyID == "" {
		return
	}
	if err := e.configs.RecordKeyUsage(ctx, cfg.KeyID, success, errorMessage); err != nil {
		logger.Debug("Failed to record key usage", "key_id", cfg.KeyID, "err", err)
	}
}
