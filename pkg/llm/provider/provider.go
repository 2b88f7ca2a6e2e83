package provider

import (
	"fmt"

	"github.com/CiZaii/ai-middle-platform/pkg/llm"
	"github.com/CiZaii/ai-middle-platform/pkg/llm/ollama"
	"github.com/CiZaii/ai-middle-platform/pkg/llm/openai"
)

// NewChatClient builds the ChatClient matching the endpoint's provider.
// Unknown providers fall back to the OpenAI-compatible client, since most
// hosted endpoints speak that protocol.
func NewChatClient(cfg *llm.RuntimeConfig) (llm.ChatClient, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.New(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case "openai", "":
		return openai.New(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("unknown provider %q without base URL", cfg.Provider)
		}
		return openai.New(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	}
}
