package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// NewClient creates a chat-completion client for the configured provider.
// An empty provider defaults to the OpenAI-compatible client, which covers
// both hosted and self-hosted endpoints.
func NewClient(cfg *Config, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, logger)
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
