// Package llm provides chat-completion clients for the optional insights
// enrichment call. Both an OpenAI-compatible client and an Anthropic client
// are available behind one interface; generation never depends on either
// being reachable.
package llm

import "context"

// Client is the interface for chat completion. Use it for dependency
// injection so tests can substitute MockClient.
type Client interface {
	// Complete generates a completion for the prompt under the given
	// system message.
	Complete(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Providers selectable via configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds the settings for creating a client.
type Config struct {
	Provider string // "openai" (any OpenAI-compatible endpoint) or "anthropic"
	Endpoint string // base URL; optional for anthropic
	Model    string
	APIKey   string
}
