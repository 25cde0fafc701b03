package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/logging"
)

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicClient creates a client for the Anthropic API.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.Endpoint))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		model:  cfg.Model,
		logger: logger.Named("llm-anthropic"),
	}, nil
}

var _ Client = (*AnthropicClient)(nil)

// Complete implements Client.
func (c *AnthropicClient) Complete(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Float64("temperature", temperature))

	temp := float32(temperature)
	start := time.Now()
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      systemMessage,
		MaxTokens:   2048,
		Temperature: &temp,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", logging.SanitizeError(err)))
		return "", fmt.Errorf("create messages: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			c.logger.Debug("LLM response",
				zap.Duration("elapsed", time.Since(start)))
			return *block.Text, nil
		}
	}

	return "", fmt.Errorf("response contained no text block")
}

// Model implements Client.
func (c *AnthropicClient) Model() string {
	return c.model
}
