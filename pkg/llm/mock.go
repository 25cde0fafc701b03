package llm

import "context"

// MockClient is a configurable mock for testing. Set the function field to
// control behavior; calls are counted for verification.
type MockClient struct {
	// CompleteFunc is called when Complete is invoked. If nil, Complete
	// returns an empty string and nil error.
	CompleteFunc func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	CompleteCalls int
}

// NewMockClient creates a mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{ModelName: "mock-model"}
}

var _ Client = (*MockClient)(nil)

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
	m.CompleteCalls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, systemMessage, temperature)
	}
	return "", nil
}

// Model implements Client.
func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}
