package llm

import "context"

// MockClient permite tests sin llamar a un proveedor real.
type MockClient struct {
	Response   string
	Err        error
	LastPrompt string
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, history []ChatMessage) (string, error) {
	m.LastPrompt = systemPrompt
	return m.Response, m.Err
}
