package llm

import "context"

// ChatMessage es un turno del historial que se envia al proveedor.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client es el contrato con el proveedor de completions. El motor no hace
// I/O propio hacia el LLM: arma system prompt e historial y delega aca.
type Client interface {
	Generate(ctx context.Context, systemPrompt string, history []ChatMessage) (string, error)
}
