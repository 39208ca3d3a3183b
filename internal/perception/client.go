// Package perception wraps the LLM providers behind a small client
// interface. The dialogue loop uses it twice per turn: once to rewrite
// the utterance into a standalone query, once to generate the grounded
// answer.
package perception

import "context"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a multi-turn exchange.
type Message struct {
	Role    string
	Content string
}

// LLMClient defines the interface for LLM providers.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// ChatWithHistory sends a system prompt plus an ordered transcript
	// and returns the assistant's reply.
	ChatWithHistory(ctx context.Context, systemPrompt string, messages []Message) (string, error)
}
