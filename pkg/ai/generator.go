package ai

import "context"

// Role values for chat messages sent to the provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a provider conversation.
type Message struct {
	Role    string
	Content string
}

// TextGenerator generates a reply from a chat history. Implementations are
// asked to return a single JSON object as the reply body; callers are
// responsible for parsing and validating it.
type TextGenerator interface {
	GenerateChat(ctx context.Context, messages []Message) (string, error)
}
