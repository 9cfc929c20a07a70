package domain

// Role is the author of a chat message.
type Role string

// Chat roles understood by completion providers.
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single chat message sent to a completion provider.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a model name plus the message list.
type CompletionRequest struct {
	Model    string
	Messages []Message
}

// CompletionResult carries the generated text and token usage.
type CompletionResult struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
