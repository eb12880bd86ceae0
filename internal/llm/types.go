package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// GenerationConfig bounds the length and variability of a completion.
// Zero values are left to the provider's defaults.
type GenerationConfig struct {
	Temperature     float64
	MaxOutputTokens int
	TopP            float64
	TopK            int
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model      string
	Messages   []Message
	Generation *GenerationConfig
}

// CompletionResponse contains the result of an LLM completion request.
// Content is the first text part of the first candidate.
type CompletionResponse struct {
	Content      string
	Candidates   int
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
