package driven

import (
	"context"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// LLMService is a generation model capable of tool calling.
//
// Implementations may include:
//   - OpenAI (gpt-4o, gpt-4o-mini)
//   - Anthropic (Claude)
//   - Ollama (local models with tool support)
type LLMService interface {
	// Chat sends the conversation and available tools. The response holds
	// either tool calls or final content.
	Chat(ctx context.Context, messages []ChatMessage, tools []domain.ToolDefinition, opts ChatOptions) (*ChatResponse, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of RoleSystem, RoleUser, RoleAssistant or RoleTool.
	Role string

	// Content is the message text.
	Content string

	// ToolCalls are the calls requested by an assistant message.
	ToolCalls []ToolCall

	// ToolCallID links a RoleTool message to the call it answers.
	ToolCallID string
}

// ToolCall is a model request to invoke a named tool.
type ToolCall struct {
	// ID is the provider-assigned call identifier.
	ID string

	// Name is the tool name.
	Name string

	// Arguments is the raw JSON argument object.
	Arguments string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// ChatResponse is one model turn.
type ChatResponse struct {
	// Content is the final text when no tools were requested.
	Content string

	// ToolCalls is non-empty when the model wants tool output first.
	ToolCalls []ToolCall
}

// WantsTools returns true if the response requests tool invocations.
func (r *ChatResponse) WantsTools() bool {
	return r != nil && len(r.ToolCalls) > 0
}
