package ai

import (
	"context"
	"fmt"
)

// Client is the LLM capability the analysis layer consumes: given a
// conversation and a set of callable-tool definitions, the model returns
// either a final answer or a list of requested tool calls.
type Client interface {
	Name() string

	// Chat sends a chat completion request with tool calling support.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Tools       []ToolDefinition
	Temperature float64
	MaxTokens   int
}

// Message represents a single message in the conversation.
type Message struct {
	Role       MessageRole
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string // For tool responses
}

// MessageRole defines the role of a message sender.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ToolDefinition describes a tool/function that the model can call.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON schema
}

// ChatResponse represents the response from a chat completion.
type ChatResponse struct {
	ID      string
	Model   string
	Choices []Choice
	Usage   Usage
}

// Choice represents a single completion choice.
type Choice struct {
	Index        int
	Message      Message
	FinishReason FinishReason
}

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop      FinishReason = "stop"
	FinishReasonLength    FinishReason = "length"
	FinishReasonToolCalls FinishReason = "tool_calls"
)

// ToolCall represents a tool invocation request from the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON-encoded arguments
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ProviderError signals a provider-level failure (network, 5xx, quota).
// The analysis runner retries these with backoff.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("ai provider %s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}
