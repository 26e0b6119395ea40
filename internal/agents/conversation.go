package agents

import (
	"time"

	"helios/internal/adapters/ai"
)

// Message is one entry in a conversation transcript.
type Message struct {
	Role       ai.MessageRole `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []ai.ToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolName   string         `json:"tool_name,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Tokens     int            `json:"tokens,omitempty"`
}

// Conversation accumulates the transcript of one analysis run and tracks
// an estimated token count.
type Conversation struct {
	systemPrompt string
	history      []Message
	tokens       int
}

// NewConversation creates a conversation seeded with a system prompt.
func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{
		systemPrompt: systemPrompt,
		tokens:       estimateTokens(systemPrompt),
	}
}

// AddUserMessage appends a user turn.
func (c *Conversation) AddUserMessage(content string) {
	c.append(Message{
		Role:    ai.RoleUser,
		Content: content,
	})
}

// AddAssistantMessage appends a model turn, with any tool calls it made.
func (c *Conversation) AddAssistantMessage(content string, toolCalls []ai.ToolCall) {
	c.append(Message{
		Role:      ai.RoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	})
}

// AddToolResult appends a tool result turn tagged with the originating
// call ID, so the model can correlate results with its requests.
func (c *Conversation) AddToolResult(toolCallID, toolName, content string) {
	c.append(Message{
		Role:       ai.RoleTool,
		Content:    content,
		ToolCallID: toolCallID,
		ToolName:   toolName,
	})
}

func (c *Conversation) append(msg Message) {
	msg.Timestamp = time.Now()
	msg.Tokens = estimateTokens(msg.Content)
	for _, tc := range msg.ToolCalls {
		msg.Tokens += estimateTokens(tc.Name) + estimateTokens(tc.Arguments)
	}
	c.history = append(c.history, msg)
	c.tokens += msg.Tokens
}

// History returns the transcript, excluding the system prompt.
func (c *Conversation) History() []Message {
	return c.history
}

// TokenCount returns the estimated token footprint of the transcript.
func (c *Conversation) TokenCount() int {
	return c.tokens
}

// ModelMessages renders the transcript in the shape the chat provider
// expects, with the system prompt first.
func (c *Conversation) ModelMessages() []ai.Message {
	out := make([]ai.Message, 0, len(c.history)+1)
	out = append(out, ai.Message{Role: ai.RoleSystem, Content: c.systemPrompt})
	for _, msg := range c.history {
		out = append(out, ai.Message{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCalls:  msg.ToolCalls,
			ToolCallID: msg.ToolCallID,
		})
	}
	return out
}

// estimateTokens approximates token usage at four characters per token.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(text)/4 + 1
}
