package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helios/internal/adapters/ai"
)

func TestConversation(t *testing.T) {
	t.Run("transcript order and roles", func(t *testing.T) {
		conv := NewConversation("You are an analyst.")
		conv.AddUserMessage("How is AAPL doing?")
		conv.AddAssistantMessage("", []ai.ToolCall{
			{ID: "call_1", Name: "get_latest_quote", Arguments: `{"symbol":"AAPL"}`},
		})
		conv.AddToolResult("call_1", "get_latest_quote", `{"bid_price":187.2}`)
		conv.AddAssistantMessage("AAPL trades around 187.", nil)

		history := conv.History()
		require.Len(t, history, 4)
		assert.Equal(t, ai.RoleUser, history[0].Role)
		assert.Equal(t, ai.RoleAssistant, history[1].Role)
		assert.Equal(t, ai.RoleTool, history[2].Role)
		assert.Equal(t, "call_1", history[2].ToolCallID)
		assert.Equal(t, "get_latest_quote", history[2].ToolName)
		assert.Equal(t, ai.RoleAssistant, history[3].Role)
	})

	t.Run("model messages start with system prompt", func(t *testing.T) {
		conv := NewConversation("system prompt here")
		conv.AddUserMessage("hello")

		msgs := conv.ModelMessages()
		require.Len(t, msgs, 2)
		assert.Equal(t, ai.RoleSystem, msgs[0].Role)
		assert.Equal(t, "system prompt here", msgs[0].Content)
		assert.Equal(t, ai.RoleUser, msgs[1].Role)
	})

	t.Run("token estimate grows with content", func(t *testing.T) {
		conv := NewConversation("prompt")
		before := conv.TokenCount()
		conv.AddUserMessage("a reasonably long message that should add tokens")
		assert.Greater(t, conv.TokenCount(), before)
	})
}
