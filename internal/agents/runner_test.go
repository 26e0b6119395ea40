package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helios/internal/adapters/ai"
	"helios/internal/adapters/broker"
	"helios/internal/tools"
)

// scriptedClient replays a fixed sequence of responses. Each Chat call
// consumes one entry; an entry with err set fails the call.
type scriptedClient struct {
	script []scriptedTurn
	calls  int
	seen   []ai.ChatRequest
}

type scriptedTurn struct {
	resp *ai.ChatResponse
	err  error
}

func (c *scriptedClient) Name() string { return "scripted" }

func (c *scriptedClient) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	c.seen = append(c.seen, req)
	if c.calls >= len(c.script) {
		return nil, fmt.Errorf("script exhausted after %d calls", c.calls)
	}
	turn := c.script[c.calls]
	c.calls++
	return turn.resp, turn.err
}

func finalAnswer(content string) scriptedTurn {
	return scriptedTurn{resp: &ai.ChatResponse{
		Choices: []ai.Choice{{
			Message:      ai.Message{Role: ai.RoleAssistant, Content: content},
			FinishReason: ai.FinishReasonStop,
		}},
		Usage: ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}}
}

func toolCallTurn(calls ...ai.ToolCall) scriptedTurn {
	return scriptedTurn{resp: &ai.ChatResponse{
		Choices: []ai.Choice{{
			Message:      ai.Message{Role: ai.RoleAssistant, ToolCalls: calls},
			FinishReason: ai.FinishReasonToolCalls,
		}},
	}}
}

func providerFailure() scriptedTurn {
	return scriptedTurn{err: &ai.ProviderError{Provider: "scripted", Err: fmt.Errorf("upstream 503")}}
}

// runnerFixture wires a registry with a recording echo tool, a store with
// one agent and a runner over the scripted client.
func runnerFixture(t *testing.T, client ai.Client, cfg RunnerConfig) (*Runner, *tools.Registry, *Store) {
	t.Helper()

	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(tools.New("echo", "echoes its input", "test",
		[]tools.Parameter{{Name: "value", Type: tools.TypeString, Required: true}},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{"echo": args["value"]}, nil
		})))
	require.NoError(t, registry.Register(tools.New("flaky", "always rate limited", "test", nil,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return nil, broker.NewAPIError(broker.CategoryRateLimited, "slow down", nil)
		})))

	store := NewStore(registry, false)
	require.NoError(t, store.Save(&Definition{
		Name:         "analyst",
		Model:        "gpt-4o",
		SystemPrompt: "You are an analyst.",
		ToolNames:    []string{"echo", "flaky"},
	}))

	return NewRunner(store, registry, client, cfg), registry, store
}

func TestRunner_Analyze(t *testing.T) {
	t.Run("immediate final answer", func(t *testing.T) {
		client := &scriptedClient{script: []scriptedTurn{finalAnswer("all quiet")}}
		runner, _, _ := runnerFixture(t, client, RunnerConfig{})

		res, err := runner.Analyze(context.Background(), "analyst", "status?")
		require.NoError(t, err)
		assert.Equal(t, "all quiet", res.FinalAnswer)
		assert.Equal(t, 1, res.Iterations)
		assert.Empty(t, res.ToolCalls)
		assert.NotEmpty(t, res.SessionID)
		assert.Equal(t, 15, res.Usage.TotalTokens)
	})

	t.Run("tool round trip feeds results back in request order", func(t *testing.T) {
		client := &scriptedClient{script: []scriptedTurn{
			toolCallTurn(
				ai.ToolCall{ID: "call_a", Name: "echo", Arguments: `{"value":"first"}`},
				ai.ToolCall{ID: "call_b", Name: "echo", Arguments: `{"value":"second"}`},
			),
			finalAnswer("done"),
		}}
		runner, _, _ := runnerFixture(t, client, RunnerConfig{})

		res, err := runner.Analyze(context.Background(), "analyst", "echo twice")
		require.NoError(t, err)
		assert.Equal(t, "done", res.FinalAnswer)
		assert.Equal(t, 2, res.Iterations)

		require.Len(t, res.ToolCalls, 2)
		assert.Equal(t, "call_a", res.ToolCalls[0].ID)
		assert.Equal(t, "call_b", res.ToolCalls[1].ID)
		assert.Contains(t, res.ToolCalls[0].Result, "first")
		assert.Contains(t, res.ToolCalls[1].Result, "second")

		// second model request carries the tool results as tool turns
		require.Len(t, client.seen, 2)
		second := client.seen[1]
		var toolTurns []ai.Message
		for _, m := range second.Messages {
			if m.Role == ai.RoleTool {
				toolTurns = append(toolTurns, m)
			}
		}
		require.Len(t, toolTurns, 2)
		assert.Equal(t, "call_a", toolTurns[0].ToolCallID)
		assert.Equal(t, "call_b", toolTurns[1].ToolCallID)
	})

	t.Run("request order survives out of order completion", func(t *testing.T) {
		client := &scriptedClient{script: []scriptedTurn{
			toolCallTurn(
				ai.ToolCall{ID: "call_a", Name: "slow", Arguments: `{}`},
				ai.ToolCall{ID: "call_b", Name: "fast", Arguments: `{}`},
			),
			finalAnswer("done"),
		}}
		runner, registry, store := runnerFixture(t, client, RunnerConfig{})

		// the first requested tool blocks until the second has finished,
		// forcing completion order fast-then-slow
		fastDone := make(chan struct{})
		require.NoError(t, registry.Register(tools.New("slow", "waits for fast", "test", nil,
			func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				select {
				case <-fastDone:
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				return map[string]interface{}{"finished": "second"}, nil
			})))
		require.NoError(t, registry.Register(tools.New("fast", "finishes first", "test", nil,
			func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				close(fastDone)
				return map[string]interface{}{"finished": "first"}, nil
			})))
		require.NoError(t, store.Save(&Definition{
			Name:         "analyst",
			Model:        "gpt-4o",
			SystemPrompt: "You are an analyst.",
			ToolNames:    []string{"slow", "fast"},
		}))

		res, err := runner.Analyze(context.Background(), "analyst", "race them")
		require.NoError(t, err)

		require.Len(t, res.ToolCalls, 2)
		assert.Equal(t, "call_a", res.ToolCalls[0].ID)
		assert.Contains(t, res.ToolCalls[0].Result, "second")
		assert.Equal(t, "call_b", res.ToolCalls[1].ID)
		assert.Contains(t, res.ToolCalls[1].Result, "first")

		// the transcript sent back to the model keeps the same order
		require.Len(t, client.seen, 2)
		var toolTurns []ai.Message
		for _, m := range client.seen[1].Messages {
			if m.Role == ai.RoleTool {
				toolTurns = append(toolTurns, m)
			}
		}
		require.Len(t, toolTurns, 2)
		assert.Equal(t, "call_a", toolTurns[0].ToolCallID)
		assert.Equal(t, "call_b", toolTurns[1].ToolCallID)
	})

	t.Run("out of scope tool call is folded, not fatal", func(t *testing.T) {
		client := &scriptedClient{script: []scriptedTurn{
			toolCallTurn(ai.ToolCall{ID: "call_x", Name: "get_account", Arguments: `{}`}),
			finalAnswer("recovered"),
		}}
		runner, registry, _ := runnerFixture(t, client, RunnerConfig{})
		// get_account exists in the registry but not in the agent's tool set
		require.NoError(t, registry.Register(tools.New("get_account", "account", "account", nil,
			func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return "should not run", nil
			})))

		res, err := runner.Analyze(context.Background(), "analyst", "try it")
		require.NoError(t, err)
		assert.Equal(t, "recovered", res.FinalAnswer)

		require.Len(t, res.ToolCalls, 1)
		assert.Contains(t, res.ToolCalls[0].Error, "OUT_OF_SCOPE")
	})

	t.Run("failing tool folds its category into the transcript", func(t *testing.T) {
		client := &scriptedClient{script: []scriptedTurn{
			toolCallTurn(ai.ToolCall{ID: "call_f", Name: "flaky", Arguments: `{}`}),
			finalAnswer("noted the failure"),
		}}
		runner, _, _ := runnerFixture(t, client, RunnerConfig{})

		res, err := runner.Analyze(context.Background(), "analyst", "use flaky")
		require.NoError(t, err)
		assert.Equal(t, "noted the failure", res.FinalAnswer)

		require.Len(t, res.ToolCalls, 1)
		var payload map[string]string
		require.NoError(t, json.Unmarshal([]byte(res.ToolCalls[0].Error), &payload))
		assert.Equal(t, "RATE_LIMITED", payload["code"])
	})

	t.Run("iteration limit", func(t *testing.T) {
		client := &scriptedClient{script: []scriptedTurn{
			toolCallTurn(ai.ToolCall{ID: "c1", Name: "echo", Arguments: `{"value":"x"}`}),
			toolCallTurn(ai.ToolCall{ID: "c2", Name: "echo", Arguments: `{"value":"y"}`}),
			finalAnswer("never reached"),
		}}
		runner, _, _ := runnerFixture(t, client, RunnerConfig{MaxIterations: 2})

		_, err := runner.Analyze(context.Background(), "analyst", "loop forever")
		var limitErr *IterationLimitExceededError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, 2, limitErr.Limit)
		assert.Equal(t, 2, client.calls)
	})

	t.Run("model retries then gives up", func(t *testing.T) {
		client := &scriptedClient{script: []scriptedTurn{
			providerFailure(), providerFailure(), providerFailure(),
		}}
		runner, _, _ := runnerFixture(t, client, RunnerConfig{
			ModelRetries: 3,
			RetryBackoff: time.Millisecond,
		})

		_, err := runner.Analyze(context.Background(), "analyst", "anyone there?")
		assert.ErrorIs(t, err, ErrModelUnavailable)

		var modelErr *ModelUnavailableError
		require.ErrorAs(t, err, &modelErr)
		assert.Equal(t, 3, modelErr.Attempts)
		assert.Equal(t, 3, client.calls)
	})

	t.Run("transient model failure recovers", func(t *testing.T) {
		client := &scriptedClient{script: []scriptedTurn{
			providerFailure(),
			finalAnswer("back online"),
		}}
		runner, _, _ := runnerFixture(t, client, RunnerConfig{
			ModelRetries: 3,
			RetryBackoff: time.Millisecond,
		})

		res, err := runner.Analyze(context.Background(), "analyst", "status?")
		require.NoError(t, err)
		assert.Equal(t, "back online", res.FinalAnswer)
	})

	t.Run("stale tool reference detected at run start", func(t *testing.T) {
		client := &scriptedClient{script: []scriptedTurn{finalAnswer("unused")}}
		runner, registry, _ := runnerFixture(t, client, RunnerConfig{})
		require.NoError(t, registry.SetEnabled("flaky", false))

		_, err := runner.Analyze(context.Background(), "analyst", "hello")
		var staleErr *StaleToolReferenceError
		require.ErrorAs(t, err, &staleErr)
		assert.Equal(t, "flaky", staleErr.Tool)
		assert.Zero(t, client.calls)
	})

	t.Run("unknown agent", func(t *testing.T) {
		client := &scriptedClient{}
		runner, _, _ := runnerFixture(t, client, RunnerConfig{})

		_, err := runner.Analyze(context.Background(), "nobody", "hello")
		assert.ErrorIs(t, err, ErrAgentNotFound)
	})
}
