package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"helios/internal/adapters/ai"
	"helios/internal/metrics"
	"helios/internal/tools"
	"helios/pkg/logger"
)

// RunnerConfig bounds a single analysis run.
type RunnerConfig struct {
	MaxIterations int
	ModelRetries  int
	RetryBackoff  time.Duration
	ToolTimeout   time.Duration
	Temperature   float64
}

// ToolCallRecord is the trace of one dispatched tool call.
type ToolCallRecord struct {
	ID        string        `json:"id"`
	Tool      string        `json:"tool"`
	Arguments string        `json:"arguments"`
	Result    string        `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Iteration int           `json:"iteration"`
}

// Result is the outcome of a completed analysis run.
type Result struct {
	SessionID   string           `json:"session_id"`
	Agent       string           `json:"agent"`
	Model       string           `json:"model"`
	FinalAnswer string           `json:"final_answer"`
	Iterations  int              `json:"iterations"`
	ToolCalls   []ToolCallRecord `json:"tool_calls,omitempty"`
	Usage       ai.Usage         `json:"usage"`
	StartedAt   time.Time        `json:"started_at"`
	Duration    time.Duration    `json:"duration"`
}

// Runner drives the analysis loop: build context, call the model, dispatch
// any requested tool calls, feed results back, repeat until the model
// produces a final answer or the iteration bound is hit.
type Runner struct {
	store    *Store
	registry *tools.Registry
	client   ai.Client
	cfg      RunnerConfig
	log      *logger.Logger
}

// NewRunner constructs a runner.
func NewRunner(store *Store, registry *tools.Registry, client ai.Client, cfg RunnerConfig) *Runner {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}
	if cfg.ModelRetries <= 0 {
		cfg.ModelRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = 30 * time.Second
	}

	return &Runner{
		store:    store,
		registry: registry,
		client:   client,
		cfg:      cfg,
		log:      logger.Get().With("component", "analysis_runner"),
	}
}

// Analyze runs one analysis session for the named agent.
func (r *Runner) Analyze(ctx context.Context, agentName, prompt string) (result *Result, err error) {
	start := time.Now()
	iterations := 0
	defer func() {
		metrics.RecordAnalysisRun(agentName, time.Since(start), iterations, err)
	}()

	def, err := r.store.Get(agentName)
	if err != nil {
		return nil, err
	}

	// Re-validate tool references at run start. Tools may have been
	// disabled since the agent was stored.
	for _, name := range def.ToolNames {
		d, gerr := r.registry.Get(name)
		if gerr != nil || !d.Enabled {
			return nil, &StaleToolReferenceError{Agent: agentName, Tool: name}
		}
	}

	defs := tools.AIDefinitions(r.registry.ExportSchema(def.ToolNames...))

	sessionID := uuid.NewString()
	log := r.log.With("session_id", sessionID, "agent", agentName)
	log.Infow("Analysis run started", "model", def.Model, "tools", len(defs))

	conv := NewConversation(def.SystemPrompt)
	conv.AddUserMessage(prompt)

	res := &Result{
		SessionID: sessionID,
		Agent:     agentName,
		Model:     def.Model,
		StartedAt: start,
	}

	temperature := def.Temperature
	if temperature == 0 {
		temperature = r.cfg.Temperature
	}

	for iterations < r.cfg.MaxIterations {
		iterations++
		res.Iterations = iterations

		resp, merr := r.callModel(ctx, ai.ChatRequest{
			Model:       def.Model,
			Messages:    conv.ModelMessages(),
			Tools:       defs,
			Temperature: temperature,
		})
		if merr != nil {
			return nil, merr
		}

		res.Usage.PromptTokens += resp.Usage.PromptTokens
		res.Usage.CompletionTokens += resp.Usage.CompletionTokens
		res.Usage.TotalTokens += resp.Usage.TotalTokens

		if len(resp.Choices) == 0 {
			return nil, &ModelUnavailableError{Model: def.Model, Attempts: 1, Err: fmt.Errorf("empty response")}
		}
		choice := resp.Choices[0]
		conv.AddAssistantMessage(choice.Message.Content, choice.Message.ToolCalls)

		if len(choice.Message.ToolCalls) == 0 {
			res.FinalAnswer = choice.Message.Content
			res.Duration = time.Since(start)
			log.Infow("Analysis run finished", "iterations", iterations, "tool_calls", len(res.ToolCalls))
			return res, nil
		}

		records := r.dispatchToolCalls(ctx, def, choice.Message.ToolCalls, iterations)
		for _, rec := range records {
			res.ToolCalls = append(res.ToolCalls, rec)
			content := rec.Result
			if rec.Error != "" {
				content = rec.Error
			}
			conv.AddToolResult(rec.ID, rec.Tool, content)
		}
	}

	return nil, &IterationLimitExceededError{Agent: agentName, Limit: r.cfg.MaxIterations}
}

// callModel calls the chat provider, retrying provider-level failures with
// linear backoff. Non-provider errors fail immediately.
func (r *Runner) callModel(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	var lastErr error
	attempts := r.cfg.ModelRetries

	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := r.client.Chat(ctx, req)
		metrics.RecordModelCall(req.Model, usageIn(resp), usageOut(resp), err)
		if err == nil {
			return resp, nil
		}

		var provErr *ai.ProviderError
		if !errors.As(err, &provErr) {
			return nil, err
		}
		lastErr = err

		if attempt < attempts {
			metrics.ModelRetries.WithLabelValues(req.Model).Inc()
			r.log.Warnw("Model call failed, retrying", "model", req.Model, "attempt", attempt, "error", err)
			// exponential backoff: base, 2x base, 4x base, ...
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.cfg.RetryBackoff << (attempt - 1)):
			}
		}
	}

	return nil, &ModelUnavailableError{Model: req.Model, Attempts: attempts, Err: lastErr}
}

// dispatchToolCalls executes the model's tool calls concurrently and
// returns their records in request order regardless of completion order.
// Individual failures are folded into the record, never propagated, so a
// broken tool cannot abort the run.
func (r *Runner) dispatchToolCalls(ctx context.Context, def *Definition, calls []ai.ToolCall, iteration int) []ToolCallRecord {
	records := make([]ToolCallRecord, len(calls))

	var wg conc.WaitGroup
	for i, call := range calls {
		i, call := i, call
		wg.Go(func() {
			records[i] = r.executeToolCall(ctx, def, call, iteration)
		})
	}
	wg.Wait()

	return records
}

func (r *Runner) executeToolCall(ctx context.Context, def *Definition, call ai.ToolCall, iteration int) ToolCallRecord {
	rec := ToolCallRecord{
		ID:        call.ID,
		Tool:      call.Name,
		Arguments: call.Arguments,
		Iteration: iteration,
	}
	start := time.Now()
	defer func() { rec.Duration = time.Since(start) }()

	if !def.AllowsTool(call.Name) {
		rec.Error = errorPayload("OUT_OF_SCOPE", fmt.Sprintf("tool %q is not available to this agent", call.Name))
		return rec
	}

	var args map[string]interface{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			rec.Error = errorPayload("INVALID_ARGUMENTS", fmt.Sprintf("arguments are not valid JSON: %v", err))
			return rec
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.ToolTimeout)
	defer cancel()

	result, err := r.registry.Execute(callCtx, call.Name, args)
	if err != nil {
		rec.Error = errorPayload(errorCode(err), err.Error())
		return rec
	}

	data, err := json.Marshal(result)
	if err != nil {
		rec.Error = errorPayload("UNKNOWN", fmt.Sprintf("marshal result: %v", err))
		return rec
	}
	rec.Result = string(data)
	return rec
}

// errorPayload renders a tool failure as the JSON object fed back to the
// model in place of a result.
func errorPayload(code, message string) string {
	data, _ := json.Marshal(map[string]string{
		"error": message,
		"code":  code,
	})
	return string(data)
}

// errorCode maps registry errors onto stable codes for the model.
func errorCode(err error) string {
	var execErr *tools.ExecutionError
	if errors.As(err, &execErr) {
		return string(execErr.Category)
	}
	var paramErr *tools.InvalidParametersError
	if errors.As(err, &paramErr) {
		return "INVALID_ARGUMENTS"
	}
	return "UNKNOWN"
}

func usageIn(resp *ai.ChatResponse) int {
	if resp == nil {
		return 0
	}
	return resp.Usage.PromptTokens
}

func usageOut(resp *ai.ChatResponse) int {
	if resp == nil {
		return 0
	}
	return resp.Usage.CompletionTokens
}
