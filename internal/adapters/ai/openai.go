package ai

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"helios/pkg/errors"
	"helios/pkg/logger"
)

// Ensure OpenAIClient implements Client
var _ Client = (*OpenAIClient)(nil)

// OpenAIClient implements chat completion using the official OpenAI Go SDK.
type OpenAIClient struct {
	client  openai.Client
	timeout time.Duration
	log     *logger.Logger
}

// NewOpenAIClient creates a new OpenAI chat client.
func NewOpenAIClient(apiKey string, timeout time.Duration) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "openai API key is required")
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIClient{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		timeout: timeout,
		log:     logger.Get().With("component", "openai_chat"),
	}, nil
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Chat sends a chat completion request and converts the response to our format.
func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	for _, msg := range req.Messages {
		params.Messages = append(params.Messages, convertMessage(msg))
	}

	for _, tool := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  shared.FunctionParameters(tool.Parameters),
		}))
	}

	response, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		c.log.Warnf("Chat completion failed: %v", err)
		return nil, &ProviderError{Provider: c.Name(), Err: err}
	}

	chatResp := &ChatResponse{
		ID:    response.ID,
		Model: response.Model,
		Usage: Usage{
			PromptTokens:     int(response.Usage.PromptTokens),
			CompletionTokens: int(response.Usage.CompletionTokens),
			TotalTokens:      int(response.Usage.TotalTokens),
		},
	}

	for _, choice := range response.Choices {
		msg := Message{
			Role:    RoleAssistant,
			Content: choice.Message.Content,
		}
		for _, tc := range choice.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		chatResp.Choices = append(chatResp.Choices, Choice{
			Index:        int(choice.Index),
			Message:      msg,
			FinishReason: FinishReason(choice.FinishReason),
		})
	}

	return chatResp, nil
}

// convertMessage maps our message shape onto the SDK's param unions.
func convertMessage(msg Message) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case RoleSystem:
		return openai.SystemMessage(msg.Content)
	case RoleTool:
		return openai.ToolMessage(msg.Content, msg.ToolCallID)
	case RoleAssistant:
		assistant := openai.ChatCompletionAssistantMessageParam{}
		if msg.Content != "" {
			assistant.Content.OfString = openai.String(msg.Content)
		}
		for _, tc := range msg.ToolCalls {
			assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				},
			})
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
	default:
		return openai.UserMessage(msg.Content)
	}
}
