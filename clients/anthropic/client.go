package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"pepperbackend/clients"
)

const defaultModel = "claude-sonnet-4-20250514"

// Client implements the clients.AnthropicClient interface on top of the
// official SDK
type Client struct {
	sdk       anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClient creates a new Anthropic messages client. An empty model falls
// back to the default Sonnet model.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}

	return &Client{
		sdk:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: 2048,
	}
}

// CompleteMessage sends the conversation to Claude and returns the full reply
func (c *Client) CompleteMessage(
	ctx context.Context,
	system string,
	messages []clients.ChatMessage,
) (*clients.ChatCompletion, error) {
	params, err := c.buildParams(system, messages)
	if err != nil {
		return nil, err
	}

	message, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	var content strings.Builder
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			content.WriteString(textBlock.Text)
		}
	}

	return &clients.ChatCompletion{
		Content:      content.String(),
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

// StreamMessage streams the reply, invoking onDelta for each text fragment,
// and returns the accumulated completion once the stream ends
func (c *Client) StreamMessage(
	ctx context.Context,
	system string,
	messages []clients.ChatMessage,
	onDelta func(string),
) (*clients.ChatCompletion, error) {
	params, err := c.buildParams(system, messages)
	if err != nil {
		return nil, err
	}

	stream := c.sdk.Messages.NewStreaming(ctx, params)

	accumulated := anthropic.Message{}
	var content strings.Builder

	for stream.Next() {
		event := stream.Current()
		if err := accumulated.Accumulate(event); err != nil {
			return nil, fmt.Errorf("failed to accumulate stream event: %w", err)
		}

		if deltaEvent, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if textDelta, ok := deltaEvent.Delta.AsAny().(anthropic.TextDelta); ok {
				content.WriteString(textDelta.Text)
				onDelta(textDelta.Text)
			}
		}
	}

	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("message stream failed: %w", err)
	}

	return &clients.ChatCompletion{
		Content:      content.String(),
		InputTokens:  int(accumulated.Usage.InputTokens),
		OutputTokens: int(accumulated.Usage.OutputTokens),
	}, nil
}

func (c *Client) buildParams(system string, messages []clients.ChatMessage) (anthropic.MessageNewParams, error) {
	sdkMessages := make([]anthropic.MessageParam, 0, len(messages))
	for _, message := range messages {
		switch message.Role {
		case clients.ChatRoleUser:
			sdkMessages = append(sdkMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(message.Content)))
		case clients.ChatRoleAssistant:
			sdkMessages = append(sdkMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(message.Content)))
		default:
			return anthropic.MessageNewParams{}, fmt.Errorf("unsupported chat role: %s", message.Role)
		}
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  sdkMessages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	return params, nil
}
