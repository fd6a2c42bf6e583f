// Package llm implements the model transport contract over the OpenAI
// chat-completions protocol.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/waritnan/marque/agent/contract"
	openrouterx "github.com/waritnan/marque/pkg/openrouter"
)

// ChatClient is the production contractx.ModelClient. One instance is safe
// to share across conversations; it holds no per-conversation state.
type ChatClient struct {
	client      *openaisdk.Client
	model       string
	maxTokens   int
	temperature float64
}

var _ contractx.ModelClient = (*ChatClient)(nil)

func NewChatClient(cfg Config) (*ChatClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := openrouterx.NewClient(cfg.OpenRouter())
	if client == nil {
		return nil, fmt.Errorf("%w: api key is required", contractx.ErrMissingCredentials)
	}

	return &ChatClient{
		client:      client,
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   cfg.MaxCompletionToken,
		temperature: cfg.Temperature,
	}, nil
}

// Chat performs one buffered chat-completions round trip.
func (c *ChatClient) Chat(ctx context.Context, req contractx.ChatRequest) (contractx.ChatResponse, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.buildParams(req))
	if err != nil {
		return contractx.ChatResponse{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return contractx.ChatResponse{}, fmt.Errorf("%w: response has no choices", contractx.ErrModelInvoke)
	}

	msg := resp.Choices[0].Message
	return contractx.ChatResponse{
		Content:   msg.Content,
		ToolCalls: NormalizeToolCallIDs(fromSDKToolCalls(msg.ToolCalls)),
	}, nil
}

// ChatStream performs the same round trip over a token stream, emitting
// per-token callbacks, and converges to the identical final response shape.
// A failed or cancelled stream returns an error and no partial content.
func (c *ChatClient) ChatStream(ctx context.Context, req contractx.ChatRequest, cb contractx.StreamCallbacks) (contractx.ChatResponse, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.buildParams(req))
	defer stream.Close()

	acc := openaisdk.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" && cb.OnToken != nil {
			cb.OnToken(delta)
		}
	}
	if err := stream.Err(); err != nil {
		return contractx.ChatResponse{}, classify(err)
	}
	if len(acc.Choices) == 0 {
		return contractx.ChatResponse{}, fmt.Errorf("%w: stream produced no choices", contractx.ErrModelInvoke)
	}

	final := acc.Choices[0].Message
	calls := NormalizeToolCallIDs(fromSDKToolCalls(final.ToolCalls))
	if cb.OnToolCall != nil {
		for _, call := range calls {
			cb.OnToolCall(call)
		}
	}

	return contractx.ChatResponse{
		Content:   final.Content,
		ToolCalls: calls,
	}, nil
}

// classify maps a provider error onto the fixed failure taxonomy so the
// orchestrator can pick the user-facing message without parsing provider
// specifics.
func classify(err error) error {
	var apierr *openaisdk.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 401, 403:
			return fmt.Errorf("%w: status %d", contractx.ErrMissingCredentials, apierr.StatusCode)
		default:
			return fmt.Errorf("%w: status %d: %v", contractx.ErrModelInvoke, apierr.StatusCode, err)
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", contractx.ErrModelNetwork, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", contractx.ErrModelNetwork, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "api key") || strings.Contains(msg, "api_key") {
		return fmt.Errorf("%w: %v", contractx.ErrMissingCredentials, err)
	}
	if strings.Contains(msg, "connection") || strings.Contains(msg, "no such host") {
		return fmt.Errorf("%w: %v", contractx.ErrModelNetwork, err)
	}
	return fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
}
