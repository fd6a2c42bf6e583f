package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/waritnan/marque/agent/contract"
)

// runLoop executes up to MaxToolCalls model round-trips. Each iteration
// rebuilds the request from the current history and the full tool catalog;
// a response without tool calls ends the turn, one with tool calls executes
// them in the order received and loops. When the cap is reached the loop
// stops regardless of what the model still wants and returns whatever
// content exists.
//
// A transport failure aborts only this turn: everything appended before the
// failure (the user message included) stays, so a retry keeps its context.
func (o *Orchestrator) runLoop(ctx context.Context, progress *Progress) (string, error) {
	lastContent := ""

	for iteration := 0; iteration < o.cfg.MaxToolCalls; iteration++ {
		progress.stage(contractx.StageThinking)

		req := contractx.ChatRequest{
			Messages:   o.manager.MessagesForRequest(o.cfg.MaxHistoryLength),
			Tools:      o.registry.ToOpenAIFormat(),
			ToolChoice: "auto",
		}

		resp, err := o.chat(ctx, req, progress)
		if err != nil {
			classified := classifyTransportError(err)
			log.Warn().Err(err).Int("iteration", iteration).Msg("model transport failure, turn aborted")
			return "", classified
		}

		if len(resp.ToolCalls) == 0 {
			progress.stage(contractx.StageResponding)
			o.manager.AddMessage(contractx.Message{
				Role:    contractx.RoleAssistant,
				Content: resp.Content,
			})
			return resp.Content, nil
		}

		if resp.Content != "" {
			lastContent = resp.Content
		}

		progress.stage(contractx.StageToolCalling)
		o.manager.AddMessage(contractx.Message{
			Role:      contractx.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		progress.stage(contractx.StageToolExecuting)
		for _, call := range resp.ToolCalls {
			result := o.executeCall(ctx, call, progress)
			// Each tool-result message carries the id of the call that
			// produced it, preserving the 1:1 correlation the model needs.
			o.manager.AddMessage(contractx.Message{
				Role:       contractx.RoleTool,
				Name:       call.Name,
				ToolCallID: call.ID,
				Content:    result.Payload(),
			})
		}
	}

	log.Warn().Int("max_tool_calls", o.cfg.MaxToolCalls).Msg("tool call cap reached")
	if lastContent == "" {
		lastContent = "I hit the tool call limit for this request before finishing. Please try a narrower request."
	}
	o.manager.AddMessage(contractx.Message{
		Role:    contractx.RoleAssistant,
		Content: lastContent,
	})
	progress.stage(contractx.StageResponding)
	return lastContent, nil
}

func (o *Orchestrator) chat(ctx context.Context, req contractx.ChatRequest, progress *Progress) (contractx.ChatResponse, error) {
	if progress.wantsStream() {
		return o.client.ChatStream(ctx, req, contractx.StreamCallbacks{
			OnToken: progress.OnToken,
			OnToolCall: func(call contractx.ToolCall) {
				progress.thinkingStep(fmt.Sprintf("calling %s", call.Name))
			},
		})
	}
	return o.client.Chat(ctx, req)
}

// executeCall parses the call's JSON arguments and runs the tool. A parse
// failure is a tool-level error fed back to the model, never a fatal one.
func (o *Orchestrator) executeCall(ctx context.Context, call contractx.ToolCall, progress *Progress) contractx.ToolResult {
	progress.thinkingStep(fmt.Sprintf("executing %s", call.Name))

	params := map[string]any{}
	if trimmed := strings.TrimSpace(call.Arguments); trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &params); err != nil {
			return contractx.ToolResult{
				Success: false,
				Error:   fmt.Sprintf("invalid tool arguments for %s: %v", call.Name, err),
			}
		}
	}

	return o.registry.Execute(ctx, call.Name, params)
}

// classifyTransportError maps a transport failure onto the fixed taxonomy:
// missing credentials, network failure, or generic invoke failure. Errors
// already wrapped in a sentinel pass through; otherwise the message is
// inspected for a status code or an API-key phrase.
func classifyTransportError(err error) error {
	switch {
	case errors.Is(err, contractx.ErrMissingCredentials),
		errors.Is(err, contractx.ErrModelNetwork),
		errors.Is(err, contractx.ErrModelInvoke):
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", contractx.ErrModelNetwork, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "api_key") ||
		strings.Contains(msg, "status 401") || strings.Contains(msg, "status 403") ||
		strings.Contains(msg, "unauthorized"):
		return fmt.Errorf("%w: %v", contractx.ErrMissingCredentials, err)
	case strings.Contains(msg, "connection") || strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "no such host") || strings.Contains(msg, "network"):
		return fmt.Errorf("%w: %v", contractx.ErrModelNetwork, err)
	default:
		return fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
}
