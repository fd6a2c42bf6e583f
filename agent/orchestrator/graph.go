package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/waritnan/marque/agent/contract"
)

type turnInput struct {
	Text     string
	Progress *Progress
}

type turnOutput struct {
	Reply string
}

type turnState struct {
	text     string
	progress *Progress
}

type turnRunner = compose.Runnable[turnInput, turnOutput]

// compileTurnGraph wires the per-turn pipeline: validate the utterance,
// resolve deictic references against recent conversation state, append the
// (possibly rewritten) user message, run the bounded model/tool loop, and
// finalize the reply.
func (o *Orchestrator) compileTurnGraph(ctx context.Context) (turnRunner, error) {
	graph := compose.NewGraph[turnInput, turnOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in turnInput) (*turnState, error) {
			text := strings.TrimSpace(in.Text)
			if text == "" {
				return nil, ErrInvalidMessage
			}
			return &turnState{text: text, progress: in.Progress}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_reference",
		compose.InvokableLambda(func(ctx context.Context, st *turnState) (*turnState, error) {
			st.text = o.resolveReferences(st.text, st.progress)
			return st, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_reference: %w", err)
	}

	if err := graph.AddLambdaNode("append_user",
		compose.InvokableLambda(func(ctx context.Context, st *turnState) (*turnState, error) {
			o.manager.AddMessage(contractx.Message{
				Role:    contractx.RoleUser,
				Content: st.text,
			})
			return st, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node append_user: %w", err)
	}

	if err := graph.AddLambdaNode("run_model_loop",
		compose.InvokableLambda(func(ctx context.Context, st *turnState) (turnOutput, error) {
			reply, err := o.runLoop(ctx, st.progress)
			if err != nil {
				return turnOutput{}, err
			}
			return turnOutput{Reply: reply}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node run_model_loop: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "resolve_reference"},
		{"resolve_reference", "append_user"},
		{"append_user", "run_model_loop"},
		{"run_model_loop", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}

// resolveReferences substitutes resolved identifiers into the utterance.
// Best-effort: an unresolved reference passes through unchanged, and only
// references that carry a concrete id are substituted.
func (o *Orchestrator) resolveReferences(text string, progress *Progress) string {
	ref := o.manager.ResolveReference(text)
	if ref == nil || ref.ID == "" || ref.OriginalText == "" {
		return text
	}

	progress.thinkingStep(fmt.Sprintf("resolved %q to %s", ref.OriginalText, ref.ID))

	replacement := fmt.Sprintf("%s (id: %s)", ref.OriginalText, ref.ID)
	idx := strings.Index(strings.ToLower(text), strings.ToLower(ref.OriginalText))
	if idx < 0 {
		return text
	}
	return text[:idx] + replacement + text[idx+len(ref.OriginalText):]
}
