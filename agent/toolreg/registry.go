package toolreg

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/waritnan/marque/agent/contract"
)

// Executor runs a tool body. It receives only validated, type-coerced
// parameters and may assume required fields are present. Returning an error
// or panicking is permitted; the registry folds both into the result.
type Executor func(ctx context.Context, params map[string]any) (contractx.ToolResult, error)

// Tool is a named, schema-described capability the model may invoke.
// Immutable once registered; re-registering the same name overwrites.
type Tool struct {
	Name        string
	Description string
	Parameters  *Schema
	Execute     Executor
}

// Registry is the single source of truth for what the model may invoke.
// It is expected to be fully populated before any conversation begins and
// is read-mostly afterwards.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool, 8),
	}
}

// Register stores the tool by name. Schema shape violations are logged but
// never rejected; a name collision overwrites the previous tool with a
// warning. Registration order is preserved for catalog projection.
func (r *Registry) Register(tool Tool) error {
	name := strings.TrimSpace(tool.Name)
	if name == "" {
		return fmt.Errorf("%w: tool name is required", contractx.ErrValidation)
	}
	if tool.Execute == nil {
		return fmt.Errorf("%w: tool %s has no executor", contractx.ErrValidation, name)
	}

	for _, issue := range tool.Parameters.structuralIssues() {
		log.Warn().Str("tool", name).Str("issue", issue).Msg("tool schema violation")
	}

	if _, exists := r.tools[name]; exists {
		log.Warn().Str("tool", name).Msg("overwriting previously registered tool")
	} else {
		r.order = append(r.order, name)
	}
	tool.Name = name
	r.tools[name] = tool
	return nil
}

// Get returns the registered tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int {
	return len(r.tools)
}

// ToOpenAIFormat projects every registered tool into the function-calling
// descriptor format. Output order follows registration order, so the catalog
// is deterministic for a fixed registration sequence.
func (r *Registry) ToOpenAIFormat() []contractx.ToolDescriptor {
	out := make([]contractx.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		tool, ok := r.tools[name]
		if !ok {
			continue
		}
		out = append(out, contractx.ToolDescriptor{
			Type: "function",
			Function: contractx.FunctionDescriptor{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters.ToMap(),
			},
		})
	}
	return out
}

// Execute validates params against the tool schema and runs the executor on
// the sanitized map. It never returns a Go error and never lets a panic
// escape: every failure mode becomes a structured ToolResult the model can
// read and react to.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) contractx.ToolResult {
	tool, ok := r.tools[name]
	if !ok {
		return contractx.ToolResult{
			Success: false,
			Error:   fmt.Sprintf("tool %q not found", name),
		}
	}

	validation := ValidateParams(params, tool.Parameters)
	if !validation.Valid {
		return contractx.ToolResult{
			Success: false,
			Error:   fmt.Sprintf("invalid parameters for %s: %s", name, strings.Join(validation.Errors, "; ")),
		}
	}

	return r.run(ctx, tool, validation.Sanitized)
}

func (r *Registry) run(ctx context.Context, tool Tool, sanitized map[string]any) (out contractx.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("tool", tool.Name).Any("panic", rec).Msg("tool executor panicked")
			out = contractx.ToolResult{
				Success: false,
				Error:   fmt.Sprintf("tool %s failed: %v", tool.Name, rec),
			}
		}
	}()

	result, err := tool.Execute(ctx, sanitized)
	if err != nil {
		return contractx.ToolResult{Success: false, Error: err.Error()}
	}
	return result
}
