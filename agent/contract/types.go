package contract

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in the conversation timeline. The ordered message
// sequence held by the context manager is the conversation's sole source
// of truth; messages are append-only within a turn.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a model-issued request to invoke a tool. Arguments is the raw
// JSON string exactly as the provider returned it; parsing it is the
// orchestrator's job so a malformed payload stays a tool-level error.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult is the only shape a tool execution may produce. Executor
// failures are folded into Error; nothing crosses the registry boundary
// as a panic or unhandled error.
type ToolResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Payload renders the result as the JSON string fed back to the model as
// the content of a tool message.
func (r ToolResult) Payload() string {
	raw, err := json.Marshal(r)
	if err != nil {
		return `{"success":false,"error":"unencodable tool result"}`
	}
	return string(raw)
}

// Entity is a bookmark-domain object surfaced by a tool result and tracked
// by the context manager's auxiliary indices for reference resolution.
type Entity struct {
	ID    string `json:"id"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title"`
}

type ReferenceType string

const (
	ReferenceEntity       ReferenceType = "entity"
	ReferenceSearchResult ReferenceType = "search_result"
	ReferenceIndex        ReferenceType = "index"
)

// ResolvedReference is the outcome of mapping a deictic phrase ("the second
// one", "it") onto recent conversation state. Index is 0-based into the last
// result set; -1 means no positional information. A ReferenceIndex with no ID
// means the user named a position that has nothing behind it, which is a
// different situation from no usable context at all (nil).
type ResolvedReference struct {
	Type         ReferenceType `json:"type"`
	ID           string        `json:"id,omitempty"`
	Index        int           `json:"index"`
	OriginalText string        `json:"original_text"`
}

// ChatRequest is the provider-agnostic request the orchestrator hands to the
// model transport.
type ChatRequest struct {
	Messages   []Message
	Tools      []ToolDescriptor
	ToolChoice string
}

// ChatResponse is the converged shape both the buffered and the streamed
// transport paths must produce.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolDescriptor is one entry of the function-calling catalog in the model's
// descriptor format: {"type":"function","function":{name,description,parameters}}.
type ToolDescriptor struct {
	Type     string             `json:"type"`
	Function FunctionDescriptor `json:"function"`
}

type FunctionDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Stage labels a progress transition on the optional streaming side channel.
type Stage string

const (
	StageThinking      Stage = "thinking"
	StageToolCalling   Stage = "tool_calling"
	StageToolExecuting Stage = "tool_executing"
	StageResponding    Stage = "responding"
)
