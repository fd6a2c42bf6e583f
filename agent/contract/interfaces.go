package contract

import "context"

// ModelClient is the transport contract the orchestrator consumes. Both
// methods must converge to the same final response shape; the stream
// callbacks are an optional side channel, not part of correctness.
type ModelClient interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	ChatStream(ctx context.Context, req ChatRequest, cb StreamCallbacks) (ChatResponse, error)
}

// StreamCallbacks surfaces per-token and per-tool-call events during a
// streamed model call. Either field may be nil.
type StreamCallbacks struct {
	OnToken    func(text string)
	OnToolCall func(call ToolCall)
}

// ArchiveStore persists a conversation snapshot between sessions. The system
// preamble is excluded from the snapshot; the orchestrator reattaches it on
// restore.
type ArchiveStore interface {
	Save(ctx context.Context, sessionID string, payload []byte) error
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Delete(ctx context.Context, sessionID string) error
}
