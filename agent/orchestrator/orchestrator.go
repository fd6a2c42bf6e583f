// Package orchestrator drives the bounded request → tool-call → continue
// loop that turns one user utterance into one final assistant reply.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/waritnan/marque/agent/contract"
	convox "github.com/waritnan/marque/agent/convo"
	toolregx "github.com/waritnan/marque/agent/toolreg"
)

var (
	ErrInvalidMessage = errors.New("message text is empty")
)

// Config bounds a single user turn. MaxToolCalls is the hard cap on model
// round-trips per turn; MaxHistoryLength bounds the recent history included
// in each request.
type Config struct {
	MaxHistoryLength int    `envconfig:"MAX_HISTORY_LENGTH" split_words:"true" default:"30"`
	MaxToolCalls     int    `envconfig:"MAX_TOOL_CALLS" split_words:"true" default:"5"`
	SystemPrompt     string `envconfig:"SYSTEM_PROMPT" split_words:"true"`
}

func (c Config) Validate() error {
	if c.MaxToolCalls <= 0 {
		return fmt.Errorf("%w: max tool calls must be > 0", contractx.ErrValidation)
	}
	if c.MaxHistoryLength <= 0 {
		return fmt.Errorf("%w: max history length must be > 0", contractx.ErrValidation)
	}
	return nil
}

// Orchestrator owns its collaborators explicitly: the tool registry, the
// conversation manager, and the model transport are injected at
// construction, never ambient.
type Orchestrator struct {
	registry *toolregx.Registry
	manager  *convox.Manager
	client   contractx.ModelClient
	archive  contractx.ArchiveStore

	graphRunner turnRunner

	cfg Config
	now func() time.Time
}

type Option func(*Orchestrator)

// WithArchive attaches an optional conversation archive used by
// SaveSession/RestoreSession.
func WithArchive(store contractx.ArchiveStore) Option {
	return func(o *Orchestrator) {
		o.archive = store
	}
}

func New(
	registry *toolregx.Registry,
	manager *convox.Manager,
	client contractx.ModelClient,
	cfg Config,
	opts ...Option,
) (*Orchestrator, error) {
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if manager == nil {
		return nil, errors.New("conversation manager is required")
	}
	if client == nil {
		return nil, errors.New("model client is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		registry: registry,
		manager:  manager,
		client:   client,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	if preamble := strings.TrimSpace(cfg.SystemPrompt); preamble != "" {
		manager.SetPreamble(preamble)
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Respond handles one user utterance and returns the final assistant reply.
func (o *Orchestrator) Respond(ctx context.Context, text string) (string, error) {
	out, err := o.graphRunner.Invoke(ctx, turnInput{Text: text})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// RespondStream behaves exactly like Respond while additionally emitting
// progress events. The progress channel is an independent side channel: a
// nil Progress, or nil individual callbacks, change nothing about the final
// reply.
func (o *Orchestrator) RespondStream(ctx context.Context, text string, progress *Progress) (string, error) {
	out, err := o.graphRunner.Invoke(ctx, turnInput{Text: text, Progress: progress})
	if err != nil {
		progress.error(err)
		return "", err
	}
	progress.complete(out.Reply)
	return out.Reply, nil
}

// SaveSession exports the conversation (messages + auxiliary indices, no
// preamble) into the attached archive.
func (o *Orchestrator) SaveSession(ctx context.Context, sessionID string) error {
	if o.archive == nil {
		return errors.New("no archive store attached")
	}
	payload, err := o.manager.ExportJSON()
	if err != nil {
		return err
	}
	return o.archive.Save(ctx, sessionID, payload)
}

// RestoreSession imports an archived conversation and reattaches the system
// preamble, which the snapshot deliberately excludes. SetPreamble is a
// no-op when the manager is already initialized.
func (o *Orchestrator) RestoreSession(ctx context.Context, sessionID string) error {
	if o.archive == nil {
		return errors.New("no archive store attached")
	}
	payload, err := o.archive.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := o.manager.ImportJSON(payload); err != nil {
		return err
	}
	if preamble := strings.TrimSpace(o.cfg.SystemPrompt); preamble != "" {
		o.manager.SetPreamble(preamble)
	}
	return nil
}

// UserMessage maps a turn failure onto the small fixed taxonomy of
// user-visible messages.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, contractx.ErrMissingCredentials):
		return "The AI service is not configured: an API key is missing."
	case errors.Is(err, contractx.ErrModelNetwork):
		return "Could not reach the AI service. Check your connection and try again."
	case errors.Is(err, ErrInvalidMessage):
		return "Please enter a message."
	default:
		return "Something went wrong while answering. Your conversation is intact; please try again."
	}
}
