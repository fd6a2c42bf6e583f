// Package convo owns the canonical conversation timeline plus the two
// auxiliary indices (last result set, last mentioned entities) used for
// natural-language reference resolution.
package convo

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/waritnan/marque/agent/contract"
)

const maxMentionedEntities = 10

// Config bounds the timeline. Compaction fires once the message count
// reaches CompressThreshold and always leaves the KeepRecentCount most
// recent messages untouched. SummaryTools is the allow-list of tool names
// whose old results survive compaction as one-line summaries.
type Config struct {
	MaxMessages       int      `envconfig:"MAX_MESSAGES" split_words:"true" default:"40"`
	CompressThreshold int      `envconfig:"COMPRESS_THRESHOLD" split_words:"true" default:"30"`
	KeepRecentCount   int      `envconfig:"KEEP_RECENT_COUNT" split_words:"true" default:"10"`
	SummaryTools      []string `envconfig:"SUMMARY_TOOLS" split_words:"true" default:"bookmarks.search,bookmarks.move,folders.create"`
}

func (c Config) Validate() error {
	if c.CompressThreshold <= 0 {
		return fmt.Errorf("%w: compress threshold must be > 0", contractx.ErrValidation)
	}
	if c.KeepRecentCount < 0 || c.KeepRecentCount >= c.CompressThreshold {
		return fmt.Errorf("%w: keep recent count must be in [0, compress threshold)", contractx.ErrValidation)
	}
	if c.MaxMessages <= 0 {
		return fmt.Errorf("%w: max messages must be > 0", contractx.ErrValidation)
	}
	return nil
}

// Manager is created per conversation and mutated strictly sequentially by
// its orchestrator. Independent conversations share nothing, so no locking.
type Manager struct {
	cfg Config

	preamble     string
	messages     []contractx.Message
	lastResults  []contractx.Entity
	lastEntities []contractx.Entity

	summaryAllow map[string]struct{}
	resolvers    []resolver
	now          func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	allow := make(map[string]struct{}, len(cfg.SummaryTools))
	for _, name := range cfg.SummaryTools {
		name = strings.TrimSpace(name)
		if name != "" {
			allow[name] = struct{}{}
		}
	}

	return &Manager{
		cfg:          cfg,
		summaryAllow: allow,
		resolvers:    defaultResolvers(),
		now:          time.Now,
	}, nil
}

// SetPreamble installs the system preamble. It is set at most once per
// manager lifetime: subsequent calls are no-ops. The preamble survives
// Clear but not Reset.
func (m *Manager) SetPreamble(text string) {
	if m.preamble != "" {
		return
	}
	m.preamble = strings.TrimSpace(text)
}

func (m *Manager) HasPreamble() bool {
	return m.preamble != ""
}

// AddMessage appends to the timeline, updates the auxiliary indices from
// tool payloads, and compacts once the threshold is reached.
func (m *Manager) AddMessage(msg contractx.Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = m.now().UTC()
	}
	m.messages = append(m.messages, msg)

	if msg.Role == contractx.RoleTool {
		m.extractEntities(msg)
	}

	if len(m.messages) >= m.cfg.CompressThreshold {
		m.compact()
	}
}

func (m *Manager) Len() int {
	return len(m.messages)
}

// GetHistory returns up to limit most-recent messages for display. The
// preamble is never part of the display history. limit <= 0 means all.
func (m *Manager) GetHistory(limit int) []contractx.Message {
	msgs := m.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]contractx.Message, len(msgs))
	copy(out, msgs)
	return out
}

// MessagesForRequest returns the preamble (when set) followed by up to
// limit most-recent messages, the shape a model request wants.
func (m *Manager) MessagesForRequest(limit int) []contractx.Message {
	if limit <= 0 {
		limit = m.cfg.MaxMessages
	}

	tail := m.messages
	if len(tail) > limit {
		tail = tail[len(tail)-limit:]
	}

	out := make([]contractx.Message, 0, len(tail)+1)
	if m.preamble != "" {
		out = append(out, contractx.Message{
			Role:    contractx.RoleSystem,
			Content: m.preamble,
		})
	}
	out = append(out, tail...)
	return out
}

// Clear wipes the timeline and both auxiliary indices. The preamble stays.
func (m *Manager) Clear() {
	m.messages = nil
	m.lastResults = nil
	m.lastEntities = nil
}

// Reset is Clear plus dropping the preamble, returning the manager to its
// uninitialized state.
func (m *Manager) Reset() {
	m.Clear()
	m.preamble = ""
}

// Snapshot is the lossless export shape: messages plus both auxiliary
// indices, excluding the preamble (reattached by the orchestrator on the
// next session start).
type Snapshot struct {
	Messages              []contractx.Message `json:"messages"`
	LastSearchResults     []contractx.Entity  `json:"last_search_results,omitempty"`
	LastMentionedEntities []contractx.Entity  `json:"last_mentioned_entities,omitempty"`
}

func (m *Manager) Export() Snapshot {
	snap := Snapshot{
		Messages:              make([]contractx.Message, len(m.messages)),
		LastSearchResults:     make([]contractx.Entity, len(m.lastResults)),
		LastMentionedEntities: make([]contractx.Entity, len(m.lastEntities)),
	}
	copy(snap.Messages, m.messages)
	copy(snap.LastSearchResults, m.lastResults)
	copy(snap.LastMentionedEntities, m.lastEntities)
	return snap
}

// Import replaces the timeline and indices with the snapshot content. The
// preamble is untouched either way.
func (m *Manager) Import(snap Snapshot) {
	m.messages = make([]contractx.Message, len(snap.Messages))
	copy(m.messages, snap.Messages)
	m.lastResults = make([]contractx.Entity, len(snap.LastSearchResults))
	copy(m.lastResults, snap.LastSearchResults)
	m.lastEntities = make([]contractx.Entity, len(snap.LastMentionedEntities))
	copy(m.lastEntities, snap.LastMentionedEntities)
}

// ExportJSON and ImportJSON are the byte-level forms the archive stores use.
func (m *Manager) ExportJSON() ([]byte, error) {
	payload, err := json.Marshal(m.Export())
	if err != nil {
		return nil, fmt.Errorf("marshal conversation snapshot: %w", err)
	}
	return payload, nil
}

func (m *Manager) ImportJSON(payload []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return fmt.Errorf("unmarshal conversation snapshot: %w", err)
	}
	m.Import(snap)
	return nil
}

// LastResults exposes the last result set for tests and the orchestrator's
// substitution step.
func (m *Manager) LastResults() []contractx.Entity {
	out := make([]contractx.Entity, len(m.lastResults))
	copy(out, m.lastResults)
	return out
}

func (m *Manager) LastEntities() []contractx.Entity {
	out := make([]contractx.Entity, len(m.lastEntities))
	copy(out, m.lastEntities)
	return out
}

func (m *Manager) rememberEntity(e contractx.Entity) {
	if e.ID == "" {
		return
	}
	// Most recent first, deduped by id.
	kept := make([]contractx.Entity, 0, len(m.lastEntities)+1)
	kept = append(kept, e)
	for _, prev := range m.lastEntities {
		if prev.ID == e.ID {
			continue
		}
		kept = append(kept, prev)
	}
	if len(kept) > maxMentionedEntities {
		kept = kept[:maxMentionedEntities]
	}
	m.lastEntities = kept
}

func (m *Manager) setLastResults(entities []contractx.Entity) {
	m.lastResults = entities
	log.Debug().Int("count", len(entities)).Msg("updated last result set")
}
