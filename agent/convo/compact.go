package convo

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	contractx "github.com/waritnan/marque/agent/contract"
)

// compact prunes the timeline once it reaches the configured threshold.
// The pruning is lossy by design and irreversible; it is a size bound, not
// a caching layer.
//
// Split: old = everything but the last KeepRecentCount messages, recent =
// that tail. From old, every user/assistant message is kept verbatim —
// conversational intent must never be lost. Tool messages survive only when
// their name is on the summary allow-list, and then only as a one-line
// domain summary of the payload. Everything else is dropped.
func (m *Manager) compact() {
	if len(m.messages) <= m.cfg.KeepRecentCount {
		return
	}

	cut := len(m.messages) - m.cfg.KeepRecentCount
	old := m.messages[:cut]
	recent := m.messages[cut:]

	retained := make([]contractx.Message, 0, len(old))
	dropped := 0
	for _, msg := range old {
		switch msg.Role {
		case contractx.RoleUser, contractx.RoleAssistant:
			retained = append(retained, msg)
		case contractx.RoleTool:
			if _, ok := m.summaryAllow[msg.Name]; !ok {
				dropped++
				continue
			}
			summarized := msg
			// Tool payloads are always JSON objects. Plain text here means a
			// prior pass already summarized this message; it must survive
			// later passes untouched.
			if gjson.Valid(msg.Content) {
				summarized.Content = summarizePayload(msg.Name, msg.Content)
			}
			retained = append(retained, summarized)
		default:
			dropped++
		}
	}

	next := make([]contractx.Message, 0, len(retained)+len(recent))
	next = append(next, retained...)
	next = append(next, recent...)

	log.Debug().
		Int("before", len(m.messages)).
		Int("after", len(next)).
		Int("dropped", dropped).
		Msg("compacted conversation history")

	m.messages = next
}

// summarizePayload condenses a tool payload into a one-line domain summary.
// It reads the same structurally-tagged shapes the entity extraction does;
// an unrecognized payload falls back to a generic completion note.
func summarizePayload(toolName, payload string) string {
	data := gjson.Get(payload, "data")
	if !data.Exists() {
		data = gjson.Parse(payload)
	}

	if results := data.Get("results"); results.IsArray() {
		return fmt.Sprintf("found %d results", len(results.Array()))
	}
	if moved := data.Get("moved"); moved.Exists() {
		return fmt.Sprintf("moved %d bookmarks", moved.Int())
	}
	if deleted := data.Get("deleted"); deleted.Exists() {
		return fmt.Sprintf("deleted %d bookmarks", deleted.Int())
	}
	if title := firstEntityTitle(data); title != "" {
		return fmt.Sprintf("returned %q", title)
	}
	return toolName + " completed"
}

func firstEntityTitle(data gjson.Result) string {
	for _, key := range []string{"bookmark", "folder", "entity"} {
		if obj := data.Get(key); obj.Exists() {
			return obj.Get("title").String()
		}
	}
	if data.Get("id").Exists() {
		return data.Get("title").String()
	}
	return ""
}
