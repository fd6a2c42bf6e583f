package convo

import (
	"github.com/tidwall/gjson"

	contractx "github.com/waritnan/marque/agent/contract"
)

// extractEntities inspects an appended tool message for either a
// results-array shape or a single-identified-entity shape and updates the
// auxiliary indices so later turns ("open the second one") resolve. This is
// best-effort pattern matching on structurally-tagged payloads, not a
// general parser: a payload that matches neither shape is simply ignored.
func (m *Manager) extractEntities(msg contractx.Message) {
	if msg.Content == "" || !gjson.Valid(msg.Content) {
		return
	}

	data := gjson.Get(msg.Content, "data")
	if !data.Exists() {
		data = gjson.Parse(msg.Content)
	}

	if results := data.Get("results"); results.IsArray() {
		entities := make([]contractx.Entity, 0, len(results.Array()))
		for _, item := range results.Array() {
			e := entityFrom(item)
			if e.ID != "" {
				entities = append(entities, e)
			}
		}
		// A results shape always replaces the previous set, even when empty:
		// ordinals must not resolve against a search the user has moved past.
		m.setLastResults(entities)
		if len(entities) > 0 {
			// The head of a fresh result set is also the most plausible
			// antecedent for a following "it".
			m.rememberEntity(entities[0])
		}
		return
	}

	for _, key := range []string{"bookmark", "folder", "entity"} {
		if obj := data.Get(key); obj.Exists() {
			if e := entityFrom(obj); e.ID != "" {
				m.rememberEntity(e)
			}
			return
		}
	}

	if data.Get("id").Exists() && data.Get("title").Exists() {
		if e := entityFrom(data); e.ID != "" {
			m.rememberEntity(e)
		}
	}
}

func entityFrom(obj gjson.Result) contractx.Entity {
	return contractx.Entity{
		ID:    obj.Get("id").String(),
		Type:  obj.Get("type").String(),
		Title: obj.Get("title").String(),
	}
}
