package convo

import (
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/waritnan/marque/agent/contract"
)

// Reference resolution is inherently heuristic: a pluggable, ordered list of
// matcher strategies, each mapping text to an optional resolution. The first
// strategy that produces a resolution wins; exact input/output pairs are
// pinned in tests rather than asserting general completeness.
type resolver struct {
	name  string
	match func(m *Manager, text string) *contractx.ResolvedReference
}

func defaultResolvers() []resolver {
	return []resolver{
		{name: "relative", match: matchRelative},
		{name: "ordinal", match: matchOrdinal},
		{name: "pronoun", match: matchPronoun},
		{name: "title", match: matchTitle},
	}
}

// ResolveReference maps a deictic phrase in text onto recent conversation
// state. It returns nil only when no strategy matches anything, i.e. no
// usable context exists at all.
func (m *Manager) ResolveReference(text string) *contractx.ResolvedReference {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return nil
	}
	for _, r := range m.resolvers {
		if ref := r.match(m, lowered); ref != nil {
			return ref
		}
	}
	return nil
}

var (
	relativePattern = regexp.MustCompile(`\b(?:the\s+)?(previous|last)(?:\s+(?:one|bookmark|folder|result))?\b`)
	ordinalSuffix   = regexp.MustCompile(`\b(\d+)(?:st|nd|rd|th)\b`)
	ordinalWord     = regexp.MustCompile(`\b(first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth)\b`)
	pronounPattern  = regexp.MustCompile(`\b(it|this|that)(?:\s+(?:one|bookmark|folder|project|result))?\b`)
)

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

// matchRelative binds "previous"/"last" to the most recently mentioned
// entity, falling back to the tail of the last result set.
func matchRelative(m *Manager, text string) *contractx.ResolvedReference {
	loc := relativePattern.FindString(text)
	if loc == "" {
		return nil
	}

	if len(m.lastEntities) > 0 {
		return &contractx.ResolvedReference{
			Type:         contractx.ReferenceEntity,
			ID:           m.lastEntities[0].ID,
			Index:        -1,
			OriginalText: loc,
		}
	}
	if n := len(m.lastResults); n > 0 {
		return &contractx.ResolvedReference{
			Type:         contractx.ReferenceSearchResult,
			ID:           m.lastResults[n-1].ID,
			Index:        n - 1,
			OriginalText: loc,
		}
	}
	return nil
}

// matchOrdinal resolves ordinal words and suffixed cardinals ("3rd") against
// the last result set by 1-based position. An in-range position yields the
// backing result; an out-of-range position still yields the index, without
// an id, so "named a position but nothing there" stays distinguishable from
// "no idea what you mean".
func matchOrdinal(m *Manager, text string) *contractx.ResolvedReference {
	position := 0
	original := ""

	if match := ordinalWord.FindString(text); match != "" {
		position = ordinalWords[match]
		original = match
	} else if groups := ordinalSuffix.FindStringSubmatch(text); groups != nil {
		n, err := strconv.Atoi(groups[1])
		if err != nil || n <= 0 {
			return nil
		}
		position = n
		original = groups[0]
	}
	if position == 0 {
		return nil
	}

	if position <= len(m.lastResults) {
		return &contractx.ResolvedReference{
			Type:         contractx.ReferenceSearchResult,
			ID:           m.lastResults[position-1].ID,
			Index:        position - 1,
			OriginalText: original,
		}
	}
	return &contractx.ResolvedReference{
		Type:         contractx.ReferenceIndex,
		Index:        position - 1,
		OriginalText: original,
	}
}

// matchPronoun resolves "it"/"this"/"that" phrases to the most recently
// mentioned entity.
func matchPronoun(m *Manager, text string) *contractx.ResolvedReference {
	match := pronounPattern.FindString(text)
	if match == "" || len(m.lastEntities) == 0 {
		return nil
	}
	return &contractx.ResolvedReference{
		Type:         contractx.ReferenceEntity,
		ID:           m.lastEntities[0].ID,
		Index:        -1,
		OriginalText: match,
	}
}

// matchTitle finds a literal substring match of any recently mentioned
// entity's display title.
func matchTitle(m *Manager, text string) *contractx.ResolvedReference {
	for _, e := range m.lastEntities {
		title := strings.ToLower(strings.TrimSpace(e.Title))
		if title == "" {
			continue
		}
		if strings.Contains(text, title) {
			return &contractx.ResolvedReference{
				Type:         contractx.ReferenceEntity,
				ID:           e.ID,
				Index:        -1,
				OriginalText: e.Title,
			}
		}
	}
	return nil
}
