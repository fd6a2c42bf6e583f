package convo

import (
	"testing"

	contractx "github.com/waritnan/marque/agent/contract"
)

func managerWithResults(t *testing.T) *Manager {
	t.Helper()
	m := newTestManager(t, testConfig())
	m.AddMessage(contractx.Message{
		Role: contractx.RoleTool,
		Name: "bookmarks.search",
		Content: `{"results":[` +
			`{"id":"bm-1","type":"bookmark","title":"Go blog"},` +
			`{"id":"bm-2","type":"bookmark","title":"Effective Go"},` +
			`{"id":"bm-3","type":"bookmark","title":"Go wiki"}]}`,
	})
	return m
}

func TestResolveOrdinalWord(t *testing.T) {
	t.Parallel()

	m := managerWithResults(t)
	ref := m.ResolveReference("open the second one")
	if ref == nil {
		t.Fatalf("ResolveReference() = nil")
	}
	if ref.Type != contractx.ReferenceSearchResult || ref.ID != "bm-2" || ref.Index != 1 {
		t.Fatalf("ref = %+v, want search_result bm-2 index 1", ref)
	}
	if ref.OriginalText != "second" {
		t.Fatalf("OriginalText = %q, want second", ref.OriginalText)
	}
}

func TestResolveOrdinalSuffix(t *testing.T) {
	t.Parallel()

	m := managerWithResults(t)
	ref := m.ResolveReference("delete the 3rd")
	if ref == nil {
		t.Fatalf("ResolveReference() = nil")
	}
	if ref.Type != contractx.ReferenceSearchResult || ref.ID != "bm-3" || ref.Index != 2 {
		t.Fatalf("ref = %+v, want search_result bm-3 index 2", ref)
	}
}

func TestResolveOrdinalOutOfRange(t *testing.T) {
	t.Parallel()

	m := managerWithResults(t)
	ref := m.ResolveReference("open the fifth one")
	if ref == nil {
		t.Fatalf("ResolveReference() = nil, want index reference")
	}
	if ref.Type != contractx.ReferenceIndex || ref.ID != "" || ref.Index != 4 {
		t.Fatalf("ref = %+v, want bare index 4 with no id", ref)
	}
}

func TestResolveOrdinalWithoutResults(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testConfig())
	ref := m.ResolveReference("open the second one")
	if ref == nil {
		t.Fatalf("ResolveReference() = nil, want index reference even with no results")
	}
	if ref.Type != contractx.ReferenceIndex || ref.ID != "" || ref.Index != 1 {
		t.Fatalf("ref = %+v, want bare index 1", ref)
	}
}

func TestResolveOrdinalIgnoresSupersededResults(t *testing.T) {
	t.Parallel()

	m := managerWithResults(t)
	m.AddMessage(contractx.Message{
		Role:    contractx.RoleTool,
		Name:    "bookmarks.search",
		Content: `{"results":[]}`,
	})

	// The empty search replaced the earlier result set; an ordinal must not
	// reach back into it.
	ref := m.ResolveReference("open the first one")
	if ref == nil {
		t.Fatalf("ResolveReference() = nil, want index reference")
	}
	if ref.Type != contractx.ReferenceIndex || ref.ID != "" || ref.Index != 0 {
		t.Fatalf("ref = %+v, want bare index 0 with no id", ref)
	}
}

func TestResolvePronoun(t *testing.T) {
	t.Parallel()

	m := managerWithResults(t)
	// The head of a fresh result set is the pronoun antecedent.
	ref := m.ResolveReference("delete it")
	if ref == nil {
		t.Fatalf("ResolveReference() = nil")
	}
	if ref.Type != contractx.ReferenceEntity || ref.ID != "bm-1" || ref.Index != -1 {
		t.Fatalf("ref = %+v, want entity bm-1", ref)
	}
}

func TestResolvePronounPrefersMostRecentEntity(t *testing.T) {
	t.Parallel()

	m := managerWithResults(t)
	m.AddMessage(contractx.Message{
		Role:    contractx.RoleTool,
		Name:    "folders.create",
		Content: `{"folder":{"id":"fd-1","type":"folder","title":"Reading List"}}`,
	})

	ref := m.ResolveReference("rename that folder")
	if ref == nil || ref.ID != "fd-1" {
		t.Fatalf("ref = %+v, want most recent entity fd-1", ref)
	}
}

func TestResolvePronounWithoutContext(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testConfig())
	if ref := m.ResolveReference("delete it"); ref != nil {
		t.Fatalf("ref = %+v, want nil with no context", ref)
	}
}

func TestResolveRelative(t *testing.T) {
	t.Parallel()

	m := managerWithResults(t)
	ref := m.ResolveReference("go back to the previous one")
	if ref == nil {
		t.Fatalf("ResolveReference() = nil")
	}
	if ref.Type != contractx.ReferenceEntity || ref.ID != "bm-1" {
		t.Fatalf("ref = %+v, want entity bm-1", ref)
	}
}

func TestResolveRelativeFallsBackToResultTail(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testConfig())
	m.setLastResults([]contractx.Entity{
		{ID: "bm-1", Type: "bookmark", Title: "Go blog"},
		{ID: "bm-2", Type: "bookmark", Title: "Effective Go"},
	})

	ref := m.ResolveReference("the last one")
	if ref == nil {
		t.Fatalf("ResolveReference() = nil")
	}
	if ref.Type != contractx.ReferenceSearchResult || ref.ID != "bm-2" || ref.Index != 1 {
		t.Fatalf("ref = %+v, want tail of results bm-2", ref)
	}
}

func TestResolveRelativeWinsOverOrdinal(t *testing.T) {
	t.Parallel()

	m := managerWithResults(t)
	ref := m.ResolveReference("move the last one next to the second folder")
	if ref == nil {
		t.Fatalf("ResolveReference() = nil")
	}
	if ref.OriginalText != "the last one" && ref.OriginalText != "last" {
		t.Fatalf("OriginalText = %q, want relative phrase to win", ref.OriginalText)
	}
	if ref.ID != "bm-1" {
		t.Fatalf("ref = %+v, want relative resolution to bm-1", ref)
	}
}

func TestResolveLiteralTitle(t *testing.T) {
	t.Parallel()

	m := managerWithResults(t)
	ref := m.ResolveReference("remove go blog from my bookmarks")
	if ref == nil {
		t.Fatalf("ResolveReference() = nil")
	}
	if ref.Type != contractx.ReferenceEntity || ref.ID != "bm-1" {
		t.Fatalf("ref = %+v, want entity bm-1 by title", ref)
	}
	if ref.OriginalText != "Go blog" {
		t.Fatalf("OriginalText = %q, want display title", ref.OriginalText)
	}
}

func TestResolveNoMatch(t *testing.T) {
	t.Parallel()

	m := managerWithResults(t)
	if ref := m.ResolveReference("create a new folder called archive"); ref != nil {
		t.Fatalf("ref = %+v, want nil for plain request", ref)
	}
	if ref := m.ResolveReference("   "); ref != nil {
		t.Fatalf("ref = %+v, want nil for blank input", ref)
	}
}
