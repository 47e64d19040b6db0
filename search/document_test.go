package search

import (
	"testing"

	"find-papers/zotero"
)

func compileAll(t *testing.T, queries ...Query) []compiledQuery {
	t.Helper()
	compiled, err := compileQueries(queries)
	if err != nil {
		t.Fatalf("compileQueries: %v", err)
	}
	return compiled
}

func TestEvaluateDocumentFilterGates(t *testing.T) {
	pages := []Page{
		{Index: 1, Text: "beta appears early"},
		{Index: 2, Text: "beta again later"},
	}
	queries := compileAll(t,
		Query{Text: "alpha", Role: RoleFilter},
		Query{Text: "beta"},
	)
	if got := evaluateDocument("/corpus/doc2.pdf", pages, queries, 1, nil); got != nil {
		t.Fatalf("document without filter term produced %d matches", len(got))
	}

	pages[0].Text = "alpha beta appears early"
	got := evaluateDocument("/corpus/doc1.pdf", pages, queries, 1, nil)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	for _, m := range got {
		if m.MatchedText != "beta" {
			t.Errorf("filter occurrence reported: %q", m.MatchedText)
		}
	}
}

func TestEvaluateDocumentSingleQueryFallback(t *testing.T) {
	pages := []Page{{Index: 1, Text: "gamma rays and gamma decay"}}
	untagged := compileAll(t, Query{Text: "gamma"})
	tagged := compileAll(t, Query{Text: "gamma", Role: RoleParallel})

	a := evaluateDocument("/corpus/doc.pdf", pages, untagged, 2, nil)
	b := evaluateDocument("/corpus/doc.pdf", pages, tagged, 2, nil)
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("got %d and %d matches, want 2 and 2", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("match %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestEvaluateDocumentAllFiltersFallsBackToFirst(t *testing.T) {
	pages := []Page{{Index: 1, Text: "alpha and beta share a page"}}
	queries := compileAll(t,
		Query{Text: "alpha", Role: RoleFilter},
		Query{Text: "beta", Role: RoleFilter},
	)
	got := evaluateDocument("/corpus/doc.pdf", pages, queries, 1, nil)
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	// With nothing tagged parallel, the first query of the list reports.
	if got[0].MatchedText != "alpha" {
		t.Errorf("matched = %q, want %q", got[0].MatchedText, "alpha")
	}

	// A missing second filter still rejects the document outright.
	queries = compileAll(t,
		Query{Text: "alpha", Role: RoleFilter},
		Query{Text: "missing", Role: RoleFilter},
	)
	if got := evaluateDocument("/corpus/doc.pdf", pages, queries, 1, nil); got != nil {
		t.Errorf("rejected document produced %d matches", len(got))
	}
}

func TestEvaluateDocumentOrdering(t *testing.T) {
	pages := []Page{
		{Index: 1, Text: "x then y"},
		{Index: 2, Text: "y then x"},
	}
	queries := compileAll(t,
		Query{Text: "x", Role: RoleParallel, HighlightColor: "#ff0000"},
		Query{Text: "y", Role: RoleParallel, HighlightColor: "#00ff00"},
	)
	got := evaluateDocument("/corpus/doc.pdf", pages, queries, 1, nil)
	if len(got) != 4 {
		t.Fatalf("got %d matches, want 4", len(got))
	}
	// Query-major, then page order within each query.
	wantPages := []int{1, 2, 1, 2}
	wantText := []string{"x", "x", "y", "y"}
	wantColor := []string{"#ff0000", "#ff0000", "#00ff00", "#00ff00"}
	for i, m := range got {
		if m.PageNumber != wantPages[i] || m.MatchedText != wantText[i] || m.HighlightColor != wantColor[i] {
			t.Errorf("match %d = page %d %q %s", i, m.PageNumber, m.MatchedText, m.HighlightColor)
		}
	}
}

func TestEvaluateDocumentNoDedup(t *testing.T) {
	// Two parallel queries matching the same span both report it.
	pages := []Page{{Index: 1, Text: "shared token"}}
	queries := compileAll(t,
		Query{Text: "token", Role: RoleParallel},
		Query{Text: "token", Role: RoleParallel},
	)
	if got := evaluateDocument("/corpus/doc.pdf", pages, queries, 1, nil); len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
}

func TestEvaluateDocumentMetadata(t *testing.T) {
	meta := &zotero.Metadata{
		CiteKey: "lovelace2023sparse",
		Link:    "zotero://select/library/items/ABCD1234",
	}
	pages := []Page{{Index: 3, Text: "sparse coding revisited"}}
	queries := compileAll(t, Query{Text: "sparse"})
	got := evaluateDocument("/corpus/paper.pdf", pages, queries, 1, meta)
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	m := got[0]
	if m.FileName != "paper.pdf" || m.PageNumber != 3 {
		t.Errorf("match = %s page %d", m.FileName, m.PageNumber)
	}
	if m.ZoteroLink != meta.Link {
		t.Errorf("link = %q", m.ZoteroLink)
	}
	if m.ZoteroMetadata == nil || m.ZoteroMetadata.CiteKey != "lovelace2023sparse" {
		t.Errorf("metadata = %+v", m.ZoteroMetadata)
	}
}

func TestEvaluateDocumentEmptyQueries(t *testing.T) {
	pages := []Page{{Index: 1, Text: "anything"}}
	if got := evaluateDocument("/corpus/doc.pdf", pages, nil, 1, nil); got != nil {
		t.Errorf("empty query list produced %d matches", len(got))
	}
}
