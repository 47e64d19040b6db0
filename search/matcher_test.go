package search

import (
	"errors"
	"testing"
)

func mustCompile(t *testing.T, q Query) compiledQuery {
	t.Helper()
	cq, err := compileQuery(q)
	if err != nil {
		t.Fatalf("compileQuery(%+v): %v", q, err)
	}
	return cq
}

func TestFindMatchesHyphenation(t *testing.T) {
	page := "the field of infor-\nmation retrieval has grown"
	cq := mustCompile(t, Query{Text: "information retrieval"})
	got := findMatches(page, cq, 5)
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	if got[0].Matched != "informationretrieval" {
		t.Errorf("matched = %q, want %q", got[0].Matched, "informationretrieval")
	}
	if got[0].Before != "the field of" {
		t.Errorf("before = %q, want %q", got[0].Before, "the field of")
	}
	if got[0].After != "has grown" {
		t.Errorf("after = %q, want %q", got[0].After, "has grown")
	}
}

func TestFindMatchesRegexYear(t *testing.T) {
	page := "published in 2023 finally"
	cq := mustCompile(t, Query{Text: `\d{4}`, IsRegex: true})
	got := findMatches(page, cq, 2)
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	m := got[0]
	if m.Matched != "2023" {
		t.Errorf("matched = %q, want %q", m.Matched, "2023")
	}
	if m.Before != "published in" {
		t.Errorf("before = %q, want %q", m.Before, "published in")
	}
	if m.After != "finally" {
		t.Errorf("after = %q, want %q", m.After, "finally")
	}
}

func TestFindMatchesCaseInsensitiveDefault(t *testing.T) {
	page := "Neural Networks and neural networks"
	cq := mustCompile(t, Query{Text: "neural networks"})
	got := findMatches(page, cq, 3)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	// Matched text keeps the page's own casing.
	if got[0].Matched != "NeuralNetworks" {
		t.Errorf("first matched = %q, want %q", got[0].Matched, "NeuralNetworks")
	}
	if got[1].Matched != "neuralnetworks" {
		t.Errorf("second matched = %q, want %q", got[1].Matched, "neuralnetworks")
	}
}

func TestFindMatchesCaseSensitive(t *testing.T) {
	page := "RNA rna RNA"
	cq := mustCompile(t, Query{Text: "RNA", CaseSensitive: true})
	if got := findMatches(page, cq, 1); len(got) != 2 {
		t.Errorf("got %d matches, want 2", len(got))
	}
	re := mustCompile(t, Query{Text: "RNA", IsRegex: true, CaseSensitive: true})
	if got := findMatches(page, re, 1); len(got) != 2 {
		t.Errorf("regex got %d matches, want 2", len(got))
	}
}

func TestFindMatchesNonOverlapping(t *testing.T) {
	cq := mustCompile(t, Query{Text: "aa"})
	if got := findMatches("aaaa", cq, 2); len(got) != 2 {
		t.Errorf("literal got %d matches, want 2", len(got))
	}
	re := mustCompile(t, Query{Text: "aa", IsRegex: true})
	if got := findMatches("aaaa", re, 2); len(got) != 2 {
		t.Errorf("regex got %d matches, want 2", len(got))
	}
}

func TestFindMatchesContextWindow(t *testing.T) {
	page := "one two three four five TARGET six seven eight nine ten"
	cq := mustCompile(t, Query{Text: "target"})
	got := findMatches(page, cq, 3)
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	if got[0].Before != "three four five" {
		t.Errorf("before = %q, want %q", got[0].Before, "three four five")
	}
	if got[0].After != "six seven eight" {
		t.Errorf("after = %q, want %q", got[0].After, "six seven eight")
	}
	if got := findMatches(page, cq, 0); got[0].Before != "" || got[0].After != "" {
		t.Errorf("zero-width context = %q / %q, want empty", got[0].Before, got[0].After)
	}
}

func TestFindMatchesEmptyInputs(t *testing.T) {
	cq := mustCompile(t, Query{Text: "term"})
	if got := findMatches("", cq, 5); got != nil {
		t.Errorf("empty page produced %d matches", len(got))
	}
	empty := mustCompile(t, Query{Text: " -\u00ad "})
	if !empty.empty {
		t.Fatal("all-separator query not flagged empty")
	}
	if got := findMatches("some page text", empty, 5); got != nil {
		t.Errorf("empty query produced %d matches", len(got))
	}
	emptyRe := mustCompile(t, Query{Text: "\u00a0\n", IsRegex: true})
	if got := findMatches("some page text", emptyRe, 5); got != nil {
		t.Errorf("empty regex query produced %d matches", len(got))
	}
}

func TestFindMatchesQueryNormalized(t *testing.T) {
	// Separators inside the query disappear too, so a hyphenated query
	// still finds the fused page text.
	page := "wellknown results"
	cq := mustCompile(t, Query{Text: "well-known"})
	if got := findMatches(page, cq, 2); len(got) != 1 {
		t.Errorf("got %d matches, want 1", len(got))
	}
}

func TestCompileQueryInvalidPattern(t *testing.T) {
	_, err := compileQuery(Query{Text: "paper[", IsRegex: true})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("err = %v, want ErrInvalidPattern", err)
	}
	// The same text as a literal is fine.
	if _, err := compileQuery(Query{Text: "paper["}); err != nil {
		t.Fatalf("literal compile: %v", err)
	}
}

func TestPageContains(t *testing.T) {
	cq := mustCompile(t, Query{Text: "sparse"})
	if !pageContains("results on spar-\nse coding", cq) {
		t.Error("hyphenated occurrence not found")
	}
	if pageContains("nothing relevant here", cq) {
		t.Error("false positive")
	}
	re := mustCompile(t, Query{Text: `cod(ing|e)`, IsRegex: true})
	if !pageContains("sparse coding", re) {
		t.Error("regex occurrence not found")
	}
}
