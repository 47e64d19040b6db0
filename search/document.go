package search

import (
	"path/filepath"

	"find-papers/zotero"
)

// Page is one physical page of a document. Index is 1-based. Text is the
// raw extracted text, empty when extraction of this page failed.
type Page struct {
	Index int
	Text  string
}

// Match is one reported occurrence of a parallel query.
type Match struct {
	FilePath      string `json:"file_path"`
	FileName      string `json:"file_name"`
	PageNumber    int    `json:"page_number"`
	ContextBefore string `json:"context_before"`
	MatchedText   string `json:"matched_text"`
	ContextAfter  string `json:"context_after"`

	// ZoteroLink and ZoteroMetadata are set when the file is a known
	// library attachment.
	ZoteroLink     string           `json:"zotero_link,omitempty"`
	ZoteroMetadata *zotero.Metadata `json:"zotero_metadata,omitempty"`

	// HighlightColor carries the originating query's color to the result
	// browser. Not part of the export formats.
	HighlightColor string `json:"-"`
}

// evaluateDocument runs the full query set over one document's pages.
// Filters gate first: any filter absent from every page rejects the
// document. Then each parallel query reports all its occurrences, query by
// query, pages in order. When nothing is tagged parallel the first query of
// the list stands in, so a plain single-term search needs no role tagging.
func evaluateDocument(path string, pages []Page, queries []compiledQuery, contextWords int, meta *zotero.Metadata) []Match {
	if len(queries) == 0 {
		return nil
	}

	var filters, parallels []compiledQuery
	for _, q := range queries {
		switch q.Role {
		case RoleFilter:
			filters = append(filters, q)
		case RoleParallel:
			parallels = append(parallels, q)
		}
	}

	for _, f := range filters {
		satisfied := false
		for _, page := range pages {
			if pageContains(page.Text, f) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return nil
		}
	}

	reported := parallels
	if len(reported) == 0 {
		reported = queries[:1]
	}

	fileName := filepath.Base(path)
	var link string
	if meta != nil {
		link = meta.Link
	}

	var results []Match
	for _, q := range reported {
		for _, page := range pages {
			for _, m := range findMatches(page.Text, q, contextWords) {
				results = append(results, Match{
					FilePath:       path,
					FileName:       fileName,
					PageNumber:     page.Index,
					ContextBefore:  m.Before,
					MatchedText:    m.Matched,
					ContextAfter:   m.After,
					ZoteroLink:     link,
					ZoteroMetadata: meta,
					HighlightColor: q.HighlightColor,
				})
			}
		}
	}
	return results
}
