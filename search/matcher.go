package search

import "strings"

// pageMatch is one occurrence of a query on a page: the matched normalized
// span plus context windows cut from the raw page text.
type pageMatch struct {
	Before  string
	Matched string
	After   string
}

// findMatches scans one page for cq and returns every non-overlapping
// occurrence in page order. Matching runs over the normalized text so
// hyphenation and odd spacing never split a hit; contexts map the span back
// to the raw text so surrounding words keep their spacing.
func findMatches(pageText string, cq compiledQuery, contextWords int) []pageMatch {
	if cq.empty || pageText == "" {
		return nil
	}
	norm, offsets := normalizeOffsets(pageText)
	if norm == "" {
		return nil
	}

	var spans [][2]int
	if cq.re != nil {
		for _, loc := range cq.re.FindAllStringIndex(norm, -1) {
			spans = append(spans, [2]int{loc[0], loc[1]})
		}
	} else {
		haystack := norm
		if !cq.CaseSensitive {
			haystack = strings.ToLower(norm)
		}
		for pos := 0; pos <= len(haystack)-len(cq.literal); {
			i := strings.Index(haystack[pos:], cq.literal)
			if i < 0 {
				break
			}
			start := pos + i
			end := start + len(cq.literal)
			spans = append(spans, [2]int{start, end})
			// Resume after the hit, never inside it.
			pos = end
		}
	}
	if len(spans) == 0 {
		return nil
	}

	matches := make([]pageMatch, 0, len(spans))
	for _, sp := range spans {
		start, end := sp[0], sp[1]
		// Case folding can shift byte offsets for a few runes; clamp so
		// slicing the unfolded text stays in range.
		if end > len(norm) {
			end = len(norm)
		}
		if start > end {
			start = end
		}
		rawStart, rawEnd := rawSpan(pageText, offsets, start, end)
		matches = append(matches, pageMatch{
			Before:  lastWords(pageText[:rawStart], contextWords),
			Matched: norm[start:end],
			After:   firstWords(pageText[rawEnd:], contextWords),
		})
	}
	return matches
}

// pageContains reports whether cq occurs anywhere on the page. Used for the
// filter pass, which needs a verdict but no contexts.
func pageContains(pageText string, cq compiledQuery) bool {
	if cq.empty || pageText == "" {
		return false
	}
	norm := Normalize(pageText)
	if norm == "" {
		return false
	}
	if cq.re != nil {
		return cq.re.MatchString(norm)
	}
	if !cq.CaseSensitive {
		norm = strings.ToLower(norm)
	}
	return strings.Contains(norm, cq.literal)
}

// lastWords returns the final n whitespace-separated words of s joined by
// single spaces.
func lastWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}

// firstWords returns the leading n whitespace-separated words of s joined
// by single spaces.
func firstWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
