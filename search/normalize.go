package search

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// isSeparator reports whether r is one of the whitespace or hyphen variants
// stripped before matching. PDF extractors emit these freely inside words:
// soft hyphens at line breaks, no-break spaces from justified layouts, plain
// newlines between glyph runs. Only this exact set is removed; every other
// rune, including other Unicode spaces, passes through untouched.
func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	case '\u00a0', '\u2007', '\u202f': // no-break, figure, narrow no-break space
		return true
	case '-', '\u00ad', '\u2010', '\u2011': // soft hyphen, hyphen, non-breaking hyphen
		return true
	}
	return false
}

// separatorStripper removes the separator set. Shared by Normalize and
// normalizeOffsets so query text and page text always agree on what
// disappears.
var separatorStripper = runes.Remove(runes.Predicate(isSeparator))

// Normalize strips the separator set from s, preserving all remaining runes
// in order. Applying it twice gives the same result as applying it once.
func Normalize(s string) string {
	out, _, _ := transform.String(separatorStripper, s)
	return out
}

// normalizeOffsets strips separators from page text while recording, for
// every byte of the normalized result, the byte offset in s of the rune
// that produced it. The table lets match spans found in normalized text be
// mapped back to the raw page, so context windows keep the original
// word spacing.
func normalizeOffsets(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	offsets := make([]int, 0, len(s))
	for i, r := range s {
		if isSeparator(r) {
			continue
		}
		n := b.Len()
		b.WriteRune(r)
		for n < b.Len() {
			offsets = append(offsets, i)
			n++
		}
	}
	return b.String(), offsets
}

// rawSpan maps the normalized byte span [start, end) back to a byte span in
// the raw text using the offset table from normalizeOffsets.
func rawSpan(raw string, offsets []int, start, end int) (int, int) {
	if start >= len(offsets) {
		return len(raw), len(raw)
	}
	rawStart := offsets[start]
	if end <= start {
		return rawStart, rawStart
	}
	if end > len(offsets) {
		end = len(offsets)
	}
	last := offsets[end-1]
	_, size := utf8.DecodeRuneInString(raw[last:])
	return rawStart, last + size
}
