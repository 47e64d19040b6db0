package search

import "regexp"

// Control characters that PDF text extraction leaks into page text: the C0
// range except tab, newline and carriage return, plus DEL and the C1 range
// from mojibake decodes. Whitespace structure stays untouched so word
// windows and offsets keep meaning.
var controlCharRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F\x{80}-\x{9F}]`)

// sanitizePageText strips control characters from extracted page text.
// Everything printable passes through unchanged, including U+FFFD runes
// left behind by undecodable glyphs.
func sanitizePageText(s string) string {
	return controlCharRegex.ReplaceAllString(s, "")
}
