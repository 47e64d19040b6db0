package search

import (
	"fmt"
	"os"
	"strings"
)

// RenderMarkdown formats matches as a markdown report: a title, a total
// count, then one section per contiguous run of the same file with
// globally numbered match entries. Pure formatting, no I/O.
func RenderMarkdown(matches []Match) string {
	var b strings.Builder
	b.WriteString("# PDF Search Results\n\n")
	fmt.Fprintf(&b, "Total matches found: %d\n\n", len(matches))

	currentFile := ""
	for i, m := range matches {
		if m.FilePath != currentFile {
			currentFile = m.FilePath
			fmt.Fprintf(&b, "\n## File: `%s`\n", m.FilePath)
			fmt.Fprintf(&b, "**Filename:** %s\n\n", m.FileName)
		}
		fmt.Fprintf(&b, "### Match %d (Page %d)\n\n", i+1, m.PageNumber)
		fmt.Fprintf(&b, "**Page:** %d\n\n", m.PageNumber)
		b.WriteString("**Context:**\n\n")
		fmt.Fprintf(&b, "...%s **%s** %s...\n\n", m.ContextBefore, m.MatchedText, m.ContextAfter)
		b.WriteString("---\n\n")
	}
	return b.String()
}

// WriteMarkdown renders matches and writes the report to path.
func WriteMarkdown(matches []Match, path string) error {
	if err := os.WriteFile(path, []byte(RenderMarkdown(matches)), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrReportWrite, err)
	}
	return nil
}
