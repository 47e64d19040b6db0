//go:build pdfcpu
// +build pdfcpu

package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Default caps for fallback text extraction.
const (
	DefaultPageCap    = 200        // maximum number of pages to process
	DefaultPerPageCap = 128 * 1024 // 128 KiB per-page text cap
)

// ExtractPages pulls per-page text out of a PDF's raw content streams with
// pdfcpu. It is a fallback for documents the structured reader cannot
// decode: string literals are scraped straight from the page operators, so
// the result is rougher than real extraction but usually searchable.
// pageCap and perPageCap bound the work, <=0 meaning the defaults.
//
// Guarded by the 'pdfcpu' build tag.
func ExtractPages(path string, pageCap, perPageCap int) ([]string, error) {
	if pageCap <= 0 {
		pageCap = DefaultPageCap
	}
	if perPageCap <= 0 {
		perPageCap = DefaultPerPageCap
	}

	// Panic protection around library call.
	defer func() { _ = recover() }()

	// Dump content streams (PDF syntax) for all pages into a temp dir.
	tmpDir, err := os.MkdirTemp("", "papers_pdfcpu_*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := api.ExtractContentFile(path, tmpDir, nil, nil); err != nil {
		return nil, fmt.Errorf("pdfcpu ExtractContentFile: %w", err)
	}

	ents, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	// Order pages by the number embedded in the dump filename; plain name
	// order would put page 10 before page 2.
	type numbered struct {
		page int
		text string
	}
	var pages []numbered
	for _, de := range ents {
		if de.IsDir() {
			continue
		}
		if len(pages) >= pageCap {
			break
		}
		data, _ := os.ReadFile(filepath.Join(tmpDir, de.Name()))
		if len(data) == 0 {
			continue
		}
		raw := parseStringLiterals(string(data), perPageCap)
		txt := printableNormalize(raw)
		if len(txt) > perPageCap {
			txt = txt[:perPageCap]
		}
		pages = append(pages, numbered{pageNumber(de.Name()), txt})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].page < pages[j].page })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.text
	}
	return out, nil
}

// parseStringLiterals collects text within balanced parentheses, honoring
// backslash escapes, and caps output size.
func parseStringLiterals(s string, maxOut int) string {
	var out strings.Builder
	depth := 0
	escape := false
	in := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !in {
			if c == '(' {
				in = true
				depth = 1
			}
			continue
		}
		if escape {
			out.WriteByte(c)
			escape = false
			if out.Len() >= maxOut {
				return out.String()
			}
			continue
		}
		switch c {
		case '\\':
			escape = true
		case '(':
			depth++
			out.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				in = false
				out.WriteByte(' ')
			} else {
				out.WriteByte(c)
			}
		default:
			out.WriteByte(c)
		}
		if out.Len() >= maxOut {
			return out.String()
		}
	}
	return out.String()
}

// printableNormalize collapses non-printable runes to space and normalizes
// whitespace to single spaces. Accented and other non-ASCII letters stay,
// paper text is full of them.
func printableNormalize(s string) string {
	printable := strings.Map(func(r rune) rune {
		if !unicode.IsPrint(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(printable), " ")
}

// pageNumber parses the trailing digit run in a content dump filename.
func pageNumber(name string) int {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	end := len(name)
	for end > 0 && name[end-1] >= '0' && name[end-1] <= '9' {
		end--
	}
	n := 0
	for _, c := range name[end:] {
		n = n*10 + int(c-'0')
	}
	return n
}
