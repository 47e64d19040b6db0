package search

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sys/unix"

	pdftext "find-papers/search/pdf"
)

// PageExtractor turns a document on disk into ordered page text.
type PageExtractor interface {
	Extract(path string) ([]Page, error)
}

// ExtractorFunc adapts a function to the PageExtractor interface.
type ExtractorFunc func(path string) ([]Page, error)

// Extract calls f.
func (f ExtractorFunc) Extract(path string) ([]Page, error) { return f(path) }

// LedongthucExtractor reads PDFs with the ledongthuc reader. A page whose
// text cannot be decoded yields an empty string instead of failing the
// document; only a file that cannot be opened or parsed at all errors.
type LedongthucExtractor struct{}

// Extract returns one Page per physical page, 1-based, in order.
func (LedongthucExtractor) Extract(path string) (pages []Page, err error) {
	if !SniffPDF(path) {
		return nil, fmt.Errorf("%w: %s: missing pdf signature", ErrExtractionFailed, path)
	}

	data, err := ReadDocument(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, path, err)
	}

	// The reader panics on some malformed cross reference tables; turn
	// that into a normal extraction error.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, path, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, path, err)
	}

	total := reader.NumPage()
	pages = make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		text := ""
		func() {
			// A single bad page stays empty, the rest of the document
			// still gets searched.
			defer func() { _ = recover() }()
			page := reader.Page(i)
			if page.V.IsNull() {
				return
			}
			content, err := page.GetPlainText(nil)
			if err != nil {
				return
			}
			text = sanitizePageText(content)
		}()
		pages = append(pages, Page{Index: i, Text: text})
	}

	if len(pages) > 0 && allPagesEmpty(pages) {
		// Some scanned or oddly encoded PDFs defeat the structured
		// reader; the content stream fallback gets a shot when built in.
		if alt, aerr := pdftext.ExtractPages(path, 0, 0); aerr == nil {
			for i := 0; i < len(pages) && i < len(alt); i++ {
				pages[i].Text = sanitizePageText(alt[i])
			}
		}
	}
	return pages, nil
}

func allPagesEmpty(pages []Page) bool {
	for _, p := range pages {
		if p.Text != "" {
			return false
		}
	}
	return true
}

// ReadDocument returns the raw bytes of a document, for extraction or for
// handing to a viewer.
func ReadDocument(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	// Done with these bytes; a corpus scan should not churn the page cache.
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED)
	return data, nil
}
