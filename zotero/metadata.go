package zotero

// Metadata is the bibliographic record behind one PDF attachment. Title,
// Year, Authors, and PDFAttachmentKey may be empty when the library record
// lacks them.
type Metadata struct {
	CiteKey          string `json:"citekey"`
	Title            string `json:"title,omitempty"`
	Year             string `json:"year,omitempty"`
	Authors          string `json:"authors,omitempty"`
	Link             string `json:"zotero_link"`
	PDFAttachmentKey string `json:"pdf_attachment_key,omitempty"`
}

// Index maps attachment filenames, exactly as stored on disk, to their
// bibliographic records.
type Index map[string]Metadata

// Lookup returns the record for fileName. The second result is false when
// the library has no attachment by that name.
func (ix Index) Lookup(fileName string) (Metadata, bool) {
	m, ok := ix[fileName]
	return m, ok
}
