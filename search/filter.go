package search

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// sniffLimit bounds the header read. The format allows junk ahead of the
// signature but readers only honor it within the first kilobyte.
const sniffLimit = 1024

var pdfMagic = []byte("%PDF-")

// SniffPDF reports whether the file starts like a PDF document. It reads at
// most sniffLimit bytes, so misnamed files (HTML error pages saved as .pdf
// by download tools) are rejected without running the parser. Unreadable
// files fail the sniff.
func SniffPDF(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, sniffLimit)
	n, _ := io.ReadFull(f, buf)
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED)
	return bytes.Contains(buf[:n], pdfMagic)
}
