//go:build !pdfcpu
// +build !pdfcpu

package pdf

import "errors"

// ErrDisabled is returned when the content stream fallback is not built in.
var ErrDisabled = errors.New("pdfcpu fallback disabled")

// ExtractPages is a stub used for default builds without the "pdfcpu" tag.
// For fallback-enabled builds, see the implementation in simple.go.
func ExtractPages(path string, pageCap, perPageCap int) ([]string, error) {
	return nil, ErrDisabled
}
