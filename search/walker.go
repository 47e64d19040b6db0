package search

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindPDFs walks root recursively and returns every file whose name ends in
// ".pdf", lowercase only. Symlinks are followed, with resolved paths tracked
// so link cycles terminate and no directory is visited twice. Entries that
// cannot be read are skipped; only a root that cannot be enumerated at all
// is an error.
func FindPDFs(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWalkFailed, err)
	}
	if !info.IsDir() {
		if isPDFName(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	seen := make(map[string]bool)
	var pdfs []string
	var walk func(dir string)
	walk = func(dir string) {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return
		}
		if seen[real] {
			return
		}
		seen[real] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			switch {
			case entry.IsDir():
				walk(path)
			case entry.Type()&fs.ModeSymlink != 0:
				target, err := os.Stat(path)
				if err != nil {
					// Dangling link.
					continue
				}
				if target.IsDir() {
					walk(path)
				} else if target.Mode().IsRegular() && isPDFName(path) {
					pdfs = append(pdfs, path)
				}
			case entry.Type().IsRegular() && isPDFName(path):
				pdfs = append(pdfs, path)
			}
		}
	}
	walk(root)
	return pdfs, nil
}

// isPDFName reports whether the path names a PDF. The extension match is
// case-sensitive, and a bare ".pdf" name has no stem and does not count.
func isPDFName(path string) bool {
	base := filepath.Base(path)
	return len(base) > len(".pdf") && strings.HasSuffix(base, ".pdf")
}
