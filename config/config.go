package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// DefaultContextWords is the number of words kept on each side of a match.
	DefaultContextWords = 5

	// DefaultHighlightColor marks matches when a query does not set a color.
	DefaultHighlightColor = "#ffff00"
)

// DefaultWorkers returns the extraction worker count, one per CPU.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// zoteroCandidates lists data directory locations relative to the home
// directory, in probe order. The stock ~/Zotero location comes first, then
// the sandboxed package installs.
var zoteroCandidates = []string{
	"Zotero",
	filepath.Join("snap", "zotero-snap", "common", "Zotero"),
	filepath.Join(".var", "app", "org.zotero.Zotero", "data", "Zotero"),
}

// DefaultZoteroDir probes the usual Zotero data directory locations and
// returns the first that exists, or "" when none does.
func DefaultZoteroDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	for _, rel := range zoteroCandidates {
		dir := filepath.Join(home, rel)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
