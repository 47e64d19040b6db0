package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var benchSniffed bool

func BenchmarkSniffPDF_Hit(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, "hit.pdf")

	// Build a ~1MB file with a valid signature at the very start, the
	// common case for a real corpus
	const targetSize = 1 << 20
	var sb strings.Builder
	sb.Grow(targetSize + 128)
	sb.WriteString("%PDF-1.5\n")
	fill := "1 0 obj << /Type /Page >> endobj\n"
	for sb.Len() < targetSize {
		sb.WriteString(fill)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		b.Fatalf("failed to write hit test file: %v", err)
	}

	// Sanity check once before measuring
	if !SniffPDF(path) {
		b.Fatal("sanity check failed for hit case")
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchSniffed = SniffPDF(path)
	}
	_ = benchSniffed
}

func BenchmarkSniffPDF_Miss(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, "miss.pdf")

	// Build a ~1MB file that is really an HTML page saved with the wrong
	// extension
	const targetSize = 1 << 20
	var sb strings.Builder
	sb.Grow(targetSize + 128)
	sb.WriteString("<!DOCTYPE html><html><head><title>Not Found</title></head><body>\n")
	fill := "<p>The requested document is not available.</p>\n"
	for sb.Len() < targetSize {
		sb.WriteString(fill)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		b.Fatalf("failed to write miss test file: %v", err)
	}

	// Sanity check once before measuring
	if SniffPDF(path) {
		b.Fatal("sanity check failed for miss case")
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchSniffed = SniffPDF(path)
	}
	_ = benchSniffed
}
