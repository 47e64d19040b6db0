package search

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain word", "retrieval", "retrieval"},
		{"spaces and tabs", "multi word\tterm", "multiwordterm"},
		{"line break hyphenation", "infor-\nmation", "information"},
		{"crlf", "a\r\nb", "ab"},
		{"nbsp figure narrow", "a\u00a0b\u2007c\u202fd", "abcd"},
		{"soft and unicode hyphens", "co\u00adoperate x‐y z‑w", "cooperatexyzw"},
		{"thin space passes through", "a\u2009b", "a\u2009b"},
		{"em dash passes through", "a—b", "a—b"},
		{"underscore passes through", "snake_case", "snake_case"},
		{"punctuation passes through", "2023, fig. 4", "2023,fig.4"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := Normalize(got); again != got {
				t.Errorf("Normalize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeOffsets(t *testing.T) {
	raw := "published in 2023 finally"
	norm, offsets := normalizeOffsets(raw)
	if norm != "publishedin2023finally" {
		t.Fatalf("normalized = %q", norm)
	}
	if len(offsets) != len(norm) {
		t.Fatalf("offset table length %d, normalized length %d", len(offsets), len(norm))
	}
	// The '2' of 2023 sits at normalized byte 11 and raw byte 13.
	if offsets[11] != 13 {
		t.Errorf("offsets[11] = %d, want 13", offsets[11])
	}
	start, end := rawSpan(raw, offsets, 11, 15)
	if raw[start:end] != "2023" {
		t.Errorf("raw span = %q, want %q", raw[start:end], "2023")
	}
}

func TestNormalizeOffsetsMultibyte(t *testing.T) {
	raw := "Gödel-\nEscher"
	norm, offsets := normalizeOffsets(raw)
	if norm != "GödelEscher" {
		t.Fatalf("normalized = %q", norm)
	}
	if len(offsets) != len(norm) {
		t.Fatalf("offset table length %d, normalized length %d", len(offsets), len(norm))
	}
	// Both bytes of the two-byte o-umlaut map to the same raw offset.
	if offsets[1] != 1 || offsets[2] != 1 {
		t.Errorf("multibyte offsets = %d, %d, want 1, 1", offsets[1], offsets[2])
	}
	start, end := rawSpan(raw, offsets, 0, len(norm))
	if start != 0 || end != len(raw) {
		t.Errorf("full span = [%d, %d), want [0, %d)", start, end, len(raw))
	}
}

func TestRawSpanClamps(t *testing.T) {
	raw := "ab cd"
	_, offsets := normalizeOffsets(raw)
	if start, end := rawSpan(raw, offsets, 4, 4); start != 5 || end != 5 {
		t.Errorf("past-end span = [%d, %d), want [5, 5)", start, end)
	}
	if start, end := rawSpan(raw, offsets, 2, 2); start != end {
		t.Errorf("empty span widened to [%d, %d)", start, end)
	}
}
