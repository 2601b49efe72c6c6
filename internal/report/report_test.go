package report

import (
	"path/filepath"
	"testing"

	"example.com/pdbgate/internal/palm"
)

func TestSanitizeDigest(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "deadBEEF42", want: "DEADBEEF42"},
		{in: "  ab:cd ef  ", want: "ABCDEF"},
		{in: "zzz", want: ""},
	}
	for _, tc := range tests {
		if got := sanitizeDigest(tc.in); got != tc.want {
			t.Fatalf("sanitizeDigest(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDigestToQR(t *testing.T) {
	png, err := DigestToQR("deadbeef", 0)
	if err != nil {
		t.Fatalf("DigestToQR: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("empty PNG")
	}
	if _, err := DigestToQR("", 128); err == nil {
		t.Fatal("empty digest accepted")
	}
}

func TestRenderValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: "plain", want: "plain"},
		{in: []any{"a", "b"}, want: "a; b"},
		{in: uint64(7), want: "7"},
		{in: []byte{1, 2}, want: "(raw bytes)"},
	}
	for _, tc := range tests {
		if got := renderValue(tc.in); got != tc.want {
			t.Fatalf("renderValue(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")
	ext := Extraction{
		File:   "book.mobi",
		Size:   1024,
		Sha256: "deadbeef",
		Result: &palm.Result{
			Format: "Mobipocket",
			Mobi:   true,
			Fields: map[string]any{"BookName": "Roundtrip"},
		},
	}
	if err := SaveJSON(ext, out); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	loaded, err := LoadJSON(out)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if loaded.File != "book.mobi" || loaded.Result.Format != "Mobipocket" {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.Result.Fields["BookName"] != "Roundtrip" {
		t.Fatalf("fields = %+v", loaded.Result.Fields)
	}
}

func TestSaveMetadataPDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.pdf")
	ext := Extraction{
		File:   "book.mobi",
		Size:   2048,
		Sha256: "deadbeef",
		Result: &palm.Result{
			Format: "Mobipocket",
			Fields: map[string]any{
				"BookName": "PDF Book",
				"Author":   []any{"Jane Doe"},
			},
		},
	}
	if err := SaveMetadataPDF(ext, out); err != nil {
		t.Fatalf("SaveMetadataPDF: %v", err)
	}
}
