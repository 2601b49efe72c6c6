package charset

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		codePage uint32
		want     string
		ok       bool
	}{
		{codePage: 1252, want: "windows-1252", ok: true},
		{codePage: 65001, want: "utf-8", ok: true},
		{codePage: 932, want: "Shift_JIS", ok: true},
		{codePage: 12345, ok: false},
	}
	for _, tc := range tests {
		got, ok := Lookup(tc.codePage)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Lookup(%d) = %q, %v; want %q, %v", tc.codePage, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDecodeWindows1252(t *testing.T) {
	got := Decode([]byte("Caf\xe9"), "windows-1252")
	if got != "Café" {
		t.Fatalf("Decode = %q, want Café", got)
	}
}

func TestDecodeUnknownEncodingFallsBack(t *testing.T) {
	got := Decode([]byte("plain"), "no-such-encoding")
	if got != "plain" {
		t.Fatalf("Decode = %q", got)
	}
}

func TestDecodeInvalidUTF8Replaced(t *testing.T) {
	got := Decode([]byte{'a', 0xFF, 'b'}, "utf-8")
	if got != "a�b" {
		t.Fatalf("Decode = %q", got)
	}
}
