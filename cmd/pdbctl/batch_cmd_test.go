package main

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"example.com/pdbgate/internal/report"
)

func writeSyntheticBook(t *testing.T, path, bookName string) {
	t.Helper()
	header := make([]byte, 86)
	copy(header[60:], "BOOKMOBI")
	binary.BigEndian.PutUint16(header[76:], 1)
	binary.BigEndian.PutUint32(header[78:], 86)

	nameOff := uint32(280)
	record := make([]byte, int(nameOff)+len(bookName))
	binary.BigEndian.PutUint16(record[0:], 1)
	copy(record[16:], "MOBI")
	binary.BigEndian.PutUint32(record[20:], 232)
	binary.BigEndian.PutUint32(record[28:], 1252)
	binary.BigEndian.PutUint32(record[84:], nameOff)
	binary.BigEndian.PutUint32(record[88:], uint32(len(bookName)))
	copy(record[nameOff:], bookName)

	if err := os.WriteFile(path, append(header, record...), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestBatchCmdGeneratesOutputs(t *testing.T) {
	root := t.TempDir()
	inputDir := filepath.Join(root, "inputs")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatalf("MkdirAll inputs: %v", err)
	}
	outDir := filepath.Join(root, "out")

	writeSyntheticBook(t, filepath.Join(inputDir, "alpha.mobi"), "Alpha Book")
	nestedDir := filepath.Join(inputDir, "nested")
	if err := os.MkdirAll(nestedDir, 0o755); err != nil {
		t.Fatalf("MkdirAll nested: %v", err)
	}
	writeSyntheticBook(t, filepath.Join(nestedDir, "beta.prc"), "Beta Book")
	if err := os.WriteFile(filepath.Join(inputDir, "notes.txt"), []byte("not a book"), 0o644); err != nil {
		t.Fatalf("WriteFile notes: %v", err)
	}

	batchCmd([]string{
		"--in", inputDir,
		"--out-dir", outDir,
	})

	check := func(name, wantBook string) {
		out := filepath.Join(outDir, name)
		if info, err := os.Stat(out); err != nil || !info.IsDir() {
			t.Fatalf("Output dir missing for %s: %v", name, err)
		}
		data, err := os.ReadFile(filepath.Join(out, "metadata.json"))
		if err != nil {
			t.Fatalf("ReadFile metadata %s: %v", name, err)
		}
		var ext report.Extraction
		if err := json.Unmarshal(data, &ext); err != nil {
			t.Fatalf("Unmarshal metadata %s: %v", name, err)
		}
		if ext.Result == nil || ext.Result.Format != "Mobipocket" {
			t.Fatalf("unexpected result for %s: %+v", name, ext.Result)
		}
		if got := ext.Result.Fields["BookName"]; got != wantBook {
			t.Fatalf("BookName for %s = %v, want %s", name, got, wantBook)
		}
	}

	check("alpha", "Alpha Book")
	check(filepath.Join("nested", "beta"), "Beta Book")
}
