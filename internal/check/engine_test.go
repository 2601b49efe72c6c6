package check

import (
	"testing"

	"example.com/pdbgate/internal/palm"
)

func mobiResult(fields map[string]any) *palm.Result {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &palm.Result{Format: "Mobipocket", Mobi: true, Fields: fields}
}

func TestCleanResultPasses(t *testing.T) {
	res := mobiResult(map[string]any{
		"Compression": "PalmDOC",
		"Encryption":  "None",
		"CodePage":    uint64(1252),
		"BookName":    "A Clean Book",
	})
	rep := NewEngine().Run("clean.mobi", res)
	if !rep.Summary.Pass {
		t.Fatalf("clean result failed: %+v", rep.Findings)
	}
	if rep.Summary.Total != 0 {
		t.Fatalf("findings = %+v, want none", rep.Findings)
	}
}

func TestEncryptedTextFlagged(t *testing.T) {
	res := mobiResult(map[string]any{
		"Compression": "PalmDOC",
		"Encryption":  "Mobipocket",
		"BookName":    "Locked",
	})
	rep := NewEngine().Run("locked.mobi", res)
	if rep.Summary.Warnings == 0 {
		t.Fatalf("no warning for encrypted text: %+v", rep.Findings)
	}
	if !rep.Summary.Pass {
		t.Fatal("encryption warning should not fail the report")
	}
}

func TestUnreadableBookNameFails(t *testing.T) {
	res := mobiResult(map[string]any{
		"Compression": "PalmDOC",
		"BookName":    "<err>",
	})
	rep := NewEngine().Run("broken.mobi", res)
	if rep.Summary.Errors != 1 || rep.Summary.Pass {
		t.Fatalf("summary = %+v", rep.Summary)
	}
}

func TestUnknownCodePageFlagged(t *testing.T) {
	res := mobiResult(map[string]any{
		"Compression": "PalmDOC",
		"CodePage":    uint64(31337),
		"BookName":    "Odd",
	})
	rep := NewEngine().Run("odd.mobi", res)
	found := false
	for _, d := range rep.Findings {
		if d.Field == "CodePage" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no code page finding: %+v", rep.Findings)
	}
}

func TestStructuralWarningsPromoted(t *testing.T) {
	res := mobiResult(map[string]any{"Compression": "PalmDOC", "BookName": "W"})
	res.Warnings = []palm.Warning{{Stage: "exth", Message: "short read of block prefix at offset 400"}}
	rep := NewEngine().Run("warn.mobi", res)
	if rep.Summary.Warnings == 0 {
		t.Fatalf("warnings not promoted: %+v", rep.Findings)
	}
	if rep.Findings[len(rep.Findings)-1].File != "warn.mobi" {
		t.Fatal("file not stamped onto finding")
	}
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	e := NewEngine()
	if err := e.Register("CheckEncryption", CheckEncryption); err == nil {
		t.Fatal("duplicate registration accepted")
	}
}
