package check

import (
	"fmt"

	"example.com/pdbgate/internal/charset"
)

func (e *Engine) RegisterBuiltins() {
	e.Register("CheckEncryption", CheckEncryption)
	e.Register("CheckBookName", CheckBookName)
	e.Register("CheckCodePage", CheckCodePage)
	e.Register("CheckStructuralWarnings", CheckStructuralWarnings)
}

// CheckEncryption flags containers whose text records are encrypted. The
// extractor still returns metadata; the finding tells downstream tooling
// the document body is out of reach.
func CheckEncryption(ctx *Context) []Diagnostic {
	if ctx.Result == nil {
		return nil
	}
	enc, present := ctx.Result.Fields["Encryption"]
	if !present {
		return nil
	}
	if enc == "None" || enc == uint64(0) {
		return nil
	}
	return []Diagnostic{{
		Severity: WARN,
		Field:    "Encryption",
		Message:  fmt.Sprintf("text records are encrypted (%v); metadata only", enc),
	}}
}

// CheckBookName reports a missing or unresolvable book name on containers
// that should carry one.
func CheckBookName(ctx *Context) []Diagnostic {
	if ctx.Result == nil || !ctx.Result.Mobi {
		return nil
	}
	if _, decoded := ctx.Result.Fields["Compression"]; !decoded {
		// Secondary record never parsed; nothing to expect a name from.
		return nil
	}
	name, present := ctx.Result.Fields["BookName"]
	if !present || name == "" {
		return []Diagnostic{{
			Severity: WARN,
			Field:    "BookName",
			Message:  "book name missing from secondary record",
		}}
	}
	if name == "<err>" {
		return []Diagnostic{{
			Severity: ERROR,
			Field:    "BookName",
			Message:  "book name unreadable: indirect string points past end of stream",
		}}
	}
	return nil
}

// CheckCodePage flags code pages the charset table cannot resolve; text
// fields of such containers were decoded with the universal fallback.
func CheckCodePage(ctx *Context) []Diagnostic {
	if ctx.Result == nil {
		return nil
	}
	raw, present := ctx.Result.Fields["CodePage"]
	if !present {
		return nil
	}
	page, ok := raw.(uint64)
	if !ok {
		return nil
	}
	if _, known := charset.Lookup(uint32(page)); known {
		return nil
	}
	return []Diagnostic{{
		Severity: WARN,
		Field:    "CodePage",
		Message:  fmt.Sprintf("unknown code page %d; text decoded as UTF-8", page),
	}}
}

// CheckStructuralWarnings promotes the extractor's non-fatal warnings to
// findings so reports carry them alongside the metadata checks.
func CheckStructuralWarnings(ctx *Context) []Diagnostic {
	if ctx.Result == nil {
		return nil
	}
	out := make([]Diagnostic, 0, len(ctx.Result.Warnings))
	for _, w := range ctx.Result.Warnings {
		out = append(out, Diagnostic{
			Severity: WARN,
			Field:    w.Stage,
			Message:  w.Message,
		})
	}
	return out
}
