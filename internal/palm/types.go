package palm

import (
	"fmt"
	"time"
)

const (
	primaryHeaderSize   = 86
	signatureOffset     = 60
	signatureSize       = 8
	recordCountOffset   = 76
	record0Offset       = 78
	secondaryPrefixSize = 274

	mobiMagicOffset    = 16
	mobiHeaderLenOff   = 20
	fullNameOffsetOff  = 84
	fullNameLengthOff  = 88
	exthFlagsOffset    = 128
	exthFlagPresent    = 0x40
	exthPrefixSize     = 12
	exthMinEntrySize   = 8
	mobiSubHeaderSize  = 16

	fullNamePlaceholder = "<err>"
)

// Warning records a non-fatal problem encountered during one extraction.
// Warnings never abort the call; the extraction keeps whatever was decoded
// before the stage that produced them.
type Warning struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return w.Stage + ": " + w.Message
}

// Result holds the decoded metadata of one container. Fields maps field
// names to scalars (string or uint64) or, for list-typed fields, to []any
// appended in decode order.
type Result struct {
	Format     string         `json:"format"`
	Mobi       bool           `json:"mobi"`
	Fields     map[string]any `json:"fields"`
	Warnings   []Warning      `json:"warnings,omitempty"`
	TagEntries int            `json:"tagEntries,omitempty"`
}

// Options carries the external collaborators an extraction may use. Any nil
// member falls back to a package default.
type Options struct {
	// MapCharset resolves a legacy code page number to a canonical
	// encoding name for DecodeText. A false return falls back to the
	// universal default encoding.
	MapCharset func(codePage uint32) (string, bool)
	// DecodeText converts raw bytes to a string using the named encoding.
	// It must not fail; invalid sequences degrade to replacement runes.
	DecodeText func(b []byte, encoding string) string
	// RenderCalendar formats seconds since the Unix epoch for display.
	RenderCalendar func(secs int64) string
	// TagName supplies display names for extended-block tag ids that are
	// absent from the built-in table. Entries it does not name are skipped.
	TagName func(tag uint32) (string, bool)
}

func (o Options) normalized() Options {
	if o.MapCharset == nil {
		o.MapCharset = func(uint32) (string, bool) { return "", false }
	}
	if o.DecodeText == nil {
		o.DecodeText = lossyUTF8
	}
	if o.RenderCalendar == nil {
		o.RenderCalendar = func(secs int64) string {
			return time.Unix(secs, 0).UTC().Format("2006:01:02 15:04:05")
		}
	}
	return o
}

// parseContext is the per-invocation scratch shared across the stages of a
// single extraction. It is never shared between concurrent extractions.
type parseContext struct {
	opts     Options
	slots    map[string]uint64
	encoding string
	warnings []Warning
}

func newParseContext(opts Options) *parseContext {
	return &parseContext{
		opts:     opts.normalized(),
		slots:    make(map[string]uint64),
		encoding: defaultEncoding,
	}
}

func (c *parseContext) warnf(stage, format string, args ...any) {
	c.warnings = append(c.warnings, Warning{Stage: stage, Message: fmt.Sprintf(format, args...)})
}

func (c *parseContext) publish(key string, v uint64) {
	c.slots[key] = v
}

func (c *parseContext) slot(key string) (uint64, bool) {
	v, ok := c.slots[key]
	return v, ok
}
