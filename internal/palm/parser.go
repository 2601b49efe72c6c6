package palm

import (
	"errors"
	"io"
	"os"
)

// ErrNotRecognized reports that the stream is not a container this parser
// applies to. It is a classification outcome, not a structural failure;
// callers typically move on to their next format.
var ErrNotRecognized = errors.New("palm: container signature not recognized")

// Extract decodes the metadata of the container served by r. The stream is
// never written. Structural problems found after the signature check
// degrade to warnings on the returned Result; only an unreadable or
// unknown signature yields ErrNotRecognized.
func Extract(r io.ReaderAt, opts Options) (*Result, error) {
	ctx := newParseContext(opts)

	header, err := readExact(r, 0, primaryHeaderSize)
	if err != nil {
		return nil, ErrNotRecognized
	}
	label, mobi, ok := classify(header)
	if !ok {
		return nil, ErrNotRecognized
	}

	res := &Result{
		Format: label,
		Mobi:   mobi,
		Fields: make(map[string]any),
	}
	decodeTable(ctx, primaryTable, header, res.Fields)

	recordCount, _ := beUint16(header, recordCountOffset)
	if mobi && recordCount > 0 {
		parseSecondaryRecord(ctx, r, header, res)
	}

	res.Warnings = ctx.warnings
	return res, nil
}

// ExtractFile opens path and runs Extract against it.
func ExtractFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Extract(f, opts)
}

// parseSecondaryRecord locates record 0 and decodes the embedded
// sub-format header it carries. Every early return below is a normal
// terminal state: the primary-header fields already decoded stay on res.
func parseSecondaryRecord(ctx *parseContext, r io.ReaderAt, header []byte, res *Result) {
	rec0, ok := beUint32(header, record0Offset)
	if !ok {
		return
	}
	base := int64(rec0)

	prefix, err := readExact(r, base, secondaryPrefixSize)
	if err != nil {
		ctx.warnf("record0", "short read of %d-byte record prefix at offset %d", secondaryPrefixSize, base)
		return
	}
	if magic, _ := byteSpan(prefix, mobiMagicOffset, 4); string(magic) != "MOBI" {
		ctx.warnf("record0", "sub-format magic missing at offset %d", base+mobiMagicOffset)
		return
	}

	decodeTable(ctx, secondaryTable, prefix, res.Fields)
	resolveEncoding(ctx)
	resolveBookName(ctx, r, prefix, base, res)

	flags, ok := beUint32(prefix, exthFlagsOffset)
	if !ok || flags&exthFlagPresent == 0 {
		return
	}
	headerLen, ok := beUint32(prefix, mobiHeaderLenOff)
	if !ok {
		return
	}
	extOffset := base + int64(headerLen) + mobiSubHeaderSize
	parseExtendedBlock(ctx, r, extOffset, res)
}

// resolveEncoding turns a published code page into the encoding used for
// the rest of this extraction. Without a published page, or when the
// charset collaborator has no mapping, the universal default stands.
func resolveEncoding(ctx *parseContext) {
	page, ok := ctx.slot(slotCodePage)
	if !ok {
		return
	}
	name, ok := ctx.opts.MapCharset(uint32(page))
	if !ok {
		return
	}
	ctx.encoding = name
}

// resolveBookName fills in the one field whose table decode yields only an
// (offset, length) pair: the full book name stored elsewhere in the
// stream, relative to the record base. A short read substitutes the fixed
// placeholder rather than failing the extraction.
func resolveBookName(ctx *parseContext, r io.ReaderAt, prefix []byte, base int64, res *Result) {
	nameOff, okOff := beUint32(prefix, fullNameOffsetOff)
	nameLen, okLen := beUint32(prefix, fullNameLengthOff)
	if !okOff || !okLen {
		return
	}
	raw, err := readExact(r, base+int64(nameOff), int(nameLen))
	if err != nil {
		ctx.warnf("bookname", "short read of %d-byte name at offset %d", nameLen, base+int64(nameOff))
		res.Fields["BookName"] = fullNamePlaceholder
		return
	}
	res.Fields["BookName"] = trimText(ctx.opts.DecodeText(raw, ctx.encoding))
}
