package palm

import "io"

// parseExtendedBlock decodes the tag-length-value block trailing the
// sub-format header. Any structural violation stops this stage with a
// warning; entries decoded before the violation stay on res.
func parseExtendedBlock(ctx *parseContext, r io.ReaderAt, offset int64, res *Result) {
	prefix, err := readExact(r, offset, exthPrefixSize)
	if err != nil {
		ctx.warnf("exth", "short read of block prefix at offset %d", offset)
		return
	}
	if magic, _ := byteSpan(prefix, 0, 4); string(magic) != "EXTH" {
		ctx.warnf("exth", "block magic missing at offset %d", offset)
		return
	}
	blockSize, _ := beUint32(prefix, 4)
	if blockSize <= exthPrefixSize {
		ctx.warnf("exth", "block size %d does not exceed its %d-byte prefix", blockSize, exthPrefixSize)
		return
	}
	count, _ := beUint32(prefix, 8)
	res.TagEntries = int(count)

	body, err := readExact(r, offset+exthPrefixSize, int(blockSize)-exthPrefixSize)
	if err != nil {
		ctx.warnf("exth", "short read of %d-byte block body at offset %d", blockSize-exthPrefixSize, offset+exthPrefixSize)
		return
	}

	cursor := 0
	for cursor+exthMinEntrySize <= len(body) {
		tag, _ := beUint32(body, cursor)
		entryLen, _ := beUint32(body, cursor+4)
		// A declared length below the entry's own header, or one running
		// past the body, marks a corrupt tail. Entries already decoded
		// are kept.
		if entryLen < exthMinEntrySize || cursor+int(entryLen) > len(body) {
			return
		}
		payload := body[cursor+exthMinEntrySize : cursor+int(entryLen)]
		decodeExtEntry(ctx, tag, payload, res)
		cursor += int(entryLen)
	}
}

// decodeExtEntry decodes one tag's payload. Unknown tags are consulted
// against the tag-name registry; tags it does not name are skipped.
func decodeExtEntry(ctx *parseContext, tag uint32, payload []byte, res *Result) {
	spec, known := exthTable[tag]
	if !known {
		if ctx.opts.TagName == nil {
			return
		}
		name, named := ctx.opts.TagName(tag)
		if !named {
			return
		}
		spec = fieldSpec{name: name, format: formatText}
	}

	switch spec.format {
	case formatUInt16, formatUInt32:
		value, ok := decodeField(ctx, spec, payload)
		if !ok {
			// The declared length was valid but the payload cannot carry
			// the numeric width. Keep the raw bytes rather than erroring.
			raw := make([]byte, len(payload))
			copy(raw, payload)
			storeField(res.Fields, spec, raw)
			return
		}
		storeField(res.Fields, spec, value)
	default:
		// Text decodes twice: first under the block's assumed default
		// encoding, then again under the per-file encoding resolved from
		// the code page. The second pass replaces the stored value.
		value := trimText(ctx.opts.DecodeText(payload, defaultEncoding))
		storeField(res.Fields, spec, value)
		if ctx.encoding != defaultEncoding {
			corrected := trimText(ctx.opts.DecodeText(payload, ctx.encoding))
			replaceLast(res.Fields, spec.name, corrected)
		}
	}
}
