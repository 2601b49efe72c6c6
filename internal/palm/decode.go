package palm

import "sort"

// defaultEncoding is the universal text encoding assumed until the
// secondary header resolves a code page.
const defaultEncoding = "utf-8"

// decodeTable runs one table over a buffer. A field whose computed byte
// range falls outside the buffer is skipped silently; the rest of the
// table still decodes. Partial decode is success.
func decodeTable(ctx *parseContext, table headerTable, buf []byte, fields map[string]any) {
	positions := make([]int, 0, len(table.fields))
	for pos := range table.fields {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	for _, pos := range positions {
		spec := table.fields[pos]
		start := pos * table.defaultWidth
		width := spec.width(table.defaultWidth)
		span, ok := byteSpan(buf, start, width)
		if !ok {
			continue
		}
		value, ok := decodeField(ctx, spec, span)
		if !ok {
			continue
		}
		storeField(fields, spec, value)
	}
}

// decodeField turns the raw bytes of one field into its stored value,
// applying the spec's conversions. The bool return is false only when the
// span cannot satisfy the field's numeric width; text decodes always
// succeed.
func decodeField(ctx *parseContext, spec fieldSpec, span []byte) (any, bool) {
	switch spec.format {
	case formatUInt16:
		v, ok := beUint16(span, 0)
		if !ok {
			return nil, false
		}
		return convertNumeric(ctx, spec, uint64(v)), true
	case formatUInt32:
		v, ok := beUint32(span, 0)
		if !ok {
			return nil, false
		}
		return convertNumeric(ctx, spec, uint64(v)), true
	case formatOpaque:
		out := make([]byte, len(span))
		copy(out, span)
		return out, true
	case formatString, formatText:
		return trimText(ctx.opts.DecodeText(span, ctx.encoding)), true
	default:
		return nil, false
	}
}

func convertNumeric(ctx *parseContext, spec fieldSpec, raw uint64) any {
	if spec.contextPublish != "" {
		ctx.publish(spec.contextPublish, raw)
	}
	var value any = raw
	if spec.rawConvert != nil {
		if converted, ok := spec.rawConvert(ctx, raw); ok {
			value = converted
		}
	}
	if spec.displayConvert != nil {
		if n, ok := value.(uint64); ok {
			if label, mapped := spec.displayConvert[n]; mapped {
				value = label
			}
		}
	}
	return value
}

// storeField writes a decoded value under the spec's name. List fields
// append; and once a name holds a sequence it stays a sequence even if a
// later table binds it without the list marker.
func storeField(fields map[string]any, spec fieldSpec, value any) {
	existing, present := fields[spec.name]
	if seq, isSeq := existing.([]any); present && isSeq {
		fields[spec.name] = append(seq, value)
		return
	}
	if spec.isList {
		fields[spec.name] = []any{value}
		return
	}
	fields[spec.name] = value
}

// replaceLast swaps the most recently stored value for name, preserving
// sequence shape. Used by the extended-block second decode pass.
func replaceLast(fields map[string]any, name string, value any) {
	existing, present := fields[name]
	if !present {
		fields[name] = value
		return
	}
	if seq, isSeq := existing.([]any); isSeq {
		if len(seq) > 0 {
			seq[len(seq)-1] = value
		}
		return
	}
	fields[name] = value
}
