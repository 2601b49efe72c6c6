package palm

// Field tables are configuration, not logic: each table is a constant
// ordered mapping interpreted by decodeTable. Positions count in the
// table's default element width; a field's format overrides the width
// where it differs from the default.

type fieldFormat int

const (
	formatUInt16 fieldFormat = iota
	formatUInt32
	formatString // fixed-length text span, size bytes
	formatOpaque // raw bytes, size bytes
	formatText   // variable-length text (extended-block payloads)
)

type fieldSpec struct {
	name           string
	format         fieldFormat
	size           int
	rawConvert     func(ctx *parseContext, raw uint64) (any, bool)
	displayConvert map[uint64]string
	isList         bool
	contextPublish string
}

// width returns the byte width the field occupies, falling back to the
// table default for formats without an intrinsic size.
func (f fieldSpec) width(tableDefault int) int {
	switch f.format {
	case formatUInt16:
		return 2
	case formatUInt32:
		return 4
	case formatString, formatOpaque:
		return f.size
	default:
		return tableDefault
	}
}

type headerTable struct {
	defaultWidth  int
	defaultFormat fieldFormat
	fields        map[int]fieldSpec
}

func epochDate(ctx *parseContext, raw uint64) (any, bool) {
	if ctx == nil || ctx.opts.RenderCalendar == nil {
		return nil, false
	}
	return ctx.opts.RenderCalendar(normalizeEpoch(uint32(raw))), true
}

// primaryTable covers the 86-byte primary header. Element width is two
// bytes, matching the format's own documentation.
var primaryTable = headerTable{
	defaultWidth:  2,
	defaultFormat: formatUInt16,
	fields: map[int]fieldSpec{
		0x00: {name: "DatabaseName", format: formatString, size: 32},
		0x10: {name: "Attributes", format: formatUInt16},
		0x11: {name: "Version", format: formatUInt16},
		0x12: {name: "CreateDate", format: formatUInt32, rawConvert: epochDate},
		0x14: {name: "ModifyDate", format: formatUInt32, rawConvert: epochDate},
		0x16: {name: "LastBackupDate", format: formatUInt32, rawConvert: epochDate},
		0x18: {name: "ModificationNumber", format: formatUInt32},
		0x1e: {name: "Type", format: formatString, size: 4},
		0x20: {name: "Creator", format: formatString, size: 4},
	},
}

// secondaryTable covers the fixed prefix of record 0 when the signature
// indicates the embedded sub-format: the document header followed by the
// sub-format header proper.
var secondaryTable = headerTable{
	defaultWidth:  2,
	defaultFormat: formatUInt16,
	fields: map[int]fieldSpec{
		0: {name: "Compression", format: formatUInt16, displayConvert: map[uint64]string{
			1:     "None",
			2:     "PalmDOC",
			17480: "HUFF/CDIC",
		}},
		2: {name: "BookLength", format: formatUInt32},
		4: {name: "BookRecords", format: formatUInt16},
		5: {name: "RecordSize", format: formatUInt16},
		6: {name: "Encryption", format: formatUInt16, displayConvert: map[uint64]string{
			0: "None",
			1: "Legacy Mobipocket",
			2: "Mobipocket",
		}},
		12: {name: "MobiType", format: formatUInt32, displayConvert: map[uint64]string{
			2:   "Book",
			3:   "PalmDoc",
			4:   "Audio",
			232: "Generic Mobipocket",
			248: "KF8",
			257: "News",
			258: "News Feed",
			259: "News Magazine",
			513: "PICS",
			514: "WORD",
			515: "XLS",
			516: "PPT",
			517: "TEXT",
			518: "HTML",
		}},
		14: {name: "CodePage", format: formatUInt32, contextPublish: slotCodePage},
		16: {name: "UniqueID", format: formatUInt32},
		18: {name: "MobiVersion", format: formatUInt32},
	},
}

const slotCodePage = "codePage"

// exthTable maps extended-block tag ids to field specs. The block default
// is variable-length text; numeric tags override it.
var exthTable = map[uint32]fieldSpec{
	100: {name: "Author", format: formatText, isList: true},
	101: {name: "Publisher", format: formatText},
	102: {name: "Imprint", format: formatText},
	103: {name: "Description", format: formatText},
	104: {name: "ISBN", format: formatText},
	105: {name: "Subject", format: formatText, isList: true},
	106: {name: "PublishDate", format: formatText},
	107: {name: "Review", format: formatText},
	108: {name: "Contributor", format: formatText},
	109: {name: "Rights", format: formatText},
	110: {name: "SubjectCode", format: formatText, isList: true},
	111: {name: "BookType", format: formatText},
	112: {name: "Source", format: formatText},
	113: {name: "ASIN", format: formatText},
	114: {name: "VersionNumber", format: formatUInt32},
	115: {name: "SampleFlag", format: formatUInt32, displayConvert: map[uint64]string{
		0: "No",
		1: "Yes",
	}},
	116: {name: "StartReading", format: formatUInt32},
	117: {name: "Adult", format: formatText},
	118: {name: "RetailPrice", format: formatText},
	119: {name: "RetailPriceCurrency", format: formatText},
	125: {name: "ResourceCount", format: formatUInt32},
	129: {name: "KF8CoverURI", format: formatText},
	201: {name: "CoverOffset", format: formatUInt32},
	202: {name: "ThumbOffset", format: formatUInt32},
	203: {name: "HasFakeCover", format: formatUInt32},
	204: {name: "CreatorSoftware", format: formatUInt32, displayConvert: map[uint64]string{
		1:   "mobigen",
		2:   "Mobipocket Creator",
		200: "kindlegen (Windows)",
		201: "kindlegen (Linux)",
		202: "kindlegen (Mac)",
	}},
	205: {name: "CreatorMajorVersion", format: formatUInt32},
	206: {name: "CreatorMinorVersion", format: formatUInt32},
	207: {name: "CreatorBuildNumber", format: formatUInt32},
	208: {name: "Watermark", format: formatText},
	501: {name: "CDEType", format: formatText},
	502: {name: "LastUpdateTime", format: formatText},
	503: {name: "UpdatedTitle", format: formatText},
	524: {name: "Language", format: formatText},
}
