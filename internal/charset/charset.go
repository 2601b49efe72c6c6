// Package charset resolves legacy code page numbers to text encodings and
// decodes raw bytes with them. Decoding never fails: unknown encodings and
// invalid sequences degrade to replacement runes.
package charset

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// codePages maps the code page numbers observed in the wild to IANA
// encoding names. 65001 and 65002 are the producer-specific Unicode ids.
var codePages = map[uint32]string{
	437:   "IBM437",
	850:   "IBM850",
	874:   "windows-874",
	932:   "Shift_JIS",
	936:   "GBK",
	949:   "EUC-KR",
	950:   "Big5",
	1250:  "windows-1250",
	1251:  "windows-1251",
	1252:  "windows-1252",
	1253:  "windows-1253",
	1254:  "windows-1254",
	1255:  "windows-1255",
	1256:  "windows-1256",
	1257:  "windows-1257",
	1258:  "windows-1258",
	10000: "macintosh",
	20866: "KOI8-R",
	28591: "ISO-8859-1",
	28592: "ISO-8859-2",
	65001: "utf-8",
	65002: "utf-16",
}

// Lookup returns the canonical encoding name for a code page number. A
// false return means the caller should fall back to its default encoding.
func Lookup(codePage uint32) (string, bool) {
	name, ok := codePages[codePage]
	return name, ok
}

// Decode converts b using the named encoding. UTF-8 (or an unknown name)
// falls through to a lossy UTF-8 interpretation.
func Decode(b []byte, name string) string {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return lossyUTF8(b)
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return lossyUTF8(b)
	}
	decoded, err := decoderFor(enc).Bytes(b)
	if err != nil {
		return lossyUTF8(b)
	}
	return string(decoded)
}

func decoderFor(enc encoding.Encoding) *encoding.Decoder {
	return enc.NewDecoder()
}

func lossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}
