package palm

import (
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// readProbeThreshold bounds the reads served without a prior end-of-range
// probe. Declared lengths come straight from the stream, so a corrupt
// length must not translate into a matching allocation.
const readProbeThreshold = 1 << 20

// readExact returns exactly length bytes at offset, or io.ErrUnexpectedEOF
// when the stream ends first. Callers decide whether a short read is fatal.
func readExact(r io.ReaderAt, offset int64, length int) ([]byte, error) {
	if length < 0 || offset < 0 {
		return nil, io.ErrUnexpectedEOF
	}
	if length > readProbeThreshold {
		var tail [1]byte
		n, err := r.ReadAt(tail[:], offset+int64(length)-1)
		if n < 1 {
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			return nil, io.ErrUnexpectedEOF
		}
	}
	buf := make([]byte, length)
	n, err := r.ReadAt(buf, offset)
	if n < length {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}
	return buf, nil
}

func beUint16(b []byte, off int) (uint16, bool) {
	if off < 0 || off+2 > len(b) {
		return 0, false
	}
	return binary.BigEndian.Uint16(b[off : off+2]), true
}

func beUint32(b []byte, off int) (uint32, bool) {
	if off < 0 || off+4 > len(b) {
		return 0, false
	}
	return binary.BigEndian.Uint32(b[off : off+4]), true
}

func byteSpan(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off+n > len(b) {
		return nil, false
	}
	return b[off : off+n], true
}

// trimText strips trailing NULs and whitespace from a decoded text span.
func trimText(s string) string {
	return strings.TrimRight(s, "\x00 \t\r\n")
}

// lossyUTF8 is the fallback text decoder: invalid sequences become
// replacement runes, the encoding name is ignored.
func lossyUTF8(b []byte, _ string) string {
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
