package wsp

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

const (
	quoteByte    = 0x7f // prepended to a Text-string whose first octet is >= 0x80
	quotedString = 0x22 // leading octet of a Quoted-string
	lengthQuote  = 0x1f // Value-length escape: this octet, then a Uintvar length
)

// IsShortInteger reports whether b encodes a Short-integer (high bit set).
func IsShortInteger(b byte) bool { return b&0x80 != 0 }

// DecodeShortInteger decodes a Short-integer at buf[pos].
func DecodeShortInteger(buf []byte, pos int) (value byte, newPos int, err error) {
	if pos >= len(buf) {
		return 0, pos, ErrTruncated
	}
	b := buf[pos]
	if !IsShortInteger(b) {
		return 0, pos, fmt.Errorf("wsp: %w: not a short-integer", ErrInvalidLength)
	}
	return b & 0x7f, pos + 1, nil
}

// EncodeShortInteger appends a Short-integer encoding of value (0-127).
func EncodeShortInteger(buf []byte, value byte) []byte {
	return append(buf, value|0x80)
}

// DecodeLongInteger decodes a Long-integer: a length octet (1-30) followed
// by that many big-endian bytes.
func DecodeLongInteger(buf []byte, pos int) (value uint64, newPos int, err error) {
	if pos >= len(buf) {
		return 0, pos, ErrTruncated
	}
	n := int(buf[pos])
	pos++
	if n < 1 || n > 30 {
		return 0, pos, fmt.Errorf("wsp: %w: long-integer length %d", ErrInvalidLength, n)
	}
	if pos+n > len(buf) {
		return 0, pos, ErrTruncated
	}
	for i := 0; i < n; i++ {
		value = (value << 8) | uint64(buf[pos+i])
	}
	return value, pos + n, nil
}

// EncodeLongInteger appends a Long-integer encoding of value, using the
// minimum number of octets (1-30, big-endian, no leading zero octet).
func EncodeLongInteger(buf []byte, value uint64) []byte {
	var tmp [8]byte
	n := 8
	for n > 1 && (value>>uint((n-1)*8))&0xff == 0 {
		n--
	}
	for i := 0; i < n; i++ {
		tmp[i] = byte(value >> uint((n-1-i)*8))
	}
	buf = append(buf, byte(n))
	return append(buf, tmp[:n]...)
}

// DecodeIntegerValue decodes an Integer-value: either a Short-integer or a
// Long-integer, selected by the high bit of the first octet.
func DecodeIntegerValue(buf []byte, pos int) (value uint64, newPos int, err error) {
	if pos >= len(buf) {
		return 0, pos, ErrTruncated
	}
	if IsShortInteger(buf[pos]) {
		v, np, err := DecodeShortInteger(buf, pos)
		return uint64(v), np, err
	}
	return DecodeLongInteger(buf, pos)
}

// DecodeTextString decodes a NUL-terminated Text-string at buf[pos],
// stripping a leading quote octet (0x7f) if present.
func DecodeTextString(buf []byte, pos int) (value string, newPos int, err error) {
	start := pos
	if start < len(buf) && buf[start] == quoteByte {
		start++
	}
	end := bytes.IndexByte(buf[start:], 0)
	if end < 0 {
		return "", pos, ErrTruncated
	}
	return string(buf[start : start+end]), start + end + 1, nil
}

// EncodeTextString appends a NUL-terminated Text-string encoding of value,
// prepending a quote octet when the first character would otherwise be
// mistaken for a Short-integer (>= 0x80).
func EncodeTextString(buf []byte, value string) []byte {
	if len(value) > 0 && value[0] >= 0x80 {
		buf = append(buf, quoteByte)
	}
	buf = append(buf, value...)
	return append(buf, 0)
}

// DecodeQuotedString decodes a Quoted-string: a leading 0x22 octet followed
// by a NUL-terminated Text-string.
func DecodeQuotedString(buf []byte, pos int) (value string, newPos int, err error) {
	if pos >= len(buf) || buf[pos] != quotedString {
		return "", pos, fmt.Errorf("wsp: %w: missing quoted-string marker", ErrInvalidLength)
	}
	return DecodeTextString(buf, pos+1)
}

// EncodeQuotedString appends a Quoted-string encoding of value.
func EncodeQuotedString(buf []byte, value string) []byte {
	buf = append(buf, quotedString)
	return EncodeTextString(buf, value)
}

// DecodeValueLength decodes a Value-length field: a short-length octet
// (0-30, the literal length) or a length-quote octet (0x1f) followed by a
// Uintvar length.
func DecodeValueLength(buf []byte, pos int) (length int, newPos int, err error) {
	if pos >= len(buf) {
		return 0, pos, ErrTruncated
	}
	b := buf[pos]
	if b <= 30 {
		return int(b), pos + 1, nil
	}
	if b == lengthQuote {
		v, np, err := DecodeUintvar(buf, pos+1)
		if err != nil {
			return 0, np, err
		}
		return int(v), np, nil
	}
	return 0, pos, fmt.Errorf("wsp: %w: bad value-length octet 0x%02x", ErrInvalidLength, b)
}

// EncodeValueLength appends a Value-length encoding of length, using the
// short form for 0-30 and the length-quote+Uintvar form otherwise.
func EncodeValueLength(buf []byte, length int) []byte {
	if length >= 0 && length <= 30 {
		return append(buf, byte(length))
	}
	buf = append(buf, lengthQuote)
	return EncodeUintvar(buf, uint32(length))
}

// DecodeEncodedString decodes an Encoded-string-value: either a bare
// Text-string, or a value-length region containing a charset MIBenum
// followed by text in that charset, transcoded to UTF-8. MIB 106 (UTF-8)
// is passed through without a transcoding round-trip.
func DecodeEncodedString(buf []byte, pos int) (value string, newPos int, err error) {
	if pos >= len(buf) {
		return "", pos, ErrTruncated
	}
	if buf[pos] <= 30 || buf[pos] == lengthQuote {
		length, np, err := DecodeValueLength(buf, pos)
		if err != nil {
			return "", np, err
		}
		if np+length > len(buf) {
			return "", np, ErrTruncated
		}
		region := buf[np : np+length]
		mib, rp, err := DecodeIntegerValue(region, 0)
		if err != nil {
			return "", np + length, err
		}
		text, _, err := DecodeTextString(region, rp)
		if err != nil {
			return "", np + length, err
		}
		decoded, err := transcodeToUTF8(uint32(mib), text)
		if err != nil {
			return "", np + length, err
		}
		return decoded, np + length, nil
	}
	return DecodeTextString(buf, pos)
}

// EncodeEncodedString appends an Encoded-string-value encoding of value in
// charset UTF-8 (MIB 106), matching what this engine always produces on
// the wire.
func EncodeEncodedString(buf []byte, value string) []byte {
	const mibUTF8 = 106
	var region []byte
	region = EncodeShortInteger(region, mibUTF8)
	region = EncodeTextString(region, value)
	buf = EncodeValueLength(buf, len(region))
	return append(buf, region...)
}

// transcodeToUTF8 converts text in the charset named by a MIBenum to UTF-8.
func transcodeToUTF8(mib uint32, text string) (string, error) {
	if mib == 106 || mib == 3 { // UTF-8, US-ASCII: already a UTF-8 superset
		return text, nil
	}
	name, ok := MIBenumName(mib)
	if !ok {
		return text, nil // unknown charset: pass the bytes through verbatim
	}
	enc, err := ianaindex.MIB.Encoding(name)
	if err != nil || enc == nil {
		return text, nil
	}
	decoded, err := enc.NewDecoder().String(text)
	if err != nil {
		return text, nil
	}
	return decoded, nil
}

// EncodingForMIB resolves a MIBenum to a golang.org/x/text encoding.Encoding,
// for callers that need to encode outbound text in a non-UTF-8 charset.
func EncodingForMIB(mib uint32) (encoding.Encoding, error) {
	name, ok := MIBenumName(mib)
	if !ok {
		return nil, fmt.Errorf("wsp: unknown charset MIBenum %d", mib)
	}
	return ianaindex.MIB.Encoding(name)
}
