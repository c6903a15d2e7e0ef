// Package wsp implements the WSP (Wireless Session Protocol) binary value
// primitives used by the OMA-WAP MMS encapsulation: Uintvar integers,
// Short/Long-integer, Text/Quoted-string, Value-length and
// Encoded-string-value, plus header iteration (OMA-WAP-230 section 8.4).
package wsp

import "errors"

var (
	// ErrTruncated is returned when a primitive's encoding runs past the
	// end of the supplied buffer.
	ErrTruncated = errors.New("wsp: truncated value")
	// ErrOverflow is returned when a Uintvar would not fit in a uint32.
	ErrOverflow = errors.New("wsp: uintvar overflow")
	// ErrInvalidLength is returned by a decoder that finds an
	// internally inconsistent length field.
	ErrInvalidLength = errors.New("wsp: invalid length")
)

// DecodeUintvar decodes a WSP Uintvar integer starting at buf[pos].
// It returns the decoded value and the position just past the encoding.
func DecodeUintvar(buf []byte, pos int) (value uint32, newPos int, err error) {
	for {
		if pos >= len(buf) {
			return 0, pos, ErrTruncated
		}
		b := buf[pos]
		pos++
		if value > (1<<25 - 1) {
			// Next shift would overflow a uint32 (7 bits/octet, max 5 octets).
			return 0, pos, ErrOverflow
		}
		value = (value << 7) | uint32(b&0x7f)
		if b&0x80 == 0 {
			return value, pos, nil
		}
	}
}

// EncodeUintvar appends the minimum-length Uintvar encoding of value to buf.
func EncodeUintvar(buf []byte, value uint32) []byte {
	var octets [5]byte
	n := 0
	octets[n] = byte(value & 0x7f)
	n++
	value >>= 7
	for value > 0 {
		octets[n] = byte(value&0x7f) | 0x80
		n++
		value >>= 7
	}
	// octets were built least-significant-octet-first; emit reversed.
	for i := n - 1; i >= 0; i-- {
		buf = append(buf, octets[i])
	}
	return buf
}

// UintvarLen returns the number of octets EncodeUintvar would emit for value.
func UintvarLen(value uint32) int {
	n := 1
	value >>= 7
	for value > 0 {
		n++
		value >>= 7
	}
	return n
}
