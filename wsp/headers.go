package wsp

import "fmt"

// HeaderField is one decoded header from a PDU or part's header block.
// Code is the well-known header code (see the Header* constants) when the
// header was encoded as a well-known header; it is -1 for an
// application-header, whose name is then carried in Name. Value holds the
// header's raw encoded bytes; callers decode it with the primitive that
// matches the specific header (DecodeIntegerValue, DecodeTextString, ...).
type HeaderField struct {
	Code  int
	Name  string
	Value []byte
}

// IsWellKnown reports whether the header was encoded as a well-known
// header rather than an application-header.
func (h HeaderField) IsWellKnown() bool { return h.Code >= 0 }

// DecodeHeaders decodes the sequence of headers in buf[pos:end]. end is
// normally the end of the PDU buffer for a message-level header block, or
// headersLen bytes past pos for a multipart entry's per-part headers.
// Decoding stops after a well-known Content-Type header (HeaderContentType),
// the last header of an MMS PDU; the returned position is then where the
// message body starts.
func DecodeHeaders(buf []byte, pos int, end int) ([]HeaderField, int, error) {
	var fields []HeaderField
	for pos < end {
		var field HeaderField
		b := buf[pos]
		if IsShortInteger(b) {
			code, np, err := DecodeShortInteger(buf, pos)
			if err != nil {
				return fields, pos, err
			}
			field.Code = int(code)
			pos = np
		} else {
			name, np, err := DecodeTextString(buf, pos)
			if err != nil {
				return fields, pos, err
			}
			field.Code = -1
			field.Name = name
			pos = np
		}
		raw, np, err := decodeHeaderValue(buf, pos)
		if err != nil {
			return fields, pos, err
		}
		field.Value = raw
		pos = np
		fields = append(fields, field)
		if field.Code == HeaderContentType {
			break
		}
	}
	if pos > end {
		return fields, pos, fmt.Errorf("wsp: %w: header value ran past end of block", ErrInvalidLength)
	}
	return fields, pos, nil
}

// decodeHeaderValue reads one header's value region without interpreting
// it, following the three shapes a header value may take (OMA-WAP-230
// section 8.4.1.3): a Value-length-prefixed region, a bare Short-integer,
// or a NUL-terminated Text-string.
func decodeHeaderValue(buf []byte, pos int) (raw []byte, newPos int, err error) {
	if pos >= len(buf) {
		return nil, pos, ErrTruncated
	}
	b := buf[pos]
	switch {
	case b <= 30 || b == lengthQuote:
		length, np, err := DecodeValueLength(buf, pos)
		if err != nil {
			return nil, np, err
		}
		if np+length > len(buf) {
			return nil, np, ErrTruncated
		}
		return buf[np : np+length], np + length, nil
	case IsShortInteger(b):
		return buf[pos : pos+1], pos + 1, nil
	default:
		_, np, err := DecodeTextString(buf, pos)
		if err != nil {
			return nil, np, err
		}
		return buf[pos:np], np, nil
	}
}

// FindHeader returns the first header field with the given well-known
// code, if present.
func FindHeader(fields []HeaderField, code int) (HeaderField, bool) {
	for _, f := range fields {
		if f.Code == code {
			return f, true
		}
	}
	return HeaderField{}, false
}

// FindAllHeaders returns every header field with the given well-known
// code, for headers that are allowed to repeat (e.g. To, Cc).
func FindAllHeaders(fields []HeaderField, code int) []HeaderField {
	var out []HeaderField
	for _, f := range fields {
		if f.Code == code {
			out = append(out, f)
		}
	}
	return out
}

// EncodeHeader appends one well-known header (code, already-encoded
// value bytes) to buf.
func EncodeHeader(buf []byte, code byte, value []byte) []byte {
	buf = EncodeShortInteger(buf, code)
	return append(buf, value...)
}

// EncodeApplicationHeader appends one application-header (token-text
// name, already-encoded value bytes) to buf.
func EncodeApplicationHeader(buf []byte, name string, value []byte) []byte {
	buf = EncodeTextString(buf, name)
	return append(buf, value...)
}
