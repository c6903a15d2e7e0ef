package mmspdu

import (
	"fmt"

	"github.com/nemomobile/mms-engine-sub000/wsp"
)

// HeaderSpec declares one well-known header a PDU kind expects, and the
// constraints decoding must enforce (§4.1.8).
type HeaderSpec struct {
	Code       int
	Name       string
	Mandatory  bool
	AllowMulti bool
	PresetPos  bool
}

// ValidateHeaderSet enforces §4.1.8: every MANDATORY header must be
// present, and the PRESET_POS headers (in the order given in specs) must
// appear first, in that exact order.
func ValidateHeaderSet(fields []wsp.HeaderField, specs []HeaderSpec) error {
	var presetPos []HeaderSpec
	for _, s := range specs {
		if s.PresetPos {
			presetPos = append(presetPos, s)
		}
	}
	for i, s := range presetPos {
		if i >= len(fields) || fields[i].Code != s.Code {
			return fmt.Errorf("mmspdu: expected %s at preset position %d", s.Name, i)
		}
	}
	for _, s := range specs {
		if !s.Mandatory {
			continue
		}
		if _, ok := wsp.FindHeader(fields, s.Code); !ok {
			return missingHeader("decode", s.Name)
		}
	}
	return nil
}

// Booleans ("Yes/No" headers, §4.1.6).
const (
	yesValue = wsp.BoolYes
	noValue  = wsp.BoolNo
)

func decodeYesNo(raw []byte) (bool, error) {
	v, _, err := wsp.DecodeShortInteger(raw, 0)
	if err != nil {
		return false, err
	}
	switch v | 0x80 {
	case yesValue:
		return true, nil
	case noValue:
		return false, nil
	default:
		return false, fmt.Errorf("mmspdu: invalid yes/no value 0x%02x", v)
	}
}

func encodeYesNo(b bool) []byte {
	if b {
		return wsp.EncodeShortInteger(nil, yesValue&0x7f)
	}
	return wsp.EncodeShortInteger(nil, noValue&0x7f)
}

// decodeFrom decodes the From header's two-shape value: an encoded
// address, or the insert-address token.
func decodeFrom(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", wsp.ErrTruncated
	}
	tok, _, err := wsp.DecodeShortInteger(raw, 0)
	if err == nil {
		switch tok | 0x80 {
		case wsp.FromTokenInsertAddress:
			return insertAddressSentinel, nil
		case wsp.FromTokenAddressPresent:
			addr, _, err := wsp.DecodeEncodedString(raw, 1)
			if err != nil {
				return "", err
			}
			return NormalizeAddress(addr), nil
		}
	}
	addr, _, err := wsp.DecodeEncodedString(raw, 0)
	if err != nil {
		return "", err
	}
	return NormalizeAddress(addr), nil
}

func encodeFrom(addr string) []byte {
	if addr == insertAddressSentinel {
		return wsp.EncodeShortInteger(nil, wsp.FromTokenInsertAddress&0x7f)
	}
	buf := wsp.EncodeShortInteger(nil, wsp.FromTokenAddressPresent&0x7f)
	return wsp.EncodeEncodedString(buf, EncodeAddress(addr))
}

// decodeDateOrDelta decodes the Expiry/Delivery-Time two-shape value: an
// absolute date (long-integer seconds since epoch) or a relative delta
// in seconds.
func decodeDateOrDelta(raw []byte) (absolute bool, seconds uint64, err error) {
	if len(raw) == 0 {
		return false, 0, wsp.ErrTruncated
	}
	tok, pos, err := wsp.DecodeShortInteger(raw, 0)
	if err != nil {
		return false, 0, err
	}
	switch tok | 0x80 {
	case wsp.DateTokenAbsolute:
		v, _, err := wsp.DecodeLongInteger(raw, pos)
		return true, v, err
	case wsp.DateTokenRelative:
		v, _, err := wsp.DecodeIntegerValue(raw, pos)
		return false, v, err
	default:
		return false, 0, fmt.Errorf("mmspdu: invalid date token 0x%02x", tok)
	}
}

func encodeAbsoluteDate(seconds uint64) []byte {
	buf := wsp.EncodeShortInteger(nil, wsp.DateTokenAbsolute&0x7f)
	return wsp.EncodeLongInteger(buf, seconds)
}

func encodeRelativeDate(seconds uint64) []byte {
	buf := wsp.EncodeShortInteger(nil, wsp.DateTokenRelative&0x7f)
	return wsp.EncodeLongInteger(buf, seconds)
}

// decodeDate decodes the Date header: big-endian seconds since epoch,
// masked to 31 bits per §4.1.6's documented compatibility wart.
func decodeDate(raw []byte) (uint64, error) {
	v, _, err := wsp.DecodeLongInteger(raw, 0)
	if err != nil {
		return 0, err
	}
	return v & 0x7fffffff, nil
}

func encodeDate(seconds uint64) []byte {
	return wsp.EncodeLongInteger(nil, seconds)
}
