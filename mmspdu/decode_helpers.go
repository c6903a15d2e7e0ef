package mmspdu

import (
	"errors"
	"fmt"

	"github.com/nemomobile/mms-engine-sub000/wsp"
)

var (
	errEmptyTransactionID          = errors.New("transaction id must not be empty")
	errStartReferencesMissingPart  = errors.New("multipart start references a content-id not present in parts")
	errUnsupportedPDUType          = errors.New("unsupported or unrecognized PDU type")
)

// peekMessageType decodes just the first header of buf, which every PDU
// kind requires to be Message-Type at position 0 (§4.1.8), and returns
// its wire value (with the short-integer high bit restored, e.g. 128+).
func peekMessageType(buf []byte) (byte, error) {
	if len(buf) == 0 {
		return 0, wsp.ErrTruncated
	}
	code, pos, err := wsp.DecodeShortInteger(buf, 0)
	if err != nil {
		return 0, err
	}
	if code != wsp.HeaderMessageType {
		return 0, fmt.Errorf("mmspdu: first header is code 0x%02x, expected Message-Type", code)
	}
	v, _, err := wsp.DecodeShortInteger(buf, pos)
	if err != nil {
		return 0, err
	}
	return v | 0x80, nil
}

func fmtUnexpectedType(got, want byte) error {
	return fmt.Errorf("mmspdu: Message-Type 0x%02x, expected 0x%02x", got, want)
}

// DecodeKind peeks at buf's Message-Type header and returns which PDU
// kind it declares, without decoding the rest of the PDU.
func DecodeKind(buf []byte) (Kind, error) {
	mt, err := peekMessageType(buf)
	if err != nil {
		return 0, decodeErr("peek message-type", err)
	}
	k, ok := kindOfMessageType(mt)
	if !ok {
		return 0, decodeErr("peek message-type", errUnsupportedPDUType)
	}
	return k, nil
}
