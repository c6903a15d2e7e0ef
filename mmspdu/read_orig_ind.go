package mmspdu

import "github.com/nemomobile/mms-engine-sub000/wsp"

// ReadOrigInd is the M-Read-Orig.ind PDU: the push the MMSC sends the
// original sender to report a recipient's Read/Deleted status, which the
// Notification task kind passes on through handler.ReadReport.
type ReadOrigInd struct {
	MessageID   string
	To          string
	From        string
	DateSeconds uint64
	ReadStatus  byte // wsp.ReadStatus*
}

var readOrigIndSpec = []HeaderSpec{
	{Code: wsp.HeaderMessageType, Name: "Message-Type", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderMessageID, Name: "Message-Id", Mandatory: true},
	{Code: wsp.HeaderTo, Name: "To", Mandatory: true},
	{Code: wsp.HeaderFrom, Name: "From", Mandatory: true},
	{Code: wsp.HeaderDate, Name: "Date", Mandatory: false},
	{Code: wsp.HeaderReadStatus, Name: "Read-Status", Mandatory: true},
}

// DecodeReadOrigInd decodes an M-Read-Orig.ind PDU from buf.
func DecodeReadOrigInd(buf []byte) (*ReadOrigInd, error) {
	mt, err := peekMessageType(buf)
	if err != nil {
		return nil, decodeErr("decode read-orig.ind", err)
	}
	if mt != wsp.TypeReadOrigInd {
		return nil, decodeErr("decode read-orig.ind", fmtUnexpectedType(mt, wsp.TypeReadOrigInd))
	}
	fields, _, err := wsp.DecodeHeaders(buf, 0, len(buf))
	if err != nil {
		return nil, decodeErr("decode read-orig.ind", err)
	}
	if err := ValidateHeaderSet(fields, readOrigIndSpec); err != nil {
		return nil, err
	}

	ind := &ReadOrigInd{}
	f, _ := wsp.FindHeader(fields, wsp.HeaderMessageID)
	ind.MessageID, _, _ = wsp.DecodeTextString(f.Value, 0)

	f, _ = wsp.FindHeader(fields, wsp.HeaderTo)
	addr, _, _ := wsp.DecodeEncodedString(f.Value, 0)
	ind.To = NormalizeAddress(addr)

	f, _ = wsp.FindHeader(fields, wsp.HeaderFrom)
	ind.From, err = decodeFrom(f.Value)
	if err != nil {
		return nil, decodeErr("decode read-orig.ind From", err)
	}

	if f, ok := wsp.FindHeader(fields, wsp.HeaderDate); ok {
		ind.DateSeconds, err = decodeDate(f.Value)
		if err != nil {
			return nil, decodeErr("decode read-orig.ind Date", err)
		}
	}

	f, _ = wsp.FindHeader(fields, wsp.HeaderReadStatus)
	v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
	ind.ReadStatus = v | 0x80

	return ind, nil
}

// Encode serializes r to its wire form.
func (r *ReadOrigInd) Encode() ([]byte, error) {
	var buf []byte
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageType, wsp.EncodeShortInteger(nil, wsp.TypeReadOrigInd&0x7f))
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageID, wsp.EncodeTextString(nil, r.MessageID))
	buf = wsp.EncodeHeader(buf, wsp.HeaderTo, wsp.EncodeEncodedString(nil, EncodeAddress(r.To)))
	buf = wsp.EncodeHeader(buf, wsp.HeaderFrom, encodeFrom(r.From))
	if r.DateSeconds != 0 {
		buf = wsp.EncodeHeader(buf, wsp.HeaderDate, encodeDate(r.DateSeconds))
	}
	buf = wsp.EncodeHeader(buf, wsp.HeaderReadStatus, wsp.EncodeShortInteger(nil, r.ReadStatus&0x7f))
	return buf, nil
}
