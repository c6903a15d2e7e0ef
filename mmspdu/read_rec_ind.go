package mmspdu

import "github.com/nemomobile/mms-engine-sub000/wsp"

// ReadRecInd is the M-Read-Rec.ind PDU: notifies the sender's MMSC that
// a message was read (or deleted unread) by a recipient.
type ReadRecInd struct {
	MessageID   string
	To          string
	From        string
	DateSeconds uint64
	ReadStatus  byte // wsp.ReadStatus*
}

var readRecIndSpec = []HeaderSpec{
	{Code: wsp.HeaderMessageType, Name: "Message-Type", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderMessageID, Name: "Message-Id", Mandatory: true},
	{Code: wsp.HeaderTo, Name: "To", Mandatory: true},
	{Code: wsp.HeaderFrom, Name: "From", Mandatory: true},
	{Code: wsp.HeaderDate, Name: "Date", Mandatory: false},
	{Code: wsp.HeaderReadStatus, Name: "Read-Status", Mandatory: true},
}

// DecodeReadRecInd decodes an M-Read-Rec.ind PDU from buf.
func DecodeReadRecInd(buf []byte) (*ReadRecInd, error) {
	mt, err := peekMessageType(buf)
	if err != nil {
		return nil, decodeErr("decode read-rec.ind", err)
	}
	if mt != wsp.TypeReadRecInd {
		return nil, decodeErr("decode read-rec.ind", fmtUnexpectedType(mt, wsp.TypeReadRecInd))
	}
	fields, _, err := wsp.DecodeHeaders(buf, 0, len(buf))
	if err != nil {
		return nil, decodeErr("decode read-rec.ind", err)
	}
	if err := ValidateHeaderSet(fields, readRecIndSpec); err != nil {
		return nil, err
	}

	ind := &ReadRecInd{}
	f, _ := wsp.FindHeader(fields, wsp.HeaderMessageID)
	ind.MessageID, _, _ = wsp.DecodeTextString(f.Value, 0)

	f, _ = wsp.FindHeader(fields, wsp.HeaderTo)
	addr, _, _ := wsp.DecodeEncodedString(f.Value, 0)
	ind.To = NormalizeAddress(addr)

	f, _ = wsp.FindHeader(fields, wsp.HeaderFrom)
	ind.From, err = decodeFrom(f.Value)
	if err != nil {
		return nil, decodeErr("decode read-rec.ind From", err)
	}

	if f, ok := wsp.FindHeader(fields, wsp.HeaderDate); ok {
		ind.DateSeconds, err = decodeDate(f.Value)
		if err != nil {
			return nil, decodeErr("decode read-rec.ind Date", err)
		}
	}

	f, _ = wsp.FindHeader(fields, wsp.HeaderReadStatus)
	v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
	ind.ReadStatus = v | 0x80

	return ind, nil
}

// Encode serializes r to its wire form.
func (r *ReadRecInd) Encode() ([]byte, error) {
	var buf []byte
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageType, wsp.EncodeShortInteger(nil, wsp.TypeReadRecInd&0x7f))
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageID, wsp.EncodeTextString(nil, r.MessageID))
	buf = wsp.EncodeHeader(buf, wsp.HeaderTo, wsp.EncodeEncodedString(nil, EncodeAddress(r.To)))
	buf = wsp.EncodeHeader(buf, wsp.HeaderFrom, encodeFrom(r.From))
	if r.DateSeconds != 0 {
		buf = wsp.EncodeHeader(buf, wsp.HeaderDate, encodeDate(r.DateSeconds))
	}
	buf = wsp.EncodeHeader(buf, wsp.HeaderReadStatus, wsp.EncodeShortInteger(nil, r.ReadStatus&0x7f))
	return buf, nil
}
