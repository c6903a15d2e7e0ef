package mmspdu

import "github.com/nemomobile/mms-engine-sub000/wsp"

// DeliveryInd is the M-Delivery.ind PDU: a delivery report for a
// previously sent message.
type DeliveryInd struct {
	MessageID   string
	DateSeconds uint64
	To          string
	Status      byte // wsp.DeliveryStatus*
}

var deliveryIndSpec = []HeaderSpec{
	{Code: wsp.HeaderMessageType, Name: "Message-Type", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderMessageID, Name: "Message-Id", Mandatory: true},
	{Code: wsp.HeaderDate, Name: "Date", Mandatory: true},
	{Code: wsp.HeaderTo, Name: "To", Mandatory: true},
	{Code: wsp.HeaderStatus, Name: "Status", Mandatory: true},
}

// DecodeDeliveryInd decodes an M-Delivery.ind PDU from buf.
func DecodeDeliveryInd(buf []byte) (*DeliveryInd, error) {
	mt, err := peekMessageType(buf)
	if err != nil {
		return nil, decodeErr("decode delivery.ind", err)
	}
	if mt != wsp.TypeDeliveryInd {
		return nil, decodeErr("decode delivery.ind", fmtUnexpectedType(mt, wsp.TypeDeliveryInd))
	}
	fields, _, err := wsp.DecodeHeaders(buf, 0, len(buf))
	if err != nil {
		return nil, decodeErr("decode delivery.ind", err)
	}
	if err := ValidateHeaderSet(fields, deliveryIndSpec); err != nil {
		return nil, err
	}

	ind := &DeliveryInd{}
	f, _ := wsp.FindHeader(fields, wsp.HeaderMessageID)
	ind.MessageID, _, _ = wsp.DecodeTextString(f.Value, 0)

	f, _ = wsp.FindHeader(fields, wsp.HeaderDate)
	ind.DateSeconds, err = decodeDate(f.Value)
	if err != nil {
		return nil, decodeErr("decode delivery.ind Date", err)
	}

	f, _ = wsp.FindHeader(fields, wsp.HeaderTo)
	addr, _, _ := wsp.DecodeEncodedString(f.Value, 0)
	ind.To = NormalizeAddress(addr)

	f, _ = wsp.FindHeader(fields, wsp.HeaderStatus)
	v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
	ind.Status = v | 0x80

	return ind, nil
}

// Encode serializes d to its wire form.
func (d *DeliveryInd) Encode() ([]byte, error) {
	var buf []byte
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageType, wsp.EncodeShortInteger(nil, wsp.TypeDeliveryInd&0x7f))
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageID, wsp.EncodeTextString(nil, d.MessageID))
	buf = wsp.EncodeHeader(buf, wsp.HeaderDate, encodeDate(d.DateSeconds))
	buf = wsp.EncodeHeader(buf, wsp.HeaderTo, wsp.EncodeEncodedString(nil, EncodeAddress(d.To)))
	buf = wsp.EncodeHeader(buf, wsp.HeaderStatus, wsp.EncodeShortInteger(nil, d.Status&0x7f))
	return buf, nil
}
