package mmspdu

import "github.com/nemomobile/mms-engine-sub000/wsp"

// NotifyRespInd is the M-NotifyResp.ind PDU: the client's reply to a
// Notification.ind, confirming or declining retrieval.
type NotifyRespInd struct {
	TransactionID string
	Version       Version
	Status        byte // wsp.RetrieveStatus* family, or Unrecognised (132)
}

var notifyRespIndSpec = []HeaderSpec{
	{Code: wsp.HeaderMessageType, Name: "Message-Type", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderTransactionID, Name: "Transaction-Id", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderMMSVersion, Name: "MMS-Version", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderStatus, Name: "Status", Mandatory: true},
}

// DecodeNotifyRespInd decodes an M-NotifyResp.ind PDU from buf.
func DecodeNotifyRespInd(buf []byte) (*NotifyRespInd, error) {
	mt, err := peekMessageType(buf)
	if err != nil {
		return nil, decodeErr("decode notifyresp.ind", err)
	}
	if mt != wsp.TypeNotifyRespInd {
		return nil, decodeErr("decode notifyresp.ind", fmtUnexpectedType(mt, wsp.TypeNotifyRespInd))
	}
	fields, _, err := wsp.DecodeHeaders(buf, 0, len(buf))
	if err != nil {
		return nil, decodeErr("decode notifyresp.ind", err)
	}
	if err := ValidateHeaderSet(fields, notifyRespIndSpec); err != nil {
		return nil, err
	}

	ind := &NotifyRespInd{}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderTransactionID); ok {
		ind.TransactionID, _, _ = wsp.DecodeTextString(f.Value, 0)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderMMSVersion); ok {
		v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
		ind.Version = Version(v)
	}
	f, _ := wsp.FindHeader(fields, wsp.HeaderStatus)
	v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
	ind.Status = v | 0x80
	return ind, nil
}

// Encode serializes n to its wire form.
func (n *NotifyRespInd) Encode() ([]byte, error) {
	var buf []byte
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageType, wsp.EncodeShortInteger(nil, wsp.TypeNotifyRespInd&0x7f))
	buf = wsp.EncodeHeader(buf, wsp.HeaderTransactionID, wsp.EncodeTextString(nil, n.TransactionID))
	buf = wsp.EncodeHeader(buf, wsp.HeaderMMSVersion, wsp.EncodeShortInteger(nil, byte(n.Version)))
	buf = wsp.EncodeHeader(buf, wsp.HeaderStatus, wsp.EncodeShortInteger(nil, n.Status&0x7f))
	return buf, nil
}
