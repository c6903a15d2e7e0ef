package mmspdu

import "github.com/nemomobile/mms-engine-sub000/wsp"

// AcknowledgeInd is the M-Acknowledge.ind PDU: confirms to the MMSC that
// a Retrieve.conf was received.
type AcknowledgeInd struct {
	TransactionID string
	Version       Version
	ReportAllowed bool
}

var acknowledgeIndSpec = []HeaderSpec{
	{Code: wsp.HeaderMessageType, Name: "Message-Type", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderTransactionID, Name: "Transaction-Id", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderMMSVersion, Name: "MMS-Version", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderReportAllowed, Name: "Report-Allowed", Mandatory: false},
}

// DecodeAcknowledgeInd decodes an M-Acknowledge.ind PDU from buf.
func DecodeAcknowledgeInd(buf []byte) (*AcknowledgeInd, error) {
	mt, err := peekMessageType(buf)
	if err != nil {
		return nil, decodeErr("decode acknowledge.ind", err)
	}
	if mt != wsp.TypeAcknowledgeInd {
		return nil, decodeErr("decode acknowledge.ind", fmtUnexpectedType(mt, wsp.TypeAcknowledgeInd))
	}
	fields, _, err := wsp.DecodeHeaders(buf, 0, len(buf))
	if err != nil {
		return nil, decodeErr("decode acknowledge.ind", err)
	}
	if err := ValidateHeaderSet(fields, acknowledgeIndSpec); err != nil {
		return nil, err
	}

	ind := &AcknowledgeInd{}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderTransactionID); ok {
		ind.TransactionID, _, _ = wsp.DecodeTextString(f.Value, 0)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderMMSVersion); ok {
		v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
		ind.Version = Version(v)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderReportAllowed); ok {
		ind.ReportAllowed, _ = decodeYesNo(f.Value)
	}
	return ind, nil
}

// Encode serializes a to its wire form.
func (a *AcknowledgeInd) Encode() ([]byte, error) {
	var buf []byte
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageType, wsp.EncodeShortInteger(nil, wsp.TypeAcknowledgeInd&0x7f))
	buf = wsp.EncodeHeader(buf, wsp.HeaderTransactionID, wsp.EncodeTextString(nil, a.TransactionID))
	buf = wsp.EncodeHeader(buf, wsp.HeaderMMSVersion, wsp.EncodeShortInteger(nil, byte(a.Version)))
	buf = wsp.EncodeHeader(buf, wsp.HeaderReportAllowed, encodeYesNo(a.ReportAllowed))
	return buf, nil
}
