package mmspdu

import "github.com/nemomobile/mms-engine-sub000/wsp"

// SendConf is the M-Send.conf PDU: the MMSC's reply to a Send.req.
type SendConf struct {
	TransactionID string
	Version       Version
	ResponseStatus byte
	ResponseText  string
	MessageID     string
}

var sendConfSpec = []HeaderSpec{
	{Code: wsp.HeaderMessageType, Name: "Message-Type", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderTransactionID, Name: "Transaction-Id", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderMMSVersion, Name: "MMS-Version", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderResponseStatus, Name: "Response-Status", Mandatory: true},
	{Code: wsp.HeaderResponseText, Name: "Response-Text", Mandatory: false},
	{Code: wsp.HeaderMessageID, Name: "Message-Id", Mandatory: false},
}

// DecodeSendConf decodes an M-Send.conf PDU from buf.
func DecodeSendConf(buf []byte) (*SendConf, error) {
	mt, err := peekMessageType(buf)
	if err != nil {
		return nil, decodeErr("decode send.conf", err)
	}
	if mt != wsp.TypeSendConf {
		return nil, decodeErr("decode send.conf", fmtUnexpectedType(mt, wsp.TypeSendConf))
	}
	fields, _, err := wsp.DecodeHeaders(buf, 0, len(buf))
	if err != nil {
		return nil, decodeErr("decode send.conf", err)
	}
	if err := ValidateHeaderSet(fields, sendConfSpec); err != nil {
		return nil, err
	}

	conf := &SendConf{}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderTransactionID); ok {
		conf.TransactionID, _, _ = wsp.DecodeTextString(f.Value, 0)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderMMSVersion); ok {
		v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
		conf.Version = Version(v)
	}
	f, _ := wsp.FindHeader(fields, wsp.HeaderResponseStatus)
	v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
	conf.ResponseStatus = v | 0x80
	if f, ok := wsp.FindHeader(fields, wsp.HeaderResponseText); ok {
		conf.ResponseText, _, _ = wsp.DecodeEncodedString(f.Value, 0)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderMessageID); ok {
		conf.MessageID, _, _ = wsp.DecodeTextString(f.Value, 0)
	}
	return conf, nil
}

// Encode serializes c to its wire form.
func (c *SendConf) Encode() ([]byte, error) {
	var buf []byte
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageType, wsp.EncodeShortInteger(nil, wsp.TypeSendConf&0x7f))
	buf = wsp.EncodeHeader(buf, wsp.HeaderTransactionID, wsp.EncodeTextString(nil, c.TransactionID))
	buf = wsp.EncodeHeader(buf, wsp.HeaderMMSVersion, wsp.EncodeShortInteger(nil, byte(c.Version)))
	buf = wsp.EncodeHeader(buf, wsp.HeaderResponseStatus, wsp.EncodeShortInteger(nil, c.ResponseStatus&0x7f))
	if c.ResponseText != "" {
		buf = wsp.EncodeHeader(buf, wsp.HeaderResponseText, wsp.EncodeEncodedString(nil, c.ResponseText))
	}
	if c.MessageID != "" {
		buf = wsp.EncodeHeader(buf, wsp.HeaderMessageID, wsp.EncodeTextString(nil, c.MessageID))
	}
	return buf, nil
}

// StatusBand classifies ResponseStatus (§6.1).
func (c *SendConf) StatusBand() wsp.StatusBand { return wsp.ClassifyResponseStatus(c.ResponseStatus) }
