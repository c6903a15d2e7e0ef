package mmspdu

import (
	"github.com/nemomobile/mms-engine-sub000/mediatype"
	"github.com/nemomobile/mms-engine-sub000/wsp"
)

// RetrieveConf is the M-Retrieve.conf PDU: the MMSC's reply to a client
// fetching a notified message.
type RetrieveConf struct {
	TransactionID  string
	MessageID      string
	Version        Version
	From           string
	To             []string
	Cc             []string
	Subject        string
	DateSeconds    uint64
	Priority       byte
	DeliveryReport bool
	ReadReport     bool
	ContentType    mediatype.MediaType
	Parts          []Part
}

var retrieveConfSpec = []HeaderSpec{
	{Code: wsp.HeaderMessageType, Name: "Message-Type", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderTransactionID, Name: "Transaction-Id", Mandatory: false},
	{Code: wsp.HeaderMessageID, Name: "Message-Id", Mandatory: false},
	{Code: wsp.HeaderMMSVersion, Name: "MMS-Version", Mandatory: true},
	{Code: wsp.HeaderFrom, Name: "From", Mandatory: false},
	{Code: wsp.HeaderTo, Name: "To", Mandatory: false, AllowMulti: true},
	{Code: wsp.HeaderCc, Name: "Cc", Mandatory: false, AllowMulti: true},
	{Code: wsp.HeaderSubject, Name: "Subject", Mandatory: false},
	{Code: wsp.HeaderDate, Name: "Date", Mandatory: false},
	{Code: wsp.HeaderPriority, Name: "Priority", Mandatory: false},
	{Code: wsp.HeaderDeliveryReport, Name: "Delivery-Report", Mandatory: false},
	{Code: wsp.HeaderReadReport, Name: "Read-Report", Mandatory: false},
	{Code: wsp.HeaderContentType, Name: "Content-Type", Mandatory: true},
}

// DecodeRetrieveConf decodes an M-Retrieve.conf PDU from buf.
func DecodeRetrieveConf(buf []byte) (*RetrieveConf, error) {
	mt, err := peekMessageType(buf)
	if err != nil {
		return nil, decodeErr("decode retrieve.conf", err)
	}
	if mt != wsp.TypeRetrieveConf {
		return nil, decodeErr("decode retrieve.conf", fmtUnexpectedType(mt, wsp.TypeRetrieveConf))
	}
	fields, headerEnd, err := wsp.DecodeHeaders(buf, 0, len(buf))
	if err != nil {
		return nil, decodeErr("decode retrieve.conf", err)
	}
	if err := ValidateHeaderSet(fields, retrieveConfSpec); err != nil {
		return nil, err
	}

	conf := &RetrieveConf{}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderTransactionID); ok {
		conf.TransactionID, _, _ = wsp.DecodeTextString(f.Value, 0)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderMessageID); ok {
		conf.MessageID, _, _ = wsp.DecodeTextString(f.Value, 0)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderMMSVersion); ok {
		v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
		conf.Version = Version(v)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderFrom); ok {
		conf.From, err = decodeFrom(f.Value)
		if err != nil {
			return nil, decodeErr("decode retrieve.conf From", err)
		}
	}
	for _, f := range wsp.FindAllHeaders(fields, wsp.HeaderTo) {
		addr, _, _ := wsp.DecodeEncodedString(f.Value, 0)
		conf.To = append(conf.To, NormalizeAddress(addr))
	}
	for _, f := range wsp.FindAllHeaders(fields, wsp.HeaderCc) {
		addr, _, _ := wsp.DecodeEncodedString(f.Value, 0)
		conf.Cc = append(conf.Cc, NormalizeAddress(addr))
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderSubject); ok {
		conf.Subject, _, _ = wsp.DecodeEncodedString(f.Value, 0)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderDate); ok {
		conf.DateSeconds, err = decodeDate(f.Value)
		if err != nil {
			return nil, decodeErr("decode retrieve.conf Date", err)
		}
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderPriority); ok {
		v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
		conf.Priority = v | 0x80
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderDeliveryReport); ok {
		conf.DeliveryReport, _ = decodeYesNo(f.Value)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderReadReport); ok {
		conf.ReadReport, _ = decodeYesNo(f.Value)
	}

	ctField, ok := wsp.FindHeader(fields, wsp.HeaderContentType)
	if !ok {
		return nil, missingHeader("decode retrieve.conf", "Content-Type")
	}
	ct, _, err := DecodeContentType(ctField.Value, 0)
	if err != nil {
		return nil, decodeErr("decode retrieve.conf Content-Type", err)
	}
	conf.ContentType = ct

	if headerEnd < len(buf) {
		parts, err := DecodeMultipart(buf, headerEnd, len(buf))
		if err != nil {
			return nil, decodeErr("decode retrieve.conf multipart", err)
		}
		conf.Parts = parts
	}
	return conf, nil
}

// Encode serializes c to its wire form.
func (c *RetrieveConf) Encode() ([]byte, error) {
	var buf []byte
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageType, wsp.EncodeShortInteger(nil, wsp.TypeRetrieveConf&0x7f))
	if c.TransactionID != "" {
		buf = wsp.EncodeHeader(buf, wsp.HeaderTransactionID, wsp.EncodeTextString(nil, c.TransactionID))
	}
	if c.MessageID != "" {
		buf = wsp.EncodeHeader(buf, wsp.HeaderMessageID, wsp.EncodeTextString(nil, c.MessageID))
	}
	buf = wsp.EncodeHeader(buf, wsp.HeaderMMSVersion, wsp.EncodeShortInteger(nil, byte(c.Version)))
	if c.From != "" {
		buf = wsp.EncodeHeader(buf, wsp.HeaderFrom, encodeFrom(c.From))
	}
	for _, addr := range c.To {
		buf = wsp.EncodeHeader(buf, wsp.HeaderTo, wsp.EncodeEncodedString(nil, EncodeAddress(addr)))
	}
	for _, addr := range c.Cc {
		buf = wsp.EncodeHeader(buf, wsp.HeaderCc, wsp.EncodeEncodedString(nil, EncodeAddress(addr)))
	}
	if c.Subject != "" {
		buf = wsp.EncodeHeader(buf, wsp.HeaderSubject, wsp.EncodeEncodedString(nil, c.Subject))
	}
	if c.DateSeconds != 0 {
		buf = wsp.EncodeHeader(buf, wsp.HeaderDate, encodeDate(c.DateSeconds))
	}
	if c.Priority != 0 {
		buf = wsp.EncodeHeader(buf, wsp.HeaderPriority, wsp.EncodeShortInteger(nil, c.Priority&0x7f))
	}
	buf = wsp.EncodeHeader(buf, wsp.HeaderDeliveryReport, encodeYesNo(c.DeliveryReport))
	buf = wsp.EncodeHeader(buf, wsp.HeaderReadReport, encodeYesNo(c.ReadReport))

	var ctBuf []byte
	ctBuf = EncodeContentType(ctBuf, c.ContentType)
	buf = wsp.EncodeHeader(buf, wsp.HeaderContentType, ctBuf)

	if len(c.Parts) > 0 {
		buf = EncodeMultipart(buf, c.Parts)
	}
	return buf, nil
}
