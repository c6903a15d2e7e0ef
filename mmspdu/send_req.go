package mmspdu

import (
	"github.com/nemomobile/mms-engine-sub000/mediatype"
	"github.com/nemomobile/mms-engine-sub000/wsp"
)

// SendReq is the M-Send.req PDU: a message a client submits to an MMSC.
type SendReq struct {
	TransactionID  string
	Version        Version
	From           string
	To             []string
	Cc             []string
	Bcc            []string
	Subject        string
	MessageClass   byte
	ExpirySeconds  uint64 // seconds from submission, or an epoch instant if ExpiryAbsolute
	ExpiryAbsolute bool
	Priority       byte
	DeliveryReport bool
	ReadReport     bool
	ContentType    mediatype.MediaType
	Parts          []Part
}

var sendReqSpec = []HeaderSpec{
	{Code: wsp.HeaderMessageType, Name: "Message-Type", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderTransactionID, Name: "Transaction-Id", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderMMSVersion, Name: "MMS-Version", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderFrom, Name: "From", Mandatory: false},
	{Code: wsp.HeaderTo, Name: "To", Mandatory: false, AllowMulti: true},
	{Code: wsp.HeaderCc, Name: "Cc", Mandatory: false, AllowMulti: true},
	{Code: wsp.HeaderBcc, Name: "Bcc", Mandatory: false, AllowMulti: true},
	{Code: wsp.HeaderSubject, Name: "Subject", Mandatory: false},
	{Code: wsp.HeaderMessageClass, Name: "Message-Class", Mandatory: false},
	{Code: wsp.HeaderExpiry, Name: "Expiry", Mandatory: false},
	{Code: wsp.HeaderPriority, Name: "Priority", Mandatory: false},
	{Code: wsp.HeaderDeliveryReport, Name: "Delivery-Report", Mandatory: false},
	{Code: wsp.HeaderReadReport, Name: "Read-Report", Mandatory: false},
	{Code: wsp.HeaderContentType, Name: "Content-Type", Mandatory: true},
}

// DecodeSendReq decodes an M-Send.req PDU from buf.
func DecodeSendReq(buf []byte) (*SendReq, error) {
	mt, err := peekMessageType(buf)
	if err != nil {
		return nil, decodeErr("decode send.req", err)
	}
	if mt != wsp.TypeSendReq {
		return nil, decodeErr("decode send.req", fmtUnexpectedType(mt, wsp.TypeSendReq))
	}

	fields, headerEnd, err := wsp.DecodeHeaders(buf, 0, len(buf))
	if err != nil {
		return nil, decodeErr("decode send.req", err)
	}
	if err := ValidateHeaderSet(fields, sendReqSpec); err != nil {
		return nil, err
	}

	req := &SendReq{}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderTransactionID); ok {
		req.TransactionID, _, _ = wsp.DecodeTextString(f.Value, 0)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderMMSVersion); ok {
		v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
		req.Version = Version(v)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderFrom); ok {
		req.From, err = decodeFrom(f.Value)
		if err != nil {
			return nil, decodeErr("decode send.req From", err)
		}
	}
	for _, f := range wsp.FindAllHeaders(fields, wsp.HeaderTo) {
		addr, _, _ := wsp.DecodeEncodedString(f.Value, 0)
		req.To = append(req.To, NormalizeAddress(addr))
	}
	for _, f := range wsp.FindAllHeaders(fields, wsp.HeaderCc) {
		addr, _, _ := wsp.DecodeEncodedString(f.Value, 0)
		req.Cc = append(req.Cc, NormalizeAddress(addr))
	}
	for _, f := range wsp.FindAllHeaders(fields, wsp.HeaderBcc) {
		addr, _, _ := wsp.DecodeEncodedString(f.Value, 0)
		req.Bcc = append(req.Bcc, NormalizeAddress(addr))
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderSubject); ok {
		req.Subject, _, _ = wsp.DecodeEncodedString(f.Value, 0)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderMessageClass); ok {
		v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
		req.MessageClass = v | 0x80
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderExpiry); ok {
		absolute, seconds, err := decodeDateOrDelta(f.Value)
		if err != nil {
			return nil, decodeErr("decode send.req Expiry", err)
		}
		req.ExpirySeconds = seconds
		req.ExpiryAbsolute = absolute
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderPriority); ok {
		v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
		req.Priority = v | 0x80
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderDeliveryReport); ok {
		req.DeliveryReport, _ = decodeYesNo(f.Value)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderReadReport); ok {
		req.ReadReport, _ = decodeYesNo(f.Value)
	}

	ctField, ok := wsp.FindHeader(fields, wsp.HeaderContentType)
	if !ok {
		return nil, missingHeader("decode send.req", "Content-Type")
	}
	ct, _, err := DecodeContentType(ctField.Value, 0)
	if err != nil {
		return nil, decodeErr("decode send.req Content-Type", err)
	}
	req.ContentType = ct

	if headerEnd < len(buf) {
		parts, err := DecodeMultipart(buf, headerEnd, len(buf))
		if err != nil {
			return nil, decodeErr("decode send.req multipart", err)
		}
		req.Parts = parts
	}
	return req, nil
}

// Encode serializes r to its wire form.
func (r *SendReq) Encode() ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	var buf []byte
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageType, wsp.EncodeShortInteger(nil, wsp.TypeSendReq&0x7f))
	buf = wsp.EncodeHeader(buf, wsp.HeaderTransactionID, wsp.EncodeTextString(nil, r.TransactionID))
	buf = wsp.EncodeHeader(buf, wsp.HeaderMMSVersion, wsp.EncodeShortInteger(nil, byte(r.Version)))
	if r.From != "" {
		buf = wsp.EncodeHeader(buf, wsp.HeaderFrom, encodeFrom(r.From))
	}
	for _, addr := range r.To {
		buf = wsp.EncodeHeader(buf, wsp.HeaderTo, wsp.EncodeEncodedString(nil, EncodeAddress(addr)))
	}
	for _, addr := range r.Cc {
		buf = wsp.EncodeHeader(buf, wsp.HeaderCc, wsp.EncodeEncodedString(nil, EncodeAddress(addr)))
	}
	for _, addr := range r.Bcc {
		buf = wsp.EncodeHeader(buf, wsp.HeaderBcc, wsp.EncodeEncodedString(nil, EncodeAddress(addr)))
	}
	if r.Subject != "" {
		buf = wsp.EncodeHeader(buf, wsp.HeaderSubject, wsp.EncodeEncodedString(nil, r.Subject))
	}
	if r.MessageClass != 0 {
		buf = wsp.EncodeHeader(buf, wsp.HeaderMessageClass, wsp.EncodeShortInteger(nil, r.MessageClass&0x7f))
	}
	if r.ExpirySeconds != 0 {
		if r.ExpiryAbsolute {
			buf = wsp.EncodeHeader(buf, wsp.HeaderExpiry, encodeAbsoluteDate(r.ExpirySeconds))
		} else {
			buf = wsp.EncodeHeader(buf, wsp.HeaderExpiry, encodeRelativeDate(r.ExpirySeconds))
		}
	}
	if r.Priority != 0 {
		buf = wsp.EncodeHeader(buf, wsp.HeaderPriority, wsp.EncodeShortInteger(nil, r.Priority&0x7f))
	}
	buf = wsp.EncodeHeader(buf, wsp.HeaderDeliveryReport, encodeYesNo(r.DeliveryReport))
	buf = wsp.EncodeHeader(buf, wsp.HeaderReadReport, encodeYesNo(r.ReadReport))

	ct := r.ContentType
	if len(r.Parts) > 0 {
		ct = r.multipartContentType()
	}
	var ctBuf []byte
	ctBuf = EncodeContentType(ctBuf, ct)
	buf = wsp.EncodeHeader(buf, wsp.HeaderContentType, ctBuf)

	if len(r.Parts) > 0 {
		buf = EncodeMultipart(buf, r.Parts)
	}
	return buf, nil
}

func (r *SendReq) multipartContentType() mediatype.MediaType {
	mt := mediatype.MediaType{Full: "application/vnd.wap.multipart.related"}
	if start := firstPartIDForSMIL(r.Parts); start != "" {
		mt.Params = append(mt.Params, mediatype.Param{Attribute: "type", Value: "application/smil"})
		mt.Params = append(mt.Params, mediatype.Param{Attribute: "start", Value: start})
	}
	return mt
}

func (r *SendReq) validate() error {
	if r.TransactionID == "" {
		return encodeErr("encode send.req", errEmptyTransactionID)
	}
	if len(r.Parts) > 0 {
		start := firstPartIDForSMIL(r.Parts)
		found := false
		for _, p := range r.Parts {
			if p.ContentID == start {
				found = true
				break
			}
		}
		if !found {
			return encodeErr("encode send.req", errStartReferencesMissingPart)
		}
	}
	return nil
}
