package mmspdu

import "github.com/nemomobile/mms-engine-sub000/wsp"

// NotificationInd is the M-Notification.ind PDU: a WAP push telling the
// client a message is waiting to be retrieved.
type NotificationInd struct {
	TransactionID   string
	Version         Version
	From            string
	Subject         string
	MessageClass    byte
	MessageSize     uint64
	ExpirySeconds   uint64
	ExpiryAbsolute  bool // true if ExpirySeconds is an epoch instant, false if a delta from now
	ContentLocation string
}

var notificationIndSpec = []HeaderSpec{
	{Code: wsp.HeaderMessageType, Name: "Message-Type", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderTransactionID, Name: "Transaction-Id", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderMMSVersion, Name: "MMS-Version", Mandatory: true, PresetPos: true},
	{Code: wsp.HeaderFrom, Name: "From", Mandatory: false},
	{Code: wsp.HeaderSubject, Name: "Subject", Mandatory: false},
	{Code: wsp.HeaderMessageClass, Name: "Message-Class", Mandatory: true},
	{Code: wsp.HeaderMessageSize, Name: "Message-Size", Mandatory: true},
	{Code: wsp.HeaderExpiry, Name: "Expiry", Mandatory: true},
	{Code: wsp.HeaderContentLocation, Name: "Content-Location", Mandatory: true},
}

// DecodeNotificationInd decodes an M-Notification.ind PDU from buf.
func DecodeNotificationInd(buf []byte) (*NotificationInd, error) {
	mt, err := peekMessageType(buf)
	if err != nil {
		return nil, decodeErr("decode notification.ind", err)
	}
	if mt != wsp.TypeNotificationInd {
		return nil, decodeErr("decode notification.ind", fmtUnexpectedType(mt, wsp.TypeNotificationInd))
	}
	fields, _, err := wsp.DecodeHeaders(buf, 0, len(buf))
	if err != nil {
		return nil, decodeErr("decode notification.ind", err)
	}
	if err := ValidateHeaderSet(fields, notificationIndSpec); err != nil {
		return nil, err
	}

	ind := &NotificationInd{}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderTransactionID); ok {
		ind.TransactionID, _, _ = wsp.DecodeTextString(f.Value, 0)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderMMSVersion); ok {
		v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
		ind.Version = Version(v)
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderFrom); ok {
		ind.From, err = decodeFrom(f.Value)
		if err != nil {
			return nil, decodeErr("decode notification.ind From", err)
		}
	}
	if f, ok := wsp.FindHeader(fields, wsp.HeaderSubject); ok {
		ind.Subject, _, _ = wsp.DecodeEncodedString(f.Value, 0)
	}
	f, _ := wsp.FindHeader(fields, wsp.HeaderMessageClass)
	v, _, _ := wsp.DecodeShortInteger(f.Value, 0)
	ind.MessageClass = v | 0x80

	f, _ = wsp.FindHeader(fields, wsp.HeaderMessageSize)
	ind.MessageSize, _, err = wsp.DecodeIntegerValue(f.Value, 0)
	if err != nil {
		return nil, decodeErr("decode notification.ind Message-Size", err)
	}

	f, _ = wsp.FindHeader(fields, wsp.HeaderExpiry)
	absolute, seconds, err := decodeDateOrDelta(f.Value)
	if err != nil {
		return nil, decodeErr("decode notification.ind Expiry", err)
	}
	ind.ExpirySeconds = seconds
	ind.ExpiryAbsolute = absolute

	f, _ = wsp.FindHeader(fields, wsp.HeaderContentLocation)
	ind.ContentLocation, _, _ = wsp.DecodeTextString(f.Value, 0)

	return ind, nil
}

// Encode serializes n to its wire form.
func (n *NotificationInd) Encode() ([]byte, error) {
	var buf []byte
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageType, wsp.EncodeShortInteger(nil, wsp.TypeNotificationInd&0x7f))
	buf = wsp.EncodeHeader(buf, wsp.HeaderTransactionID, wsp.EncodeTextString(nil, n.TransactionID))
	buf = wsp.EncodeHeader(buf, wsp.HeaderMMSVersion, wsp.EncodeShortInteger(nil, byte(n.Version)))
	if n.From != "" {
		buf = wsp.EncodeHeader(buf, wsp.HeaderFrom, encodeFrom(n.From))
	}
	if n.Subject != "" {
		buf = wsp.EncodeHeader(buf, wsp.HeaderSubject, wsp.EncodeEncodedString(nil, n.Subject))
	}
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageClass, wsp.EncodeShortInteger(nil, n.MessageClass&0x7f))
	buf = wsp.EncodeHeader(buf, wsp.HeaderMessageSize, wsp.EncodeLongInteger(nil, n.MessageSize))
	if n.ExpiryAbsolute {
		buf = wsp.EncodeHeader(buf, wsp.HeaderExpiry, encodeAbsoluteDate(n.ExpirySeconds))
	} else {
		buf = wsp.EncodeHeader(buf, wsp.HeaderExpiry, encodeRelativeDate(n.ExpirySeconds))
	}
	buf = wsp.EncodeHeader(buf, wsp.HeaderContentLocation, wsp.EncodeTextString(nil, n.ContentLocation))
	return buf, nil
}
