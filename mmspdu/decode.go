package mmspdu

// PDU is a decoded message of any kind, carried as a tagged union: Kind
// says which of the nine pointer fields is populated.
type PDU struct {
	Kind Kind

	SendReq         *SendReq
	SendConf        *SendConf
	NotificationInd *NotificationInd
	NotifyRespInd   *NotifyRespInd
	RetrieveConf    *RetrieveConf
	AcknowledgeInd  *AcknowledgeInd
	DeliveryInd     *DeliveryInd
	ReadRecInd      *ReadRecInd
	ReadOrigInd     *ReadOrigInd
}

// Decode decodes buf into a PDU of whichever kind its Message-Type
// header declares.
func Decode(buf []byte) (*PDU, error) {
	kind, err := DecodeKind(buf)
	if err != nil {
		return nil, err
	}

	pdu := &PDU{Kind: kind}
	switch kind {
	case KindSendReq:
		pdu.SendReq, err = DecodeSendReq(buf)
	case KindSendConf:
		pdu.SendConf, err = DecodeSendConf(buf)
	case KindNotificationInd:
		pdu.NotificationInd, err = DecodeNotificationInd(buf)
	case KindNotifyRespInd:
		pdu.NotifyRespInd, err = DecodeNotifyRespInd(buf)
	case KindRetrieveConf:
		pdu.RetrieveConf, err = DecodeRetrieveConf(buf)
	case KindAcknowledgeInd:
		pdu.AcknowledgeInd, err = DecodeAcknowledgeInd(buf)
	case KindDeliveryInd:
		pdu.DeliveryInd, err = DecodeDeliveryInd(buf)
	case KindReadRecInd:
		pdu.ReadRecInd, err = DecodeReadRecInd(buf)
	case KindReadOrigInd:
		pdu.ReadOrigInd, err = DecodeReadOrigInd(buf)
	}
	if err != nil {
		return nil, err
	}
	return pdu, nil
}

// TransactionID returns the transaction id carried by whichever kind of
// PDU is populated, or "" for kinds that don't carry one (Delivery.ind,
// Read-Rec.ind, Read-Orig.ind key off Message-Id instead).
func (p *PDU) TransactionID() string {
	switch p.Kind {
	case KindSendReq:
		return p.SendReq.TransactionID
	case KindSendConf:
		return p.SendConf.TransactionID
	case KindNotificationInd:
		return p.NotificationInd.TransactionID
	case KindNotifyRespInd:
		return p.NotifyRespInd.TransactionID
	case KindRetrieveConf:
		return p.RetrieveConf.TransactionID
	case KindAcknowledgeInd:
		return p.AcknowledgeInd.TransactionID
	default:
		return ""
	}
}

// Encode serializes whichever PDU kind is populated to its wire form.
func (p *PDU) Encode() ([]byte, error) {
	switch p.Kind {
	case KindSendReq:
		return p.SendReq.Encode()
	case KindSendConf:
		return p.SendConf.Encode()
	case KindNotificationInd:
		return p.NotificationInd.Encode()
	case KindNotifyRespInd:
		return p.NotifyRespInd.Encode()
	case KindRetrieveConf:
		return p.RetrieveConf.Encode()
	case KindAcknowledgeInd:
		return p.AcknowledgeInd.Encode()
	case KindDeliveryInd:
		return p.DeliveryInd.Encode()
	case KindReadRecInd:
		return p.ReadRecInd.Encode()
	case KindReadOrigInd:
		return p.ReadOrigInd.Encode()
	default:
		return nil, encodeErr("encode pdu", errUnsupportedPDUType)
	}
}
