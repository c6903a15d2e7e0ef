// Package mmspdu implements the in-memory MMS PDU data model and its
// OMA-WAP-230/OMA-WAP-MMS-ENC wire encoding: the nine PDU kinds, the
// message- and part-level header blocks that carry them, multipart
// framing, and content-type parameters.
package mmspdu

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/nemomobile/mms-engine-sub000/mmserr"
	"github.com/nemomobile/mms-engine-sub000/wsp"
)

// Kind identifies which of the nine MMS PDU kinds a message is.
type Kind int

const (
	KindSendReq Kind = iota
	KindSendConf
	KindNotificationInd
	KindNotifyRespInd
	KindRetrieveConf
	KindAcknowledgeInd
	KindDeliveryInd
	KindReadRecInd
	KindReadOrigInd
)

func (k Kind) String() string {
	switch k {
	case KindSendReq:
		return "m-send.req"
	case KindSendConf:
		return "m-send.conf"
	case KindNotificationInd:
		return "m-notification.ind"
	case KindNotifyRespInd:
		return "m-notifyresp.ind"
	case KindRetrieveConf:
		return "m-retrieve.conf"
	case KindAcknowledgeInd:
		return "m-acknowledge.ind"
	case KindDeliveryInd:
		return "m-delivery.ind"
	case KindReadRecInd:
		return "m-read-rec.ind"
	case KindReadOrigInd:
		return "m-read-orig.ind"
	default:
		return "unknown"
	}
}

// messageTypeOf maps a Kind to its wire Message-Type short-integer value.
func messageTypeOf(k Kind) byte {
	switch k {
	case KindSendReq:
		return wsp.TypeSendReq
	case KindSendConf:
		return wsp.TypeSendConf
	case KindNotificationInd:
		return wsp.TypeNotificationInd
	case KindNotifyRespInd:
		return wsp.TypeNotifyRespInd
	case KindRetrieveConf:
		return wsp.TypeRetrieveConf
	case KindAcknowledgeInd:
		return wsp.TypeAcknowledgeInd
	case KindDeliveryInd:
		return wsp.TypeDeliveryInd
	case KindReadRecInd:
		return wsp.TypeReadRecInd
	case KindReadOrigInd:
		return wsp.TypeReadOrigInd
	}
	panic("mmspdu: unhandled kind")
}

func kindOfMessageType(mt byte) (Kind, bool) {
	switch mt {
	case wsp.TypeSendReq:
		return KindSendReq, true
	case wsp.TypeSendConf:
		return KindSendConf, true
	case wsp.TypeNotificationInd:
		return KindNotificationInd, true
	case wsp.TypeNotifyRespInd:
		return KindNotifyRespInd, true
	case wsp.TypeRetrieveConf:
		return KindRetrieveConf, true
	case wsp.TypeAcknowledgeInd:
		return KindAcknowledgeInd, true
	case wsp.TypeDeliveryInd:
		return KindDeliveryInd, true
	case wsp.TypeReadRecInd:
		return KindReadRecInd, true
	case wsp.TypeReadOrigInd:
		return KindReadOrigInd, true
	}
	return 0, false
}

// Part is one attachment entry within a multipart body: a Send-Req or a
// Retrieve-Conf may carry zero or more of these (§3).
type Part struct {
	ContentType     string
	ContentID       string
	ContentLocation string
	Body            []byte
}

// Version is the MMS-Version short-integer, split into major/minor
// nibbles per §3 ("high-nibble major, low-nibble minor").
type Version byte

// NewVersion builds a Version from major.minor, e.g. NewVersion(1, 1).
func NewVersion(major, minor byte) Version { return Version(major<<4 | minor) }

// Major returns the major version nibble.
func (v Version) Major() byte { return byte(v) >> 4 }

// Minor returns the minor version nibble.
func (v Version) Minor() byte { return byte(v) & 0x0f }

// DefaultVersion is the version this engine emits on outbound PDUs (1.1).
// Version stores the bare major/minor nibbles, not wsp's short-integer
// wire encoding (wsp.Version11 = 0x91 includes the short-integer high bit).
const DefaultVersion = Version(0x11)

// firstPartIDForSMIL returns the content-id a multipart/related message's
// "start" parameter should reference: the first part whose content-type
// is SMIL, if any, else the first part.
func firstPartIDForSMIL(parts []Part) string {
	idx := slices.IndexFunc(parts, func(p Part) bool {
		return p.ContentType == "application/smil"
	})
	if idx < 0 {
		idx = 0
	}
	if idx < len(parts) {
		return parts[idx].ContentID
	}
	return ""
}

func decodeErr(op string, err error) error {
	return mmserr.New(mmserr.Decode, op, err)
}

func encodeErr(op string, err error) error {
	return mmserr.New(mmserr.Encode, op, err)
}

func missingHeader(op, name string) error {
	return decodeErr(op, fmt.Errorf("missing mandatory header %s", name))
}
