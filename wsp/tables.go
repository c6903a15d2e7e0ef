package wsp

// Message-level well-known header codes (OMA-WAP-MMS-ENC section 7.3
// Table 12), low 7 bits of the well-known-header octet.
const (
	HeaderBcc                 = 0x01
	HeaderCc                  = 0x02
	HeaderContentLocation     = 0x03
	HeaderContentType         = 0x04
	HeaderDate                = 0x05
	HeaderDeliveryReport      = 0x06
	HeaderDeliveryTime        = 0x07
	HeaderExpiry              = 0x08
	HeaderFrom                = 0x09
	HeaderMessageClass        = 0x0a
	HeaderMessageID           = 0x0b
	HeaderMessageType         = 0x0c
	HeaderMMSVersion          = 0x0d
	HeaderMessageSize         = 0x0e
	HeaderPriority            = 0x0f
	HeaderReadReport          = 0x10
	HeaderReportAllowed       = 0x11
	HeaderResponseStatus      = 0x12
	HeaderResponseText        = 0x13
	HeaderSenderVisibility    = 0x14
	HeaderStatus              = 0x15
	HeaderSubject             = 0x16
	HeaderTo                  = 0x17
	HeaderTransactionID       = 0x18
	HeaderRetrieveStatus      = 0x19
	HeaderRetrieveText        = 0x1a
	HeaderReadStatus          = 0x1b
	HeaderReplyCharging       = 0x1c
	HeaderReplyChargingDeadln = 0x1d
	HeaderReplyChargingID     = 0x1e
	HeaderReplyChargingSize   = 0x1f
	HeaderPreviouslySentBy    = 0x20
	HeaderPreviouslySentDate  = 0x21
)

// Part-level header codes (OMA-WAP-MMS-ENC section 7.3 Table 14/8).
const (
	PartHeaderContentLocation    = 0x0e
	PartHeaderContentDisposition = 0x2e
	PartHeaderContentID          = 0x40
	PartHeaderContentDisposition2 = 0x45
)

// PDU type (Message-Type header value), §6.1.
const (
	TypeSendReq        = 128
	TypeSendConf       = 129
	TypeNotificationInd = 130
	TypeNotifyRespInd  = 131
	TypeRetrieveConf   = 132
	TypeAcknowledgeInd = 133
	TypeDeliveryInd    = 134
	TypeReadRecInd     = 135
	TypeReadOrigInd    = 136
)

// MMS-Version short-integer values.
const (
	Version10 = 0x90
	Version11 = 0x91
	Version12 = 0x92
	Version13 = 0x93
)

// Priority enum.
const (
	PriorityLow    = 128
	PriorityNormal = 129
	PriorityHigh   = 130
)

// Message-Class enum.
const (
	ClassPersonal      = 128
	ClassAdvertisement = 129
	ClassInformational = 130
	ClassAuto          = 131
)

// Boolean (Yes/No) encoding shared by several headers.
const (
	BoolYes = 128
	BoolNo  = 129
)

// Date token values (§4.1.6).
const (
	DateTokenAbsolute = 0x80
	DateTokenRelative = 0x81
)

// From header tokens (§4.1.6).
const (
	FromTokenAddressPresent = 0x80
	FromTokenInsertAddress  = 0x81
)

// Response-Status bands (§6.1).
const (
	ResponseStatusOK               = 128
	ResponseStatusGenericErrorLo   = 129
	ResponseStatusGenericErrorHi   = 136
	ResponseStatusTransientErrorLo = 192
	ResponseStatusTransientErrorHi = 196
	ResponseStatusPermanentErrorLo = 224
	ResponseStatusPermanentErrorHi = 235
)

// Retrieve-Status bands (§6.1).
const (
	RetrieveStatusOK               = 128
	RetrieveStatusTransientErrorLo = 192
	RetrieveStatusTransientErrorHi = 194
	RetrieveStatusPermanentErrorLo = 224
	RetrieveStatusPermanentErrorHi = 227
)

// Delivery-Status enum (§6.1).
const (
	DeliveryStatusExpired       = 128
	DeliveryStatusRetrieved     = 129
	DeliveryStatusRejected      = 130
	DeliveryStatusDeferred      = 131
	DeliveryStatusUnrecognised  = 132
	DeliveryStatusIndeterminate = 133
	DeliveryStatusForwarded     = 134
	DeliveryStatusUnreachable   = 135
)

// Read-Status enum.
const (
	ReadStatusRead    = 128
	ReadStatusDeleted = 129
)

// Sender-Visibility enum.
const (
	SenderVisibilityHide = 128
	SenderVisibilityShow = 129
)

// StatusBand classifies a Response-Status/Retrieve-Status byte.
type StatusBand int

const (
	StatusBandOK StatusBand = iota
	StatusBandTransient
	StatusBandPermanent
	StatusBandUnknown
)

// ClassifyResponseStatus maps a raw Response-Status byte to a band.
func ClassifyResponseStatus(status byte) StatusBand {
	switch {
	case status == ResponseStatusOK:
		return StatusBandOK
	case status >= ResponseStatusGenericErrorLo && status <= ResponseStatusGenericErrorHi:
		return StatusBandPermanent
	case status >= ResponseStatusTransientErrorLo && status <= 223:
		return StatusBandTransient
	case status >= ResponseStatusPermanentErrorLo && status <= ResponseStatusPermanentErrorHi:
		return StatusBandPermanent
	default:
		return StatusBandUnknown
	}
}

// ClassifyRetrieveStatus maps a raw Retrieve-Status byte to a band.
func ClassifyRetrieveStatus(status byte) StatusBand {
	switch {
	case status == RetrieveStatusOK:
		return StatusBandOK
	case status >= RetrieveStatusTransientErrorLo && status <= RetrieveStatusTransientErrorHi:
		return StatusBandTransient
	case status >= RetrieveStatusPermanentErrorLo && status <= RetrieveStatusPermanentErrorHi:
		return StatusBandPermanent
	default:
		return StatusBandUnknown
	}
}

// charsetAssignments is the MIBenum -> IANA charset name table referenced
// by Encoded-string-value (OMA-WAP-230 / IANA character-sets registry).
// Values are copied from the C original's mms_codec.c charset_assignments
// table; this is protocol data, not an implementation choice.
var charsetAssignments = map[uint32]string{
	3:    "US-ASCII",
	4:    "ISO-8859-1",
	5:    "ISO-8859-2",
	6:    "ISO-8859-3",
	7:    "ISO-8859-4",
	8:    "ISO-8859-5",
	9:    "ISO-8859-6",
	10:   "ISO-8859-7",
	11:   "ISO-8859-8",
	12:   "ISO-8859-9",
	13:   "ISO-8859-10",
	17:   "Shift_JIS",
	18:   "EUC-JP",
	36:   "KS_C_5601-1987",
	37:   "ISO-2022-KR",
	38:   "EUC-KR",
	39:   "ISO-2022-JP",
	40:   "ISO-2022-JP-2",
	81:   "ISO-8859-6-E",
	82:   "ISO-8859-6-I",
	84:   "ISO-8859-8-E",
	85:   "ISO-8859-8-I",
	106:  "UTF-8",
	109:  "ISO-8859-13",
	110:  "ISO-8859-14",
	111:  "ISO-8859-15",
	112:  "ISO-8859-16",
	113:  "GBK",
	114:  "GB18030",
	1000: "ISO-10646-UCS-2",
	1001: "ISO-10646-UCS-4",
	1004: "ISO-10646-J-1",
	1012: "UTF-7",
	1013: "UTF-16BE",
	1014: "UTF-16LE",
	1015: "UTF-16",
	1017: "UTF-32",
	1018: "UTF-32BE",
	1019: "UTF-32LE",
	2025: "GB2312",
	2026: "Big5",
	2027: "macintosh",
	2084: "KOI8-R",
	2109: "windows-874",
	2250: "windows-1250",
	2251: "windows-1251",
	2252: "windows-1252",
	2253: "windows-1253",
	2254: "windows-1254",
	2255: "windows-1255",
	2256: "windows-1256",
	2257: "windows-1257",
	2258: "windows-1258",
}

// MIBenumName resolves a MIBenum to its IANA character-set name.
func MIBenumName(mib uint32) (string, bool) {
	name, ok := charsetAssignments[mib]
	return name, ok
}
