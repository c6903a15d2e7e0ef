package mmspdu

import "strings"

// insertAddressSentinel is the placeholder value From decodes to when the
// PDU carries the "insert-address" token instead of an explicit address
// (§9: "From with the insert-address token decodes to the sentinel and
// encodes back identically").
const insertAddressSentinel = "insert-address-token:"

// InsertAddress is the From value a caller should use to ask the MMSC
// to substitute the subscriber's own address, the way a handset leaves
// its own number for the network to fill in on Send.req/Read-Rec.ind.
const InsertAddress = insertAddressSentinel

// NormalizeAddress strips a trailing "/TYPE=..." suffix from an MMS
// address, as the C original's mms_strip_address_type does, so the
// handler surface always sees bare addresses.
func NormalizeAddress(addr string) string {
	if i := strings.Index(addr, "/TYPE="); i >= 0 {
		return addr[:i]
	}
	return addr
}

// EncodeAddress appends "/TYPE=PLMN" to addr if it doesn't already carry
// a /TYPE= suffix and looks like a phone number (digits, optionally
// leading '+'). Email addresses and already-typed addresses pass through
// unchanged.
func EncodeAddress(addr string) string {
	if strings.Contains(addr, "/TYPE=") {
		return addr
	}
	if looksLikePhoneNumber(addr) {
		return addr + "/TYPE=PLMN"
	}
	return addr
}

func looksLikePhoneNumber(addr string) bool {
	if addr == "" {
		return false
	}
	for i, r := range addr {
		if r == '+' && i == 0 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
