package mmspdu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nemomobile/mms-engine-sub000/mediatype"
	"github.com/nemomobile/mms-engine-sub000/wsp"
)

// wellKnownContentTypes is a reduced OMA-WAP-230 WSP content-type
// assignment table, covering the media types an MMS engine actually
// needs to recognize on the wire. No pack dependency ships this table;
// it is protocol data, copied in spirit from the constants
// doflah-nuntium's mms.go and mms_codec.c reference by name.
var wellKnownContentTypes = map[byte]string{
	0x01: "text/plain",
	0x02: "text/html",
	0x08: "text/vnd.wap.wml",
	0x0b: "image/gif",
	0x0c: "image/jpeg",
	0x0d: "image/tiff",
	0x0e: "image/png",
	0x0f: "image/vnd.wap.wbmp",
	0x12: "audio/basic",
	0x13: "audio/amr",
	0x14: "video/3gpp",
	0x1f: "application/vnd.wap.multipart.mixed",
	0x20: "application/vnd.wap.multipart.related",
	0x21: "application/vnd.wap.multipart.alternative",
	0x2c: "application/smil",
	0x2d: "application/vnd.wap.mms-message",
	0x31: "application/octet-stream",
}

func wellKnownContentTypeCode(ct string) (byte, bool) {
	for code, name := range wellKnownContentTypes {
		if name == ct {
			return code, true
		}
	}
	return 0, false
}

// content-type parameter well-known codes (OMA-WAP-MMS-ENC section 7.2.21).
const (
	paramCharset    = 0x01
	paramType       = 0x09
	paramStart      = 0x0a
	paramStartInfo  = 0x0b
	paramName       = 0x05
	paramFilename   = 0x06
	paramQ          = 0x00
	paramMaxAge     = 0x10
	paramCreation   = 0x17
	paramModifiedOn = 0x18
	paramReadDate   = 0x19
)

// DecodeContentType decodes a WSP content-type value at buf[pos] into a
// mediatype.MediaType. The value is either a bare Short-integer naming a
// well-known type, a bare Text-string type/subtype, or a Value-length
// region containing a type (Text-string or well-known code) followed by
// zero or more parameters.
func DecodeContentType(buf []byte, pos int) (mediatype.MediaType, int, error) {
	if pos >= len(buf) {
		return mediatype.MediaType{}, pos, wsp.ErrTruncated
	}
	b := buf[pos]

	if wsp.IsShortInteger(b) {
		code, np, err := wsp.DecodeShortInteger(buf, pos)
		if err != nil {
			return mediatype.MediaType{}, np, err
		}
		name, ok := wellKnownContentTypes[code]
		if !ok {
			return mediatype.MediaType{}, np, fmt.Errorf("mmspdu: unknown well-known content-type code 0x%02x", code)
		}
		return mediatype.MediaType{Full: name}, np, nil
	}

	if b > 30 && b != 0x1f {
		// Bare Text-string "type/subtype", no parameters.
		s, np, err := wsp.DecodeTextString(buf, pos)
		if err != nil {
			return mediatype.MediaType{}, np, err
		}
		mt, err := mediatype.Parse(s)
		return mt, np, err
	}

	length, np, err := wsp.DecodeValueLength(buf, pos)
	if err != nil {
		return mediatype.MediaType{}, np, err
	}
	region := buf[np : np+length]
	end := np + length

	var full string
	rp := 0
	if rp >= len(region) {
		return mediatype.MediaType{}, end, wsp.ErrTruncated
	}
	if wsp.IsShortInteger(region[rp]) {
		code, nrp, err := wsp.DecodeShortInteger(region, rp)
		if err != nil {
			return mediatype.MediaType{}, end, err
		}
		name, ok := wellKnownContentTypes[code]
		if !ok {
			return mediatype.MediaType{}, end, fmt.Errorf("mmspdu: unknown well-known content-type code 0x%02x", code)
		}
		full = name
		rp = nrp
	} else {
		s, nrp, err := wsp.DecodeTextString(region, rp)
		if err != nil {
			return mediatype.MediaType{}, end, err
		}
		full = s
		rp = nrp
	}

	mt := mediatype.MediaType{Full: full}
	for rp < len(region) {
		attr, value, nrp, err := decodeContentTypeParam(region, rp)
		if err != nil {
			return mediatype.MediaType{}, end, err
		}
		mt.Params = append(mt.Params, mediatype.Param{Attribute: attr, Value: value})
		rp = nrp
	}
	return mt, end, nil
}

// decodeContentTypeParam decodes one well-known or textual content-type
// parameter, typing the value per the parameter's code (§4.1.4).
func decodeContentTypeParam(buf []byte, pos int) (attr, value string, newPos int, err error) {
	b := buf[pos]
	var code int = -1
	var name string
	if wsp.IsShortInteger(b) {
		c, np, err := wsp.DecodeShortInteger(buf, pos)
		if err != nil {
			return "", "", np, err
		}
		code = int(c)
		pos = np
	} else {
		n, np, err := wsp.DecodeTextString(buf, pos)
		if err != nil {
			return "", "", np, err
		}
		name = n
		pos = np
	}

	switch code {
	case paramCharset:
		mib, np, err := wsp.DecodeIntegerValue(buf, pos)
		if err != nil {
			return "", "", np, err
		}
		charsetName, _ := wsp.MIBenumName(uint32(mib))
		return "charset", charsetName, np, nil
	case paramQ:
		raw, np, err := wsp.DecodeUintvar(buf, pos)
		if err != nil {
			return "", "", np, err
		}
		q, err := mediatype.DecodeQValue(raw)
		if err != nil {
			return "", "", np, err
		}
		return "q", q, np, nil
	case paramMaxAge:
		secs, np, err := wsp.DecodeIntegerValue(buf, pos)
		if err != nil {
			return "", "", np, err
		}
		return "max-age", strconv.FormatUint(secs, 10), np, nil
	case paramCreation, paramModifiedOn, paramReadDate:
		secs, np, err := wsp.DecodeLongInteger(buf, pos)
		if err != nil {
			return "", "", np, err
		}
		return paramDateName(code), strconv.FormatUint(secs, 10), np, nil
	case paramType:
		s, np, err := wsp.DecodeTextString(buf, pos)
		return "type", s, np, err
	case paramStart:
		s, np, err := wsp.DecodeTextString(buf, pos)
		return "start", s, np, err
	case paramStartInfo:
		s, np, err := wsp.DecodeTextString(buf, pos)
		return "start-info", s, np, err
	case paramName:
		s, np, err := wsp.DecodeTextString(buf, pos)
		return "name", s, np, err
	case paramFilename:
		s, np, err := wsp.DecodeTextString(buf, pos)
		return "filename", s, np, err
	default:
		if code >= 0 {
			s, np, err := wsp.DecodeTextString(buf, pos)
			return fmt.Sprintf("x-param-%d", code), s, np, err
		}
		s, np, err := wsp.DecodeTextString(buf, pos)
		return name, s, np, err
	}
}

func paramDateName(code int) string {
	switch code {
	case paramCreation:
		return "creation-date"
	case paramModifiedOn:
		return "modification-date"
	default:
		return "read-date"
	}
}

// EncodeContentType appends the WSP wire encoding of mt: a bare
// well-known code when mt.Full is recognized and has no parameters, else
// a Value-length region holding the type (well-known code if recognized,
// else a Text-string) followed by the encoded parameters.
func EncodeContentType(buf []byte, mt mediatype.MediaType) []byte {
	if len(mt.Params) == 0 {
		if code, ok := wellKnownContentTypeCode(mt.Full); ok {
			return wsp.EncodeShortInteger(buf, code)
		}
	}

	var region []byte
	if code, ok := wellKnownContentTypeCode(mt.Full); ok {
		region = wsp.EncodeShortInteger(region, code)
	} else {
		region = wsp.EncodeTextString(region, mt.Full)
	}
	for _, p := range mt.Params {
		region = encodeContentTypeParam(region, p)
	}
	buf = wsp.EncodeValueLength(buf, len(region))
	return append(buf, region...)
}

func encodeContentTypeParam(buf []byte, p mediatype.Param) []byte {
	switch strings.ToLower(p.Attribute) {
	case "charset":
		buf = wsp.EncodeShortInteger(buf, paramCharset)
		mib := charsetMIB(p.Value)
		return wsp.EncodeLongInteger(buf, uint64(mib))
	case "type":
		buf = wsp.EncodeShortInteger(buf, paramType)
		return wsp.EncodeTextString(buf, p.Value)
	case "start":
		buf = wsp.EncodeShortInteger(buf, paramStart)
		return wsp.EncodeTextString(buf, p.Value)
	case "start-info":
		buf = wsp.EncodeShortInteger(buf, paramStartInfo)
		return wsp.EncodeTextString(buf, p.Value)
	case "name":
		buf = wsp.EncodeShortInteger(buf, paramName)
		return wsp.EncodeTextString(buf, p.Value)
	case "filename":
		buf = wsp.EncodeShortInteger(buf, paramFilename)
		return wsp.EncodeTextString(buf, p.Value)
	default:
		buf = wsp.EncodeTextString(buf, p.Attribute)
		return wsp.EncodeTextString(buf, p.Value)
	}
}

// charsetMIB reverses wsp.MIBenumName for the handful of charsets this
// engine emits on outbound PDUs (it always writes UTF-8 text).
func charsetMIB(name string) uint32 {
	if strings.EqualFold(name, "UTF-8") {
		return 106
	}
	if strings.EqualFold(name, "US-ASCII") {
		return 3
	}
	return 106
}
