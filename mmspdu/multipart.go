package mmspdu

import (
	"fmt"

	"github.com/nemomobile/mms-engine-sub000/mediatype"
	"github.com/nemomobile/mms-engine-sub000/wsp"
)

// DecodeMultipart decodes a multipart/related-style body: a Uintvar part
// count, then for each part a headers_len/body_len pair, the part's
// content-type and headers within headers_len, and body_len bytes of
// body (§4.1.3). end bounds the region (normally len(buf)).
func DecodeMultipart(buf []byte, pos int, end int) ([]Part, error) {
	numParts, pos, err := wsp.DecodeUintvar(buf, pos)
	if err != nil {
		return nil, fmt.Errorf("mmspdu: multipart part count: %w", err)
	}

	parts := make([]Part, 0, numParts)
	for i := uint32(0); i < numParts; i++ {
		headersLen, np, err := wsp.DecodeUintvar(buf, pos)
		if err != nil {
			return nil, fmt.Errorf("mmspdu: multipart part %d headers_len: %w", i, err)
		}
		pos = np
		bodyLen, np, err := wsp.DecodeUintvar(buf, pos)
		if err != nil {
			return nil, fmt.Errorf("mmspdu: multipart part %d body_len: %w", i, err)
		}
		pos = np

		headerStart := pos
		headerEnd := headerStart + int(headersLen)
		if headerEnd > end {
			return nil, fmt.Errorf("mmspdu: multipart part %d headers run past end of buffer", i)
		}

		mt, ctEnd, err := DecodeContentType(buf, headerStart)
		if err != nil {
			return nil, fmt.Errorf("mmspdu: multipart part %d content-type: %w", i, err)
		}

		var part Part
		part.ContentType = mt.String()

		if ctEnd < headerEnd {
			fields, _, err := wsp.DecodeHeaders(buf, ctEnd, headerEnd)
			if err != nil {
				return nil, fmt.Errorf("mmspdu: multipart part %d extra headers: %w", i, err)
			}
			if f, ok := wsp.FindHeader(fields, wsp.PartHeaderContentID); ok {
				if v, _, err := wsp.DecodeQuotedString(f.Value, 0); err == nil {
					part.ContentID = v
				} else if v, _, err := wsp.DecodeTextString(f.Value, 0); err == nil {
					part.ContentID = v
				}
			}
			if f, ok := wsp.FindHeader(fields, wsp.PartHeaderContentLocation); ok {
				if v, _, err := wsp.DecodeTextString(f.Value, 0); err == nil {
					part.ContentLocation = v
				}
			}
		}

		bodyStart := headerEnd
		bodyEnd := bodyStart + int(bodyLen)
		if bodyEnd > end {
			return nil, fmt.Errorf("mmspdu: multipart part %d body runs past end of buffer", i)
		}
		part.Body = buf[bodyStart:bodyEnd]
		pos = bodyEnd

		parts = append(parts, part)
	}

	if pos != end {
		return nil, fmt.Errorf("mmspdu: multipart trailing garbage: declared lengths summed to %d, region is %d", pos, end)
	}
	return parts, nil
}

// EncodeMultipart appends the wire encoding of parts to buf.
func EncodeMultipart(buf []byte, parts []Part) []byte {
	buf = wsp.EncodeUintvar(buf, uint32(len(parts)))
	for _, part := range parts {
		var headers []byte
		mt := part.contentTypeOrPlain()
		headers = EncodeContentType(headers, mt)
		if part.ContentID != "" {
			headers = wsp.EncodeHeader(headers, wsp.PartHeaderContentID, wsp.EncodeQuotedString(nil, part.ContentID))
		}
		if part.ContentLocation != "" {
			headers = wsp.EncodeHeader(headers, wsp.PartHeaderContentLocation, wsp.EncodeTextString(nil, part.ContentLocation))
		}

		buf = wsp.EncodeUintvar(buf, uint32(len(headers)))
		buf = wsp.EncodeUintvar(buf, uint32(len(part.Body)))
		buf = append(buf, headers...)
		buf = append(buf, part.Body...)
	}
	return buf
}

func (p Part) contentTypeOrPlain() mediatype.MediaType {
	mt, err := mediatype.Parse(p.ContentType)
	if err != nil {
		return mediatype.MediaType{Full: "application/octet-stream"}
	}
	return mt
}
