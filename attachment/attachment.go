// Package attachment builds and shrinks the parts that make up an
// outgoing message (§4.4 Encode-task support): content-type sniffing,
// SMIL synthesis, and iterative image resize, grounded on
// original_source/mms-lib/src/mms_attachment.c and
// mms_attachment_image.c.
package attachment

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
)

// defaultContentType is returned when sniffing finds nothing more
// specific, mirroring MMS_ATTACHMENT_DEFAULT_TYPE.
const defaultContentType = "application/octet-stream"

// SMILContentType is the MIME type assigned to a synthesized
// presentation part (SMIL_CONTENT_TYPE in the C original).
const SMILContentType = "application/smil"

// Part is one piece of an outgoing multipart message: either supplied
// by the caller (text, image, audio, video) or synthesized by this
// package (the SMIL presentation).
type Part struct {
	ContentID       string
	ContentLocation string
	ContentType     string
	Data            []byte
}

// Sniff guesses a content type for data the way
// mms_attachment_guess_content_type does: net/http.DetectContentType
// stands in for libmagic, and anything it calls text/* or
// application/octet-stream gets a second look for an embedded <smil>
// root element, since DetectContentType has no notion of SMIL and
// reports it as text/xml or text/html.
func Sniff(data []byte) string {
	detected := http.DetectContentType(data)
	if looksLikeSMIL(detected) && isSMIL(data) {
		return SMILContentType
	}
	if detected == "" {
		return defaultContentType
	}
	return detected
}

func looksLikeSMIL(detected string) bool {
	return strings.HasPrefix(detected, "text/") ||
		detected == defaultContentType ||
		strings.HasPrefix(detected, "application/octet-stream")
}

// isSMIL does a cheap scan for a <smil ...> or <smil> root tag within
// the first portion of data, the way mms_file_is_smil uses a streaming
// XML parser just to watch for the element name.
func isSMIL(data []byte) bool {
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<smil"))
}

// region names and media-element names mirror REGION_TEXT/REGION_MEDIA
// and MEDIA_TEXT/MEDIA_IMAGE/... in mms_attachment.c.
const (
	regionText  = "Text"
	regionMedia = "Media"
)

// BuildSMIL synthesizes a minimal one-slide presentation referencing
// parts by content-location, the same layout mms_attachment_write_smil
// emits: a text region spanning the slide and a media region for
// whatever non-text part is present.
func BuildSMIL(parts []Part) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE smil PUBLIC \"-//W3C//DTD SMIL 1.0//EN\" " +
		"\"http://www.w3.org/TR/REC-smil/SMIL10.dtd\">\n" +
		"<smil>\n" +
		" <head>\n" +
		"  <layout>\n" +
		"   <root-layout height=\"160\" width=\"120\"/>\n" +
		"    <region fit=\"scroll\" height=\"100%\" left=\"0\" top=\"0\" " +
		"width=\"100%\" id=\"" + regionText + "\"/>\n" +
		"    <region fit=\"meet\" height=\"100%\" left=\"0\" top=\"0\" " +
		"width=\"100%\" id=\"" + regionMedia + "\"/>\n" +
		"  </layout>\n" +
		" </head>\n" +
		" <body>\n" +
		"  <par dur=\"5000ms\">\n")
	for _, p := range parts {
		elem, region := smilElement(p.ContentType)
		fmt.Fprintf(&b, "   <%s src=%q region=%q/>\n", elem, p.ContentLocation, region)
	}
	b.WriteString("  </par>\n </body>\n</smil>\n")
	return b.String()
}

func smilElement(contentType string) (elem, region string) {
	switch {
	case strings.HasPrefix(contentType, "text/"):
		return "text", regionText
	case strings.HasPrefix(contentType, "image/"):
		return "img", regionMedia
	case strings.HasPrefix(contentType, "video/"):
		return "video", regionMedia
	case strings.HasPrefix(contentType, "audio/"):
		return "audio", regionMedia
	default:
		return "ref", regionMedia
	}
}
