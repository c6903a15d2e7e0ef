package wsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeHeadersWellKnownShortInteger(t *testing.T) {
	var buf []byte
	buf = EncodeHeader(buf, HeaderMMSVersion, []byte{Version12})
	fields, pos, err := DecodeHeaders(buf, 0, len(buf))
	assert.NoError(t, err)
	assert.Equal(t, len(buf), pos)
	assert.Len(t, fields, 1)
	assert.Equal(t, HeaderMMSVersion, fields[0].Code)
	assert.Equal(t, []byte{Version12}, fields[0].Value)
}

func TestDecodeHeadersWellKnownTextString(t *testing.T) {
	var buf []byte
	var value []byte
	value = EncodeTextString(value, "text/plain")
	buf = EncodeHeader(buf, HeaderContentLocation, value)
	fields, pos, err := DecodeHeaders(buf, 0, len(buf))
	assert.NoError(t, err)
	assert.Equal(t, len(buf), pos)
	assert.Len(t, fields, 1)
	got, _, err := DecodeTextString(fields[0].Value, 0)
	assert.NoError(t, err)
	assert.Equal(t, "text/plain", got)
}

func TestDecodeHeadersApplicationHeader(t *testing.T) {
	var buf []byte
	var value []byte
	value = EncodeTextString(value, "bar")
	buf = EncodeApplicationHeader(buf, "X-Foo", value)
	fields, pos, err := DecodeHeaders(buf, 0, len(buf))
	assert.NoError(t, err)
	assert.Equal(t, len(buf), pos)
	assert.Len(t, fields, 1)
	assert.False(t, fields[0].IsWellKnown())
	assert.Equal(t, "X-Foo", fields[0].Name)
}

func TestDecodeHeadersMultipleAndFind(t *testing.T) {
	var buf []byte
	buf = EncodeHeader(buf, HeaderTo, EncodeEncodedString(nil, "+15551234567/TYPE=PLMN"))
	buf = EncodeHeader(buf, HeaderTo, EncodeEncodedString(nil, "+15557654321/TYPE=PLMN"))
	buf = EncodeHeader(buf, HeaderMessageClass, []byte{ClassPersonal})

	fields, pos, err := DecodeHeaders(buf, 0, len(buf))
	assert.NoError(t, err)
	assert.Equal(t, len(buf), pos)
	assert.Len(t, fields, 3)

	to := FindAllHeaders(fields, HeaderTo)
	assert.Len(t, to, 2)

	class, ok := FindHeader(fields, HeaderMessageClass)
	assert.True(t, ok)
	assert.Equal(t, []byte{ClassPersonal}, class.Value)

	_, ok = FindHeader(fields, HeaderPriority)
	assert.False(t, ok)
}

func TestDecodeHeadersValueLengthPrefixed(t *testing.T) {
	var buf []byte
	region := EncodeShortInteger(nil, 106)
	region = EncodeTextString(region, "header value longer than 30 bytes padding padding")
	buf = EncodeValueLength(buf, len(region))
	buf = append(buf, region...)
	buf = EncodeHeader(nil, HeaderSubject, buf)

	fields, pos, err := DecodeHeaders(buf, 0, len(buf))
	assert.NoError(t, err)
	assert.Equal(t, len(buf), pos)
	assert.Len(t, fields, 1)
	assert.Equal(t, HeaderSubject, fields[0].Code)
}
