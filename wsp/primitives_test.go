package wsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortInteger(t *testing.T) {
	buf := EncodeShortInteger(nil, 42)
	assert.Equal(t, []byte{0xaa}, buf)
	v, pos, err := DecodeShortInteger(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, byte(42), v)
	assert.Equal(t, 1, pos)
}

func TestLongIntegerRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 255, 256, 0xdeadbeef, 0x0102030405060708}
	for _, v := range values {
		buf := EncodeLongInteger(nil, v)
		got, pos, err := DecodeLongInteger(buf, 0)
		assert.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(buf), pos)
	}
}

func TestTextStringRoundTrip(t *testing.T) {
	buf := EncodeTextString(nil, "hello")
	assert.Equal(t, []byte("hello\x00"), buf)
	got, pos, err := DecodeTextString(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, len(buf), pos)
}

func TestTextStringQuotesHighBitFirstByte(t *testing.T) {
	value := string([]byte{0x81, 'x'})
	buf := EncodeTextString(nil, value)
	assert.Equal(t, byte(quoteByte), buf[0])
	got, pos, err := DecodeTextString(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, value, got)
	assert.Equal(t, len(buf), pos)
}

func TestQuotedStringRoundTrip(t *testing.T) {
	buf := EncodeQuotedString(nil, "abc")
	assert.Equal(t, quotedString, int(buf[0]))
	got, pos, err := DecodeQuotedString(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, "abc", got)
	assert.Equal(t, len(buf), pos)
}

func TestValueLengthShortForm(t *testing.T) {
	buf := EncodeValueLength(nil, 30)
	assert.Equal(t, []byte{30}, buf)
	length, pos, err := DecodeValueLength(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, 30, length)
	assert.Equal(t, 1, pos)
}

func TestValueLengthQuoteForm(t *testing.T) {
	buf := EncodeValueLength(nil, 300)
	assert.Equal(t, byte(lengthQuote), buf[0])
	length, pos, err := DecodeValueLength(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, 300, length)
	assert.Equal(t, len(buf), pos)
}

func TestEncodedStringASCIIIsBareTextString(t *testing.T) {
	buf := EncodeTextString(nil, "plain")
	got, pos, err := DecodeEncodedString(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, "plain", got)
	assert.Equal(t, len(buf), pos)
}

func TestEncodedStringUTF8RoundTrip(t *testing.T) {
	buf := EncodeEncodedString(nil, "héllo")
	got, pos, err := DecodeEncodedString(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, "héllo", got)
	assert.Equal(t, len(buf), pos)
}

func TestEncodedStringLatin1(t *testing.T) {
	// MIB 4 = ISO-8859-1; 0xe9 in that charset is U+00E9 (é).
	region := EncodeShortInteger(nil, 4)
	region = EncodeTextString(region, string([]byte{0xe9}))
	buf := EncodeValueLength(nil, len(region))
	buf = append(buf, region...)

	got, pos, err := DecodeEncodedString(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, "é", got)
	assert.Equal(t, len(buf), pos)
}

func TestMIBenumName(t *testing.T) {
	name, ok := MIBenumName(106)
	assert.True(t, ok)
	assert.Equal(t, "UTF-8", name)

	_, ok = MIBenumName(999999)
	assert.False(t, ok)
}
