package mmspdu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemomobile/mms-engine-sub000/mediatype"
)

func TestContentTypeWellKnownRoundTrip(t *testing.T) {
	mt := mediatype.MediaType{Full: "text/plain"}
	buf := EncodeContentType(nil, mt)
	got, pos, err := DecodeContentType(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, len(buf), pos)
	assert.Equal(t, "text/plain", got.Full)
}

func TestContentTypeWithParamsRoundTrip(t *testing.T) {
	mt := mediatype.MediaType{
		Full: "text/plain",
		Params: []mediatype.Param{
			{Attribute: "charset", Value: "UTF-8"},
			{Attribute: "name", Value: "foo.txt"},
		},
	}
	buf := EncodeContentType(nil, mt)
	got, pos, err := DecodeContentType(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, len(buf), pos)
	assert.Equal(t, "text/plain", got.Full)
	charset, ok := got.Get("charset")
	assert.True(t, ok)
	assert.Equal(t, "UTF-8", charset)
	name, ok := got.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "foo.txt", name)
}

func TestContentTypeUnknownTextTypeRoundTrip(t *testing.T) {
	mt := mediatype.MediaType{Full: "application/x-custom-type"}
	buf := EncodeContentType(nil, mt)
	got, pos, err := DecodeContentType(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, len(buf), pos)
	assert.Equal(t, "application/x-custom-type", got.Full)
}
