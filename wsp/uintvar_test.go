package wsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeUintvar(t *testing.T) {
	tests := []struct {
		name    string
		buf     []byte
		pos     int
		want    uint32
		wantPos int
		wantErr error
	}{
		{name: "single octet", buf: []byte{0x05}, want: 5, wantPos: 1},
		{name: "two octets", buf: []byte{0x81, 0x00}, want: 128, wantPos: 2},
		{name: "max 32-bit-ish value", buf: []byte{0x8f, 0xff, 0xff, 0xff, 0x7f}, want: 0xffffffff, wantPos: 5},
		{name: "offset into buffer", buf: []byte{0xff, 0x05}, pos: 1, want: 5, wantPos: 2},
		{name: "truncated", buf: []byte{0x81}, wantErr: ErrTruncated},
		{name: "empty", buf: nil, wantErr: ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, pos, err := DecodeUintvar(tt.buf, tt.pos)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPos, pos)
		})
	}
}

func TestEncodeDecodeUintvarRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 16383, 16384, 2097151, 2097152, 0xfffffff}
	for _, v := range values {
		buf := EncodeUintvar(nil, v)
		assert.Len(t, buf, UintvarLen(v))
		got, pos, err := DecodeUintvar(buf, 0)
		assert.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(buf), pos)
	}
}
