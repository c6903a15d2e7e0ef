package mmserr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyWrapped(t *testing.T) {
	cause := errors.New("boom")
	err := New(Decode, "decode send.req", cause)

	assert.Equal(t, Decode, Classify(err))
	assert.True(t, errors.Is(err, err))
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), cause)
}

func TestClassifyUnknown(t *testing.T) {
	assert.Equal(t, Unknown, Classify(errors.New("plain")))
	assert.Equal(t, Unknown, Classify(nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(New(IO, "post", errors.New("timeout"))))
	assert.True(t, Retryable(New(NetworkUnavailable, "open", errors.New("no bearer"))))
	assert.False(t, Retryable(New(Decode, "decode", errors.New("bad"))))
	assert.False(t, Retryable(New(Args, "validate", errors.New("bad arg"))))
	assert.False(t, Retryable(errors.New("plain")))
}

func TestErrorString(t *testing.T) {
	err := New(Encode, "encode send.req", errors.New("too big"))
	assert.Equal(t, "encode: encode send.req: too big", err.Error())
}
