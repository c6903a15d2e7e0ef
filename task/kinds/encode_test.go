package kinds

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemomobile/mms-engine-sub000/attachment"
	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/settings"
	"github.com/nemomobile/mms-engine-sub000/task"
)

// kindsFakeDelegate records queued follow-up tasks and state changes,
// the way the dispatcher would, without pulling in the real one.
type kindsFakeDelegate struct {
	queued []*task.Task
}

func (d *kindsFakeDelegate) TaskQueue(t *task.Task)   { d.queued = append(d.queued, t) }
func (d *kindsFakeDelegate) TaskStateChanged(*task.Task) {}

func waitDone(t *testing.T, tk *task.Task) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if tk.State() == task.Done {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, task.Done, tk.State(), "task never reached Done")
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestEncodeFitsUnderLimitQueuesSend(t *testing.T) {
	h := &fakeHandler{}
	d := &kindsFakeDelegate{}
	sp := fakeSettings{sim: settings.SimSettings{MaxPduSize: 100_000, MaxPixels: 3_000_000}}

	msg := OutgoingMessage{
		To:      []string{"+15551234567"},
		Subject: "hello",
		Parts: []attachment.Part{
			{ContentLocation: "text0.txt", ContentType: "text/plain", Data: []byte("hi there")},
		},
	}
	tk := NewEncode("msg1", "imsi1", msg, sp, h, t.TempDir(), nil)
	tk.SetDelegate(d)

	tk.Run()
	waitDone(t, tk)

	require.Len(t, d.queued, 1)
	assert.Equal(t, "send[msg1]", d.queued[0].Name)
	assert.Contains(t, h.sendStates, handler.Encoding)
}

func TestEncodeResizesOversizedImage(t *testing.T) {
	h := &fakeHandler{}
	d := &kindsFakeDelegate{}
	sp := fakeSettings{sim: settings.SimSettings{MaxPduSize: 5_000, MaxPixels: 3_000_000}}

	msg := OutgoingMessage{
		To: []string{"+15551234567"},
		Parts: []attachment.Part{
			{ContentLocation: "pic.jpg", ContentType: "image/jpeg", Data: jpegBytes(t, 300, 200)},
		},
	}
	tk := NewEncode("msg2", "imsi1", msg, sp, h, t.TempDir(), nil)
	tk.SetDelegate(d)

	tk.Run()
	waitDone(t, tk)

	require.Len(t, d.queued, 1)
	assert.NotContains(t, h.sendStates, handler.TooBig)
}

func TestEncodeGivesUpWhenNothingIsResizable(t *testing.T) {
	h := &fakeHandler{}
	d := &kindsFakeDelegate{}
	sp := fakeSettings{sim: settings.SimSettings{MaxPduSize: 1, MaxPixels: 3_000_000}}

	msg := OutgoingMessage{
		To: []string{"+15551234567"},
		Parts: []attachment.Part{
			{ContentLocation: "text0.txt", ContentType: "text/plain", Data: []byte("this will never fit in one byte")},
		},
	}
	tk := NewEncode("msg3", "imsi1", msg, sp, h, t.TempDir(), nil)
	tk.SetDelegate(d)

	tk.Run()
	waitDone(t, tk)

	assert.Empty(t, d.queued)
	assert.Equal(t, handler.TooBig, h.lastSendState())
}

func TestBuildOutgoingPartsSynthesizesSMILWhenAbsent(t *testing.T) {
	parts := buildOutgoingParts([]attachment.Part{
		{ContentType: "text/plain", Data: []byte("hi")},
	})
	require.Len(t, parts, 2)
	assert.Equal(t, "smil", parts[0].ContentID)
	assert.Contains(t, parts[0].ContentType, attachment.SMILContentType)
}

func TestBuildOutgoingPartsKeepsCallerSuppliedSMIL(t *testing.T) {
	parts := buildOutgoingParts([]attachment.Part{
		{ContentID: "smil", ContentLocation: "smil.xml", ContentType: attachment.SMILContentType, Data: []byte("<smil/>")},
		{ContentType: "text/plain", Data: []byte("hi")},
	})
	require.Len(t, parts, 2)
	assert.Equal(t, "<smil/>", string(parts[0].Data))
}
