package attachment

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniffPlainText(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", Sniff([]byte("hello world")))
}

func TestSniffSMIL(t *testing.T) {
	doc := []byte(`<smil><head></head><body></body></smil>`)
	assert.Equal(t, SMILContentType, Sniff(doc))
}

func TestBuildSMILAssignsRegionsByType(t *testing.T) {
	parts := []Part{
		{ContentLocation: "text.txt", ContentType: "text/plain"},
		{ContentLocation: "pic.jpg", ContentType: "image/jpeg"},
	}
	doc := BuildSMIL(parts)
	assert.Contains(t, doc, `<text src="text.txt" region="Text"/>`)
	assert.Contains(t, doc, `<img src="pic.jpg" region="Media"/>`)
	assert.Contains(t, doc, "<smil>")
}

func TestNextResizeStepStopsUnderLimit(t *testing.T) {
	step := NextResizeStep(0, 1600, 1200, 300_000)
	cols, rows := 1600/(step+1), 1200/(step+1)
	assert.LessOrEqual(t, cols*rows, 300_000)
}

func TestNextResizeStepNoLimit(t *testing.T) {
	assert.Equal(t, 1, NextResizeStep(0, 1600, 1200, 0))
}

func TestResizeShrinksImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	assert.NoError(t, jpeg.Encode(&buf, img, nil))

	result, ok, err := Resize(buf.Bytes(), "image/jpeg", 0, 10_000)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Less(t, result.Width, 400)
	assert.Less(t, result.Height, 300)
	assert.LessOrEqual(t, result.Width*result.Height, 10_000)

	decoded, _, err := image.Decode(bytes.NewReader(result.Data))
	assert.NoError(t, err)
	assert.Equal(t, result.Width, decoded.Bounds().Dx())
	assert.Equal(t, result.Height, decoded.Bounds().Dy())
}

func TestResizeNoLimitStillShrinksByOneStep(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	var buf bytes.Buffer
	assert.NoError(t, jpeg.Encode(&buf, img, nil))

	result, ok, err := Resize(buf.Bytes(), "image/jpeg", 0, 0)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20, result.Width)
	assert.Equal(t, 10, result.Height)
}
