package attachment

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
)

// NextResizeStep picks the next downsample factor for an image of the
// given dimensions, ported line for line from
// mms_attachment_image_next_resize_step. step is the resize step
// already applied (0 for an untouched image, matching the C original's
// zero-initialized resize_step field); the result is always at least
// step+1, so a first pass always at least halves the image, and it
// keeps incrementing from there until (columns/(next+1)) *
// (rows/(next+1)) no longer exceeds maxPixels. maxPixels <= 0 means no
// limit, in which case the result is just step+1.
func NextResizeStep(step int, columns, rows, maxPixels int) int {
	next := step + 1
	if maxPixels > 0 {
		size := (columns / (next + 1)) * (rows / (next + 1))
		for size > 0 && size > maxPixels {
			next++
			size = (columns / (next + 1)) * (rows / (next + 1))
		}
	}
	return next
}

// Resized is the outcome of one resize pass over an image part.
type Resized struct {
	Data   []byte
	Width  int
	Height int
	Step   int
}

// Resize decodes data as an image, shrinks it by the next resize step
// for maxPixels, and re-encodes it in its original format. It reports
// ok=false when the image is already at (or below) 1x1 in either
// dimension after the next step, mirroring mms_encode_job_resize
// giving up once there's nothing left worth shrinking.
func Resize(data []byte, contentType string, step, maxPixels int) (result Resized, ok bool, err error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Resized{}, false, fmt.Errorf("attachment: decode image: %w", err)
	}

	bounds := src.Bounds()
	columns, rows := bounds.Dx(), bounds.Dy()
	if columns <= 1 || rows <= 1 {
		return Resized{}, false, nil
	}

	next := NextResizeStep(step, columns, rows, maxPixels)
	outW := columns / (next + 1)
	outH := rows / (next + 1)
	if outW < 1 || outH < 1 || (outW == columns && outH == rows) {
		return Resized{}, false, nil
	}

	dst := boxDownsample(src, outW, outH)

	var buf bytes.Buffer
	if err := encodeAs(&buf, dst, contentType, format); err != nil {
		return Resized{}, false, fmt.Errorf("attachment: encode resized image: %w", err)
	}

	return Resized{Data: buf.Bytes(), Width: outW, Height: outH, Step: next}, true, nil
}

// boxDownsample shrinks src to outW x outH by averaging each
// nx-by-ny block of source pixels into one output pixel, the same
// box-filter accumulate-then-divide loop as
// mms_attachment_image_resize_type_specific (nx, ny are the integer
// horizontal/vertical downsample factors; any remainder rows/columns
// past a whole multiple of outW/outH are dropped, same as the C loop
// which only flushes a line every ny input rows).
func boxDownsample(src image.Image, outW, outH int) *image.RGBA {
	bounds := src.Bounds()
	inW, inH := bounds.Dx(), bounds.Dy()
	nx := inW / outW
	ny := inH / outH
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	sums := make([][3]uint32, outW)

	outY := 0
	for y := 0; y < inH && outY < outH; y++ {
		for x := range sums {
			sums[x] = [3]uint32{}
		}
		for ox := 0; ox < outW; ox++ {
			for k := 0; k < nx; k++ {
				sx := bounds.Min.X + ox*nx + k
				if sx >= bounds.Max.X {
					break
				}
				r, g, b, _ := src.At(sx, bounds.Min.Y+y).RGBA()
				sums[ox][0] += r >> 8
				sums[ox][1] += g >> 8
				sums[ox][2] += b >> 8
			}
		}
		if (y+1)%ny == 0 {
			denominator := uint32(nx * ny)
			for ox := 0; ox < outW; ox++ {
				dst.Set(ox, outY, color.RGBA{
					R: uint8(sums[ox][0] / denominator),
					G: uint8(sums[ox][1] / denominator),
					B: uint8(sums[ox][2] / denominator),
					A: 0xff,
				})
			}
			outY++
		}
	}
	return dst
}

// encodeAs writes dst to w using the codec matching contentType (or
// the codec that originally decoded the source, as a fallback),
// defaulting to JPEG the way MMS attachments usually arrive as JPEG.
func encodeAs(w *bytes.Buffer, dst image.Image, contentType, decodedFormat string) error {
	format := decodedFormat
	switch {
	case strings.Contains(contentType, "png"):
		format = "png"
	case strings.Contains(contentType, "gif"):
		format = "gif"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		format = "jpeg"
	}
	switch format {
	case "png":
		return png.Encode(w, dst)
	case "gif":
		return gif.Encode(w, dst, nil)
	default:
		return jpeg.Encode(w, dst, &jpeg.Options{Quality: 85})
	}
}
