// Package capture produces normalized JPEG frames for the detector.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"time"

	_ "golang.org/x/image/bmp" // register BMP decoder
	"golang.org/x/image/draw"

	"github.com/Vallit0/asistencia-senoriales/internal/constants"
)

// Frame is one captured image. Data is always JPEG.
type Frame struct {
	Data       []byte
	Width      int
	Height     int
	CapturedAt time.Time
	Seq        int
}

// Source yields frames until it returns io.EOF.
type Source interface {
	Next(ctx context.Context) (Frame, error)
}

// Normalize decodes an image and scales it to the given width keeping the
// aspect ratio, so detector coordinates share the zone boundaries' space.
// A width <= 0 keeps the original size. The result is re-encoded as JPEG.
func Normalize(data []byte, width int) (Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Frame{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return Frame{}, fmt.Errorf("image has no pixels (%dx%d)", srcW, srcH)
	}

	out := img
	dstW, dstH := srcW, srcH
	if width > 0 && width != srcW {
		dstW = width
		dstH = max(1, int(float64(srcH)*float64(width)/float64(srcW)))
		scaled := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: constants.JPEGQuality}); err != nil {
		return Frame{}, fmt.Errorf("failed to encode frame: %w", err)
	}

	return Frame{Data: buf.Bytes(), Width: dstW, Height: dstH}, nil
}
