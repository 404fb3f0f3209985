package capture

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradientJPEG encodes a horizontal gradient, bright on the left when
// descending is true.
func gradientJPEG(t *testing.T, descending bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 90, 80))
	for x := range 90 {
		v := uint8(x * 255 / 89)
		if descending {
			v = 255 - v
		}
		for y := range 80 {
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0x0, 0x0, 0},
		{"completely different", 0xFFFFFFFFFFFFFFFF, 0x0, 64},
		{"one bit", 0x1, 0x0, 1},
		{"alternating", 0xAAAAAAAAAAAAAAAA, 0x5555555555555555, 64},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HammingDistance(tc.a, tc.b))
		})
	}
}

func TestFrameHash(t *testing.T) {
	desc, err := FrameHash(gradientJPEG(t, true))
	require.NoError(t, err)
	asc, err := FrameHash(gradientJPEG(t, false))
	require.NoError(t, err)

	again, err := FrameHash(gradientJPEG(t, true))
	require.NoError(t, err)
	assert.Equal(t, desc, again)

	assert.Greater(t, HammingDistance(desc, asc), 32)

	_, err = FrameHash([]byte("not an image"))
	assert.Error(t, err)
}

func TestStillFilter(t *testing.T) {
	f := NewStillFilter(4)
	require.NotNil(t, f)

	desc := Frame{Data: gradientJPEG(t, true)}
	asc := Frame{Data: gradientJPEG(t, false)}

	assert.True(t, f.Changed(desc), "first frame always passes")
	assert.False(t, f.Changed(desc))
	assert.True(t, f.Changed(asc))
	assert.False(t, f.Changed(asc))
	assert.True(t, f.Changed(Frame{Data: []byte("garbage")}))
}

func TestStillFilterDisabled(t *testing.T) {
	f := NewStillFilter(0)
	assert.Nil(t, f)
	frame := Frame{Data: gradientJPEG(t, true)}
	assert.True(t, f.Changed(frame))
	assert.True(t, f.Changed(frame))
}
