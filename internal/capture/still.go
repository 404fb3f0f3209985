package capture

import (
	"bytes"
	"fmt"
	"image"
	"math/bits"

	"golang.org/x/image/draw"
)

// FrameHash computes a 64-bit difference hash of an encoded image: the image
// is shrunk to 9x8 grayscale and each bit records whether a pixel is brighter
// than its right neighbour.
func FrameHash(data []byte) (uint64, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("failed to decode image: %w", err)
	}

	small := image.NewGray(image.Rect(0, 0, 9, 8))
	draw.BiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	var hash uint64
	bit := 63
	for y := range 8 {
		for x := range 8 {
			if small.GrayAt(x, y).Y > small.GrayAt(x+1, y).Y {
				hash |= 1 << bit
			}
			bit--
		}
	}
	return hash, nil
}

// HammingDistance counts the differing bits of two hashes.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// StillFilter reports whether a frame differs from the last one it let through.
// Frames within MaxDistance bits of that frame are considered still.
type StillFilter struct {
	maxDistance int
	last        uint64
	have        bool
}

// NewStillFilter returns a filter, or nil when maxDistance is not positive.
func NewStillFilter(maxDistance int) *StillFilter {
	if maxDistance <= 0 {
		return nil
	}
	return &StillFilter{maxDistance: maxDistance}
}

// Changed reports whether f should be processed. Frames that cannot be hashed
// always pass.
func (s *StillFilter) Changed(f Frame) bool {
	if s == nil {
		return true
	}
	hash, err := FrameHash(f.Data)
	if err != nil {
		return true
	}
	if s.have && HammingDistance(hash, s.last) <= s.maxDistance {
		return false
	}
	s.last = hash
	s.have = true
	return true
}
