package zone

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundaries_Classify(t *testing.T) {
	b := Boundaries{Left: 150, Right: 490}

	tests := []struct {
		x    float64
		want Zone
	}{
		{0, ZoneLeft},
		{149.9, ZoneLeft},
		{150, ZoneCenter},
		{320, ZoneCenter},
		{490, ZoneCenter},
		{490.1, ZoneRight},
		{640, ZoneRight},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Classify(tt.x), "x=%v", tt.x)
	}
}

func TestBoundaries_Clamp(t *testing.T) {
	assert.Equal(t, Boundaries{Left: 150, Right: 490}, Boundaries{Left: 150, Right: 490}.Clamp())
	assert.Equal(t, Boundaries{Left: 300, Right: 301}, Boundaries{Left: 300, Right: 300}.Clamp())
	assert.Equal(t, Boundaries{Left: 400, Right: 401}, Boundaries{Left: 400, Right: 100}.Clamp())

	got := Boundaries{Left: math.NaN(), Right: math.Inf(1)}.Clamp()
	assert.True(t, got.Valid())
}

func TestBoundaries_Nudge(t *testing.T) {
	b := Boundaries{Left: 150, Right: 490}

	assert.Equal(t, 140.0, b.Nudge(LineLeft, -10, 640).Left)
	assert.Equal(t, 500.0, b.Nudge(LineRight, 10, 640).Right)

	// limits for a 640 px frame: left 10..300, right 340..630
	assert.Equal(t, 10.0, b.Nudge(LineLeft, -1000, 640).Left)
	assert.Equal(t, 300.0, b.Nudge(LineLeft, 1000, 640).Left)
	assert.Equal(t, 340.0, b.Nudge(LineRight, -1000, 640).Right)
	assert.Equal(t, 630.0, b.Nudge(LineRight, 1000, 640).Right)

	// the other line is left alone
	assert.Equal(t, 490.0, b.Nudge(LineLeft, 10, 640).Right)
}

func TestBoundaries_NudgeKeepsOrder(t *testing.T) {
	for _, width := range []int{0, 20, 40, 100, 640} {
		b := Boundaries{Left: 150, Right: 490}
		for _, line := range []Line{LineLeft, LineRight} {
			for _, delta := range []float64{-1000, -10, 10, 1000} {
				assert.True(t, b.Nudge(line, delta, width).Valid(), "width=%d line=%s delta=%v", width, line, delta)
			}
		}
	}
}

func TestParseLine(t *testing.T) {
	l, err := ParseLine("left")
	assert.NoError(t, err)
	assert.Equal(t, LineLeft, l)

	_, err = ParseLine("middle")
	assert.Error(t, err)
}
