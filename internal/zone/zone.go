// Package zone classifies horizontal positions into left/center/right zones
// and turns a tracked identity's trajectory into ENTRADA/SALIDA crossings.
package zone

import (
	"fmt"
	"math"
)

// Zone is a horizontal region of the frame.
type Zone int

const (
	ZoneUnknown Zone = iota
	ZoneLeft
	ZoneCenter
	ZoneRight
)

func (z Zone) String() string {
	switch z {
	case ZoneLeft:
		return "left"
	case ZoneCenter:
		return "center"
	case ZoneRight:
		return "right"
	default:
		return "unknown"
	}
}

// IsSide reports whether z is one of the two outer zones.
func (z Zone) IsSide() bool {
	return z == ZoneLeft || z == ZoneRight
}

// MinGap is the smallest allowed distance between the two lines.
const MinGap = 1.0

// Nudge limits, relative to the frame edges and the frame middle.
const (
	edgeMargin   = 10
	middleMargin = 20
)

// Line names one of the two boundary lines.
type Line string

const (
	LineLeft  Line = "left"
	LineRight Line = "right"
)

// ParseLine validates a line name.
func ParseLine(s string) (Line, error) {
	switch Line(s) {
	case LineLeft, LineRight:
		return Line(s), nil
	}
	return "", fmt.Errorf("unknown boundary line %q (expected left or right)", s)
}

// Boundaries are the two vertical lines splitting the frame into zones.
type Boundaries struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Classify maps a horizontal position to its zone.
func (b Boundaries) Classify(x float64) Zone {
	switch {
	case x < b.Left:
		return ZoneLeft
	case x > b.Right:
		return ZoneRight
	default:
		return ZoneCenter
	}
}

// Valid reports whether Left < Right and both are finite.
func (b Boundaries) Valid() bool {
	return !math.IsNaN(b.Left) && !math.IsNaN(b.Right) &&
		!math.IsInf(b.Left, 0) && !math.IsInf(b.Right, 0) &&
		b.Left < b.Right
}

// Clamp returns boundaries with Left < Right. When the lines overlap the
// right line is moved to Left+MinGap.
func (b Boundaries) Clamp() Boundaries {
	if math.IsNaN(b.Left) || math.IsInf(b.Left, 0) {
		b.Left = 0
	}
	if math.IsNaN(b.Right) || math.IsInf(b.Right, 0) {
		b.Right = b.Left + MinGap
	}
	if b.Left >= b.Right {
		b.Right = b.Left + MinGap
	}
	return b
}

// Nudge moves one line by delta pixels. The left line stays within
// [10, width/2-20] and the right line within [width/2+20, width-10].
func (b Boundaries) Nudge(line Line, delta float64, frameWidth int) Boundaries {
	w := float64(frameWidth)
	half := w / 2
	switch line {
	case LineLeft:
		b.Left = clampFloat(b.Left+delta, edgeMargin, half-middleMargin)
	case LineRight:
		b.Right = clampFloat(b.Right+delta, half+middleMargin, w-edgeMargin)
	}
	return b.Clamp()
}

func clampFloat(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, v))
}
