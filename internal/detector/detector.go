// Package detector talks to the face detection and embedding server.
package detector

import (
	"context"
	"fmt"

	"github.com/Vallit0/asistencia-senoriales/internal/capture"
	"github.com/Vallit0/asistencia-senoriales/internal/catalog"
	"github.com/Vallit0/asistencia-senoriales/internal/facematch"
)

// Detector finds faces in a frame and returns one embedding per face.
type Detector interface {
	Detect(ctx context.Context, frame capture.Frame) ([]Detection, error)
}

// Detection is a single face. BBox is (x0, y0, x1, y1) in frame pixels.
type Detection struct {
	BBox      [4]float64 `json:"bbox"`
	Embedding []float32  `json:"embedding"`
	DetScore  float64    `json:"det_score"`
}

// CenterX returns the horizontal center of the bounding box.
func (d Detection) CenterX() float64 {
	x, _ := facematch.BBoxCenter(d.BBox)
	return x
}

// Single returns the only detection, or ErrEnrollmentAmbiguous when the
// frame holds zero or several faces.
func Single(dets []Detection) (Detection, error) {
	if len(dets) != 1 {
		return Detection{}, fmt.Errorf("%w: found %d faces", catalog.ErrEnrollmentAmbiguous, len(dets))
	}
	return dets[0], nil
}

// Embeddings returns the embedding of every detection.
func Embeddings(dets []Detection) [][]float32 {
	out := make([][]float32, len(dets))
	for i, d := range dets {
		out[i] = d.Embedding
	}
	return out
}
