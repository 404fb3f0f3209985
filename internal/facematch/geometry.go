// Package facematch provides geometry and naming helpers shared by enrollment,
// matching and the frame loop.
package facematch

// BBoxCenter returns the center of a [x0, y0, x1, y1] bounding box.
func BBoxCenter(bbox [4]float64) (x, y float64) {
	return (bbox[0] + bbox[2]) / 2, (bbox[1] + bbox[3]) / 2
}

// ValidBBox reports whether the box has positive width and height.
func ValidBBox(bbox [4]float64) bool {
	return bbox[2] > bbox[0] && bbox[3] > bbox[1]
}

// ScaleBBox rescales a pixel bounding box from a frame srcWidth pixels wide to
// one dstWidth pixels wide, keeping the aspect ratio.
// Returns the box unchanged if either width is not positive.
func ScaleBBox(bbox [4]float64, srcWidth, dstWidth int) [4]float64 {
	if srcWidth <= 0 || dstWidth <= 0 || srcWidth == dstWidth {
		return bbox
	}
	f := float64(dstWidth) / float64(srcWidth)
	return [4]float64{bbox[0] * f, bbox[1] * f, bbox[2] * f, bbox[3] * f}
}

// ComputeIoU calculates Intersection over Union between two bounding boxes.
// Used to tell apart two detections of the same identity in one frame.
func ComputeIoU(bbox1, bbox2 [4]float64) float64 {
	x1 := max(bbox1[0], bbox2[0])
	y1 := max(bbox1[1], bbox2[1])
	x2 := min(bbox1[2], bbox2[2])
	y2 := min(bbox1[3], bbox2[3])

	if x2 <= x1 || y2 <= y1 {
		return 0 // No intersection
	}

	intersection := (x2 - x1) * (y2 - y1)

	area1 := (bbox1[2] - bbox1[0]) * (bbox1[3] - bbox1[1])
	area2 := (bbox2[2] - bbox2[0]) * (bbox2[3] - bbox2[1])
	union := area1 + area2 - intersection

	if union <= 0 {
		return 0
	}

	return intersection / union
}
