package model

import "math"

// Detection is one detected object in one frame, in frame-local pixels.
type Detection struct {
	X       int16   `json:"x"`
	Y       int16   `json:"y"`
	W       uint16  `json:"w"`
	H       uint16  `json:"h"`
	ClassID uint16  `json:"class_id"`
	Score   float32 `json:"score"`
}

// Batch is the ordered set of detections produced for a single frame.
type Batch []Detection

// NewDetection builds a record from detector pixel space. Coordinates are
// clamped into their wire ranges; boxes without area are rejected.
func NewDetection(x, y, w, h, classID int, score float32) (Detection, bool) {
	if w <= 0 || h <= 0 || classID < 0 {
		return Detection{}, false
	}

	return Detection{
		X:       int16(clamp(x, math.MinInt16, math.MaxInt16)),
		Y:       int16(clamp(y, math.MinInt16, math.MaxInt16)),
		W:       uint16(clamp(w, 1, math.MaxUint16)),
		H:       uint16(clamp(h, 1, math.MaxUint16)),
		ClassID: uint16(clamp(classID, 0, math.MaxUint16)),
		Score:   score,
	}, true
}

// Center returns the center point of the bounding box.
func (d Detection) Center() (int, int) {
	return int(d.X) + int(d.W)/2, int(d.Y) + int(d.H)/2
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
