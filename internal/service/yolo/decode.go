// Package yolo decodes raw YOLOv5 network output into detection candidates.
package yolo

import (
	"errors"
	"fmt"
	"image"
)

// headSize is cx, cy, w, h and objectness, followed by one score per class.
const headSize = 5

// ErrOutputShape is returned when the network output cannot be split into rows.
var ErrOutputShape = errors.New("unexpected yolo output shape")

// Candidate is a box that passed the confidence threshold, before NMS.
type Candidate struct {
	Box     image.Rectangle
	ClassID int
	Score   float32
}

// Scale maps network input pixels to frame pixels.
type Scale struct {
	X, Y float32
}

// NewScale returns the factors mapping an input of inW x inH onto a frame of frameW x frameH.
func NewScale(frameW, frameH, inW, inH int) Scale {
	return Scale{X: float32(frameW) / float32(inW), Y: float32(frameH) / float32(inH)}
}

// Decode walks rows of (cx, cy, w, h, objectness, class scores...) and keeps
// candidates whose objectness times best class score reaches confThreshold.
// Row order is preserved.
func Decode(data []float32, rowSize int, confThreshold float32, scale Scale) ([]Candidate, error) {
	if rowSize <= headSize {
		return nil, fmt.Errorf("%w: row size %d", ErrOutputShape, rowSize)
	}
	if len(data)%rowSize != 0 {
		return nil, fmt.Errorf("%w: %d values for row size %d", ErrOutputShape, len(data), rowSize)
	}

	var candidates []Candidate
	for off := 0; off < len(data); off += rowSize {
		row := data[off : off+rowSize]

		objectness := row[4]
		if objectness < confThreshold {
			continue
		}

		classID, classScore := argmax(row[headSize:])
		score := objectness * classScore
		if score < confThreshold {
			continue
		}

		cx, cy, w, h := row[0]*scale.X, row[1]*scale.Y, row[2]*scale.X, row[3]*scale.Y
		x0 := int(cx - w/2)
		y0 := int(cy - h/2)
		box := image.Rect(x0, y0, x0+int(w), y0+int(h))
		if box.Dx() <= 0 || box.Dy() <= 0 {
			continue
		}

		candidates = append(candidates, Candidate{Box: box, ClassID: classID, Score: score})
	}

	return candidates, nil
}

// ClassOffset shifts boxes by class so class-agnostic NMS only suppresses
// boxes of the same class.
func ClassOffset(candidates []Candidate, maxWH int) []image.Rectangle {
	boxes := make([]image.Rectangle, len(candidates))
	for i, c := range candidates {
		off := c.ClassID * maxWH
		boxes[i] = c.Box.Add(image.Pt(off, off))
	}
	return boxes
}

func argmax(scores []float32) (int, float32) {
	best, bestScore := 0, scores[0]
	for i, s := range scores[1:] {
		if s > bestScore {
			best, bestScore = i+1, s
		}
	}
	return best, bestScore
}
