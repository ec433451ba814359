// Package render draws detection annotations onto a frame.
package render

import (
	"fmt"
	"image/color"

	"detectreport/internal/model"
)

var (
	ColorRed    = color.RGBA{R: 255, A: 255}
	ColorBlue   = color.RGBA{B: 255, A: 255}
	ColorYellow = color.RGBA{R: 255, G: 255, A: 255}
)

const (
	boxThickness    = 2
	centerRadius    = 3
	centerThickness = 3 // equal to the radius so the dot looks filled
	textScale       = 2
	textOffsetY     = 10
)

// Canvas receives drawing calls in frame pixel coordinates.
type Canvas interface {
	DrawRect(x, y, w, h int, c color.RGBA, thickness int) error
	DrawCircle(cx, cy, radius int, c color.RGBA, thickness int) error
	DrawText(x, y int, text string, c color.RGBA, scale float64) error
}

// LabelLookup resolves class ids to display labels.
type LabelLookup interface {
	LabelFor(classID uint16) string
}

// Annotator draws a box, a center dot and a "label: score" caption for each detection.
type Annotator struct {
	labels LabelLookup
}

// NewAnnotator creates an Annotator using labels for captions.
func NewAnnotator(labels LabelLookup) *Annotator {
	return &Annotator{labels: labels}
}

// Draw annotates every detection in batch order. A failed drawing call does
// not stop the remaining ones; the first error is returned.
func (a *Annotator) Draw(canvas Canvas, batch model.Batch) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, det := range batch {
		x, y := int(det.X), int(det.Y)

		keep(canvas.DrawRect(x, y, int(det.W), int(det.H), ColorRed, boxThickness))

		cx, cy := det.Center()
		keep(canvas.DrawCircle(cx, cy, centerRadius, ColorBlue, centerThickness))

		keep(canvas.DrawText(x, y-textOffsetY, a.Caption(det), ColorYellow, textScale))
	}

	if firstErr != nil {
		return fmt.Errorf("failed to draw annotations: %w", firstErr)
	}
	return nil
}

// Caption formats the text drawn above a detection.
func (a *Annotator) Caption(det model.Detection) string {
	return fmt.Sprintf("%s: %.2f", a.labels.LabelFor(det.ClassID), det.Score)
}
