// Package cvcanvas implements render.Canvas on top of an OpenCV Mat.
package cvcanvas

import (
	"image"
	"image/color"

	"detectreport/internal/model"
	"detectreport/internal/service/render"

	"gocv.io/x/gocv"
)

// hersheyUnit converts a caption scale into a Hershey font scale.
const hersheyUnit = 0.4

// Canvas draws onto a Mat.
type Canvas struct {
	mat *gocv.Mat
}

// New wraps mat.
func New(mat *gocv.Mat) *Canvas {
	return &Canvas{mat: mat}
}

func (c *Canvas) DrawRect(x, y, w, h int, col color.RGBA, thickness int) error {
	return gocv.Rectangle(c.mat, image.Rect(x, y, x+w, y+h), col, thickness)
}

func (c *Canvas) DrawCircle(cx, cy, radius int, col color.RGBA, thickness int) error {
	return gocv.Circle(c.mat, image.Pt(cx, cy), radius, col, thickness)
}

func (c *Canvas) DrawText(x, y int, text string, col color.RGBA, scale float64) error {
	return gocv.PutText(c.mat, text, image.Pt(x, y), gocv.FontHersheySimplex, scale*hersheyUnit, col, int(scale))
}

// Renderer annotates Mats in place.
type Renderer struct {
	annotator *render.Annotator
}

// NewRenderer creates a Renderer that captions with labels.
func NewRenderer(labels render.LabelLookup) *Renderer {
	return &Renderer{annotator: render.NewAnnotator(labels)}
}

// Annotate draws the batch onto frame.
func (r *Renderer) Annotate(frame *gocv.Mat, batch model.Batch) error {
	return r.annotator.Draw(New(frame), batch)
}
