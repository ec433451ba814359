package render

import (
	"errors"
	"fmt"
	"image/color"
	"testing"

	"detectreport/internal/model"
)

type call struct {
	kind      string
	x, y      int
	w, h      int
	radius    int
	text      string
	color     color.RGBA
	thickness int
	scale     float64
}

type recordingCanvas struct {
	calls   []call
	failOn  string
	failErr error
}

func (c *recordingCanvas) record(cl call) error {
	c.calls = append(c.calls, cl)
	if cl.kind == c.failOn {
		return c.failErr
	}
	return nil
}

func (c *recordingCanvas) DrawRect(x, y, w, h int, col color.RGBA, thickness int) error {
	return c.record(call{kind: "rect", x: x, y: y, w: w, h: h, color: col, thickness: thickness})
}

func (c *recordingCanvas) DrawCircle(cx, cy, radius int, col color.RGBA, thickness int) error {
	return c.record(call{kind: "circle", x: cx, y: cy, radius: radius, color: col, thickness: thickness})
}

func (c *recordingCanvas) DrawText(x, y int, text string, col color.RGBA, scale float64) error {
	return c.record(call{kind: "text", x: x, y: y, text: text, color: col, scale: scale})
}

type labels []string

func (l labels) LabelFor(id uint16) string {
	if int(id) < len(l) {
		return l[id]
	}
	return fmt.Sprintf("unknown_%d", id)
}

func TestAnnotator_Draw(t *testing.T) {
	canvas := &recordingCanvas{}
	annotator := NewAnnotator(labels{"person", "bicycle"})

	annotator.Draw(canvas, model.Batch{{X: 10, Y: 20, W: 30, H: 41, ClassID: 1, Score: 0.87}})

	if len(canvas.calls) != 3 {
		t.Fatalf("Expected 3 drawing calls, got %d", len(canvas.calls))
	}

	rect := canvas.calls[0]
	if rect.kind != "rect" || rect.x != 10 || rect.y != 20 || rect.w != 30 || rect.h != 41 || rect.color != ColorRed || rect.thickness != 2 {
		t.Errorf("Unexpected rectangle: %+v", rect)
	}

	circle := canvas.calls[1]
	if circle.kind != "circle" || circle.x != 25 || circle.y != 40 || circle.radius != 3 || circle.thickness != 3 || circle.color != ColorBlue {
		t.Errorf("Unexpected circle: %+v", circle)
	}

	text := canvas.calls[2]
	if text.kind != "text" || text.x != 10 || text.y != 10 || text.text != "bicycle: 0.87" || text.color != ColorYellow || text.scale != 2 {
		t.Errorf("Unexpected text: %+v", text)
	}
}

func TestAnnotator_UnknownClassAndNegativeOrigin(t *testing.T) {
	canvas := &recordingCanvas{}
	annotator := NewAnnotator(labels{"person"})

	annotator.Draw(canvas, model.Batch{{X: -5, Y: 4, W: 10, H: 10, ClassID: 42, Score: 0.5}})

	if canvas.calls[1].x != 0 || canvas.calls[1].y != 9 {
		t.Errorf("Expected center (0,9), got (%d,%d)", canvas.calls[1].x, canvas.calls[1].y)
	}
	if canvas.calls[2].text != "unknown_42: 0.50" || canvas.calls[2].y != -6 {
		t.Errorf("Unexpected caption: %+v", canvas.calls[2])
	}
}

func TestAnnotator_EmptyBatchDrawsNothing(t *testing.T) {
	canvas := &recordingCanvas{}
	NewAnnotator(labels{}).Draw(canvas, nil)

	if len(canvas.calls) != 0 {
		t.Errorf("Expected no calls, got %d", len(canvas.calls))
	}
}

func TestAnnotator_DrawReturnsFirstErrorAndKeepsDrawing(t *testing.T) {
	drawErr := errors.New("unsupported mat type")
	canvas := &recordingCanvas{failOn: "circle", failErr: drawErr}
	annotator := NewAnnotator(labels{"person"})

	err := annotator.Draw(canvas, model.Batch{
		{X: 1, Y: 1, W: 4, H: 4, Score: 0.9},
		{X: 9, Y: 9, W: 4, H: 4, Score: 0.8},
	})

	if !errors.Is(err, drawErr) {
		t.Errorf("Expected drawing error, got %v", err)
	}
	if len(canvas.calls) != 6 {
		t.Errorf("Expected all 6 drawing calls, got %d", len(canvas.calls))
	}
}
