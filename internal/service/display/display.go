// Package display presents annotated frames locally and to remote viewers.
package display

import (
	"errors"
	"fmt"

	"detectreport/internal/model"
	"detectreport/internal/service/storage"
	"detectreport/internal/service/websocket"

	"gocv.io/x/gocv"
)

const (
	keyEsc = 27
	keyQ   = 'q'
)

// WindowSink shows frames in an OpenCV window. Pressing q or Esc, or closing
// the window, requests exit.
type WindowSink struct {
	window  *gocv.Window
	lastKey int
	closed  bool
}

// NewWindowSink opens a named window.
func NewWindowSink(name string) *WindowSink {
	return &WindowSink{window: gocv.NewWindow(name), lastKey: -1}
}

// Present shows the frame and polls the keyboard once.
func (w *WindowSink) Present(frame *gocv.Mat) error {
	if w.closed {
		return nil
	}
	if err := w.window.IMShow(*frame); err != nil {
		return fmt.Errorf("failed to show frame: %w", err)
	}
	w.lastKey = w.window.WaitKey(1)
	return nil
}

// ShouldExit reports whether the user asked to quit.
func (w *WindowSink) ShouldExit() bool {
	if w.closed {
		return true
	}
	key := w.lastKey & 0xFF
	return (w.lastKey >= 0 && (key == keyEsc || key == keyQ)) || !w.window.IsOpen()
}

// Close closes the window.
func (w *WindowSink) Close() error {
	w.closed = true
	return w.window.Close()
}

// HubSink JPEG-encodes frames and broadcasts them to websocket viewers.
// Frames are dropped while no viewer is connected or the hub is still busy.
type HubSink struct {
	hub *websocket.HubService
}

// NewHubSink creates a HubSink on top of hub.
func NewHubSink(hub *websocket.HubService) *HubSink {
	return &HubSink{hub: hub}
}

// Present broadcasts the frame.
func (s *HubSink) Present(frame *gocv.Mat) error {
	if s.hub.GetClientCount() == 0 {
		return nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	s.hub.TryBroadcast(data)
	return nil
}

// Sink is a single frame consumer.
type Sink interface {
	Present(frame *gocv.Mat) error
}

// MultiSink presents a frame on every sink.
type MultiSink []Sink

// Present calls every sink and joins the errors.
func (m MultiSink) Present(frame *gocv.Mat) error {
	var errs []error
	for _, s := range m {
		if err := s.Present(frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopSink discards frames. Used when running headless.
type NopSink struct{}

// Present does nothing.
func (NopSink) Present(*gocv.Mat) error { return nil }

// LabelLookup resolves class ids to labels.
type LabelLookup interface {
	LabelFor(classID uint16) string
}

// SnapshotRecorder JPEG-encodes annotated frames into the snapshot buffer.
type SnapshotRecorder struct {
	buffer *storage.BufferService
	labels LabelLookup
}

// NewSnapshotRecorder creates a SnapshotRecorder.
func NewSnapshotRecorder(buffer *storage.BufferService, labels LabelLookup) *SnapshotRecorder {
	return &SnapshotRecorder{buffer: buffer, labels: labels}
}

// Record buffers the frame named after the labels in batch.
func (r *SnapshotRecorder) Record(frame *gocv.Mat, batch model.Batch) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())

	labels := make([]string, len(batch))
	for i, det := range batch {
		labels[i] = r.labels.LabelFor(det.ClassID)
	}
	return r.buffer.AddImage(data, labels)
}
