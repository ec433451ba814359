// Package camera reads frames from a local capture device with OpenCV.
package camera

import (
	"fmt"
	"image"

	"detectreport/internal/logger"

	"gocv.io/x/gocv"
)

// Source captures frames sized for the detector. The returned frame is owned
// by the Source and reused on the next Acquire.
type Source struct {
	capture *gocv.VideoCapture
	raw     gocv.Mat
	frame   gocv.Mat
	size    image.Point
	logger  *logger.Logger
}

// Open opens the capture device and requests width x height frames.
func Open(device, width, height int, logger *logger.Logger) (*Source, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", device, err)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(height))

	logger.Info("Camera %d opened (%dx%d requested)", device, width, height)

	return &Source{
		capture: capture,
		raw:     gocv.NewMat(),
		frame:   gocv.NewMat(),
		size:    image.Pt(width, height),
		logger:  logger,
	}, nil
}

// Acquire reads the next frame. It returns false instead of failing when the
// device has nothing to give. Devices that ignore the requested size are
// resized in software.
func (s *Source) Acquire() (*gocv.Mat, bool) {
	if ok := s.capture.Read(&s.raw); !ok || s.raw.Empty() {
		return nil, false
	}

	if s.raw.Cols() == s.size.X && s.raw.Rows() == s.size.Y {
		s.raw.CopyTo(&s.frame)
		return &s.frame, true
	}

	if err := gocv.Resize(s.raw, &s.frame, s.size, 0, 0, gocv.InterpolationLinear); err != nil {
		s.logger.Warning("Failed to resize frame: %v", err)
		return nil, false
	}
	return &s.frame, true
}

// Close releases the device and frame buffers.
func (s *Source) Close() error {
	s.raw.Close()
	s.frame.Close()
	return s.capture.Close()
}
