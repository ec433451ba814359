package ai

import (
	"errors"
	"fmt"
	"image"
	"os"

	"detectreport/internal/config"
	"detectreport/internal/logger"
	"detectreport/internal/model"
	"detectreport/internal/service/yolo"

	"gocv.io/x/gocv"
)

// maxWH separates classes during NMS, as in the reference YOLOv5 post-processing.
const maxWH = 4096

var (
	// ErrModelNotFound is returned when the model file does not exist.
	ErrModelNotFound = errors.New("model file not found")
	// ErrModelLoad is returned when the network cannot be created from the model file.
	ErrModelLoad = errors.New("failed to load model")
)

// DetectorService runs a YOLOv5 ONNX model through the OpenCV DNN module.
type DetectorService struct {
	net         gocv.Net
	labels      yolo.Labels
	modelPath   string
	inputWidth  int
	inputHeight int
	logger      *logger.Logger
}

// LoadDetector loads the model and label table. A missing or unreadable model
// is a startup failure.
func LoadDetector(config *config.Config, logger *logger.Logger) (*DetectorService, error) {
	labels, err := yolo.LoadLabelsOrDefault(config.LabelsPath)
	if err != nil {
		return nil, err
	}

	service := &DetectorService{
		labels:      labels,
		modelPath:   config.ModelPath,
		inputWidth:  config.InputWidth,
		inputHeight: config.InputHeight,
		logger:      logger,
	}

	if err := service.initializeNet(); err != nil {
		return nil, err
	}

	return service, nil
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrModelNotFound, s.modelPath)
	}

	net := gocv.ReadNetFromONNX(s.modelPath)
	if net.Empty() {
		return fmt.Errorf("%w: %s", ErrModelLoad, s.modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("%w: failed to set preferable backend or target", ErrModelLoad)
	}

	s.net = net
	s.logger.Info("Model loaded: %s (%dx%d, %d labels)", s.modelPath, s.inputWidth, s.inputHeight, len(s.labels))
	return nil
}

// InputWidth is the width frames should be captured at.
func (s *DetectorService) InputWidth() int { return s.inputWidth }

// InputHeight is the height frames should be captured at.
func (s *DetectorService) InputHeight() int { return s.inputHeight }

// Labels returns the label table used by this model.
func (s *DetectorService) Labels() yolo.Labels { return s.labels }

// LabelFor resolves a class id to its label, or unknown_<id>.
func (s *DetectorService) LabelFor(classID uint16) string {
	return s.labels.LabelFor(classID)
}

// Detect runs the network on one frame and returns the detections that
// survive the confidence threshold and NMS, highest score first.
func (s *DetectorService) Detect(frame *gocv.Mat, confThreshold, iouThreshold float32) (model.Batch, error) {
	if frame == nil || frame.Empty() {
		return nil, errors.New("empty frame")
	}

	blob := gocv.BlobFromImage(*frame, 1.0/255.0, image.Pt(s.inputWidth, s.inputHeight), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")
	output := s.net.Forward("")
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("%w: %v", yolo.ErrOutputShape, dims)
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read network output: %w", err)
	}

	scale := yolo.NewScale(frame.Cols(), frame.Rows(), s.inputWidth, s.inputHeight)
	candidates, err := yolo.Decode(data, dims[2], confThreshold, scale)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return model.Batch{}, nil
	}

	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		scores[i] = c.Score
	}
	keep := gocv.NMSBoxes(yolo.ClassOffset(candidates, maxWH), scores, confThreshold, iouThreshold)

	batch := make(model.Batch, 0, len(keep))
	for _, idx := range keep {
		c := candidates[idx]
		det, ok := model.NewDetection(c.Box.Min.X, c.Box.Min.Y, c.Box.Dx(), c.Box.Dy(), c.ClassID, c.Score)
		if !ok {
			continue
		}
		batch = append(batch, det)
	}

	return batch, nil
}

// Close releases the network.
func (s *DetectorService) Close() error {
	return s.net.Close()
}
