// Package pipeline runs the per-frame loop: acquire, detect, report, render, display.
//
// The loop is single-threaded and synchronous. The exit signal is polled once
// before each iteration and an iteration that has started always completes.
package pipeline

import (
	"detectreport/internal/logger"
	"detectreport/internal/model"
	"detectreport/internal/service/report"
)

// FrameSource yields frames. ok is false when no frame is available.
type FrameSource[F any] interface {
	Acquire() (frame F, ok bool)
}

// Detector finds objects in a single frame.
type Detector[F any] interface {
	Detect(frame F, confThreshold, iouThreshold float32) (model.Batch, error)
}

// Reporter sends a non-empty batch to the reporting channel.
type Reporter interface {
	Report(batch model.Batch) error
}

// Renderer draws the batch annotations onto the frame.
type Renderer[F any] interface {
	Annotate(frame F, batch model.Batch) error
}

// Display presents an annotated frame.
type Display[F any] interface {
	Present(frame F) error
}

// Recorder keeps annotated frames that contain detections.
type Recorder[F any] interface {
	Record(frame F, batch model.Batch) error
}

// ExitSignal tells the loop to stop before the next iteration.
type ExitSignal interface {
	ShouldExit() bool
}

// Options are read once per iteration and never modified by the loop.
type Options struct {
	ConfThreshold float32
	IoUThreshold  float32
	ReportEnabled bool
}

// IterationResult describes what one iteration did.
type IterationResult struct {
	FrameMissing bool
	Detections   int
	Reported     bool
}

// Pipeline wires the per-frame collaborators together.
type Pipeline[F any] struct {
	source   FrameSource[F]
	detector Detector[F]
	reporter Reporter
	renderer Renderer[F]
	display  Display[F]
	recorder Recorder[F]
	exit     ExitSignal
	options  Options
	logger   *logger.Logger
}

// New creates a Pipeline. A nil reporter disables reporting regardless of options.
func New[F any](source FrameSource[F], detector Detector[F], reporter Reporter, renderer Renderer[F],
	display Display[F], exit ExitSignal, options Options, logger *logger.Logger) *Pipeline[F] {
	return &Pipeline[F]{
		source:   source,
		detector: detector,
		reporter: reporter,
		renderer: renderer,
		display:  display,
		exit:     exit,
		options:  options,
		logger:   logger,
	}
}

// WithRecorder attaches a Recorder that runs after rendering for frames with detections.
func (p *Pipeline[F]) WithRecorder(recorder Recorder[F]) *Pipeline[F] {
	p.recorder = recorder
	return p
}

// Run loops until the exit signal is observed and returns the number of
// iterations that were executed.
func (p *Pipeline[F]) Run() int {
	iterations := 0
	for !p.exit.ShouldExit() {
		p.Step()
		iterations++
	}
	p.logger.Info("Pipeline stopped after %d iterations", iterations)
	return iterations
}

// Step runs exactly one iteration.
func (p *Pipeline[F]) Step() IterationResult {
	frame, ok := p.source.Acquire()
	if !ok {
		p.logger.Warning("No frame read, skipping")
		return IterationResult{FrameMissing: true}
	}

	batch, err := p.detector.Detect(frame, p.options.ConfThreshold, p.options.IoUThreshold)
	if err != nil {
		p.logger.Error("Detection failed: %v", err)
		batch = nil
	}

	result := IterationResult{Detections: len(batch)}

	if p.reporter != nil && report.ShouldReport(batch, p.options.ReportEnabled) {
		if err := p.reporter.Report(batch); err != nil {
			p.logger.Error("Failed to report %d detections: %v", len(batch), err)
		} else {
			result.Reported = true
		}
	}

	if err := p.renderer.Annotate(frame, batch); err != nil {
		p.logger.Error("Failed to annotate frame: %v", err)
	}

	if p.recorder != nil && len(batch) > 0 {
		if err := p.recorder.Record(frame, batch); err != nil {
			p.logger.Error("Failed to record frame: %v", err)
		}
	}

	if err := p.display.Present(frame); err != nil {
		p.logger.Error("Failed to present frame: %v", err)
	}

	return result
}
