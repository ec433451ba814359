package pipeline

import (
	"errors"
	"testing"

	"detectreport/internal/logger"
	"detectreport/internal/model"
)

type testFrame struct {
	id          int
	annotations int
}

type fakeSource struct {
	frames []*testFrame
	pos    int
	calls  int
}

func (s *fakeSource) Acquire() (*testFrame, bool) {
	s.calls++
	if s.pos >= len(s.frames) {
		return nil, false
	}
	f := s.frames[s.pos]
	s.pos++
	if f == nil {
		return nil, false
	}
	return f, true
}

type fakeDetector struct {
	batches map[int]model.Batch
	err     error
	calls   int
	conf    float32
	iou     float32
}

func (d *fakeDetector) Detect(frame *testFrame, conf, iou float32) (model.Batch, error) {
	d.calls++
	d.conf, d.iou = conf, iou
	if d.err != nil {
		return nil, d.err
	}
	return d.batches[frame.id], nil
}

type fakeReporter struct {
	reported []model.Batch
	err      error
}

func (r *fakeReporter) Report(batch model.Batch) error {
	if r.err != nil {
		return r.err
	}
	r.reported = append(r.reported, batch)
	return nil
}

type fakeRenderer struct {
	calls int
	err   error
}

func (r *fakeRenderer) Annotate(frame *testFrame, batch model.Batch) error {
	r.calls++
	frame.annotations += len(batch)
	return r.err
}

type fakeDisplay struct{ presented []int }

func (d *fakeDisplay) Present(frame *testFrame) error {
	d.presented = append(d.presented, frame.id)
	return nil
}

type fakeRecorder struct{ recorded []int }

func (r *fakeRecorder) Record(frame *testFrame, batch model.Batch) error {
	r.recorded = append(r.recorded, frame.id)
	return nil
}

// countdownExit allows n iterations, then requests exit.
type countdownExit struct {
	remaining int
	polls     int
}

func (e *countdownExit) ShouldExit() bool {
	e.polls++
	if e.remaining <= 0 {
		return true
	}
	e.remaining--
	return false
}

var oneDetection = model.Batch{{X: 10, Y: 20, W: 30, H: 40, ClassID: 1, Score: 0.87}}

func newTestPipeline(source *fakeSource, detector *fakeDetector, reporter Reporter, exit ExitSignal, opts Options) (*Pipeline[*testFrame], *fakeRenderer, *fakeDisplay) {
	renderer := &fakeRenderer{}
	display := &fakeDisplay{}
	p := New[*testFrame](source, detector, reporter, renderer, display, exit, opts, logger.NewDiscard())
	return p, renderer, display
}

func TestStep_ReportingGate(t *testing.T) {
	tests := []struct {
		name         string
		batch        model.Batch
		enabled      bool
		wantReported bool
	}{
		{"detections and enabled", oneDetection, true, true},
		{"detections and disabled", oneDetection, false, false},
		{"no detections and enabled", model.Batch{}, true, false},
		{"no detections and disabled", model.Batch{}, false, false},
	}

	for _, tt := range tests {
		source := &fakeSource{frames: []*testFrame{{id: 1}}}
		detector := &fakeDetector{batches: map[int]model.Batch{1: tt.batch}}
		reporter := &fakeReporter{}
		p, _, display := newTestPipeline(source, detector, reporter, &countdownExit{}, Options{ReportEnabled: tt.enabled})

		result := p.Step()

		if result.Reported != tt.wantReported {
			t.Errorf("%s: Reported = %v, expected %v", tt.name, result.Reported, tt.wantReported)
		}
		if got := len(reporter.reported) == 1; got != tt.wantReported {
			t.Errorf("%s: reporter called = %v, expected %v", tt.name, got, tt.wantReported)
		}
		if len(display.presented) != 1 {
			t.Errorf("%s: expected frame to be displayed", tt.name)
		}
	}
}

func TestStep_PassesThresholds(t *testing.T) {
	source := &fakeSource{frames: []*testFrame{{id: 1}}}
	detector := &fakeDetector{}
	p, _, _ := newTestPipeline(source, detector, &fakeReporter{}, &countdownExit{}, Options{ConfThreshold: 0.5, IoUThreshold: 0.45})

	p.Step()

	if detector.conf != 0.5 || detector.iou != 0.45 {
		t.Errorf("Expected thresholds 0.5/0.45, got %v/%v", detector.conf, detector.iou)
	}
}

func TestStep_MissingFrameSkipsIteration(t *testing.T) {
	source := &fakeSource{frames: []*testFrame{nil}}
	detector := &fakeDetector{}
	reporter := &fakeReporter{}
	p, renderer, display := newTestPipeline(source, detector, reporter, &countdownExit{}, Options{ReportEnabled: true})

	result := p.Step()

	if !result.FrameMissing {
		t.Error("Expected FrameMissing")
	}
	if detector.calls != 0 || renderer.calls != 0 || len(display.presented) != 0 || len(reporter.reported) != 0 {
		t.Error("Expected no downstream calls for a missing frame")
	}
}

func TestStep_DetectorErrorStillDisplays(t *testing.T) {
	source := &fakeSource{frames: []*testFrame{{id: 1}}}
	detector := &fakeDetector{err: errors.New("inference failed")}
	reporter := &fakeReporter{}
	p, renderer, display := newTestPipeline(source, detector, reporter, &countdownExit{}, Options{ReportEnabled: true})

	result := p.Step()

	if result.Detections != 0 || result.Reported {
		t.Errorf("Unexpected result: %+v", result)
	}
	if renderer.calls != 1 || len(display.presented) != 1 {
		t.Error("Expected frame to be rendered and displayed")
	}
}

func TestStep_ReporterErrorIsContained(t *testing.T) {
	source := &fakeSource{frames: []*testFrame{{id: 1}}}
	detector := &fakeDetector{batches: map[int]model.Batch{1: oneDetection}}
	reporter := &fakeReporter{err: errors.New("serial write failed")}
	p, _, display := newTestPipeline(source, detector, reporter, &countdownExit{}, Options{ReportEnabled: true})

	result := p.Step()

	if result.Reported {
		t.Error("Expected Reported=false on transport failure")
	}
	if len(display.presented) != 1 {
		t.Error("Expected frame to be displayed after a failed report")
	}
}

func TestStep_RendererErrorStillDisplays(t *testing.T) {
	source := &fakeSource{frames: []*testFrame{{id: 1}}}
	detector := &fakeDetector{batches: map[int]model.Batch{1: oneDetection}}
	reporter := &fakeReporter{}
	p, renderer, display := newTestPipeline(source, detector, reporter, &countdownExit{}, Options{ReportEnabled: true})
	renderer.err = errors.New("bad font scale")

	result := p.Step()

	if !result.Reported {
		t.Error("Expected batch to be reported before rendering")
	}
	if len(display.presented) != 1 {
		t.Error("Expected frame to be displayed after a failed annotation")
	}
}

func TestStep_NilReporterDisablesReporting(t *testing.T) {
	source := &fakeSource{frames: []*testFrame{{id: 1}}}
	detector := &fakeDetector{batches: map[int]model.Batch{1: oneDetection}}
	p, _, _ := newTestPipeline(source, detector, nil, &countdownExit{}, Options{ReportEnabled: true})

	if result := p.Step(); result.Reported {
		t.Error("Expected no report without a reporter")
	}
}

func TestStep_RecorderOnlyForDetections(t *testing.T) {
	source := &fakeSource{frames: []*testFrame{{id: 1}, {id: 2}}}
	detector := &fakeDetector{batches: map[int]model.Batch{2: oneDetection}}
	recorder := &fakeRecorder{}
	p, _, _ := newTestPipeline(source, detector, &fakeReporter{}, &countdownExit{}, Options{})
	p.WithRecorder(recorder)

	p.Step()
	p.Step()

	if len(recorder.recorded) != 1 || recorder.recorded[0] != 2 {
		t.Errorf("Expected only frame 2 recorded, got %v", recorder.recorded)
	}
}

func TestRun_PollsExitOncePerIteration(t *testing.T) {
	source := &fakeSource{frames: []*testFrame{{id: 1}, nil, {id: 3}}}
	detector := &fakeDetector{batches: map[int]model.Batch{1: oneDetection, 3: {}}}
	reporter := &fakeReporter{}
	exit := &countdownExit{remaining: 3}
	p, renderer, display := newTestPipeline(source, detector, reporter, exit, Options{ReportEnabled: true})

	iterations := p.Run()

	if iterations != 3 {
		t.Errorf("Expected 3 iterations, got %d", iterations)
	}
	if exit.polls != 4 {
		t.Errorf("Expected 4 exit polls, got %d", exit.polls)
	}
	if source.calls != 3 {
		t.Errorf("Expected 3 acquisitions, got %d", source.calls)
	}
	if len(reporter.reported) != 1 {
		t.Errorf("Expected 1 report, got %d", len(reporter.reported))
	}
	if renderer.calls != 2 {
		t.Errorf("Expected 2 renders, got %d", renderer.calls)
	}
	if len(display.presented) != 2 || display.presented[0] != 1 || display.presented[1] != 3 {
		t.Errorf("Expected frames [1 3] displayed, got %v", display.presented)
	}
}

func TestRun_ExitBeforeFirstIteration(t *testing.T) {
	source := &fakeSource{frames: []*testFrame{{id: 1}}}
	p, _, _ := newTestPipeline(source, &fakeDetector{}, &fakeReporter{}, &countdownExit{}, Options{})

	if iterations := p.Run(); iterations != 0 {
		t.Errorf("Expected 0 iterations, got %d", iterations)
	}
	if source.calls != 0 {
		t.Error("Expected no frame acquisition")
	}
}
