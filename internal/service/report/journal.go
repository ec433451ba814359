package report

import (
	"fmt"
	"time"

	"detectreport/internal/model"
	"detectreport/internal/repository"
)

// LabelLookup resolves class ids to display labels.
type LabelLookup interface {
	LabelFor(classID uint16) string
}

// JournalReporter stores every reported batch in the detection journal.
type JournalReporter struct {
	repo   repository.JournalRepository
	labels LabelLookup
	now    func() time.Time
}

// NewJournalReporter creates a JournalReporter.
func NewJournalReporter(repo repository.JournalRepository, labels LabelLookup) *JournalReporter {
	return &JournalReporter{repo: repo, labels: labels, now: time.Now}
}

// Report inserts the batch as one journal frame, keeping detection order.
func (j *JournalReporter) Report(batch model.Batch) error {
	frame := &model.JournalFrame{
		CapturedAt:     j.now(),
		DetectionCount: len(batch),
	}

	detections := make([]model.JournalDetection, 0, len(batch))
	for i, det := range batch {
		detections = append(detections, model.JournalDetection{
			Seq:        i,
			Label:      j.labels.LabelFor(det.ClassID),
			ClassID:    int(det.ClassID),
			X:          int(det.X),
			Y:          int(det.Y),
			Width:      int(det.W),
			Height:     int(det.H),
			Confidence: float64(det.Score),
		})
	}

	if _, err := j.repo.InsertFrame(frame, detections); err != nil {
		return fmt.Errorf("failed to journal detections: %w", err)
	}
	return nil
}
