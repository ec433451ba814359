package repository

import "detectreport/internal/model"

// JournalRepository stores reported frames and their detections.
type JournalRepository interface {
	// Create operations
	InsertFrame(frame *model.JournalFrame, detections []model.JournalDetection) (int64, error)

	// Read operations
	GetFrame(id int64) (*model.JournalFrame, error)
	GetDetectionsByFrameID(frameID int64) ([]model.JournalDetection, error)
	Recent(limit int) ([]model.JournalDetection, error)
	CountByLabel() (map[string]int, error)
	Stats() (*model.JournalStats, error)

	// Delete operations
	DeleteAll() error
}
