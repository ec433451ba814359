package model

import "time"

// JournalFrame is a reported frame stored in the detection journal.
type JournalFrame struct {
	ID             int64     `json:"id"`
	CapturedAt     time.Time `json:"captured_at"`
	DetectionCount int       `json:"detection_count"`
}

// JournalDetection is a single reported detection stored in the journal.
type JournalDetection struct {
	ID         int64   `json:"id"`
	FrameID    int64   `json:"frame_id"`
	Seq        int     `json:"seq"`
	Label      string  `json:"label"`
	ClassID    int     `json:"class_id"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// JournalStats summarizes the journal contents.
type JournalStats struct {
	Frames     int            `json:"frames"`
	Detections int            `json:"detections"`
	PerLabel   map[string]int `json:"per_label"`
	FirstFrame time.Time      `json:"first_frame"`
	LastFrame  time.Time      `json:"last_frame"`
}
