package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"detectreport/internal/model"
)

// JournalRepository implements repository.JournalRepository for SQLite.
type JournalRepository struct {
	db *DB
}

// NewJournalRepository creates a new SQLite journal repository.
func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// InsertFrame stores a frame and its detections in a single transaction and
// returns the new frame id.
func (r *JournalRepository) InsertFrame(frame *model.JournalFrame, detections []model.JournalDetection) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO frames (captured_at, detection_count) VALUES (?, ?)`,
		frame.CapturedAt, len(detections))
	if err != nil {
		return 0, fmt.Errorf("failed to insert frame: %w", err)
	}

	frameID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get frame id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO detections (frame_id, seq, label, class_id, x, y, width, height, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, det := range detections {
		if _, err := stmt.Exec(frameID, det.Seq, det.Label, det.ClassID, det.X, det.Y, det.Width, det.Height, det.Confidence); err != nil {
			return 0, fmt.Errorf("failed to insert detection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit frame: %w", err)
	}

	frame.ID = frameID
	frame.DetectionCount = len(detections)
	return frameID, nil
}

// GetFrame retrieves a frame by id. It returns nil when the frame does not exist.
func (r *JournalRepository) GetFrame(id int64) (*model.JournalFrame, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var frame model.JournalFrame
	err := r.db.Conn().QueryRow(`SELECT id, captured_at, detection_count FROM frames WHERE id = ?`, id).
		Scan(&frame.ID, &frame.CapturedAt, &frame.DetectionCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get frame: %w", err)
	}

	return &frame, nil
}

// GetDetectionsByFrameID retrieves the detections of a frame in report order.
func (r *JournalRepository) GetDetectionsByFrameID(frameID int64) ([]model.JournalDetection, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.queryDetections(`
		SELECT id, frame_id, seq, label, class_id, x, y, width, height, score
		FROM detections WHERE frame_id = ? ORDER BY seq
	`, frameID)
}

// Recent returns up to limit detections, newest frame first and in report
// order within a frame.
func (r *JournalRepository) Recent(limit int) ([]model.JournalDetection, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.queryDetections(`
		SELECT id, frame_id, seq, label, class_id, x, y, width, height, score
		FROM detections ORDER BY frame_id DESC, seq ASC LIMIT ?
	`, limit)
}

func (r *JournalRepository) queryDetections(query string, args ...any) ([]model.JournalDetection, error) {
	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	var detections []model.JournalDetection
	for rows.Next() {
		var det model.JournalDetection
		if err := rows.Scan(&det.ID, &det.FrameID, &det.Seq, &det.Label, &det.ClassID,
			&det.X, &det.Y, &det.Width, &det.Height, &det.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		detections = append(detections, det)
	}

	return detections, rows.Err()
}

// CountByLabel returns how many detections were reported per label.
func (r *JournalRepository) CountByLabel() (map[string]int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.countByLabel()
}

func (r *JournalRepository) countByLabel() (map[string]int, error) {
	rows, err := r.db.Conn().Query(`SELECT label, COUNT(*) FROM detections GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to count labels: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("failed to scan label count: %w", err)
		}
		counts[label] = count
	}

	return counts, rows.Err()
}

// Stats summarizes the journal. First and last frame times are zero when the
// journal is empty.
func (r *JournalRepository) Stats() (*model.JournalStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &model.JournalStats{}
	conn := r.db.Conn()

	if err := conn.QueryRow(`SELECT COUNT(*) FROM frames`).Scan(&stats.Frames); err != nil {
		return nil, fmt.Errorf("failed to count frames: %w", err)
	}
	if err := conn.QueryRow(`SELECT COUNT(*) FROM detections`).Scan(&stats.Detections); err != nil {
		return nil, fmt.Errorf("failed to count detections: %w", err)
	}

	perLabel, err := r.countByLabel()
	if err != nil {
		return nil, err
	}
	stats.PerLabel = perLabel

	if stats.Frames == 0 {
		return stats, nil
	}

	// Aggregates lose the DATETIME column type, so read the boundary rows directly.
	if err := conn.QueryRow(`SELECT captured_at FROM frames ORDER BY captured_at ASC LIMIT 1`).Scan(&stats.FirstFrame); err != nil {
		return nil, fmt.Errorf("failed to get first frame: %w", err)
	}
	if err := conn.QueryRow(`SELECT captured_at FROM frames ORDER BY captured_at DESC LIMIT 1`).Scan(&stats.LastFrame); err != nil {
		return nil, fmt.Errorf("failed to get last frame: %w", err)
	}

	return stats, nil
}

// DeleteAll removes every frame and detection.
func (r *JournalRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM detections; DELETE FROM frames;`); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	return nil
}
