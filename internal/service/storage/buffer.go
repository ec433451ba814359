package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"detectreport/internal/config"
	"detectreport/internal/logger"
)

const timestampLayout = "2006-01-02_15-04_05.000"

// BufferedImage is an encoded snapshot waiting to be written.
type BufferedImage struct {
	Timestamp string
	Labels    []string
	Data      []byte
}

// BufferService buffers snapshots in memory and writes them to disk once the
// buffer is full and on Close.
type BufferService struct {
	imagesDir string
	limit     int
	images    []BufferedImage
	mu        sync.Mutex
	logger    *logger.Logger
	now       func() time.Time
}

// NewBufferService creates a BufferService writing to config.SnapshotDir.
func NewBufferService(config *config.Config, logger *logger.Logger) *BufferService {
	limit := config.SnapshotLimit
	if limit <= 0 {
		limit = 1
	}
	return &BufferService{
		imagesDir: config.SnapshotDir,
		limit:     limit,
		images:    make([]BufferedImage, 0, limit),
		logger:    logger,
		now:       time.Now,
	}
}

// AddImage appends an encoded image. The buffer is flushed synchronously
// when it reaches its limit.
func (s *BufferService) AddImage(imageData []byte, labels []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.images = append(s.images, BufferedImage{
		Timestamp: s.now().Format(timestampLayout),
		Labels:    labels,
		Data:      imageData,
	})

	if len(s.images) < s.limit {
		return nil
	}
	return s.flush()
}

// Pending returns the number of buffered images.
func (s *BufferService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// FlushImages writes all buffered images to disk.
func (s *BufferService) FlushImages() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

// Close flushes what is left in the buffer.
func (s *BufferService) Close() error {
	return s.FlushImages()
}

func (s *BufferService) flush() error {
	if len(s.images) == 0 {
		return nil
	}

	if err := os.MkdirAll(s.imagesDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	savedCount := 0
	var lastErr error
	for _, image := range s.images {
		filename := Filename(image.Timestamp, image.Labels)
		if err := os.WriteFile(filepath.Join(s.imagesDir, filename), image.Data, 0644); err != nil {
			s.logger.Error("Error saving image %s: %v", filename, err)
			lastErr = err
			continue
		}
		savedCount++
	}

	s.logger.Info("Flushed %d snapshots to disk", savedCount)
	failed := len(s.images) - savedCount
	s.images = s.images[:0]

	if lastErr != nil {
		return fmt.Errorf("failed to save %d snapshots: %w", failed, lastErr)
	}
	return nil
}

// Filename builds <timestamp>_<label>[_<label>...].jpg. Repeated labels are
// written once.
func Filename(timestamp string, labels []string) string {
	seen := make(map[string]bool, len(labels))
	parts := []string{timestamp}
	for _, label := range labels {
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		parts = append(parts, strings.ReplaceAll(label, " ", "-"))
	}
	return strings.Join(parts, "_") + ".jpg"
}
