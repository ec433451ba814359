package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"detectreport/internal/logger"
	"detectreport/internal/model"
	"detectreport/internal/repository"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 1000
)

// RecentDetectionsHandler returns the most recently reported detections.
// The "limit" query parameter defaults to 50.
func RecentDetectionsHandler(journal repository.JournalRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := atoiDefault(r.URL.Query().Get("limit"), defaultRecentLimit)
		if limit > maxRecentLimit {
			limit = maxRecentLimit
		}

		detections, err := journal.Recent(limit)
		if err != nil {
			logger.Error("Error querying recent detections: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, logger, detections)
	}
}

// DetectionStatsHandler returns journal totals and per-label counts.
func DetectionStatsHandler(journal repository.JournalRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := journal.Stats()
		if err != nil {
			logger.Error("Error querying journal stats: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, logger, stats)
	}
}

// FrameDetectionsHandler returns one journal frame with its detections. The
// frame is selected with the "id" query parameter.
func FrameDetectionsHandler(journal repository.JournalRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "Frame id required", http.StatusBadRequest)
			return
		}

		frame, err := journal.GetFrame(id)
		if err != nil {
			logger.Error("Error querying frame %d: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if frame == nil {
			http.NotFound(w, r)
			return
		}

		detections, err := journal.GetDetectionsByFrameID(id)
		if err != nil {
			logger.Error("Error querying detections of frame %d: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, logger, frameResponse{JournalFrame: *frame, Detections: detections})
	}
}

type frameResponse struct {
	model.JournalFrame
	Detections []model.JournalDetection `json:"detections"`
}

func writeJSON(w http.ResponseWriter, logger *logger.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
