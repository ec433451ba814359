package route

import (
	"net/http"

	"detectreport/internal/config"
	"detectreport/internal/handler"
	"detectreport/internal/logger"
	"detectreport/internal/repository"
	"detectreport/internal/service/websocket"
)

// SetupRoutes registers the viewer websocket, journal API and log endpoints.
// Journal endpoints are only registered when a journal is configured.
func SetupRoutes(hub *websocket.HubService, journal repository.JournalRepository, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Live view
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(hub, logger))

	// Journal
	if journal != nil {
		mux.HandleFunc("/api/detections", handler.RecentDetectionsHandler(journal, logger))
		mux.HandleFunc("/api/detections/stats", handler.DetectionStatsHandler(journal, logger))
		mux.HandleFunc("/api/frames", handler.FrameDetectionsHandler(journal, logger))
	}

	// Logs: /logs/{info,warning,error} and POST /logs/{level}/clear
	mux.HandleFunc("/logs/", handler.LogsHandler(cfg, logger))

	return mux
}
