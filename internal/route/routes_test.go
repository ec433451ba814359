package route

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"detectreport/internal/config"
	"detectreport/internal/logger"
	"detectreport/internal/service/websocket"
)

func TestSetupRoutes_WithoutJournal(t *testing.T) {
	log := logger.NewDiscard()
	router := SetupRoutes(websocket.NewHubService(log), nil, &config.Config{LogDirectory: t.TempDir()}, log)

	tests := []struct {
		path     string
		expected int
	}{
		{"/api/detections", http.StatusNotFound},
		{"/logs/info", http.StatusNotFound},
		{"/logs/info/clear", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rr.Code != tt.expected {
			t.Errorf("GET %s: expected status %d, got %d", tt.path, tt.expected, rr.Code)
		}
	}
}
