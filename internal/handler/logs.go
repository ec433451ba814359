package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"detectreport/internal/config"
	"detectreport/internal/logger"
)

// LogsHandler serves /logs/{level} as plain text and truncates the file on
// POST /logs/{level}/clear. Levels are info, warning and error.
func LogsHandler(cfg *config.Config, appLogger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level, action, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/logs/"), "/")
		fileName, ok := logger.LevelFile(level)
		if !ok {
			http.NotFound(w, r)
			return
		}

		switch action {
		case "":
			serveLogFile(w, r, filepath.Join(cfg.LogDirectory, fileName))
		case "clear":
			if r.Method != http.MethodPost {
				w.Header().Set("Allow", http.MethodPost)
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			if err := appLogger.CleanLogs(fileName); err != nil {
				appLogger.Error("Failed to clear %s: %v", fileName, err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}
}

func serveLogFile(w http.ResponseWriter, r *http.Request, filePath string) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.Error(w, "Log file not found: "+filepath.Base(filePath), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filePath)
}
