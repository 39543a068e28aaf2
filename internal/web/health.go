package web

import (
	"net/http"
	"time"

	"loan-approval/internal/common/errors"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleReady reports 503 until both artifacts are loaded. The pages keep
// working either way.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.artifacts.Ready() {
		body := map[string]string{
			"status": "degraded",
			"time":   time.Now().Format(time.RFC3339),
		}
		if s.artifacts.Err != nil {
			body["code"] = string(errors.CodeOf(s.artifacts.Err))
			body["error"] = s.artifacts.Err.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"time":     time.Now().Format(time.RFC3339),
		"loadedAt": s.artifacts.LoadedAt.Format(time.RFC3339),
	})
}
