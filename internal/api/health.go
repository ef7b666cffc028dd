package api

import (
	"net/http"
	"time"

	"codeatlas/internal/version"
)

// handleHealth reports process liveness. It never touches the snapshot.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, map[string]interface{}{
		"status":  "ok",
		"version": version.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleReady reports readiness: a snapshot must be present, from this
// process or restored from disk. While only a scan is missing the status is
// 503 so the dashboard can prompt for one.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Current()
	if snap == nil {
		WriteJSON(w, map[string]interface{}{
			"status":   "waiting",
			"ready":    false,
			"scanning": s.store.Scanning(),
			"reason":   "no snapshot yet; POST /scan to analyze the tree",
		}, http.StatusServiceUnavailable)
		return
	}

	WriteJSON(w, map[string]interface{}{
		"status":      "ok",
		"ready":       true,
		"scanning":    s.store.Scanning(),
		"snapshot":    snap.ID,
		"scanned_at":  snap.ScannedAt.Format(time.RFC3339),
		"total_files": snap.Stats.TotalFiles,
	}, http.StatusOK)
}
