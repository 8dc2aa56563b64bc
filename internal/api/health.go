package api

import (
	"net/http"

	"github.com/AurifyAE/Honor-TV-View/internal/db"
	"github.com/AurifyAE/Honor-TV-View/internal/pipeline"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`
	Pipeline  pipeline.Stats `json:"pipeline"`
}

type healthServices struct {
	Feed     string `json:"feed"`
	Database string `json:"database"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	feed := "connected"
	status := "ok"
	if !s.pipeline.Connected() {
		feed = "disconnected"
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    status,
		Timestamp: s.now().UTC().Format("2006-01-02T15:04:05Z07:00"),
		Services: healthServices{
			Feed:     feed,
			Database: db.Status(r.Context(), s.pool),
		},
		Pipeline: s.pipeline.Stats(),
	})
}
