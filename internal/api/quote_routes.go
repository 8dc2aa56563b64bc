package api

import (
	"net/http"
	"strings"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
)

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	store := s.pipeline.Store()
	snap := store.Snapshot()

	out := make([]models.Quote, 0, len(snap))
	for _, sym := range store.Symbols() {
		if q, ok := snap.Quote(sym); ok {
			out = append(out, q)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	q, ok := s.pipeline.Store().Quote(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, "no quote for "+symbol)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// handlePrices returns the same frame the board renders.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.Frame(s.now()))
}
