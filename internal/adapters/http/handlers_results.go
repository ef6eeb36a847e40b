package web

import (
	"net/http"

	"doubles/internal/application/orchestrators"
	"doubles/internal/domain/session"
)

// handleRecordResults stores team assignments and set scores for a session.
// The full teams and scores structures replace whatever was recorded before.
func handleRecordResults(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Teams  session.Teams  `json:"teams"`
		Scores session.Scores `json:"scores"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	deps := orchestrators.RecordResultsDeps{Store: app.Store, Board: app.Board}
	input := orchestrators.RecordResultsInput{
		SessionID: r.PathValue("id"),
		Teams:     req.Teams,
		Scores:    req.Scores,
	}
	if err := orchestrators.ExecuteRecordResults(r.Context(), input, deps); err != nil {
		intentError(w, err)
		return
	}
	writeBoard(w)
}
