package web

import (
	"net/http"

	"doubles/internal/application/orchestrators"
)

// handleCreateSession creates a new match session for an available date
// and signs the organizer up as the first player.
func handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date      string `json:"date"`
		Time      string `json:"time"`
		Organizer string `json:"organizer"`
		Courts    int    `json:"courts"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	deps := orchestrators.CreateSessionDeps{Store: app.Store, Board: app.Board, Weekday: app.Weekday}
	input := orchestrators.CreateSessionInput{
		Date:      req.Date,
		Time:      req.Time,
		Organizer: req.Organizer,
		Courts:    req.Courts,
	}
	id, err := orchestrators.ExecuteCreateSession(r.Context(), input, deps)
	if err != nil {
		intentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleDeleteSession removes a session record permanently.
func handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	deps := orchestrators.DeleteSessionDeps{Store: app.Store, Board: app.Board}
	input := orchestrators.DeleteSessionInput{SessionID: r.PathValue("id")}
	if err := orchestrators.ExecuteDeleteSession(r.Context(), input, deps); err != nil {
		intentError(w, err)
		return
	}
	writeBoard(w)
}

// handleSignUp adds a player to the session's signup list. Whether the
// player lands on the confirmed roster or the waiting list is purely a
// function of their position relative to the player limit.
func handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	deps := orchestrators.SignUpDeps{Store: app.Store, Board: app.Board}
	input := orchestrators.SignUpInput{SessionID: r.PathValue("id"), PlayerName: req.Name}
	if err := orchestrators.ExecuteSignUp(r.Context(), input, deps); err != nil {
		intentError(w, err)
		return
	}
	writeBoard(w)
}

// handleCancelSignup removes a player from the signup list. If the player
// was confirmed, the first waiting player slides into their spot.
func handleCancelSignup(w http.ResponseWriter, r *http.Request) {
	deps := orchestrators.CancelSignupDeps{Store: app.Store, Board: app.Board}
	input := orchestrators.CancelSignupInput{
		SessionID:  r.PathValue("id"),
		PlayerName: r.PathValue("name"),
	}
	if err := orchestrators.ExecuteCancelSignup(r.Context(), input, deps); err != nil {
		intentError(w, err)
		return
	}
	writeBoard(w)
}
