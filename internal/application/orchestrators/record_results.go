package orchestrators

import (
	"context"
	"log/slog"

	"doubles/internal/adapters/recordstore"
	"doubles/internal/application/board"
	"doubles/internal/domain/session"
)

// RecordResultsInput carries input for the record-results orchestrator.
// Teams and Scores arrive wholesale from the client, so both are
// revalidated here before persisting.
type RecordResultsInput struct {
	SessionID string
	Teams     session.Teams
	Scores    session.Scores
}

// RecordResultsDeps holds dependencies for RecordResults.
type RecordResultsDeps struct {
	Store recordstore.Store
	Board *board.Board
}

// ExecuteRecordResults persists team assignments and set scores as encoded
// text fields, then reloads the board. Results are a pure annotation on the
// session: the signup list is never touched.
// PRE: every assigned player is on the confirmed roster
func ExecuteRecordResults(ctx context.Context, input RecordResultsInput, deps RecordResultsDeps) error {
	s, ok := deps.Board.Find(input.SessionID)
	if !ok {
		return ErrSessionNotFound
	}

	if err := input.Teams.Validate(); err != nil {
		return err
	}
	if err := input.Scores.Validate(); err != nil {
		return err
	}
	confirmed := make(map[string]bool)
	for _, name := range s.Confirmed() {
		confirmed[name] = true
	}
	for _, name := range input.Teams.Assigned() {
		if !confirmed[name] {
			return session.ErrPlayerNotConfirmed
		}
	}

	teamsText, err := recordstore.TeamsText(&input.Teams)
	if err != nil {
		return err
	}
	scoresText, err := recordstore.ScoresText(&input.Scores)
	if err != nil {
		return err
	}

	if err := deps.Board.Begin(); err != nil {
		return err
	}
	defer deps.Board.End()

	fields := recordstore.Fields{
		recordstore.FieldTeams:  teamsText,
		recordstore.FieldScores: scoresText,
	}
	if err := deps.Store.Update(ctx, s.ID, fields); err != nil {
		return err
	}
	slog.Info("results_recorded", "id", s.ID)

	return reload(ctx, deps.Store, deps.Board)
}
