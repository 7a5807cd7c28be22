package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/robalobadob/wordle/apps/solver/internal/game"
	"github.com/robalobadob/wordle/apps/solver/internal/store"
)

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string              `json:"date"`
	Top  []store.DailyResult `json:"top"`
}

// handleLeaderboard returns the leaderboard for ?date= (default today, UTC).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = game.DateKey(time.Now())
	} else if _, err := game.ParseDateKey(date); err != nil {
		fail(w, r, fmt.Errorf("%w: date must be YYYY-MM-DD", errBadRequest))
		return
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		fail(w, r, err)
		return
	}
	rows, err := s.store.DailyLeaderboard(r.Context(), date, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
