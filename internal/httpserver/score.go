package httpserver

import (
	"net/http"

	"github.com/robalobadob/wordle/apps/solver/internal/constraint"
	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
	"github.com/robalobadob/wordle/apps/solver/internal/game"
)

// scoreReq is the payload for POST /score. Dictionary defaults to the allowed
// list; Active defaults to the answers consistent with Turns.
type scoreReq struct {
	Turns      []game.Turn `json:"turns"`
	Metric     string      `json:"metric"`
	K          *int        `json:"k"`
	Dictionary []string    `json:"dictionary"`
	Active     []string    `json:"active"`
}

// handleScore ranks guesses for a board described entirely by the request.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreReq
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	m, err := parseMetric(req.Metric)
	if err != nil {
		fail(w, r, err)
		return
	}
	k := s.cfg.TopK
	if req.K != nil {
		k = *req.K
	}

	length := s.dict.Answers.Length()
	turns := make([]constraint.Turn, 0, len(req.Turns))
	for _, t := range req.Turns {
		resp, err := feedback.Parse(t.Reply, length)
		if err != nil {
			fail(w, r, err)
			return
		}
		turns = append(turns, constraint.Turn{Guess: t.Guess, Response: resp})
	}
	base, err := constraint.Fold(turns)
	if err != nil {
		fail(w, r, err)
		return
	}

	dictionary := req.Dictionary
	if dictionary == nil {
		dictionary = s.dict.Allowed.Words()
	}
	res, err := s.rank(r.Context(), dictionary, req.Active, base, m, k)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
