// internal/httpserver/sessions.go
//
// Session endpoints.
//   - POST /sessions                  → start a session {mode, answer?, length?, maxTurns?}
//   - GET  /sessions/mine             → the caller's recent sessions (auth required)
//   - GET  /sessions/{id}             → session view
//   - POST /sessions/{id}/feedback    → assist: {guess, reply}
//   - POST /sessions/{id}/guess       → practice/daily: {guess}
//   - GET  /sessions/{id}/candidates  → answers still consistent with every turn
//   - GET  /sessions/{id}/rank        → scoring pass over the allowed list (?metric=&k=)
//
// Sessions owned by a user are only visible to that user; guest sessions are
// reachable by anyone holding the ID.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/solver/internal/constraint"
	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
	"github.com/robalobadob/wordle/apps/solver/internal/game"
	"github.com/robalobadob/wordle/apps/solver/internal/scorer"
	"github.com/robalobadob/wordle/apps/solver/internal/store"
)

func (s *Server) mountSessionRoutes() {
	s.r.Route("/sessions", func(r chi.Router) {
		r.With(s.requireAuth()).Get("/mine", s.handleMine)

		r.Group(func(r chi.Router) {
			r.Use(s.withOptionalAuth())
			r.Post("/", s.handleNewSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Post("/feedback", s.handleFeedback)
				r.Post("/guess", s.handleGuess)
				r.Get("/candidates", s.handleCandidates)
				r.Get("/rank", s.handleRank)
			})
		})
	})
}

type newSessionReq struct {
	Mode     string `json:"mode"`     // assist | practice | daily
	Answer   string `json:"answer"`   // practice only: fixed answer (testing)
	Length   int    `json:"length"`   // optional; must match the loaded dictionary
	MaxTurns int    `json:"maxTurns"` // optional; -1 = unlimited
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionReq
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		fail(w, r, err)
		return
	}
	length := s.dict.Answers.Length()
	if req.Length != 0 && req.Length != length {
		fail(w, r, fmt.Errorf("%w: length %d not available, words have %d letters", errBadRequest, req.Length, length))
		return
	}
	maxTurns := req.MaxTurns
	if maxTurns == 0 {
		maxTurns = s.cfg.MaxTurns
	}

	opts := game.Options{Mode: mode, Length: length, MaxTurns: maxTurns, Salt: s.cfg.DailySalt}
	if mode == game.ModePractice {
		opts.Answer = req.Answer
	}
	if me := currentUser(r); me != nil {
		opts.Owner = me.ID
		if mode == game.ModeDaily {
			played, err := s.store.DailyPlayed(r.Context(), me.ID, game.DateKey(time.Now()))
			if err != nil {
				fail(w, r, err)
				return
			}
			if played {
				fail(w, r, errDailyPlayed)
				return
			}
		}
	}

	g, err := game.New(opts, s.dict.Answers.Words())
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		fail(w, r, err)
		return
	}
	log.Info().Str("session", g.ID).Str("mode", string(mode)).Str("owner", opts.Owner).Msg("session created")
	writeJSON(w, http.StatusCreated, g.View())
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		fail(w, r, err)
		return
	}
	views, err := s.store.ListByOwner(r.Context(), currentUser(r).ID, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// session loads the {id} session, hiding sessions owned by someone else.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil && g.Owner != "" {
		if me := currentUser(r); me == nil || me.ID != g.Owner {
			err = store.ErrNotFound
		}
	}
	if err != nil {
		fail(w, r, err)
		return nil, false
	}
	return g, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	g, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.View())
}

type turnReq struct {
	Guess string `json:"guess"`
	Reply string `json:"reply"`
}

type turnRes struct {
	Reply      string    `json:"reply"` // g/y/b notation
	Tags       []string  `json:"tags"`  // green | yellow | black per position
	State      string    `json:"state"`
	Candidates int       `json:"candidates"`
	Session    game.View `json:"session"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	s.handleTurn(w, r, func(g *game.Session, req turnReq) (feedback.Response, error) {
		return g.ApplyFeedback(req.Guess, req.Reply)
	})
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	s.handleTurn(w, r, func(g *game.Session, req turnReq) (feedback.Response, error) {
		return g.ApplyGuess(req.Guess, s.dict.Allowed)
	})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request, apply func(*game.Session, turnReq) (feedback.Response, error)) {
	g, ok := s.session(w, r)
	if !ok {
		return
	}
	var req turnReq
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	resp, err := apply(g, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		fail(w, r, err)
		return
	}
	v := g.View()
	if v.State != game.StatePlaying {
		s.recordFinish(r.Context(), g.Owner, v)
	}

	tags := make([]string, 0, resp.Len())
	for _, t := range resp.Tags() {
		tags = append(tags, t.String())
	}
	writeJSON(w, http.StatusOK, turnRes{
		Reply:      resp.String(),
		Tags:       tags,
		State:      v.State,
		Candidates: len(g.Candidates(s.dict.Answers.Words(), s.filter)),
		Session:    v,
	})
}

// recordFinish updates the owner's stats and the daily table (best effort,
// non-fatal if it fails). It runs once per session: turns on a finished
// session are rejected before reaching here.
func (s *Server) recordFinish(ctx context.Context, owner string, v game.View) {
	if owner == "" {
		return
	}
	won := v.State == game.StateWon
	if err := s.store.BumpStats(ctx, owner, won); err != nil {
		log.Warn().Err(err).Str("user", owner).Msg("bump stats")
	}
	if v.Mode != game.ModeDaily {
		return
	}
	err := s.store.RecordDaily(ctx, store.DailyResult{
		UserID:    owner,
		Date:      v.Date,
		SessionID: v.ID,
		Guesses:   len(v.Turns),
		Won:       won,
	})
	if err != nil {
		log.Warn().Err(err).Str("user", owner).Str("date", v.Date).Msg("record daily result")
	}
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	g, ok := s.session(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		fail(w, r, err)
		return
	}
	c := g.Constraint()
	ws := s.filter.Filter(s.dict.Answers.Words(), c)
	count := len(ws)
	if limit > 0 && limit < count {
		ws = ws[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      count,
		"words":      ws,
		"constraint": c.String(),
	})
}

type rankRes struct {
	Metric     scorer.Metric  `json:"metric"`
	Candidates int            `json:"candidates"`
	Scored     int            `json:"scored"`
	Elapsed    string         `json:"elapsed"`
	Entries    []scorer.Entry `json:"entries"`
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	g, ok := s.session(w, r)
	if !ok {
		return
	}
	m, err := parseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		fail(w, r, err)
		return
	}
	k, err := queryInt(r, "k", s.cfg.TopK)
	if err != nil {
		fail(w, r, err)
		return
	}
	res, err := s.rank(r.Context(), s.dict.Allowed.Words(), nil, g.Constraint(), m, k)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseMetric defaults to information.
func parseMetric(name string) (scorer.Metric, error) {
	if name == "" {
		return scorer.MetricInformation, nil
	}
	m, err := scorer.ParseMetric(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return m, nil
}

// rank runs one scoring pass bounded by SCORE_TIMEOUT. A nil active set means
// the answers that satisfy base.
func (s *Server) rank(ctx context.Context, dictionary, active []string, base constraint.Constraint, m scorer.Metric, k int) (rankRes, error) {
	if active == nil {
		active = s.filter.Filter(s.dict.Answers.Words(), base)
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ScoreTimeout)
	defer cancel()

	start := time.Now()
	entries, err := s.scorer.Score(ctx, dictionary, active, base)
	if err != nil {
		return rankRes{}, err
	}
	elapsed := time.Since(start)
	log.Info().
		Int("dictionary", len(dictionary)).
		Int("active", len(active)).
		Str("metric", string(m)).
		Dur("elapsed", elapsed).
		Msg("ranked guesses")
	return rankRes{
		Metric:     m,
		Candidates: len(active),
		Scored:     len(entries),
		Elapsed:    elapsed.String(),
		Entries:    scorer.Rank(entries, m, k),
	}, nil
}
