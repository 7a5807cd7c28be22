package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/robalobadob/wordle/apps/solver/internal/config"
	"github.com/robalobadob/wordle/apps/solver/internal/filter"
	"github.com/robalobadob/wordle/apps/solver/internal/game"
	"github.com/robalobadob/wordle/apps/solver/internal/store"
	"github.com/robalobadob/wordle/apps/solver/internal/words"
)

var testAnswers = []string{"crane", "slate", "humph", "those", "horse", "arose", "abbey", "pound", "dowdy", "music"}

const testSalt = "salt"

func newTestServer(t *testing.T) (*Server, *words.Dictionary) {
	t.Helper()
	answers, err := words.New(testAnswers, 5)
	if err != nil {
		t.Fatal(err)
	}
	extra, err := words.New([]string{"adieu", "roate"}, 5)
	if err != nil {
		t.Fatal(err)
	}
	dict := &words.Dictionary{Answers: answers, Allowed: answers.Union(extra)}
	cfg := &config.Config{
		WordLength:     5,
		Filter:         filter.KindLanes,
		ScoreTimeout:   10 * time.Second,
		TopK:           3,
		MaxTurns:       6,
		JWTSecret:      "test-secret",
		JWTExpiresDays: 1,
		CookieName:     "tok",
		ClientOrigin:   "http://client.test",
		DailySalt:      testSalt,
	}
	return New(cfg, dict, store.NewMemoryStore()), dict
}

type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	return c.doCtx(context.Background(), method, path, body)
}

func (c *client) doCtx(ctx context.Context, method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(ctx)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status %d, want %d: %s", rec.Code, status, rec.Body.String())
	}
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %T: %v (%s)", v, err, rec.Body.String())
	}
	return v
}

func TestDiagnostics(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, h: s.Router()}

	expect(t, c.do(http.MethodGet, "/health", nil), http.StatusOK)

	rec := c.do(http.MethodGet, "/debug/words", nil)
	expect(t, rec, http.StatusOK)
	stats := decodeAs[map[string]int](t, rec)
	if stats["answers"] != 10 || stats["allowed"] != 12 || stats["length"] != 5 {
		t.Errorf("stats = %v", stats)
	}

	rec = c.do(http.MethodGet, "/nope", nil)
	expect(t, rec, http.StatusNotFound)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type %q", ct)
	}

	rec = c.do(http.MethodOptions, "/sessions", nil)
	expect(t, rec, http.StatusNoContent)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://client.test" {
		t.Errorf("allow origin %q", got)
	}
}

func TestAssistSession(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, h: s.Router()}

	rec := c.do(http.MethodPost, "/sessions", nil)
	expect(t, rec, http.StatusCreated)
	v := decodeAs[game.View](t, rec)
	if v.Mode != game.ModeAssist || v.State != game.StatePlaying || v.MaxTurns != 6 {
		t.Fatalf("view = %+v", v)
	}
	base := "/sessions/" + v.ID

	rec = c.do(http.MethodPost, base+"/feedback", turnReq{Guess: "crane", Reply: "bbbbb"})
	expect(t, rec, http.StatusOK)
	tr := decodeAs[turnRes](t, rec)
	if tr.Reply != "bbbbb" || tr.Candidates != 2 || tr.State != game.StatePlaying || len(tr.Session.Turns) != 1 {
		t.Fatalf("turn = %+v", tr)
	}
	if tr.Tags[0] != "black" {
		t.Errorf("tags = %v", tr.Tags)
	}

	rec = c.do(http.MethodGet, base+"/candidates", nil)
	expect(t, rec, http.StatusOK)
	cands := decodeAs[struct {
		Count int      `json:"count"`
		Words []string `json:"words"`
	}](t, rec)
	if cands.Count != 2 || len(cands.Words) != 2 || cands.Words[0] != "humph" || cands.Words[1] != "dowdy" {
		t.Fatalf("candidates = %+v", cands)
	}
	rec = c.do(http.MethodGet, base+"/candidates?limit=1", nil)
	expect(t, rec, http.StatusOK)

	// rejected turns leave the session alone
	expect(t, c.do(http.MethodPost, base+"/feedback", turnReq{Guess: "crane", Reply: "bbxbb"}), http.StatusBadRequest)
	expect(t, c.do(http.MethodPost, base+"/feedback", turnReq{Guess: "cran", Reply: "bbbbb"}), http.StatusBadRequest)
	expect(t, c.do(http.MethodPost, base+"/guess", turnReq{Guess: "crane"}), http.StatusConflict)

	rec = c.do(http.MethodGet, base, nil)
	expect(t, rec, http.StatusOK)
	if v := decodeAs[game.View](t, rec); len(v.Turns) != 1 {
		t.Fatalf("turns = %v", v.Turns)
	}

	expect(t, c.do(http.MethodGet, "/sessions/missing", nil), http.StatusNotFound)
	expect(t, c.do(http.MethodPost, "/sessions", map[string]any{"mode": "hard"}), http.StatusBadRequest)
	expect(t, c.do(http.MethodPost, "/sessions", map[string]any{"length": 6}), http.StatusBadRequest)
}

func TestPracticeSession(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, h: s.Router()}

	rec := c.do(http.MethodPost, "/sessions", map[string]any{"mode": "practice", "answer": "slate"})
	expect(t, rec, http.StatusCreated)
	v := decodeAs[game.View](t, rec)
	if v.Answer != "" {
		t.Fatalf("answer revealed while playing: %+v", v)
	}
	base := "/sessions/" + v.ID

	rec = c.do(http.MethodPost, base+"/guess", turnReq{Guess: "crane"})
	expect(t, rec, http.StatusOK)
	if tr := decodeAs[turnRes](t, rec); tr.Reply != "bbgbg" || tr.State != game.StatePlaying {
		t.Fatalf("turn = %+v", tr)
	}

	expect(t, c.do(http.MethodPost, base+"/guess", turnReq{Guess: "zzzzz"}), http.StatusBadRequest)
	expect(t, c.do(http.MethodPost, base+"/feedback", turnReq{Guess: "slate", Reply: "ggggg"}), http.StatusConflict)

	rec = c.do(http.MethodPost, base+"/guess", turnReq{Guess: "SLATE"})
	expect(t, rec, http.StatusOK)
	tr := decodeAs[turnRes](t, rec)
	if tr.State != game.StateWon || tr.Session.Answer != "slate" {
		t.Fatalf("turn = %+v", tr)
	}
	expect(t, c.do(http.MethodPost, base+"/guess", turnReq{Guess: "crane"}), http.StatusConflict)
}

func TestPracticeSession_Lost(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, h: s.Router()}

	rec := c.do(http.MethodPost, "/sessions", map[string]any{"mode": "practice", "answer": "slate", "maxTurns": 1})
	expect(t, rec, http.StatusCreated)
	v := decodeAs[game.View](t, rec)

	rec = c.do(http.MethodPost, "/sessions/"+v.ID+"/guess", turnReq{Guess: "crane"})
	expect(t, rec, http.StatusOK)
	if tr := decodeAs[turnRes](t, rec); tr.State != game.StateLost || tr.Session.Answer != "slate" {
		t.Fatalf("turn = %+v", tr)
	}
}

func TestRank(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, h: s.Router()}

	rec := c.do(http.MethodPost, "/sessions", nil)
	expect(t, rec, http.StatusCreated)
	base := "/sessions/" + decodeAs[game.View](t, rec).ID

	rec = c.do(http.MethodGet, base+"/rank?metric=green&k=2", nil)
	expect(t, rec, http.StatusOK)
	res := decodeAs[rankRes](t, rec)
	if res.Metric != "green" || res.Candidates != 10 || res.Scored != 12 || len(res.Entries) != 2 {
		t.Fatalf("rank = %+v", res)
	}
	if res.Entries[0].Record.Green < res.Entries[1].Record.Green {
		t.Errorf("entries out of order: %+v", res.Entries)
	}

	rec = c.do(http.MethodGet, base+"/rank", nil)
	expect(t, rec, http.StatusOK)
	if res := decodeAs[rankRes](t, rec); res.Metric != "information" || len(res.Entries) != 3 {
		t.Fatalf("default rank = %+v", res)
	}

	expect(t, c.do(http.MethodGet, base+"/rank?metric=luck", nil), http.StatusBadRequest)
	expect(t, c.do(http.MethodGet, base+"/rank?k=ten", nil), http.StatusBadRequest)
}

func TestScore(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, h: s.Router()}

	body := map[string]any{
		"turns":  []game.Turn{{Guess: "crane", Reply: "bbbbb"}},
		"metric": "rejected",
		"k":      1,
	}
	rec := c.do(http.MethodPost, "/score", body)
	expect(t, rec, http.StatusOK)
	res := decodeAs[rankRes](t, rec)
	if res.Candidates != 2 || res.Scored != 12 || len(res.Entries) != 1 {
		t.Fatalf("score = %+v", res)
	}

	rec = c.do(http.MethodPost, "/score", map[string]any{
		"dictionary": []string{"humph", "dowdy"},
		"active":     []string{"humph", "dowdy"},
		"k":          0,
	})
	expect(t, rec, http.StatusOK)
	if res := decodeAs[rankRes](t, rec); res.Scored != 2 || len(res.Entries) != 2 {
		t.Fatalf("explicit lists = %+v", res)
	}

	bad := []map[string]any{
		{"turns": []game.Turn{{Guess: "crane", Reply: "gg"}}},
		{"turns": []game.Turn{{Guess: "cranes", Reply: "bbbbb"}}},
		{"active": []string{"toolong"}},
		{"metric": "luck"},
	}
	for _, b := range bad {
		expect(t, c.do(http.MethodPost, "/score", b), http.StatusBadRequest)
	}
}

func TestScore_Cancelled(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, h: s.Router()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := c.doCtx(ctx, http.MethodPost, "/score", map[string]any{})
	expect(t, rec, http.StatusServiceUnavailable)
}

func signup(t *testing.T, c *client, username string) {
	t.Helper()
	rec := c.do(http.MethodPost, "/auth/signup", credentials{Username: username, Password: "password1"})
	expect(t, rec, http.StatusCreated)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "tok" {
			c.cookie = ck
		}
	}
	if c.cookie == nil {
		t.Fatal("no auth cookie")
	}
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, h: s.Router()}
	signup(t, c, "alice")

	rec := c.do(http.MethodGet, "/auth/me", nil)
	expect(t, rec, http.StatusOK)
	if me := decodeAs[authUser](t, rec); me.Username != "alice" {
		t.Fatalf("me = %+v", me)
	}

	anon := &client{t: t, h: s.Router()}
	expect(t, anon.do(http.MethodPost, "/auth/signup", credentials{Username: "ALICE", Password: "password1"}), http.StatusConflict)
	expect(t, anon.do(http.MethodPost, "/auth/signup", credentials{Username: "bob", Password: "short"}), http.StatusBadRequest)
	expect(t, anon.do(http.MethodPost, "/auth/signup", credentials{Username: "b o b", Password: "password1"}), http.StatusBadRequest)
	expect(t, anon.do(http.MethodPost, "/auth/login", credentials{Username: "alice", Password: "wrong-password"}), http.StatusUnauthorized)
	expect(t, anon.do(http.MethodPost, "/auth/login", credentials{Username: "alice", Password: "password1"}), http.StatusOK)
	expect(t, anon.do(http.MethodGet, "/auth/me", nil), http.StatusUnauthorized)
	expect(t, anon.do(http.MethodGet, "/sessions/mine", nil), http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+c.cookie.Value)
	bearer := httptest.NewRecorder()
	s.Router().ServeHTTP(bearer, req)
	expect(t, bearer, http.StatusOK)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	garbage := httptest.NewRecorder()
	s.Router().ServeHTTP(garbage, req)
	expect(t, garbage, http.StatusUnauthorized)

	// owned sessions are private
	rec = c.do(http.MethodPost, "/sessions", nil)
	expect(t, rec, http.StatusCreated)
	id := decodeAs[game.View](t, rec).ID
	expect(t, c.do(http.MethodGet, "/sessions/"+id, nil), http.StatusOK)
	expect(t, anon.do(http.MethodGet, "/sessions/"+id, nil), http.StatusNotFound)

	rec = c.do(http.MethodGet, "/sessions/mine", nil)
	expect(t, rec, http.StatusOK)
	if mine := decodeAs[[]game.View](t, rec); len(mine) != 1 || mine[0].ID != id {
		t.Fatalf("mine = %+v", mine)
	}

	rec = c.do(http.MethodPost, "/auth/logout", nil)
	expect(t, rec, http.StatusOK)
	if cks := rec.Result().Cookies(); len(cks) != 1 || cks[0].MaxAge >= 0 {
		t.Fatalf("logout cookies = %+v", cks)
	}
}

func TestDaily(t *testing.T) {
	s, dict := newTestServer(t)
	c := &client{t: t, h: s.Router()}
	signup(t, c, "carol")

	rec := c.do(http.MethodPost, "/sessions", map[string]any{"mode": "daily"})
	expect(t, rec, http.StatusCreated)
	v := decodeAs[game.View](t, rec)
	day, err := game.ParseDateKey(v.Date)
	if err != nil {
		t.Fatalf("date %q: %v", v.Date, err)
	}
	answer := game.DailyAnswer(dict.Answers.Words(), day, testSalt)

	rec = c.do(http.MethodPost, "/sessions/"+v.ID+"/guess", turnReq{Guess: answer})
	expect(t, rec, http.StatusOK)
	if tr := decodeAs[turnRes](t, rec); tr.State != game.StateWon {
		t.Fatalf("turn = %+v", tr)
	}

	rec = c.do(http.MethodGet, "/stats/me", nil)
	expect(t, rec, http.StatusOK)
	stats := decodeAs[map[string]any](t, rec)
	if stats["gamesPlayed"] != float64(1) || stats["wins"] != float64(1) || stats["streak"] != float64(1) {
		t.Fatalf("stats = %v", stats)
	}

	rec = c.do(http.MethodGet, "/daily/leaderboard?date="+v.Date, nil)
	expect(t, rec, http.StatusOK)
	lb := decodeAs[lbRes](t, rec)
	if len(lb.Top) != 1 || lb.Top[0].Guesses != 1 || !lb.Top[0].Won || lb.Top[0].SessionID != v.ID {
		t.Fatalf("leaderboard = %+v", lb)
	}

	expect(t, c.do(http.MethodPost, "/sessions", map[string]any{"mode": "daily"}), http.StatusConflict)
	expect(t, c.do(http.MethodGet, "/daily/leaderboard?date=yesterday", nil), http.StatusBadRequest)
}

func TestStatusFor(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want int
	}{
		{fmt.Errorf("save: %w", store.ErrConflict), http.StatusConflict},
		{store.ErrUsernameTaken, http.StatusConflict},
		{store.ErrNotFound, http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	} {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
