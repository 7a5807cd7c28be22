// internal/store/sqlite.go
//
// SQLite Backend.
// Responsibilities:
//   - Open the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Apply the embedded migrations on open.
//   - Persist sessions as a header row plus one row per turn.
//   - Reject a Save whose turns no longer extend the stored ones (ErrConflict).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/robalobadob/wordle/apps/solver/internal/game"
)

// timeLayout has fixed-width fractions so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) a SQLite database and migrates it.
func OpenSQLite(dsn string) (Backend, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func (s *sqliteStore) Save(ctx context.Context, g *game.Session) error {
	v := g.View()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stored, err := storedTurns(ctx, tx, v.ID)
	if err != nil {
		return err
	}
	if err := extends(v.ID, stored, v.Turns); err != nil {
		return err
	}

	var owner any
	if g.Owner != "" {
		owner = g.Owner
	}
	_, err = tx.ExecContext(ctx, `
        INSERT INTO sessions (id, owner_id, mode, length, max_turns, answer, date, finished, won, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            owner_id = excluded.owner_id,
            finished = excluded.finished,
            won      = excluded.won`,
		v.ID, owner, string(v.Mode), v.Length, v.MaxTurns, g.Answer, v.Date,
		v.State != game.StatePlaying, v.State == game.StateWon, v.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", v.ID, err)
	}

	for i := len(stored); i < len(v.Turns); i++ {
		t := v.Turns[i]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO turns (session_id, seq, guess, reply) VALUES (?, ?, ?, ?)`,
			v.ID, i, t.Guess, t.Reply,
		)
		var se sqlite3.Error
		if errors.As(err, &se) && (se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
			return fmt.Errorf("%w: session %s turn %d already stored", ErrConflict, v.ID, i)
		}
		if err != nil {
			return fmt.Errorf("save turn %d of %s: %w", i, v.ID, err)
		}
	}
	return tx.Commit()
}

func storedTurns(ctx context.Context, tx *sql.Tx, id string) ([]game.Turn, error) {
	rows, err := tx.QueryContext(ctx, `SELECT guess, reply FROM turns WHERE session_id=? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Turn
	for rows.Next() {
		var t game.Turn
		if err := rows.Scan(&t.Guess, &t.Reply); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*game.Session, error) {
	var (
		g       game.Session
		owner   sql.NullString
		mode    string
		created string
	)
	err := s.db.QueryRowContext(ctx, `
        SELECT id, owner_id, mode, length, max_turns, answer, date, created_at
        FROM sessions WHERE id=?`, id,
	).Scan(&g.ID, &owner, &mode, &g.Length, &g.MaxTurns, &g.Answer, &g.Date, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	g.Owner = owner.String
	g.Mode = game.Mode(mode)
	g.CreatedAt = parseTime(created)

	rows, err := s.db.QueryContext(ctx, `SELECT guess, reply FROM turns WHERE session_id=? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	g.Turns = []game.Turn{}
	for rows.Next() {
		var t game.Turn
		if err := rows.Scan(&t.Guess, &t.Reply); err != nil {
			return nil, err
		}
		g.Turns = append(g.Turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := g.Replay(); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *sqliteStore) ListByOwner(ctx context.Context, owner string, limit int) ([]game.View, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id FROM sessions WHERE owner_id=?
        ORDER BY created_at DESC, id ASC LIMIT ?`, owner, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	out := make([]game.View, 0, len(ids))
	for _, id := range ids {
		g, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, g.View())
	}
	return out, nil
}

// ------------------------------- users -------------------------------------

func (s *sqliteStore) CreateUser(ctx context.Context, id, username, hash string) (*User, error) {
	now := time.Now().UTC().Truncate(time.Second)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		id, username, hash, now.Format(time.RFC3339))
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	return &User{ID: id, Username: username, PasswordHash: hash, CreatedAt: now}, nil
}

func (s *sqliteStore) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, wins, streak
	                      FROM users WHERE lower(username)=lower(?)`, username)
	return scanUser(row)
}

func (s *sqliteStore) FindUserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, wins, streak
	                      FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.Wins, &u.Streak)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}

func (s *sqliteStore) BumpStats(ctx context.Context, id string, won bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var gp, wins, streak int
	err = tx.QueryRowContext(ctx, `SELECT games_played, wins, streak FROM users WHERE id=?`, id).Scan(&gp, &wins, &streak)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET games_played=?, wins=?, streak=? WHERE id=?`, gp, wins, streak, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ------------------------------- daily -------------------------------------

func (s *sqliteStore) DailyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`, userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

func (s *sqliteStore) RecordDaily(ctx context.Context, r DailyResult) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO daily_results (user_id, date, session_id, guesses, won, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, r.Date, r.SessionID, r.Guesses, r.Won, r.CreatedAt.UTC().Format(timeLayout),
	)
	return err
}

func (s *sqliteStore) DailyLeaderboard(ctx context.Context, date string, limit int) ([]DailyResult, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT user_id, date, session_id, guesses, won, created_at
        FROM daily_results
        WHERE date=?
        ORDER BY won DESC, guesses ASC, created_at ASC, user_id ASC
        LIMIT ?`, date, clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DailyResult{}
	for rows.Next() {
		var r DailyResult
		var created string
		if err := rows.Scan(&r.UserID, &r.Date, &r.SessionID, &r.Guesses, &r.Won, &created); err != nil {
			return nil, err
		}
		r.CreatedAt = parseTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// parseTime accepts RFC3339 with or without fractional seconds; bad input yields the zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
