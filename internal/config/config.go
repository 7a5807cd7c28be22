// internal/config/config.go
//
// Runtime configuration from the environment (and an optional .env file).
//
// Environment variables:
//   LOG_LEVEL=info              zerolog level
//   PORT=5175                   HTTP listen port
//   DB_PATH=                    SQLite file; empty keeps everything in memory
//   WORD_LENGTH=5               session word length (1..8)
//   WORDS_ANSWERS_FILE=         answer list; see words.Open for the fallbacks
//   WORDS_ALLOWED_FILE=         allowed-guess list
//   WORDS_STRICT=false          fail on malformed list lines instead of dropping them
//   SCORE_WORKERS=0             scoring pool size; 0 = GOMAXPROCS
//   FILTER_IMPL=lanes           candidate filter: lanes | scalar
//   SCORE_TIMEOUT=30s           upper bound on one HTTP scoring pass
//   TOP_K=10                    default ranking length
//   MAX_TURNS=6                 turns per session; -1 = unlimited
//   JWT_SECRET, JWT_EXPIRES_DAYS=14, COOKIE_NAME=wordle_token, SECURE_COOKIES=false
//   CLIENT_ORIGIN=http://localhost:5173
//   DAILY_SALT                  HMAC key for the daily answer
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/solver/internal/filter"
	"github.com/robalobadob/wordle/apps/solver/internal/word"
)

const devSecret = "dev_secret_change_me"

// Config is the fully parsed environment.
type Config struct {
	LogLevel zerolog.Level
	Port     string
	DBPath   string

	WordLength  int
	AnswersFile string
	AllowedFile string
	WordsStrict bool

	ScoreWorkers int
	Filter       filter.Kind
	ScoreTimeout time.Duration
	TopK         int
	MaxTurns     int

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	SecureCookies  bool
	ClientOrigin   string
	DailySalt      string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv parses the process environment without touching .env.
func FromEnv() (*Config, error) {
	c := &Config{
		Port:         getEnv("PORT", "5175"),
		DBPath:       os.Getenv("DB_PATH"),
		AnswersFile:  os.Getenv("WORDS_ANSWERS_FILE"),
		AllowedFile:  os.Getenv("WORDS_ALLOWED_FILE"),
		JWTSecret:    getEnv("JWT_SECRET", devSecret),
		CookieName:   getEnv("COOKIE_NAME", "wordle_token"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DailySalt:    getEnv("DAILY_SALT", "wordle-solver"),
	}

	var err error
	if c.LogLevel, err = zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.WordLength, err = intEnv("WORD_LENGTH", word.DefaultLength); err != nil {
		return nil, err
	}
	if err := word.CheckLength(c.WordLength); err != nil {
		return nil, fmt.Errorf("WORD_LENGTH: %w", err)
	}
	if c.WordsStrict, err = boolEnv("WORDS_STRICT", false); err != nil {
		return nil, err
	}
	if c.ScoreWorkers, err = intEnv("SCORE_WORKERS", 0); err != nil {
		return nil, err
	}
	if c.Filter, err = filter.Parse(getEnv("FILTER_IMPL", string(filter.KindLanes))); err != nil {
		return nil, fmt.Errorf("FILTER_IMPL: %w", err)
	}
	if c.ScoreTimeout, err = time.ParseDuration(getEnv("SCORE_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("SCORE_TIMEOUT: %w", err)
	}
	if c.TopK, err = intEnv("TOP_K", 10); err != nil {
		return nil, err
	}
	if c.MaxTurns, err = intEnv("MAX_TURNS", 6); err != nil {
		return nil, err
	}
	if c.JWTExpiresDays, err = intEnv("JWT_EXPIRES_DAYS", 14); err != nil {
		return nil, err
	}
	if c.SecureCookies, err = boolEnv("SECURE_COOKIES", false); err != nil {
		return nil, err
	}
	return c, nil
}

// DevSecret reports whether the JWT secret is the built-in development value.
func (c *Config) DevSecret() bool { return c.JWTSecret == devSecret }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intEnv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func boolEnv(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
