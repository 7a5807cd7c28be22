// main.go
//
// Entrypoint. Subcommands:
//   serve (default)  HTTP API; configuration from the environment (.env honoured)
//   solve            interactive terminal solver
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/solver/internal/config"
	"github.com/robalobadob/wordle/apps/solver/internal/filter"
	"github.com/robalobadob/wordle/apps/solver/internal/httpserver"
	"github.com/robalobadob/wordle/apps/solver/internal/repl"
	"github.com/robalobadob/wordle/apps/solver/internal/scorer"
	"github.com/robalobadob/wordle/apps/solver/internal/store"
	"github.com/robalobadob/wordle/apps/solver/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve":
		err = serve(cfg, args)
	case "solve":
		err = solve(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want serve or solve)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("exited")
	}
}

func serve(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", cfg.Port, "listen port")
	dbPath := fs.String("db", cfg.DBPath, "SQLite file (empty = in memory)")
	_ = fs.Parse(args)

	if cfg.DevSecret() {
		log.Warn().Msg("JWT_SECRET not set; using the development secret")
	}
	dict, err := words.Open(words.Source{
		AnswersFile: cfg.AnswersFile,
		AllowedFile: cfg.AllowedFile,
		Length:      cfg.WordLength,
		Strict:      cfg.WordsStrict,
	})
	if err != nil {
		return fmt.Errorf("load word lists: %w", err)
	}

	var backend store.Backend
	if *dbPath == "" {
		backend = store.NewMemoryStore()
	} else if backend, err = store.OpenSQLite(*dbPath); err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer backend.Close()

	srv := httpserver.New(cfg, dict, backend)
	log.Info().Str("port", *port).Str("db", *dbPath).Str("filter", string(cfg.Filter)).Msg("starting solver server")
	return srv.Start(":" + *port)
}

func solve(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	length := fs.Int("length", cfg.WordLength, "word length")
	answers := fs.String("answers", cfg.AnswersFile, "answer list file")
	allowed := fs.String("allowed", cfg.AllowedFile, "allowed-guess list file")
	filterName := fs.String("filter", string(cfg.Filter), "candidate filter: lanes | scalar")
	workers := fs.Int("workers", cfg.ScoreWorkers, "scoring workers (0 = GOMAXPROCS)")
	top := fs.Int("top", 5, "guesses shown per metric")
	metrics := fs.String("metrics", "", "comma-separated metrics (default all)")
	color := fs.Bool("color", true, "colored tiles")
	progress := fs.Bool("progress", true, "progress bar while scoring")
	_ = fs.Parse(args)

	// keep log lines readable next to the prompt
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	kind, err := filter.Parse(*filterName)
	if err != nil {
		return err
	}
	var ms []scorer.Metric
	for _, name := range strings.Split(*metrics, ",") {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		m, err := scorer.ParseMetric(name)
		if err != nil {
			return err
		}
		ms = append(ms, m)
	}
	dict, err := words.Open(words.Source{
		AnswersFile: *answers,
		AllowedFile: *allowed,
		Length:      *length,
		Strict:      cfg.WordsStrict,
	})
	if err != nil {
		return fmt.Errorf("load word lists: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := repl.New(repl.Options{
		In:       os.Stdin,
		Out:      os.Stdout,
		Dict:     dict,
		Filter:   kind,
		Workers:  *workers,
		TopK:     *top,
		Metrics:  ms,
		Color:    *color,
		Progress: *progress,
	})
	if err != nil {
		return err
	}
	err = r.Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
