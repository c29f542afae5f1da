package main

import (
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/klabast/wb-services/dayoff-planner/internal/app"
	"github.com/klabast/wb-services/dayoff-planner/internal/commands"
	"github.com/klabast/wb-services/dayoff-planner/internal/config"
	"github.com/klabast/wb-services/dayoff-planner/internal/storage"
)

func main() {
	// Check for subcommands
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		commands.HashPassword(os.Args[2:])
		return
	}

	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	listen := flag.String("listen", "", "HTTP listen address (overrides config)")
	backend := flag.String("storage", "", "Storage backend: file, sqlite or memory (overrides config)")
	dataPath := flag.String("data", "", "Data file path (overrides config)")
	flag.Parse()

	log := newLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *backend != "" {
		cfg.Storage.Backend = *backend
	}
	if *dataPath != "" {
		cfg.Storage.Path = *dataPath
	}
	log = newLogger(cfg.LogLevel)

	kv, err := storage.Open(storage.Config{Backend: cfg.Storage.Backend, Path: cfg.Storage.Path})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Error().Err(err).Msg("closing storage failed")
		}
	}()

	auth, err := app.LoadAuthenticator(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load auth credentials")
	}

	planner := app.New(kv, log)
	planner.Auth = auth

	log.Info().
		Str("listen", cfg.Listen).
		Str("backend", cfg.Storage.Backend).
		Str("data", cfg.Storage.Path).
		Msg("starting day-off planner")

	if err := http.ListenAndServe(cfg.Listen, planner.Routes()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
}
