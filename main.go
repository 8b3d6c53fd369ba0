package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/christopher-nones/resume-scorer/internal/api"
	"github.com/christopher-nones/resume-scorer/internal/config"
	"github.com/christopher-nones/resume-scorer/internal/llm"
	"github.com/christopher-nones/resume-scorer/internal/scoring"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	client := llm.NewClient(
		llm.NewProvider(cfg.Primary),
		llm.NewProvider(cfg.Secondary),
	)
	scorer := scoring.NewScorer(client, cfg.Scoring.Concurrency)
	server := api.NewServer(cfg, scorer)

	log.Info().
		Str("port", cfg.Server.Port).
		Int("concurrency", cfg.Scoring.Concurrency).
		Msg("starting resume scoring API")

	if err := http.ListenAndServe(":"+cfg.Server.Port, server.Router()); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}
