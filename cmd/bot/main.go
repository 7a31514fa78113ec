package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/mancala/bot"
	"github.com/domino14/mancala/config"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad-arguments")
	}
	log.Info().Interface("config", cfg.SanitizedSettings()).Msg("loaded-config")

	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	ctx, cancel := context.WithCancel(log.Logger.WithContext(context.Background()))
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		// We received an interrupt signal, shut down.
		log.Info().Msg("got quit signal...")
		cancel()
	}()

	b := bot.NewBot(cfg)
	if err := bot.Main(ctx, cfg.GetString(config.ConfigNatsSubject), b); err != nil {
		log.Fatal().Err(err).Msg("bot-failed")
	}
	log.Info().Msg("server gracefully shutting down")
}
