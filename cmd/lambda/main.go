package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/mancala/bot"
	"github.com/domino14/mancala/config"
)

var cfg *config.Config
var nc bot.Requester

const replyAttempts = 5

func HandleRequest(ctx context.Context, evt bot.LambdaEvent) (string, error) {
	logger := log.With().Str("requestID", evt.RequestID).Logger()
	ctx = logger.WithContext(ctx)

	resp := bot.NewBot(cfg).Solve(ctx, evt.RequestID, evt.Request)
	if resp.Error != "" {
		logger.Error().Str("error", resp.Error).Msg("solve-failed")
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	// The return value is informational. Whoever asked is listening on the
	// reply channel.
	if evt.ReplyChannel != "" && nc != nil {
		logger.Info().Msg("solve-done-sending-via-nats")
		if err := bot.Reply(ctx, nc, evt.ReplyChannel, data, replyAttempts); err != nil {
			logger.Err(err).Msg("reply-failed")
		}
	}
	logger.Info().Msg("exiting-fn")
	if resp.Error != "" {
		return resp.Error, nil
	}
	return resp.Result.Value, nil
}

func main() {
	cfg = &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad-arguments")
	}
	log.Info().Interface("config", cfg.SanitizedSettings()).Msg("loaded-config")
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx := log.Logger.WithContext(context.Background())
	conn, err := bot.Connect(ctx, cfg.GetString(config.ConfigNatsURL), 5)
	if err != nil {
		log.Fatal().AnErr("natsConnectErr", err).Msg(":(")
	}
	nc = conn

	lambda.Start(HandleRequest)
}
