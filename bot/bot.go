// Package bot serves solves over NATS request/reply.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/mancala/board"
	"github.com/domino14/mancala/config"
	"github.com/domino14/mancala/solver"
)

const (
	// HardTimeLimit bounds a single solve.
	HardTimeLimit   = 180 * time.Second
	connectAttempts = 8
)

type Bot struct {
	config *config.Config
	// MaxSeeds rejects requests whose total seed count is above it, so a
	// single request cannot exhaust memory.
	MaxSeeds int
}

func NewBot(cfg *config.Config) *Bot {
	return &Bot{config: cfg, MaxSeeds: 36}
}

func errorResponse(id string, message string, err error) *SolveResponse {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &SolveResponse{RequestID: id, Error: msg}
}

// Handle decodes a JSON solver.Request and solves it.
func (bot *Bot) Handle(ctx context.Context, data []byte) *SolveResponse {
	req := solver.Request{}
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("", "Could not parse request", err)
	}
	return bot.Solve(ctx, "", req)
}

// Solve runs req with the bot's defaults filled in for unset fields.
func (bot *Bot) Solve(ctx context.Context, id string, req solver.Request) *SolveResponse {
	if err := req.Rules.Validate(); err != nil {
		return errorResponse(id, "Bad rules", err)
	}
	if req.Rules.TotalSeeds() > bot.MaxSeeds {
		return errorResponse(id, "Bad rules", fmt.Errorf("%w: %d seeds is above the limit of %d",
			board.ErrInvalidRules, req.Rules.TotalSeeds(), bot.MaxSeeds))
	}
	if req.Threads <= 0 {
		req.Threads = bot.config.GetInt(config.ConfigThreads)
	}
	if req.Divisions <= 0 {
		req.Divisions = bot.config.GetInt(config.ConfigDivisions)
	}
	if req.MaxWidth <= 0 {
		req.MaxWidth = bot.config.GetInt(config.ConfigMaxWidth)
	}
	ctx, cancel := context.WithTimeout(ctx, HardTimeLimit)
	defer cancel()

	sol, err := solver.Solve(ctx, req)
	if err != nil {
		return errorResponse(id, "Could not solve", err)
	}
	return &SolveResponse{RequestID: id, Result: &sol.Result}
}

// responder is the part of *nats.Msg used to answer a request.
type responder interface {
	Respond(data []byte) error
}

// respond sends resp as JSON. Failures are logged, since nobody else can
// see them.
func respond(logger *zerolog.Logger, m responder, resp any) {
	data, err := json.Marshal(resp)
	if err != nil {
		// Should never happen, but the requester is still waiting.
		logger.Err(err).Msg("marshal-failed")
		data = []byte(err.Error())
	}
	if err := m.Respond(data); err != nil {
		logger.Err(err).Msg("respond-failed")
	}
}

// Main subscribes to channel and answers each request until ctx is done.
func Main(ctx context.Context, channel string, bot *Bot) error {
	nc, err := Connect(ctx, bot.config.GetString(config.ConfigNatsURL), connectAttempts)
	if err != nil {
		return err
	}
	defer nc.Close()
	logger := zerolog.Ctx(ctx)

	_, err = nc.Subscribe(channel, func(m *nats.Msg) {
		logger.Info().Int("bytes", len(m.Data)).Msg("solve-request")
		respond(logger, m, bot.Handle(ctx, m.Data))
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Msgf("Listening on [%s]", channel)
	<-ctx.Done()
	return nil
}
