package bot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/mancala/solver"
)

// Requester is the part of *nats.Conn that clients use.
type Requester interface {
	Request(subj string, data []byte, timeout time.Duration) (*nats.Msg, error)
}

type Client struct {
	nc      Requester
	channel string
	timeout time.Duration
}

func NewClient(nc Requester, channel string) *Client {
	return &Client{nc: nc, channel: channel, timeout: HardTimeLimit + 5*time.Second}
}

// Solve sends req to the bot and waits for its result.
func (c *Client) Solve(req solver.Request) (*solver.Result, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	res, err := c.nc.Request(c.channel, data, c.timeout)
	if err != nil {
		log.Error().Msgf("%v for request", err)
		return nil, err
	}
	log.Debug().Msgf("res: %v", string(res.Data))

	resp := SolveResponse{}
	if err := json.Unmarshal(res.Data, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New("Bot returned: " + resp.Error)
	}
	if resp.Result == nil {
		return nil, errors.New("bot returned an empty response")
	}
	return resp.Result, nil
}

// Connect dials the NATS server, retrying with backoff while it is not up.
func Connect(ctx context.Context, url string, attempts uint) (*nats.Conn, error) {
	logger := zerolog.Ctx(ctx)
	return retry.DoWithData(
		func() (*nats.Conn, error) {
			return nats.Connect(url)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			logger.Err(err).Uint("n", n).Str("url", url).Msg("nats-connect-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

// Reply publishes data on subject and waits for an acknowledgement,
// retrying with backoff.
func Reply(ctx context.Context, nc Requester, subject string, data []byte, attempts uint) error {
	logger := zerolog.Ctx(ctx)
	return retry.Do(
		func() error {
			// Only the acknowledgement matters, not its contents.
			_, err := nc.Request(subject, data, 3*time.Second)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(10*time.Millisecond),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			logger.Err(err).Uint("n", n).Msg("did-not-receive-ack-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
}
