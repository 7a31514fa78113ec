// Package negamax solves positions exhaustively. Every search runs a fixed
// pool of workers over one shared transposition store; there is no work
// splitting, the workers all search from the root and share results through
// the store.
package negamax

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/mancala/board"
	"github.com/domino14/mancala/stats"
	"github.com/domino14/mancala/ttable"
)

var (
	ErrWorkerPanicked = errors.New("search worker panicked")
	ErrInvalidWidth   = errors.New("max width must be at least 1")
	ErrNotSolved      = errors.New("position is not in the store")
)

// workers poll for cancellation this often, in nodes
const checkEvery = 1024

type Options struct {
	Threads int
	// Divisions is the number of store shards. It should be at least
	// Threads.
	Divisions int
	// Shuffle makes every worker but the first visit successors in random
	// order, so that workers spread over different subtrees. Width-limited
	// searches ignore it.
	Shuffle bool
	// Ranker orders successors for the width-limited search.
	Ranker Ranker
}

func (o Options) normalized(logger *zerolog.Logger) Options {
	if o.Threads < 1 {
		o.Threads = 1
	}
	if o.Divisions < 1 {
		o.Divisions = 8 * o.Threads
	}
	if o.Divisions < o.Threads {
		logger.Warn().Int("divisions", o.Divisions).Int("threads", o.Threads).
			Msg("fewer-divisions-than-threads")
	}
	if o.Ranker == nil {
		o.Ranker = PitDifferential
	}
	return o
}

type worker struct {
	id      int
	ctx     context.Context
	nodes   uint64
	shuffle bool
	total   *atomic.Uint64
}

func (w *worker) visit() error {
	w.nodes++
	if w.nodes%checkEvery == 0 {
		w.total.Add(checkEvery)
		return w.ctx.Err()
	}
	return nil
}

func (w *worker) order(children []*board.Board) {
	if !w.shuffle {
		return
	}
	frand.Shuffle(len(children), func(i, j int) {
		children[i], children[j] = children[j], children[i]
	})
}

// sizedStore is the part of a store the pool reports on.
type sizedStore interface {
	Len() int
	Stats() ttable.Stats
	LogSize(*zerolog.Logger)
}

// run starts opts.Threads workers and waits for all of them. A worker that
// fails or panics cancels the others, and the first error is returned.
func run(ctx context.Context, mode string, opts Options, store sizedStore, fn func(w *worker) error) error {
	logger := zerolog.Ctx(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	tstart := time.Now()
	var total atomic.Uint64
	nodes := make([]uint64, opts.Threads)

	g, gctx := errgroup.WithContext(ctx)
	for t := 0; t < opts.Threads; t++ {
		w := &worker{id: t, ctx: gctx, shuffle: opts.Shuffle && t > 0, total: &total}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: thread %d: %v", ErrWorkerPanicked, t, r)
				}
				nodes[t] = w.nodes
				logger.Debug().Int("thread", t).Uint64("nodes", w.nodes).Msg("worker-exiting")
			}()
			return fn(w)
		})
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		var last uint64
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				n := total.Load()
				logger.Debug().Uint64("nps", n-last).Int("entries", store.Len()).Msg("nodes-per-second")
				last = n
			}
		}
	}()

	err := g.Wait()
	close(done)

	perThread := stats.Summarize(stats.Uint64s(nodes))
	st := store.Stats()
	logger.Info().
		Str("mode", mode).
		Int("threads", opts.Threads).
		Int("entries", store.Len()).
		Uint64("ttable-created", st.Created).
		Uint64("ttable-lookups", st.Lookups).
		Uint64("ttable-hits", st.Hits).
		Float64("nodes-per-thread-mean", perThread.Mean).
		Float64("nodes-per-thread-stdev", perThread.Stdev).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Err(err).
		Msg("solve-returning")
	store.LogSize(logger)
	return err
}
