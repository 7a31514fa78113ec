package negamax

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/domino14/mancala/board"
	"github.com/domino14/mancala/compactkey"
	"github.com/domino14/mancala/ttable"
)

// The store holds each position's margin without the stores that were
// already banked when it was reached. Adding the current store difference
// back gives the final margin, so one entry serves every history that leads
// to the same pits.

type scoreSearch[K compactkey.Key] struct {
	keyer compactkey.Keyer[K]
	store *ttable.Store[K, int8]
}

// SearchScore solves root for the final margin and returns the filled
// store. On error no store is returned.
func SearchScore[K compactkey.Key](ctx context.Context, root *board.Board,
	keyer compactkey.Keyer[K], opts Options) (*ttable.Store[K, int8], error) {

	opts = opts.normalized(zerolog.Ctx(ctx))
	s := &scoreSearch[K]{
		keyer: keyer,
		store: ttable.New[K, int8](opts.Divisions, keyer.Hash),
	}
	err := run(ctx, "score", opts, s.store, func(w *worker) error {
		_, err := s.solve(w, root.Clone())
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.store, nil
}

// terminalRest is what a finished position adds on top of its stores.
func terminalRest(b *board.Board) int {
	if b.Rules().CountRemaining {
		return b.PitDiff()
	}
	return 0
}

func (s *scoreSearch[K]) solve(w *worker, b *board.Board) (int, error) {
	if err := w.visit(); err != nil {
		return 0, err
	}
	k := s.keyer.Key(b)
	sd := b.StoreDiff()
	if v, ok := s.store.Get(k); ok {
		return sd + int(v), nil
	}
	if b.IsFinished() {
		rest := terminalRest(b)
		s.store.Set(k, int8(rest))
		return sd + rest, nil
	}

	children := b.NextStates()
	w.order(children)
	best := math.MinInt
	for _, c := range children {
		v, err := s.solve(w, c)
		if err != nil {
			return 0, err
		}
		best = max(best, -v)
	}
	s.store.Set(k, int8(best-sd))
	return best, nil
}

// RootScore reads the final margin of b, from its mover's point of view, out
// of a score store.
func RootScore[K compactkey.Key](b *board.Board, keyer compactkey.Keyer[K],
	store *ttable.Store[K, int8]) (int, error) {

	v, ok := store.Get(keyer.Key(b))
	if !ok {
		if b.IsFinished() {
			// width-limited stores skip finished positions
			return b.Margin(), nil
		}
		return 0, ErrNotSolved
	}
	return b.StoreDiff() + int(v), nil
}

// UncachedScore recomputes the final margin by brute force. It is only
// practical on tiny boards.
func UncachedScore(b *board.Board) int {
	if b.IsFinished() {
		return b.Margin()
	}
	best := math.MinInt
	for _, c := range b.NextStates() {
		best = max(best, -UncachedScore(c))
	}
	return best
}
