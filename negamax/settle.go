package negamax

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/domino14/mancala/board"
	"github.com/domino14/mancala/compactkey"
	"github.com/domino14/mancala/ttable"
)

// A finished position is a loss for the side to move: whoever makes the
// last move wins. Distances are counted in turns. The store keeps them
// relative to the cached position, and the search works with distances from
// the root, so writes subtract the current depth and reads add it back.

type settleSearch[K compactkey.Key] struct {
	keyer compactkey.Keyer[K]
	store *ttable.Store[K, Settlement]
}

// SearchSettlement solves root for an exact win, loss or draw together with
// the distance to the end of the game.
func SearchSettlement[K compactkey.Key](ctx context.Context, root *board.Board,
	keyer compactkey.Keyer[K], opts Options) (*ttable.Store[K, Settlement], error) {

	opts = opts.normalized(zerolog.Ctx(ctx))
	s := &settleSearch[K]{
		keyer: keyer,
		store: ttable.New[K, Settlement](opts.Divisions, keyer.Hash),
	}
	err := run(ctx, "settlement", opts, s.store, func(w *worker) error {
		_, err := s.solve(w, root.Clone(), 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.store, nil
}

func (s *settleSearch[K]) solve(w *worker, b *board.Board, depth int) (Settlement, error) {
	if err := w.visit(); err != nil {
		return Settlement{}, err
	}
	k := s.keyer.Key(b)
	if v, ok := s.store.Get(k); ok {
		return v.Shift(depth), nil
	}
	if b.IsFinished() {
		s.store.Set(k, LoseIn(0))
		return LoseIn(depth), nil
	}

	children := b.NextStates()
	w.order(children)
	var best Settlement
	for i, c := range children {
		v, err := s.solve(w, c, depth+1)
		if err != nil {
			return Settlement{}, err
		}
		v = v.Neg()
		if i == 0 || v.Better(best) {
			best = v
		}
	}
	s.store.Set(k, best.Shift(-depth))
	return best, nil
}

// RootSettlement reads the result of b out of a settlement store.
func RootSettlement[K compactkey.Key](b *board.Board, keyer compactkey.Keyer[K],
	store *ttable.Store[K, Settlement]) (Settlement, error) {

	v, ok := store.Get(keyer.Key(b))
	if !ok {
		return Settlement{}, ErrNotSolved
	}
	return v, nil
}
