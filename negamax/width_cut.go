package negamax

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/domino14/mancala/board"
	"github.com/domino14/mancala/compactkey"
	"github.com/domino14/mancala/ttable"
)

// A Ranker scores a successor from the point of view of its side to move,
// which is the opponent of whoever produced it. Lower ranks are explored
// first.
type Ranker func(*board.Board) int

// PitDifferential ranks a successor by how many more seeds its mover holds
// in pits than the other side.
func PitDifferential(b *board.Board) int {
	return b.PitDiff()
}

// Approximation is the result of a width-limited search. Its values are the
// best found with at most MaxWidth successors per position and are not
// game-theoretic values.
type Approximation[K compactkey.Key] struct {
	Store    *ttable.Store[K, int8]
	MaxWidth int
}

func (a *Approximation[K]) Exact() bool {
	return false
}

func (a *Approximation[K]) String() string {
	return fmt.Sprintf("approximate (max width %d, %d entries)", a.MaxWidth, a.Store.Len())
}

type widthSearch[K compactkey.Key] struct {
	keyer    compactkey.Keyer[K]
	store    *ttable.Store[K, int8]
	maxWidth int
	ranker   Ranker
}

type rankedChild[K compactkey.Key] struct {
	b    *board.Board
	rank int
	key  K
	sd   int
}

// WidthCutSearch searches only the maxWidth best-ranked successors of every
// position. Values are stored the same way SearchScore stores them, except
// that finished positions are not cached. The successor order depends only
// on the position, so the result does not depend on thread timing.
func WidthCutSearch[K compactkey.Key](ctx context.Context, root *board.Board,
	keyer compactkey.Keyer[K], maxWidth int, opts Options) (*Approximation[K], error) {

	if maxWidth < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWidth, maxWidth)
	}
	opts = opts.normalized(zerolog.Ctx(ctx))
	s := &widthSearch[K]{
		keyer:    keyer,
		store:    ttable.New[K, int8](opts.Divisions, keyer.Hash),
		maxWidth: maxWidth,
		ranker:   opts.Ranker,
	}
	err := run(ctx, fmt.Sprintf("width-cut-%d", maxWidth), opts, s.store, func(w *worker) error {
		_, err := s.solve(w, root.Clone())
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Approximation[K]{Store: s.store, MaxWidth: maxWidth}, nil
}

func (s *widthSearch[K]) candidates(b *board.Board) []*board.Board {
	ranked := lo.Map(b.NextStates(), func(c *board.Board, _ int) rankedChild[K] {
		return rankedChild[K]{b: c, rank: s.ranker(c), key: s.keyer.Key(c), sd: c.StoreDiff()}
	})
	slices.SortFunc(ranked, func(x, y rankedChild[K]) int {
		return cmp.Or(
			cmp.Compare(x.rank, y.rank),
			cmp.Compare(x.key, y.key),
			cmp.Compare(x.sd, y.sd))
	})
	ranked = ranked[:min(len(ranked), s.maxWidth)]
	return lo.Map(ranked, func(r rankedChild[K], _ int) *board.Board {
		return r.b
	})
}

func (s *widthSearch[K]) solve(w *worker, b *board.Board) (int, error) {
	if err := w.visit(); err != nil {
		return 0, err
	}
	k := s.keyer.Key(b)
	sd := b.StoreDiff()
	if v, ok := s.store.Get(k); ok {
		return sd + int(v), nil
	}
	if b.IsFinished() {
		return sd + terminalRest(b), nil
	}

	best := math.MinInt
	for _, c := range s.candidates(b) {
		v, err := s.solve(w, c)
		if err != nil {
			return 0, err
		}
		best = max(best, -v)
	}
	s.store.Set(k, int8(best-sd))
	return best, nil
}
