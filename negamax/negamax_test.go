package negamax

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/mancala/board"
	"github.com/domino14/mancala/compactkey"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func setup(t *testing.T, rules board.Rules) (*board.Board, compactkey.Keyer[uint64]) {
	t.Helper()
	root, err := board.New(rules)
	if err != nil {
		t.Fatal(err)
	}
	keyer, err := compactkey.NewPacked(rules)
	if err != nil {
		t.Fatal(err)
	}
	return root, keyer
}

type golden struct {
	rules   board.Rules
	score   int
	entries int
	settle  Settlement
}

var goldens = []golden{
	{board.Rules{Pits: 1, Seeds: 1, Stealing: true}, 1, 2, WinIn(1)},
	{board.Rules{Pits: 1, Seeds: 1, Stealing: false}, 1, 2, WinIn(1)},
	{board.Rules{Pits: 1, Seeds: 5, Stealing: true}, -2, 3, LoseIn(2)},
	{board.Rules{Pits: 2, Seeds: 1, Stealing: true}, 3, 7, WinIn(1)},
	{board.Rules{Pits: 2, Seeds: 1, Stealing: false}, 1, 11, WinIn(3)},
	{board.Rules{Pits: 2, Seeds: 2, Stealing: true}, 2, 23, WinIn(1)},
	{board.Rules{Pits: 2, Seeds: 2, Stealing: false}, 2, 25, WinIn(1)},
	{board.Rules{Pits: 3, Seeds: 1, Stealing: true}, 2, 58, WinIn(3)},
	{board.Rules{Pits: 3, Seeds: 1, Stealing: false}, 2, 153, WinIn(3)},
	{board.Rules{Pits: 3, Seeds: 2, Stealing: true}, 4, 1255, WinIn(3)},
	{board.Rules{Pits: 3, Seeds: 2, Stealing: false}, -1, 1601, LoseIn(22)},
	{board.Rules{Pits: 3, Seeds: 3, Stealing: true}, 3, 6799, WinIn(11)},
}

func TestSinglePitScenario(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	root, keyer := setup(t, board.Rules{Pits: 1, Seeds: 1, Stealing: true})
	is.Equal(len(root.LegalMoves()), 1)
	next := root.NextStates()
	is.Equal(len(next), 1)
	is.True(next[0].IsFinished())

	store, err := SearchScore(ctx, root, keyer, Options{Threads: 1, Divisions: 1})
	is.NoErr(err)
	score, err := RootScore(root, keyer, store)
	is.NoErr(err)
	is.Equal(score, 1)
	is.Equal(store.Len(), 2)

	sstore, err := SearchSettlement(ctx, root, keyer, Options{Threads: 1, Divisions: 1})
	is.NoErr(err)
	res, err := RootSettlement(root, keyer, sstore)
	is.NoErr(err)
	is.Equal(res, WinIn(1))
	is.Equal(sstore.Len(), 2)
}

func TestGoldenScores(t *testing.T) {
	ctx := context.Background()
	for _, g := range goldens {
		for _, threads := range []int{1, 4} {
			t.Run(fmt.Sprintf("%v/threads=%d", g.rules, threads), func(t *testing.T) {
				is := is.New(t)
				root, keyer := setup(t, g.rules)
				opts := Options{Threads: threads, Divisions: 16, Shuffle: true}

				store, err := SearchScore(ctx, root, keyer, opts)
				is.NoErr(err)
				score, err := RootScore(root, keyer, store)
				is.NoErr(err)
				is.Equal(score, g.score)
				is.Equal(store.Len(), g.entries)

				sstore, err := SearchSettlement(ctx, root, keyer, opts)
				is.NoErr(err)
				res, err := RootSettlement(root, keyer, sstore)
				is.NoErr(err)
				is.Equal(res, g.settle)
				is.Equal(sstore.Len(), g.entries)
			})
		}
	}
}

func TestRawKeysAgree(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	rules := board.Rules{Pits: 3, Seeds: 2, Stealing: true}
	root, err := board.New(rules)
	is.NoErr(err)
	var raw compactkey.Keyer[string]
	raw, err = compactkey.NewRaw(rules)
	is.NoErr(err)

	store, err := SearchScore(ctx, root, raw, Options{Threads: 2, Divisions: 7})
	is.NoErr(err)
	score, err := RootScore(root, raw, store)
	is.NoErr(err)
	is.Equal(score, 4)
	is.Equal(store.Len(), 1255)
}

func TestCountRemaining(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		rules board.Rules
		score int
	}{
		{board.Rules{Pits: 1, Seeds: 1, Stealing: true}, 0},
		{board.Rules{Pits: 1, Seeds: 5, Stealing: true}, 2},
		{board.Rules{Pits: 2, Seeds: 1, Stealing: true}, 2},
		{board.Rules{Pits: 2, Seeds: 1, Stealing: false}, 0},
		{board.Rules{Pits: 2, Seeds: 2, Stealing: true}, -2},
		{board.Rules{Pits: 3, Seeds: 2, Stealing: true}, 4},
		{board.Rules{Pits: 3, Seeds: 2, Stealing: false}, 0},
	}
	for _, c := range cases {
		c.rules.CountRemaining = true
		t.Run(c.rules.String(), func(t *testing.T) {
			is := is.New(t)
			root, keyer := setup(t, c.rules)
			store, err := SearchScore(ctx, root, keyer, Options{Threads: 2})
			is.NoErr(err)
			score, err := RootScore(root, keyer, store)
			is.NoErr(err)
			is.Equal(score, c.score)
		})
	}
}

// reachable lists every position reachable from root once.
func reachable(root *board.Board) []*board.Board {
	seen := map[string]bool{}
	var out []*board.Board
	stack := []*board.Board{root}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[b.String()] {
			continue
		}
		seen[b.String()] = true
		out = append(out, b)
		stack = append(stack, b.NextStates()...)
	}
	return out
}

func TestNegamaxConsistency(t *testing.T) {
	ctx := context.Background()
	for _, rules := range []board.Rules{
		{Pits: 2, Seeds: 2, Stealing: true},
		{Pits: 3, Seeds: 1, Stealing: false},
		{Pits: 3, Seeds: 2, Stealing: true},
		{Pits: 3, Seeds: 2, Stealing: true, CountRemaining: true},
	} {
		t.Run(rules.String(), func(t *testing.T) {
			is := is.New(t)
			root, keyer := setup(t, rules)
			store, err := SearchScore(ctx, root, keyer, Options{Threads: 3, Shuffle: true})
			is.NoErr(err)
			value := func(b *board.Board) int {
				v, err := RootScore(b, keyer, store)
				is.NoErr(err)
				return v
			}
			is.Equal(value(root), UncachedScore(root))
			for _, b := range reachable(root) {
				if b.IsFinished() {
					is.Equal(value(b), b.Margin())
					continue
				}
				best := -1000
				for _, c := range b.NextStates() {
					best = max(best, -value(c))
				}
				is.Equal(value(b), best)
			}
		})
	}
}

func uncachedSettlement(b *board.Board, depth int) Settlement {
	if b.IsFinished() {
		return LoseIn(depth)
	}
	var best Settlement
	for i, c := range b.NextStates() {
		v := uncachedSettlement(c, depth+1).Neg()
		if i == 0 || v.Better(best) {
			best = v
		}
	}
	return best
}

func TestSettlementConsistency(t *testing.T) {
	ctx := context.Background()
	for _, rules := range []board.Rules{
		{Pits: 2, Seeds: 1, Stealing: false},
		{Pits: 3, Seeds: 1, Stealing: true},
		{Pits: 3, Seeds: 2, Stealing: true},
	} {
		t.Run(rules.String(), func(t *testing.T) {
			is := is.New(t)
			root, keyer := setup(t, rules)
			store, err := SearchSettlement(ctx, root, keyer, Options{Threads: 2, Shuffle: true})
			is.NoErr(err)
			// cached distances are relative, so every position can be
			// checked as a root of its own
			for _, b := range reachable(root) {
				v, err := RootSettlement(b, keyer, store)
				is.NoErr(err)
				is.Equal(v, uncachedSettlement(b, 0))
			}
		})
	}
}

func TestWorkerPanicIsFatal(t *testing.T) {
	is := is.New(t)
	rules := board.Rules{Pits: 3, Seeds: 2, Stealing: true}
	root, _ := setup(t, rules)
	packed, err := compactkey.NewPacked(rules)
	is.NoErr(err)
	var bad compactkey.Keyer[uint64] = &panickyKeyer{Packed: packed}
	store, err := SearchScore(context.Background(), root, bad, Options{Threads: 4})
	is.True(errors.Is(err, ErrWorkerPanicked))
	is.True(store == nil)
}

// panickyKeyer fails once enough seeds have been banked.
type panickyKeyer struct {
	*compactkey.Packed
}

func (p *panickyKeyer) Key(b *board.Board) uint64 {
	if b.PitSum(board.First)+b.PitSum(board.Second) < 6 {
		panic("keyer exploded")
	}
	return p.Packed.Key(b)
}

func TestCancelledSearch(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root, keyer := setup(t, board.Rules{Pits: 3, Seeds: 2, Stealing: true})
	store, err := SearchScore(ctx, root, keyer, Options{Threads: 2})
	is.True(errors.Is(err, context.Canceled))
	is.True(store == nil)

	approx, err := WidthCutSearch(ctx, root, keyer, 3, Options{Threads: 2})
	is.True(errors.Is(err, context.Canceled))
	is.True(approx == nil)
}
