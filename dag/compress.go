// Package dag shrinks a solved store into a checkpoint that keeps only the
// positions sitting on every depth-th turn from the root.
package dag

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/mancala/board"
	"github.com/domino14/mancala/compactkey"
	"github.com/domino14/mancala/stats"
	"github.com/domino14/mancala/ttable"
)

var (
	ErrInvalidDepth = errors.New("compression depth must be at least 1")
	ErrMissingEntry = errors.New("store has no entry for a reachable position")
)

// Compress walks the game breadth first from root in waves of depth turns.
// The positions at the end of each wave are copied from store into the
// result and become the start of the next wave. Positions already copied are
// not expanded again. The root itself is not copied.
//
// store must be exact: a width-limited store lacks finished positions and
// gives ErrMissingEntry.
func Compress[K compactkey.Key, V any](root *board.Board, keyer compactkey.Keyer[K],
	store *ttable.Store[K, V], depth int) (*ttable.Store[K, V], error) {

	if depth < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDepth, depth)
	}
	out := ttable.New[K, V](store.Divisions(), store.Hash())
	copied := make(map[K]struct{})
	var waves stats.Statistic

	frontier := []*board.Board{root}
	for wave := 0; len(frontier) > 0; wave++ {
		seen := make(map[K]struct{})
		for range depth {
			var next []*board.Board
			for _, b := range frontier {
				for _, c := range b.NextStates() {
					k := keyer.Key(c)
					if _, ok := copied[k]; ok {
						continue
					}
					if _, ok := seen[k]; ok {
						continue
					}
					seen[k] = struct{}{}
					next = append(next, c)
				}
			}
			frontier = next
		}
		for _, b := range frontier {
			k := keyer.Key(b)
			v, ok := store.Get(k)
			if !ok {
				return nil, fmt.Errorf("%w: %v", ErrMissingEntry, b)
			}
			out.Set(k, v)
			copied[k] = struct{}{}
		}
		waves.Push(float64(len(frontier)))
		log.Debug().Int("wave", wave).Int("visited", len(seen)).
			Int("boundary", len(frontier)).Msg("compress-wave")
	}

	log.Info().Int("depth", depth).
		Int("entries-in", store.Len()).
		Int("entries-out", out.Len()).
		Int("waves", waves.Iterations()).
		Float64("boundary-mean", waves.Mean()).
		Float64("boundary-max", waves.Max()).
		Msg("compress-returning")
	return out, nil
}
