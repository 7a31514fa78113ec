// Package solver picks a key encoding for the rules, runs one of the searches
// and wraps the resulting store so that callers do not need to know the key
// type.
package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/domino14/mancala/board"
	"github.com/domino14/mancala/compactkey"
	"github.com/domino14/mancala/dag"
	"github.com/domino14/mancala/negamax"
	"github.com/domino14/mancala/ttable"
)

const (
	ModeScore      = "score"
	ModeSettlement = "settlement"
	ModeWidthCut   = "widthcut"
)

var (
	ErrUnknownMode    = errors.New("unknown search mode")
	ErrNotDumpable    = errors.New("only score stores can be dumped")
	ErrNeedsExact     = errors.New("compression needs an exact store")
	ErrNotScoreResult = errors.New("solution has no scores")
)

func ParseMode(s string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(s))
	switch m {
	case ModeScore, ModeSettlement, ModeWidthCut:
		return m, nil
	case "":
		return ModeScore, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

type Request struct {
	Rules         board.Rules `json:"rules" yaml:"rules"`
	Mode          string      `json:"mode" yaml:"mode"`
	Threads       int         `json:"threads" yaml:"threads"`
	Divisions     int         `json:"divisions" yaml:"divisions"`
	MaxWidth      int         `json:"max_width" yaml:"max_width"`
	CompressDepth int         `json:"compress_depth" yaml:"compress_depth"`
}

// Result is the serializable summary of a solve.
type Result struct {
	Rules    board.Rules `json:"rules" yaml:"rules"`
	Mode     string      `json:"mode" yaml:"mode"`
	KeyMode  string      `json:"key_mode" yaml:"key_mode"`
	KeyWidth int         `json:"key_width" yaml:"key_width"`
	// Exact is false for width-limited results, whose values are only the
	// best found under the width cap.
	Exact      bool         `json:"exact" yaml:"exact"`
	MaxWidth   int          `json:"max_width,omitempty" yaml:"max_width,omitempty"`
	Value      string       `json:"value" yaml:"value"`
	Score      int          `json:"score" yaml:"score"`
	Entries    int          `json:"entries" yaml:"entries"`
	Compressed int          `json:"compressed,omitempty" yaml:"compressed,omitempty"`
	Stats      ttable.Stats `json:"stats" yaml:"stats"`
	ElapsedSec float64      `json:"elapsed_sec" yaml:"elapsed_sec"`
}

// Solution is a solved store behind key-agnostic accessors.
type Solution struct {
	Result

	score  func(*board.Board) (int, error)
	settle func(*board.Board) (negamax.Settlement, error)
	values func() []float64
	dump   func(io.Writer) (int, error)
}

// Solve searches the starting position of req.Rules. Packed keys are used
// when they fit, raw byte keys otherwise.
func Solve(ctx context.Context, req Request) (*Solution, error) {
	mode, err := ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	req.Mode = mode
	if req.CompressDepth > 0 && mode == ModeWidthCut {
		return nil, ErrNeedsExact
	}
	root, err := board.New(req.Rules)
	if err != nil {
		return nil, err
	}
	if compactkey.Fits(req.Rules) {
		keyer, err := compactkey.NewPacked(req.Rules)
		if err != nil {
			return nil, err
		}
		return solve[uint64](ctx, req, root, keyer, "packed")
	}
	keyer, err := compactkey.NewRaw(req.Rules)
	if err != nil {
		return nil, err
	}
	return solve[string](ctx, req, root, keyer, "raw")
}

func solve[K compactkey.Key](ctx context.Context, req Request, root *board.Board,
	keyer compactkey.Keyer[K], keyMode string) (*Solution, error) {

	logger := zerolog.Ctx(ctx)
	tstart := time.Now()
	opts := negamax.Options{Threads: req.Threads, Divisions: req.Divisions, Shuffle: true}
	sol := &Solution{Result: Result{
		Rules:    req.Rules,
		Mode:     req.Mode,
		KeyMode:  keyMode,
		KeyWidth: keyer.Width(),
		Exact:    req.Mode != ModeWidthCut,
	}}
	logger.Info().Str("rules", req.Rules.String()).Str("mode", req.Mode).
		Str("key-mode", keyMode).Msg("solve-starting")

	switch req.Mode {
	case ModeScore, ModeWidthCut:
		var store *ttable.Store[K, int8]
		if req.Mode == ModeScore {
			s, err := negamax.SearchScore(ctx, root, keyer, opts)
			if err != nil {
				return nil, err
			}
			store = s
		} else {
			approx, err := negamax.WidthCutSearch(ctx, root, keyer, req.MaxWidth, opts)
			if err != nil {
				return nil, err
			}
			store = approx.Store
			sol.MaxWidth = approx.MaxWidth
		}
		score, err := negamax.RootScore(root, keyer, store)
		if err != nil {
			return nil, err
		}
		sol.Score = score
		sol.Value = strconv.Itoa(score)
		sol.Entries = store.Len()
		sol.Stats = store.Stats()
		sol.score = func(b *board.Board) (int, error) {
			return negamax.RootScore(b, keyer, store)
		}
		sol.values = func() []float64 {
			return collect(store, func(v int8) float64 { return float64(v) })
		}
		dumped := store
		if req.CompressDepth > 0 {
			c, err := dag.Compress(root, keyer, store, req.CompressDepth)
			if err != nil {
				return nil, err
			}
			sol.Compressed = c.Len()
			dumped = c
		}
		sol.dump = func(w io.Writer) (int, error) {
			return ttable.Dump(w, dumped, keyer.Bytes)
		}

	case ModeSettlement:
		store, err := negamax.SearchSettlement(ctx, root, keyer, opts)
		if err != nil {
			return nil, err
		}
		res, err := negamax.RootSettlement(root, keyer, store)
		if err != nil {
			return nil, err
		}
		sol.Value = res.String()
		sol.Entries = store.Len()
		sol.Stats = store.Stats()
		sol.settle = func(b *board.Board) (negamax.Settlement, error) {
			return negamax.RootSettlement(b, keyer, store)
		}
		sol.values = func() []float64 {
			return collect(store, signedTurns)
		}
		if req.CompressDepth > 0 {
			c, err := dag.Compress(root, keyer, store, req.CompressDepth)
			if err != nil {
				return nil, err
			}
			sol.Compressed = c.Len()
		}
	}
	sol.ElapsedSec = time.Since(tstart).Seconds()
	return sol, nil
}

// signedTurns maps a win in n to n and a loss in n to -n.
func signedTurns(s negamax.Settlement) float64 {
	switch s.Outcome {
	case negamax.Win:
		return float64(s.Turns)
	case negamax.Lose:
		return -float64(s.Turns)
	}
	return 0
}

func collect[K comparable, V any](store *ttable.Store[K, V], f func(V) float64) []float64 {
	out := make([]float64, 0, store.Len())
	store.Range(func(_ K, v V) bool {
		out = append(out, f(v))
		return true
	})
	return out
}

// ScoreOf is the final margin of b from its mover's point of view. Only
// score and width-cut solutions have one.
func (s *Solution) ScoreOf(b *board.Board) (int, error) {
	if s.score == nil {
		return 0, ErrNotScoreResult
	}
	return s.score(b)
}

// SettlementOf is the exact result of b in a settlement solution.
func (s *Solution) SettlementOf(b *board.Board) (negamax.Settlement, error) {
	if s.settle == nil {
		return negamax.Settlement{}, fmt.Errorf("solution mode is %s", s.Mode)
	}
	return s.settle(b)
}

// Values lists every stored value, for histograms.
func (s *Solution) Values() []float64 {
	return s.values()
}

// Dump writes the score store, or its compressed form when compression was
// requested.
func (s *Solution) Dump(w io.Writer) (int, error) {
	if s.dump == nil {
		return 0, ErrNotDumpable
	}
	return s.dump(w)
}
