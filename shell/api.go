package shell

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/domino14/mancala/board"
	"github.com/domino14/mancala/negamax"
	"github.com/domino14/mancala/solver"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) BoolDefault(key string, defaultB bool) (bool, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultB, nil
	}
	return strconv.ParseBool(v[0])
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) standardModeSwitch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "exit", "quit":
		return nil, errQuit
	case "help":
		return msg(usage(cmd.args)), nil
	case "new":
		return sc.newGame(cmd)
	case "s", "show":
		return sc.show()
	case "sow":
		return sc.sow(cmd)
	case "undo":
		return sc.undo()
	case "hint":
		return sc.hint(cmd)
	case "auto":
		return sc.auto()
	case "settle":
		return sc.settle()
	case "hist":
		return sc.hist()
	}
	return nil, fmt.Errorf("unrecognized command %q, try `help`", cmd.cmd)
}

// newGame sets up the starting position and solves it for margins so that
// hints are instant.
func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	rules, err := sc.config.Rules()
	if err != nil {
		return nil, err
	}
	if len(cmd.args) > 0 {
		if rules.Pits, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	if len(cmd.args) > 1 {
		if rules.Seeds, err = strconv.Atoi(cmd.args[1]); err != nil {
			return nil, err
		}
	}
	if rules.Pits, err = cmd.options.IntDefault("pits", rules.Pits); err != nil {
		return nil, err
	}
	if rules.Seeds, err = cmd.options.IntDefault("seeds", rules.Seeds); err != nil {
		return nil, err
	}
	if rules.Stealing, err = cmd.options.BoolDefault("stealing", rules.Stealing); err != nil {
		return nil, err
	}
	if rules.CountRemaining, err = cmd.options.BoolDefault("count-remaining", rules.CountRemaining); err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", sc.config.GetInt("threads"))
	if err != nil {
		return nil, err
	}

	g, err := board.New(rules)
	if err != nil {
		return nil, err
	}
	sol, err := solver.Solve(sc.ctx, solver.Request{
		Rules:     rules,
		Mode:      solver.ModeScore,
		Threads:   threads,
		Divisions: sc.config.GetInt("divisions"),
	})
	if err != nil {
		return nil, err
	}
	sc.rules = rules
	sc.game = g
	sc.history = nil
	sc.sol = sol
	sc.settleSol = nil
	return msg(fmt.Sprintf("%s\nsolved %d positions in %.2fs; perfect play ends %+d for the first side",
		g.ToDisplayText(), sol.Entries, sol.ElapsedSec, sol.Score)), nil
}

func (sc *ShellController) show() (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	var sb strings.Builder
	sb.WriteString(sc.game.ToDisplayText())
	if sc.game.IsFinished() {
		fmt.Fprintf(&sb, "game over: first %d, second %d\n",
			sc.finalCount(board.First), sc.finalCount(board.Second))
	} else {
		fmt.Fprintf(&sb, "%s to move\n", sc.game.SideToMove())
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) finalCount(s board.Side) int {
	if sc.rules.CountRemaining {
		return sc.game.Store(s) + sc.game.PitSum(s)
	}
	return sc.game.Store(s)
}

// sow plays the given pits in order. Pits are numbered from 1.
func (sc *ShellController) sow(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: sow <pit> [<pit> ...]")
	}
	next := sc.game.Clone()
	for _, a := range cmd.args {
		pit, err := strconv.Atoi(a)
		if err != nil {
			return nil, err
		}
		if err := next.Sow(pit - 1); err != nil {
			return nil, err
		}
	}
	sc.history = append(sc.history, sc.game)
	sc.game = next
	return sc.show()
}

func (sc *ShellController) undo() (*Response, error) {
	if len(sc.history) == 0 {
		return nil, errors.New("nothing to undo")
	}
	sc.game = sc.history[len(sc.history)-1]
	sc.history = sc.history[:len(sc.history)-1]
	return sc.show()
}

type suggestion struct {
	moves  []int
	margin int
	next   *board.Board
}

// suggestions ranks every complete turn by the final margin it leads to
// for the side to move.
func (sc *ShellController) suggestions() ([]suggestion, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	var out []suggestion
	for _, s := range sc.game.NextStatesWithMoves() {
		v, err := sc.sol.ScoreOf(s.Board)
		if err != nil {
			return nil, err
		}
		out = append(out, suggestion{moves: s.Moves, margin: -v, next: s.Board})
	}
	slices.SortStableFunc(out, func(a, b suggestion) int {
		return b.margin - a.margin
	})
	return out, nil
}

func movesString(moves []int) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = strconv.Itoa(m + 1)
	}
	return strings.Join(parts, " ")
}

func (sc *ShellController) hint(cmd *shellcmd) (*Response, error) {
	n, err := cmd.options.IntDefault("n", 5)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("-n must be at least 1, got %d", n)
	}
	sugg, err := sc.suggestions()
	if err != nil {
		return nil, err
	}
	if len(sugg) == 0 {
		return msg("game is over"), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s %s\n", "sow", "final margin")
	for _, s := range sugg[:min(n, len(sugg))] {
		fmt.Fprintf(&sb, "%-12s %+d\n", movesString(s.moves), s.margin)
	}
	return msg(sb.String()), nil
}

// auto plays the best complete turn for the side to move.
func (sc *ShellController) auto() (*Response, error) {
	sugg, err := sc.suggestions()
	if err != nil {
		return nil, err
	}
	if len(sugg) == 0 {
		return nil, board.ErrGameOver
	}
	sc.history = append(sc.history, sc.game)
	sc.game = sugg[0].next
	resp, err := sc.show()
	if err != nil {
		return nil, err
	}
	resp.message = "played " + movesString(sugg[0].moves) + "\n" + resp.message
	return resp, nil
}

// settle gives who wins from the current position and how fast. The
// settlement solve is done once per game.
func (sc *ShellController) settle() (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if sc.settleSol == nil {
		sol, err := solver.Solve(sc.ctx, solver.Request{
			Rules:     sc.rules,
			Mode:      solver.ModeSettlement,
			Threads:   sc.config.GetInt("threads"),
			Divisions: sc.config.GetInt("divisions"),
		})
		if err != nil {
			return nil, err
		}
		sc.settleSol = sol
	}
	res, err := sc.settlementOf(sc.game)
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("%s for %s (last mover wins, distance in turns)", res, sc.game.SideToMove())), nil
}

// settlementOf looks b up in the settlement solution. A board in the middle
// of a bonus-turn chain is only stored by chance, so it is answered from the
// turns that complete it.
func (sc *ShellController) settlementOf(b *board.Board) (negamax.Settlement, error) {
	res, err := sc.settleSol.SettlementOf(b)
	if err == nil || !errors.Is(err, negamax.ErrNotSolved) || b.IsFinished() {
		return res, err
	}
	var best negamax.Settlement
	for i, s := range b.NextStatesWithMoves() {
		v, err := sc.settleSol.SettlementOf(s.Board)
		if err != nil {
			return negamax.Settlement{}, err
		}
		v = v.Shift(1).Neg()
		if i == 0 || v.Better(best) {
			best = v
		}
	}
	return best, nil
}

func (sc *ShellController) hist() (*Response, error) {
	if sc.sol == nil {
		return nil, errNoGame
	}
	h := histogram.Hist(15, sc.sol.Values())
	var buf bytes.Buffer
	if err := histogram.Fprint(&buf, h, histogram.Linear(40)); err != nil {
		return nil, err
	}
	return msg("stored future margins\n" + buf.String()), nil
}
