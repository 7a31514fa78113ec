package board

import "fmt"

// CanSow reports why the pit cannot be sown by the side to move, or nil.
func (b *Board) CanSow(pos int) error {
	if b.IsFinished() {
		return ErrGameOver
	}
	if pos < 0 || pos >= b.rules.Pits {
		return fmt.Errorf("%w: %d (board has %d pits)", ErrPitOutOfRange, pos, b.rules.Pits)
	}
	if b.pits[b.idx(b.side, pos)] == 0 {
		return fmt.Errorf("%w: %d", ErrEmptyPit, pos)
	}
	return nil
}

// Sow plays one pit of the side to move. The board is left untouched when
// the move is illegal. The side to move flips unless the last seed landed in
// the mover's store and the game is still going.
func (b *Board) Sow(pos int) error {
	if err := b.CanSow(pos); err != nil {
		return err
	}
	b.sow(pos)
	return nil
}

func (b *Board) sow(pos int) {
	p := b.rules.Pits
	mover := b.side
	n := int(b.pits[b.idx(mover, pos)])
	b.pits[b.idx(mover, pos)] = 0

	// Distribute lap by lap: the mover's store is only visited on the
	// mover's own lap and the opponent's store is never visited.
	cur, i := mover, pos+1
	landSide, landPit := mover, -1
	for n > 0 {
		for ; i < p && n > 0; i++ {
			b.pits[b.idx(cur, i)]++
			n--
			if n == 0 {
				landSide, landPit = cur, i
			}
		}
		if n == 0 {
			break
		}
		if cur == mover {
			b.stores[mover]++
			n--
			if n == 0 {
				landSide, landPit = mover, p
				break
			}
		}
		cur, i = cur.Other(), 0
	}

	if landSide == mover {
		if landPit == p {
			if !b.IsFinished() {
				// bonus turn
				return
			}
		} else if b.rules.Stealing && b.pits[b.idx(mover, landPit)] == 1 {
			mirror := b.idx(mover.Other(), p-1-landPit)
			if captured := b.pits[mirror]; captured > 0 {
				b.pits[b.idx(mover, landPit)] = 0
				b.pits[mirror] = 0
				b.stores[mover] += captured + 1
			}
		}
	}
	b.side = b.side.Other()
}

// A Successor is a position reached by one complete turn, together with the
// pits sown to get there (more than one when the turn earned bonus moves).
type Successor struct {
	Board *Board
	Moves []int
}

// NextStates returns every distinct position reachable by one complete
// turn. Bonus-turn chains are expanded until the side to move changes or the
// game ends, so every returned board has the other side to move or is
// finished. Duplicates by pits, stores and side are dropped.
func (b *Board) NextStates() []*Board {
	succ := b.expand(false)
	out := make([]*Board, len(succ))
	for i := range succ {
		out[i] = succ[i].Board
	}
	return out
}

// NextStatesWithMoves is NextStates with the pit sequence of each turn.
// When several sequences reach the same position the first one found is
// kept.
func (b *Board) NextStatesWithMoves() []Successor {
	return b.expand(true)
}

func (b *Board) expand(trackMoves bool) []Successor {
	if b.IsFinished() {
		return nil
	}
	var out []Successor
	seen := make(map[string]struct{})
	stack := []Successor{{Board: b}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for pos, seeds := range cur.Board.OwnPits() {
			if seeds == 0 {
				continue
			}
			next := Successor{Board: cur.Board.Clone()}
			next.Board.sow(pos)
			if trackMoves {
				next.Moves = append(append(make([]int, 0, len(cur.Moves)+1), cur.Moves...), pos)
			}
			if next.Board.side == b.side {
				stack = append(stack, next)
				continue
			}
			id := next.Board.identity()
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, next)
		}
	}
	return out
}
