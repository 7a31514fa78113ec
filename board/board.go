package board

import (
	"bytes"

	"github.com/samber/lo"
)

type Side uint8

const (
	First Side = iota
	Second
)

func (s Side) Other() Side {
	return s ^ 1
}

func (s Side) String() string {
	if s == First {
		return "first"
	}
	return "second"
}

// A Board is a Kalah position. Both rows of pits live in one slice; side s
// owns pits[s*P : (s+1)*P], indexed left to right in sowing order.
type Board struct {
	rules  Rules
	pits   []uint8
	stores [2]uint8
	side   Side
}

// New returns the starting position for the given rules. The first side moves.
func New(rules Rules) (*Board, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		rules: rules,
		pits:  make([]uint8, 2*rules.Pits),
	}
	for i := range b.pits {
		b.pits[i] = uint8(rules.Seeds)
	}
	return b, nil
}

func (b *Board) Clone() *Board {
	c := &Board{
		rules:  b.rules,
		pits:   make([]uint8, len(b.pits)),
		stores: b.stores,
		side:   b.side,
	}
	copy(c.pits, b.pits)
	return c
}

func (b *Board) Rules() Rules {
	return b.rules
}

func (b *Board) SideToMove() Side {
	return b.side
}

func (b *Board) idx(s Side, pit int) int {
	return int(s)*b.rules.Pits + pit
}

// Pits returns the row of the given side. The slice aliases the board and
// must not be modified.
func (b *Board) Pits(s Side) []uint8 {
	p := b.rules.Pits
	return b.pits[int(s)*p : (int(s)+1)*p]
}

func (b *Board) OwnPits() []uint8 {
	return b.Pits(b.side)
}

func (b *Board) OppPits() []uint8 {
	return b.Pits(b.side.Other())
}

func (b *Board) Store(s Side) int {
	return int(b.stores[s])
}

func (b *Board) PitSum(s Side) int {
	return int(lo.Sum(b.Pits(s)))
}

// IsFinished is true once either row is empty.
func (b *Board) IsFinished() bool {
	return b.PitSum(First) == 0 || b.PitSum(Second) == 0
}

// LegalMoves lists the non-empty pits of the side to move. It is empty iff
// the game is over.
func (b *Board) LegalMoves() []int {
	if b.IsFinished() {
		return nil
	}
	moves := make([]int, 0, b.rules.Pits)
	for i, s := range b.OwnPits() {
		if s > 0 {
			moves = append(moves, i)
		}
	}
	return moves
}

// StoreDiff is the mover's store minus the opponent's.
func (b *Board) StoreDiff() int {
	return int(b.stores[b.side]) - int(b.stores[b.side.Other()])
}

// PitDiff is the seeds in the mover's pits minus the seeds in the opponent's.
func (b *Board) PitDiff() int {
	return b.PitSum(b.side) - b.PitSum(b.side.Other())
}

// Margin is the final margin of a finished game from the mover's point of
// view, under the counting rule of the board.
func (b *Board) Margin() int {
	if b.rules.CountRemaining {
		return b.StoreDiff() + b.PitDiff()
	}
	return b.StoreDiff()
}

func (b *Board) TotalSeeds() int {
	return int(lo.Sum(b.pits)) + int(b.stores[0]) + int(b.stores[1])
}

// Equal compares pits, stores and the side to move.
func (b *Board) Equal(o *Board) bool {
	return b.side == o.side && b.stores == o.stores && bytes.Equal(b.pits, o.pits)
}

// identity is a map key for full-position equality.
func (b *Board) identity() string {
	buf := make([]byte, 0, len(b.pits)+3)
	buf = append(buf, b.pits...)
	buf = append(buf, b.stores[0], b.stores[1], byte(b.side))
	return string(buf)
}
