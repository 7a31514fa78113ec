package negamax

import (
	"cmp"
	"fmt"
)

type Outcome uint8

const (
	Lose Outcome = iota
	Draw
	Win
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "Win"
	case Lose:
		return "Lose"
	}
	return "Draw"
}

// Settlement is an exact game result from the mover's point of view, with
// the number of turns until the game ends. Draws carry no distance.
type Settlement struct {
	Outcome Outcome
	Turns   int16
}

func WinIn(n int) Settlement {
	return Settlement{Outcome: Win, Turns: int16(n)}
}

func LoseIn(n int) Settlement {
	return Settlement{Outcome: Lose, Turns: int16(n)}
}

func DrawResult() Settlement {
	return Settlement{Outcome: Draw}
}

// Neg gives the same result from the opponent's point of view.
func (s Settlement) Neg() Settlement {
	switch s.Outcome {
	case Win:
		return LoseIn(int(s.Turns))
	case Lose:
		return WinIn(int(s.Turns))
	}
	return s
}

// Shift moves the distance by d turns. Draws are unaffected.
func (s Settlement) Shift(d int) Settlement {
	if s.Outcome == Draw {
		return s
	}
	s.Turns += int16(d)
	return s
}

// Compare orders results by preference for the mover: any win beats a draw,
// which beats any loss. Quicker wins and slower losses are better.
func (s Settlement) Compare(o Settlement) int {
	if s.Outcome != o.Outcome {
		if s.Outcome > o.Outcome {
			return 1
		}
		return -1
	}
	switch s.Outcome {
	case Win:
		return cmp.Compare(o.Turns, s.Turns)
	case Lose:
		return cmp.Compare(s.Turns, o.Turns)
	}
	return 0
}

func (s Settlement) Better(o Settlement) bool {
	return s.Compare(o) > 0
}

func (s Settlement) String() string {
	if s.Outcome == Draw {
		return "Draw"
	}
	return fmt.Sprintf("%s(%d)", s.Outcome, s.Turns)
}
