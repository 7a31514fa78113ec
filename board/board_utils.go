package board

import (
	"fmt"
	"strings"
)

// NewFromPosition builds an arbitrary position. Rows are given in sowing
// order for each side. The seed total must match the rules.
func NewFromPosition(rules Rules, first, second []uint8, stores [2]uint8, toMove Side) (*Board, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if len(first) != rules.Pits || len(second) != rules.Pits {
		return nil, fmt.Errorf("%w: rows must have %d pits", ErrInvalidRules, rules.Pits)
	}
	b := &Board{
		rules:  rules,
		pits:   append(append(make([]uint8, 0, 2*rules.Pits), first...), second...),
		stores: stores,
		side:   toMove,
	}
	if b.TotalSeeds() != rules.TotalSeeds() {
		return nil, fmt.Errorf("%w: position holds %d seeds, rules need %d",
			ErrInvalidRules, b.TotalSeeds(), rules.TotalSeeds())
	}
	return b, nil
}

// ToDisplayText draws the board with the second side's row on top, running
// right to left, and the first side's row below it.
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	p := b.rules.Pits
	marker := func(s Side) string {
		if s == b.side && !b.IsFinished() {
			return "*"
		}
		return " "
	}
	sb.WriteString("      ")
	for i := p - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%3d ", b.pits[b.idx(Second, i)])
	}
	sb.WriteString(" " + marker(Second) + "\n")
	fmt.Fprintf(&sb, "(%3d)", b.stores[Second])
	sb.WriteString(strings.Repeat(" ", 4*p+2))
	fmt.Fprintf(&sb, "(%3d)\n", b.stores[First])
	sb.WriteString("      ")
	for i := 0; i < p; i++ {
		fmt.Fprintf(&sb, "%3d ", b.pits[b.idx(First, i)])
	}
	sb.WriteString(" " + marker(First) + "\n")
	sb.WriteString("      ")
	for i := 0; i < p; i++ {
		fmt.Fprintf(&sb, "%3d ", i+1)
	}
	sb.WriteString("\n")
	return sb.String()
}

func (b *Board) String() string {
	return fmt.Sprintf("%v|%v|%v to move %v", b.Pits(First), b.stores, b.Pits(Second), b.side)
}
