package compactkey

import (
	"github.com/domino14/mancala/board"
)

// Raw keys are the pit bytes themselves, mover first. They work for any
// board size.
type Raw struct {
	pits int
}

func NewRaw(rules board.Rules) (*Raw, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Raw{pits: rules.Pits}, nil
}

func (r *Raw) Key(b *board.Board) string {
	buf := make([]byte, 0, 2*r.pits)
	buf = append(buf, b.OwnPits()...)
	buf = append(buf, b.OppPits()...)
	return string(buf)
}

func (r *Raw) Hash(k string) uint64 {
	return MixBytes(k)
}

func (r *Raw) Bytes(k string) []byte {
	return []byte(k)
}

func (r *Raw) Width() int {
	return 2 * r.pits
}
