package compactkey

import (
	"fmt"
	"math/bits"

	"github.com/domino14/mancala/board"
)

// Packed encodes a position into a uint64. Every pit gets enough bits to hold
// all the seeds in the game. The mover's first pit sits in the highest field,
// so comparing keys numerically compares the rows pit by pit.
type Packed struct {
	pits    int
	bits    uint
	mask    uint64
	byteLen int
}

func NewPacked(rules board.Rules) (*Packed, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	b := max(uint(bits.Len(uint(rules.TotalSeeds()))), 1)
	total := uint(2*rules.Pits) * b
	if total > 64 {
		return nil, fmt.Errorf("%w: %d pits at %d bits each need %d bits",
			ErrKeyTooWide, 2*rules.Pits, b, total)
	}
	return &Packed{
		pits:    rules.Pits,
		bits:    b,
		mask:    1<<b - 1,
		byteLen: int((total + 7) / 8),
	}, nil
}

// Fits reports whether the rules can use packed keys.
func Fits(rules board.Rules) bool {
	_, err := NewPacked(rules)
	return err == nil
}

func (p *Packed) BitsPerPit() int {
	return int(p.bits)
}

func (p *Packed) Key(b *board.Board) uint64 {
	var k uint64
	for _, s := range b.OwnPits() {
		k = k<<p.bits | uint64(s)
	}
	for _, s := range b.OppPits() {
		k = k<<p.bits | uint64(s)
	}
	return k
}

func (p *Packed) Hash(k uint64) uint64 {
	return Mix(k)
}

// Bytes writes the key big-endian over the smallest number of bytes that
// holds every field.
func (p *Packed) Bytes(k uint64) []byte {
	out := make([]byte, p.byteLen)
	for i := range out {
		out[p.byteLen-1-i] = byte(k >> (8 * i))
	}
	return out
}

func (p *Packed) Width() int {
	return p.byteLen
}

// Decode splits a key back into the mover's row and the opponent's row.
func (p *Packed) Decode(k uint64) (own, opp []uint8) {
	own = make([]uint8, p.pits)
	opp = make([]uint8, p.pits)
	for i := p.pits - 1; i >= 0; i-- {
		opp[i] = uint8(k & p.mask)
		k >>= p.bits
	}
	for i := p.pits - 1; i >= 0; i-- {
		own[i] = uint8(k & p.mask)
		k >>= p.bits
	}
	return own, opp
}

// FromBytes is the inverse of Bytes.
func (p *Packed) FromBytes(raw []byte) uint64 {
	var k uint64
	for _, c := range raw {
		k = k<<8 | uint64(c)
	}
	return k
}
