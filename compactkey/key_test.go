package compactkey

import (
	"bytes"
	"cmp"
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/mancala/board"
)

func reachable(t *testing.T, rules board.Rules) []*board.Board {
	root, err := board.New(rules)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]struct{}{identity(root): {}}
	out := []*board.Board{root}
	stack := []*board.Board{root}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range b.NextStates() {
			id := identity(c)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, c)
			stack = append(stack, c)
		}
	}
	return out
}

// identity holds everything Equal compares.
func identity(b *board.Board) string {
	buf := make([]byte, 0, 2*b.Rules().Pits+3)
	buf = append(buf, b.Pits(board.First)...)
	buf = append(buf, b.Pits(board.Second)...)
	buf = append(buf, byte(b.Store(board.First)), byte(b.Store(board.Second)), byte(b.SideToMove()))
	return string(buf)
}

func layout(b *board.Board) string {
	return string(b.OwnPits()) + "|" + string(b.OppPits())
}

func TestReachableIsDistinct(t *testing.T) {
	is := is.New(t)
	boards := reachable(t, board.Rules{Pits: 3, Seeds: 1, Stealing: true})
	is.True(len(boards) > 1)
	for i := range boards {
		for j := i + 1; j < len(boards); j++ {
			is.True(!boards[i].Equal(boards[j]))
		}
	}
}

func TestKeyInjectivity(t *testing.T) {
	maxPits := 6
	if testing.Short() {
		maxPits = 4
	}
	for pits := 1; pits <= maxPits; pits++ {
		for _, stealing := range []bool{true, false} {
			rules := board.Rules{Pits: pits, Seeds: 1, Stealing: stealing}
			is := is.New(t)
			packed, err := NewPacked(rules)
			is.NoErr(err)
			raw, err := NewRaw(rules)
			is.NoErr(err)

			byPacked := map[uint64]string{}
			byRaw := map[string]string{}
			for _, b := range reachable(t, rules) {
				l := layout(b)
				if prev, ok := byPacked[packed.Key(b)]; ok {
					is.Equal(prev, l)
				}
				byPacked[packed.Key(b)] = l
				if prev, ok := byRaw[raw.Key(b)]; ok {
					is.Equal(prev, l)
				}
				byRaw[raw.Key(b)] = l
			}
			is.Equal(len(byPacked), len(byRaw))
		}
	}
}

func TestKeyIgnoresStoresAndSide(t *testing.T) {
	is := is.New(t)
	rules := board.Rules{Pits: 3, Seeds: 2}
	packed, err := NewPacked(rules)
	is.NoErr(err)

	a, err := board.NewFromPosition(rules, []uint8{1, 2, 3}, []uint8{0, 1, 1}, [2]uint8{4, 0}, board.First)
	is.NoErr(err)
	b, err := board.NewFromPosition(rules, []uint8{1, 2, 3}, []uint8{0, 1, 1}, [2]uint8{1, 3}, board.First)
	is.NoErr(err)
	// same layout seen from the second side
	c, err := board.NewFromPosition(rules, []uint8{0, 1, 1}, []uint8{1, 2, 3}, [2]uint8{2, 2}, board.Second)
	is.NoErr(err)
	is.Equal(packed.Key(a), packed.Key(b))
	is.Equal(packed.Key(a), packed.Key(c))

	d, err := board.NewFromPosition(rules, []uint8{1, 2, 3}, []uint8{0, 1, 1}, [2]uint8{4, 0}, board.Second)
	is.NoErr(err)
	is.True(packed.Key(a) != packed.Key(d))
}

func TestPackedLayout(t *testing.T) {
	is := is.New(t)
	rules := board.Rules{Pits: 3, Seeds: 2}
	packed, err := NewPacked(rules)
	is.NoErr(err)
	// 12 seeds need 4 bits per pit
	is.Equal(packed.BitsPerPit(), 4)
	is.Equal(packed.Width(), 3)

	b, err := board.NewFromPosition(rules, []uint8{1, 2, 3}, []uint8{0, 1, 1}, [2]uint8{4, 0}, board.First)
	is.NoErr(err)
	k := packed.Key(b)
	is.Equal(k, uint64(0x123011))
	is.Equal(packed.Bytes(k), []byte{0x12, 0x30, 0x11})
	is.Equal(packed.FromBytes(packed.Bytes(k)), k)

	own, opp := packed.Decode(k)
	is.Equal(own, []uint8{1, 2, 3})
	is.Equal(opp, []uint8{0, 1, 1})
}

func TestPackedOrderMatchesRaw(t *testing.T) {
	is := is.New(t)
	rules := board.Rules{Pits: 3, Seeds: 2, Stealing: true}
	packed, err := NewPacked(rules)
	is.NoErr(err)
	raw, err := NewRaw(rules)
	is.NoErr(err)
	boards := reachable(t, rules)
	for i := 1; i < len(boards); i++ {
		a, b := boards[i-1], boards[i]
		is.Equal(cmp.Compare(packed.Key(a), packed.Key(b)), cmp.Compare(raw.Key(a), raw.Key(b)))
		is.Equal(bytes.Compare(packed.Bytes(packed.Key(a)), packed.Bytes(packed.Key(b))),
			cmp.Compare(packed.Key(a), packed.Key(b)))
	}
}

func TestTooWide(t *testing.T) {
	is := is.New(t)
	rules := board.Rules{Pits: 6, Seeds: 4}
	_, err := NewPacked(rules)
	is.True(errors.Is(err, ErrKeyTooWide))
	is.True(!Fits(rules))
	is.True(Fits(board.Rules{Pits: 4, Seeds: 15}))

	raw, err := NewRaw(rules)
	is.NoErr(err)
	is.Equal(raw.Width(), 12)
	b, err := board.New(rules)
	is.NoErr(err)
	is.Equal(len(raw.Bytes(raw.Key(b))), raw.Width())
}

func TestMix(t *testing.T) {
	is := is.New(t)
	is.Equal(Mix(0), uint64(0))
	is.True(Mix(1) != Mix(2))
	is.Equal(Mix(1), uint64(0x5692161d100b05e5))
	is.Equal(MixBytes("abc"), MixBytes(string([]byte{'a', 'b', 'c'})))
}
