// Package compactkey turns a position into a canonical cache key. A key holds
// the mover's pits followed by the opponent's pits; stores and the absolute
// side to move are left out so that positions reached through different
// histories share an entry.
package compactkey

import (
	"errors"

	"github.com/cespare/xxhash"

	"github.com/domino14/mancala/board"
)

var ErrKeyTooWide = errors.New("position does not fit in a 64-bit key")

// Key is the set of key representations. Both are ordered, which the
// width-limited search relies on for a deterministic tie break.
type Key interface {
	~uint64 | ~string
}

// A Keyer computes keys for one set of rules and knows how to shard and
// serialize them.
type Keyer[K Key] interface {
	Key(b *board.Board) K
	// Hash mixes the key for shard selection.
	Hash(k K) uint64
	// Bytes is the on-disk form of the key, always Width() bytes long.
	Bytes(k K) []byte
	Width() int
}

// Mix is the splitmix64 finalizer.
// https://stackoverflow.com/a/12996028/1737333
func Mix(x uint64) uint64 {
	x = (x ^ (x >> 30)) * uint64(0xbf58476d1ce4e5b9)
	x = (x ^ (x >> 27)) * uint64(0x94d049bb133111eb)
	x = x ^ (x >> 31)
	return x
}

func MixBytes(s string) uint64 {
	return xxhash.Sum64String(s)
}
