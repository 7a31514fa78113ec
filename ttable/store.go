// Package ttable holds the shared transposition store that search workers
// fill concurrently.
package ttable

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"
)

// rough per-entry cost of a Go map slot on top of the key and value
const mapEntryOverhead = 16

type shard[K comparable, V any] struct {
	sync.RWMutex
	m map[K]V
}

// Store is a map split into independently locked shards. A key's shard is
// picked from a mixed hash of the key so that neighbouring keys spread out.
//
// Entries are write-once: the first value set for a key is kept. Concurrent
// workers computing the same key always agree, so losing a race is harmless.
type Store[K comparable, V any] struct {
	shards []shard[K, V]
	hash   func(K) uint64

	created atomic.Uint64
	lookups atomic.Uint64
	hits    atomic.Uint64
}

type Stats struct {
	Lookups uint64 `json:"lookups" yaml:"lookups"`
	Hits    uint64 `json:"hits" yaml:"hits"`
	Created uint64 `json:"created" yaml:"created"`
}

// New makes a store with the given number of shards. The hash function
// should mix its input; it is not the key itself.
func New[K comparable, V any](divisions int, hash func(K) uint64) *Store[K, V] {
	if divisions < 1 {
		divisions = 1
	}
	s := &Store[K, V]{
		shards: make([]shard[K, V], divisions),
		hash:   hash,
	}
	for i := range s.shards {
		s.shards[i].m = make(map[K]V)
	}
	return s
}

func (s *Store[K, V]) shardFor(k K) *shard[K, V] {
	return &s.shards[s.hash(k)%uint64(len(s.shards))]
}

// Get returns the settled value for k. A missing key is not an error.
func (s *Store[K, V]) Get(k K) (V, bool) {
	sh := s.shardFor(k)
	sh.RLock()
	v, ok := sh.m[k]
	sh.RUnlock()
	s.lookups.Add(1)
	if ok {
		s.hits.Add(1)
	}
	return v, ok
}

// Set stores v for k unless k already has a value. It reports whether v was
// stored.
func (s *Store[K, V]) Set(k K, v V) bool {
	sh := s.shardFor(k)
	sh.Lock()
	defer sh.Unlock()
	if _, ok := sh.m[k]; ok {
		return false
	}
	sh.m[k] = v
	s.created.Add(1)
	return true
}

func (s *Store[K, V]) Len() int {
	n := 0
	for i := range s.shards {
		s.shards[i].RLock()
		n += len(s.shards[i].m)
		s.shards[i].RUnlock()
	}
	return n
}

func (s *Store[K, V]) Divisions() int {
	return len(s.shards)
}

// Hash exposes the shard hash so derived stores can share it.
func (s *Store[K, V]) Hash() func(K) uint64 {
	return s.hash
}

// Range calls fn for every entry, one shard at a time, until fn returns
// false. fn must not write to the store.
func (s *Store[K, V]) Range(fn func(K, V) bool) {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.RLock()
		for k, v := range sh.m {
			if !fn(k, v) {
				sh.RUnlock()
				return
			}
		}
		sh.RUnlock()
	}
}

func (s *Store[K, V]) Stats() Stats {
	return Stats{
		Lookups: s.lookups.Load(),
		Hits:    s.hits.Load(),
		Created: s.created.Load(),
	}
}

// EstimatedBytes is a coarse estimate of the memory held by the entries.
// Key contents behind pointers (string bytes) are not counted.
func (s *Store[K, V]) EstimatedBytes() uint64 {
	var k K
	var v V
	per := uint64(unsafe.Sizeof(k)) + uint64(unsafe.Sizeof(v)) + mapEntryOverhead
	return per * uint64(s.Len())
}

// LogSize writes a size summary, warning when the store has grown past half
// of the system memory.
func (s *Store[K, V]) LogSize(logger *zerolog.Logger) {
	est := s.EstimatedBytes()
	totalMem := memory.TotalMemory()
	evt := logger.Info()
	if totalMem > 0 && est > totalMem/2 {
		evt = logger.Warn()
	}
	evt.Int("entries", s.Len()).
		Int("divisions", s.Divisions()).
		Uint64("estimated-total-memory-bytes", est).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("transposition-store-size")
}
