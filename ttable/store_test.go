package ttable

import (
	"os"
	"sync"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/mancala/compactkey"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestGetSet(t *testing.T) {
	is := is.New(t)
	s := New[uint64, int8](4, compactkey.Mix)
	_, ok := s.Get(10)
	is.True(!ok)
	is.True(s.Set(10, -3))
	// first value wins
	is.True(!s.Set(10, 7))
	v, ok := s.Get(10)
	is.True(ok)
	is.Equal(v, int8(-3))
	is.Equal(s.Len(), 1)
	is.Equal(s.Divisions(), 4)

	st := s.Stats()
	is.Equal(st.Lookups, uint64(2))
	is.Equal(st.Hits, uint64(1))
	is.Equal(st.Created, uint64(1))
}

func TestDivisionsFloor(t *testing.T) {
	is := is.New(t)
	s := New[string, int8](0, compactkey.MixBytes)
	is.Equal(s.Divisions(), 1)
	s.Set("ab", 1)
	s.Set("ba", 2)
	is.Equal(s.Len(), 2)
}

func TestShardsSpread(t *testing.T) {
	s := New[uint64, int8](8, compactkey.Mix)
	for k := uint64(0); k < 4096; k++ {
		s.Set(k, 0)
	}
	for i := range s.shards {
		// sequential keys should not pile into a few shards
		assert.Greater(t, len(s.shards[i].m), 256)
	}
}

func TestConcurrentWriters(t *testing.T) {
	is := is.New(t)
	s := New[uint64, int8](16, compactkey.Mix)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := uint64(0); k < 2000; k++ {
				if _, ok := s.Get(k); !ok {
					s.Set(k, int8(k%100))
				}
			}
		}()
	}
	wg.Wait()
	is.Equal(s.Len(), 2000)
	is.Equal(s.Stats().Created, uint64(2000))
	s.Range(func(k uint64, v int8) bool {
		is.Equal(v, int8(k%100))
		return true
	})
}

func TestRangeStops(t *testing.T) {
	s := New[uint64, int8](3, compactkey.Mix)
	for k := uint64(0); k < 30; k++ {
		s.Set(k, 1)
	}
	seen := 0
	s.Range(func(uint64, int8) bool {
		seen++
		return seen < 5
	})
	assert.Equal(t, 5, seen)
}

func TestEstimatedBytes(t *testing.T) {
	s := New[uint64, int8](2, compactkey.Mix)
	assert.Equal(t, uint64(0), s.EstimatedBytes())
	s.Set(1, 1)
	s.Set(2, 1)
	assert.Equal(t, uint64(2*(8+1+mapEntryOverhead)), s.EstimatedBytes())
}
