package ttable

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
)

var ErrShortRecord = errors.New("dump ends in the middle of a record")

// Record is one dumped entry.
type Record struct {
	Key   []byte
	Score int8
}

// Dump writes every entry as the key bytes followed by one byte holding
// score+128. There is no header; a reader must know the key width. Records
// are sorted by key bytes so that equal stores give equal files.
func Dump[K comparable](w io.Writer, s *Store[K, int8], keyBytes func(K) []byte) (int, error) {
	recs := make([]Record, 0, s.Len())
	s.Range(func(k K, v int8) bool {
		recs = append(recs, Record{Key: keyBytes(k), Score: v})
		return true
	})
	slices.SortFunc(recs, func(a, b Record) int {
		return bytes.Compare(a.Key, b.Key)
	})

	bw := bufio.NewWriter(w)
	for _, r := range recs {
		if _, err := bw.Write(r.Key); err != nil {
			return 0, err
		}
		if err := bw.WriteByte(byte(int(r.Score) + 128)); err != nil {
			return 0, err
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// ReadDump splits a dump back into records of keyWidth key bytes each.
func ReadDump(r io.Reader, keyWidth int) ([]Record, error) {
	if keyWidth < 1 {
		return nil, fmt.Errorf("key width must be positive, got %d", keyWidth)
	}
	br := bufio.NewReader(r)
	var recs []Record
	buf := make([]byte, keyWidth+1)
	for {
		_, err := io.ReadFull(br, buf)
		if err == io.EOF {
			return recs, nil
		}
		if err == io.ErrUnexpectedEOF {
			return recs, fmt.Errorf("%w: record %d", ErrShortRecord, len(recs))
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, Record{
			Key:   bytes.Clone(buf[:keyWidth]),
			Score: int8(int(buf[keyWidth]) - 128),
		})
	}
}
