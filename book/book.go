// Package book reads Polyglot-format opening books: fixed 16-byte
// big-endian records sorted ascending by position key, probed with a
// binary search and picked from by weighted random choice.
package book

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"golang.org/x/exp/slices"
	"lukechampine.com/frand"
)

// EntrySize is the on-disk size of one record.
const EntrySize = 16

var ErrBadFormat = errors.New("book: malformed book file")

// Entry is one book record: a position key, a packed move, a weight
// expressing how often the move was preferred, and a free learn field.
type Entry struct {
	Key    uint64
	Move   uint16
	Weight uint16
	Learn  uint32
}

// UCIMove unpacks the move field into coordinate notation. Polyglot packs
// to-file in the low three bits, then to-rank, from-file, from-rank and
// promotion piece.
func (e Entry) UCIMove() string {
	toFile := e.Move & 0x7
	toRank := (e.Move >> 3) & 0x7
	fromFile := (e.Move >> 6) & 0x7
	fromRank := (e.Move >> 9) & 0x7
	promo := (e.Move >> 12) & 0x7

	uci := fmt.Sprintf("%c%c%c%c",
		'a'+byte(fromFile), '1'+byte(fromRank),
		'a'+byte(toFile), '1'+byte(toRank))
	if promo > 0 && promo < 5 {
		uci += string([]byte{0, 'n', 'b', 'r', 'q'}[promo])
	}
	return uci
}

// PackMove is the inverse of UCIMove, used by book-building tools and tests.
func PackMove(uci string) (uint16, error) {
	if len(uci) != 4 && len(uci) != 5 {
		return 0, fmt.Errorf("book: bad move string %q", uci)
	}
	fromFile := uint16(uci[0] - 'a')
	fromRank := uint16(uci[1] - '1')
	toFile := uint16(uci[2] - 'a')
	toRank := uint16(uci[3] - '1')
	if fromFile > 7 || fromRank > 7 || toFile > 7 || toRank > 7 {
		return 0, fmt.Errorf("book: bad move string %q", uci)
	}
	move := toFile | toRank<<3 | fromFile<<6 | fromRank<<9
	if len(uci) == 5 {
		switch uci[4] {
		case 'n':
			move |= 1 << 12
		case 'b':
			move |= 2 << 12
		case 'r':
			move |= 3 << 12
		case 'q':
			move |= 4 << 12
		default:
			return 0, fmt.Errorf("book: bad promotion in %q", uci)
		}
	}
	return move, nil
}

// MinWeight filters out entries whose weight falls below it.
const MinWeight = 1

// Book is an in-memory opening book. Lookups are read-only; the random
// source is only touched by Pick.
type Book struct {
	entries []Entry
	rng     *frand.RNG
}

// Load reads a whole book file into memory. The records must be sorted
// ascending by key, which is how Polyglot books are built.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data)%EntrySize != 0 {
		return nil, ErrBadFormat
	}

	entries := make([]Entry, 0, len(data)/EntrySize)
	for off := 0; off < len(data); off += EntrySize {
		entries = append(entries, Entry{
			Key:    binary.BigEndian.Uint64(data[off:]),
			Move:   binary.BigEndian.Uint16(data[off+8:]),
			Weight: binary.BigEndian.Uint16(data[off+10:]),
			Learn:  binary.BigEndian.Uint32(data[off+12:]),
		})
	}

	if !slices.IsSortedFunc(entries, func(a, b Entry) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	}) {
		return nil, ErrBadFormat
	}

	return &Book{entries: entries, rng: frand.New()}, nil
}

// Save writes entries as a book file, sorting them by key first.
func Save(path string, entries []Entry) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	slices.SortFunc(sorted, func(a, b Entry) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})

	buf := make([]byte, 0, len(sorted)*EntrySize)
	var rec [EntrySize]byte
	for _, e := range sorted {
		binary.BigEndian.PutUint64(rec[0:], e.Key)
		binary.BigEndian.PutUint16(rec[8:], e.Move)
		binary.BigEndian.PutUint16(rec[10:], e.Weight)
		binary.BigEndian.PutUint32(rec[12:], e.Learn)
		buf = append(buf, rec[:]...)
	}
	return os.WriteFile(path, buf, 0644)
}

// Seed makes Pick deterministic for a given seed. Seed 0 keeps the default
// non-deterministic source.
func (bk *Book) Seed(seed uint64) {
	if seed == 0 {
		return
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	bk.rng = frand.NewCustom(key[:], 32, 12)
}

// Len returns the number of records in the book.
func (bk *Book) Len() int {
	return len(bk.entries)
}

// Probe returns every entry for the position, weight-filtered.
func (bk *Book) Probe(fen string) []Entry {
	key, err := KeyFromFEN(fen)
	if err != nil {
		return nil
	}
	return bk.ProbeKey(key)
}

// ProbeKey binary-searches the sorted records for all entries of a key.
func (bk *Book) ProbeKey(key uint64) []Entry {
	start, found := slices.BinarySearchFunc(bk.entries, key, func(e Entry, k uint64) int {
		switch {
		case e.Key < k:
			return -1
		case e.Key > k:
			return 1
		}
		return 0
	})
	if !found {
		return nil
	}
	// BinarySearchFunc lands on the first match since keys repeat.
	var out []Entry
	for i := start; i < len(bk.entries) && bk.entries[i].Key == key; i++ {
		if bk.entries[i].Weight >= MinWeight {
			out = append(out, bk.entries[i])
		}
	}
	return out
}

// Pick chooses among the position's entries with probability proportional
// to weight, the way book-built engines stay varied without playing junk
// lines. Returns the move in coordinate notation.
func (bk *Book) Pick(fen string) (string, bool) {
	entries := bk.Probe(fen)
	if len(entries) == 0 {
		return "", false
	}

	var total uint64
	for _, e := range entries {
		total += uint64(e.Weight)
	}
	if total == 0 {
		return entries[0].UCIMove(), true
	}

	r := bk.rng.Uint64n(total)
	var upto uint64
	for _, e := range entries {
		upto += uint64(e.Weight)
		if r < upto {
			return e.UCIMove(), true
		}
	}
	return entries[len(entries)-1].UCIMove(), true
}
