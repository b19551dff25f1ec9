// Package tablebase probes precomputed endgame tables. Tables live as one
// file per material signature ("KQvK.mtb") holding fixed 16-byte big-endian
// records sorted ascending by position hash, so a probe is a binary search
// over a memory-loaded slice.
package tablebase

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dylhunn/dragontoothmg"
	"golang.org/x/exp/slices"
)

// WDL is the game-theoretic verdict for the side to move.
type WDL int8

const (
	Loss        WDL = -2
	BlessedLoss WDL = -1
	Draw        WDL = 0
	CursedWin   WDL = 1
	Win         WDL = 2
)

func (w WDL) String() string {
	switch w {
	case Loss:
		return "loss"
	case BlessedLoss:
		return "blessed loss"
	case Draw:
		return "draw"
	case CursedWin:
		return "cursed win"
	case Win:
		return "win"
	}
	return "unknown"
}

// Result is one probe's answer: the verdict plus the distance-to-zeroing
// (plies until a pawn move, capture or mate resets the fifty-move counter).
type Result struct {
	WDL WDL
	DTZ uint16
}

// DefaultMaxMen is how many pieces (kings included) the standard table sets
// cover.
const DefaultMaxMen = 6

// EntrySize is the on-disk size of one record.
const EntrySize = 16

var (
	ErrNotFound  = errors.New("tablebase: position not in tables")
	ErrBadFormat = errors.New("tablebase: malformed table file")
)

// Entry is one table record keyed by the position's Zobrist hash.
type Entry struct {
	Key uint64
	WDL WDL
	DTZ uint16
}

// Prober answers endgame queries. Probe reports the verdict for the side to
// move in the given position.
type Prober interface {
	Probe(b *dragontoothmg.Board) (Result, error)
	MaxMen() int
	Close() error
}

// NoopProber stands in when no tables are configured; every probe misses.
type NoopProber struct{}

func (NoopProber) Probe(*dragontoothmg.Board) (Result, error) { return Result{}, ErrNotFound }
func (NoopProber) MaxMen() int                                { return 0 }
func (NoopProber) Close() error                               { return nil }

// DirProber serves probes from a directory of per-signature table files.
// Files load lazily on first probe for their material and stay cached; a
// missing file caches as a permanent miss for that signature.
type DirProber struct {
	dir    string
	maxMen int

	mu     sync.Mutex
	tables map[string][]Entry
}

// OpenDirectory opens a table directory. The directory must exist; the
// individual table files may not, and missing material is just a probe miss.
func OpenDirectory(dir string, maxMen int) (*DirProber, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tablebase: %s is not a directory", dir)
	}
	if maxMen <= 0 {
		maxMen = DefaultMaxMen
	}
	return &DirProber{
		dir:    dir,
		maxMen: maxMen,
		tables: make(map[string][]Entry),
	}, nil
}

func (p *DirProber) MaxMen() int { return p.maxMen }

func (p *DirProber) Close() error {
	p.mu.Lock()
	p.tables = make(map[string][]Entry)
	p.mu.Unlock()
	return nil
}

// Probe looks the position up in the table for its material signature.
func (p *DirProber) Probe(b *dragontoothmg.Board) (Result, error) {
	if bits.OnesCount64(b.White.All|b.Black.All) > p.maxMen {
		return Result{}, ErrNotFound
	}

	entries, err := p.table(Signature(b))
	if err != nil {
		return Result{}, err
	}

	key := b.Hash()
	i, found := slices.BinarySearchFunc(entries, key, func(e Entry, k uint64) int {
		switch {
		case e.Key < k:
			return -1
		case e.Key > k:
			return 1
		}
		return 0
	})
	if !found {
		return Result{}, ErrNotFound
	}
	return Result{WDL: entries[i].WDL, DTZ: entries[i].DTZ}, nil
}

// table returns the cached entries for a signature, loading the file on the
// first request.
func (p *DirProber) table(sig string) ([]Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entries, ok := p.tables[sig]; ok {
		if entries == nil {
			return nil, ErrNotFound
		}
		return entries, nil
	}

	entries, err := LoadTable(filepath.Join(p.dir, sig+".mtb"))
	if err != nil {
		if os.IsNotExist(err) {
			p.tables[sig] = nil
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.tables[sig] = entries
	return entries, nil
}

// LoadTable reads one table file. Records must be sorted ascending by key.
func LoadTable(path string) ([]Entry, error) {
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
			Key: binary.BigEndian.Uint64(data[off:]),
			WDL: WDL(int8(data[off+8])),
			DTZ: binary.BigEndian.Uint16(data[off+10:]),
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
	return entries, nil
}

// SaveTable writes entries as a table file, sorting them by key first. Used
// by table-building tools and tests.
func SaveTable(path string, entries []Entry) error {
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
		rec[8] = byte(int8(e.WDL))
		rec[9] = 0
		binary.BigEndian.PutUint16(rec[10:], e.DTZ)
		binary.BigEndian.PutUint32(rec[12:], 0)
		buf = append(buf, rec[:]...)
	}
	return os.WriteFile(path, buf, 0644)
}

// Signature names a position's material, white pieces first, each side led
// by its king: "KQvK", "KRPvKR".
func Signature(b *dragontoothmg.Board) string {
	var sb strings.Builder
	writeSide(&sb, &b.White)
	sb.WriteByte('v')
	writeSide(&sb, &b.Black)
	return sb.String()
}

func writeSide(sb *strings.Builder, side *dragontoothmg.Bitboards) {
	counts := []struct {
		letter byte
		bb     uint64
	}{
		{'K', side.Kings},
		{'Q', side.Queens},
		{'R', side.Rooks},
		{'B', side.Bishops},
		{'N', side.Knights},
		{'P', side.Pawns},
	}
	for _, c := range counts {
		for n := bits.OnesCount64(c.bb); n > 0; n-- {
			sb.WriteByte(c.letter)
		}
	}
}

// BestRootMove plays every legal move and probes the resulting position,
// negating the child verdict back to the mover. Among winning moves it
// prefers the smallest distance; among losing ones the largest, dragging the
// defense out. Terminal children (mate, stalemate) resolve without a table.
func BestRootMove(p Prober, b *dragontoothmg.Board) (dragontoothmg.Move, Result, error) {
	moves := b.GenerateLegalMoves()
	if len(moves) == 0 {
		return 0, Result{}, ErrNotFound
	}

	var bestMove dragontoothmg.Move
	var best Result
	haveBest := false

	for _, move := range moves {
		unapply := b.Apply(move)
		res, err := probeChild(p, b)
		unapply()
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return 0, Result{}, err
		}

		if !haveBest || betterRoot(res, best) {
			best = res
			bestMove = move
			haveBest = true
		}
	}

	if !haveBest {
		return 0, Result{}, ErrNotFound
	}
	return bestMove, best, nil
}

// probeChild scores a position just moved into, from the mover's point of
// view: the child verdict negated, its distance one ply longer.
func probeChild(p Prober, b *dragontoothmg.Board) (Result, error) {
	if len(b.GenerateLegalMoves()) == 0 {
		if b.OurKingInCheck() {
			return Result{WDL: Win, DTZ: 1}, nil
		}
		return Result{WDL: Draw}, nil
	}

	res, err := p.Probe(b)
	if err != nil {
		return Result{}, err
	}
	return Result{WDL: -res.WDL, DTZ: res.DTZ + 1}, nil
}

// betterRoot reports whether a beats the incumbent b for the root chooser.
func betterRoot(a, b Result) bool {
	if a.WDL != b.WDL {
		return a.WDL > b.WDL
	}
	if a.WDL > 0 {
		return a.DTZ < b.DTZ
	}
	if a.WDL < 0 {
		return a.DTZ > b.DTZ
	}
	return false
}
