package tablebase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/matryer/is"
	"github.com/stretchr/testify/require"
)

func TestSignature(t *testing.T) {
	is := is.New(t)

	board := dragontoothmg.ParseFen("4k3/8/8/8/8/8/3Q4/4K3 w - - 0 1")
	is.Equal(Signature(&board), "KQvK")

	board = dragontoothmg.ParseFen("4k3/4p3/8/8/8/8/4P3/R3K3 w - - 0 1")
	is.Equal(Signature(&board), "KRPvKP")

	board = dragontoothmg.ParseFen("1n2k3/8/8/8/8/8/8/4K3 w - - 0 1")
	is.Equal(Signature(&board), "KvKN")
}

func TestSaveLoadTableRoundTrip(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "KQvK.mtb")
	entries := []Entry{
		{Key: 30, WDL: Loss, DTZ: 4},
		{Key: 10, WDL: Win, DTZ: 2},
		{Key: 20, WDL: Draw, DTZ: 0},
	}
	is.NoErr(SaveTable(path, entries))

	loaded, err := LoadTable(path)
	is.NoErr(err)
	is.Equal(len(loaded), 3)
	// Sorted on write.
	is.Equal(loaded[0], Entry{Key: 10, WDL: Win, DTZ: 2})
	is.Equal(loaded[2], Entry{Key: 30, WDL: Loss, DTZ: 4})
}

func TestLoadTableRejectsBadFiles(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()

	truncated := filepath.Join(dir, "trunc.mtb")
	is.NoErr(os.WriteFile(truncated, make([]byte, EntrySize-1), 0644))
	_, err := LoadTable(truncated)
	is.Equal(err, ErrBadFormat)

	unsorted := filepath.Join(dir, "unsorted.mtb")
	buf := make([]byte, 2*EntrySize)
	buf[0] = 0xff
	is.NoErr(os.WriteFile(unsorted, buf, 0644))
	_, err = LoadTable(unsorted)
	is.Equal(err, ErrBadFormat)
}

func TestDirProberProbe(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	board := dragontoothmg.ParseFen("4k3/8/8/8/8/8/4Q3/4K3 b - - 0 1")

	is.NoErr(SaveTable(filepath.Join(dir, "KQvK.mtb"), []Entry{
		{Key: board.Hash(), WDL: Loss, DTZ: 8},
	}))

	prober, err := OpenDirectory(dir, 6)
	is.NoErr(err)
	defer prober.Close()

	res, err := prober.Probe(&board)
	is.NoErr(err)
	is.Equal(res.WDL, Loss)
	is.Equal(res.DTZ, uint16(8))

	// A position of the same material but a different hash misses.
	other := dragontoothmg.ParseFen("4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	_, err = prober.Probe(&other)
	is.Equal(err, ErrNotFound)
}

func TestDirProberMissingTableIsSoftMiss(t *testing.T) {
	is := is.New(t)

	prober, err := OpenDirectory(t.TempDir(), 6)
	is.NoErr(err)

	board := dragontoothmg.ParseFen("4k3/8/8/8/8/8/3Q4/4K3 w - - 0 1")
	_, err = prober.Probe(&board)
	is.Equal(err, ErrNotFound)
}

func TestDirProberRespectsMenLimit(t *testing.T) {
	is := is.New(t)

	prober, err := OpenDirectory(t.TempDir(), 2)
	is.NoErr(err)

	board := dragontoothmg.ParseFen("4k3/8/8/8/8/8/3Q4/4K3 w - - 0 1")
	_, err = prober.Probe(&board)
	is.Equal(err, ErrNotFound)
}

func TestOpenDirectoryMissing(t *testing.T) {
	is := is.New(t)

	_, err := OpenDirectory(filepath.Join(t.TempDir(), "absent"), 6)
	is.True(err != nil)
}

func TestNoopProber(t *testing.T) {
	is := is.New(t)

	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	_, err := NoopProber{}.Probe(&board)
	is.Equal(err, ErrNotFound)
	is.Equal(NoopProber{}.MaxMen(), 0)
	is.NoErr(NoopProber{}.Close())
}

func TestBestRootMovePicksShortestWin(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	root := dragontoothmg.ParseFen("4k3/8/8/8/8/8/3Q4/4K3 w - - 0 1")

	// Mark every successor as lost for the defender, with one designated
	// move clearly fastest.
	moves := root.GenerateLegalMoves()
	require.NotEmpty(t, moves)
	fastest := moves[len(moves)/2]

	var entries []Entry
	for _, move := range moves {
		board := root // value copy per child
		board.Apply(move)
		dtz := uint16(20)
		if move == fastest {
			dtz = 2
		}
		entries = append(entries, Entry{Key: board.Hash(), WDL: Loss, DTZ: dtz})
	}
	is.NoErr(SaveTable(filepath.Join(dir, "KQvK.mtb"), entries))

	prober, err := OpenDirectory(dir, 6)
	is.NoErr(err)

	best, res, err := BestRootMove(prober, &root)
	is.NoErr(err)
	is.Equal(best, fastest)
	is.Equal(res.WDL, Win)
	is.Equal(res.DTZ, uint16(3)) // child distance plus the move itself
}

func TestBestRootMoveDragsOutLosses(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	root := dragontoothmg.ParseFen("3q4/4k3/8/8/8/8/8/4K3 w - - 0 1")

	moves := root.GenerateLegalMoves()
	require.NotEmpty(t, moves)
	stubborn := moves[0]

	var entries []Entry
	for _, move := range moves {
		board := root
		board.Apply(move)
		dtz := uint16(3)
		if move == stubborn {
			dtz = 15
		}
		entries = append(entries, Entry{Key: board.Hash(), WDL: Win, DTZ: dtz})
	}
	is.NoErr(SaveTable(filepath.Join(dir, "KvKQ.mtb"), entries))

	prober, err := OpenDirectory(dir, 6)
	is.NoErr(err)

	best, res, err := BestRootMove(prober, &root)
	is.NoErr(err)
	is.Equal(best, stubborn)
	is.Equal(res.WDL, Loss)
	is.Equal(res.DTZ, uint16(16))
}

func TestBestRootMoveMissingChildrenIsMiss(t *testing.T) {
	is := is.New(t)

	prober, err := OpenDirectory(t.TempDir(), 6)
	is.NoErr(err)

	board := dragontoothmg.ParseFen("4k3/8/8/8/8/8/3Q4/4K3 w - - 0 1")
	_, _, err = BestRootMove(prober, &board)
	is.Equal(err, ErrNotFound)
}
