package book

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/matryer/is"
	"github.com/stretchr/testify/require"
)

func writeBook(t *testing.T, entries []Entry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.bin")
	require.NoError(t, Save(path, entries))
	return path
}

func TestSaveLoadRoundTrip(t *testing.T) {
	is := is.New(t)

	key, err := KeyFromFEN(dragontoothmg.Startpos)
	is.NoErr(err)

	e4, err := PackMove("e2e4")
	is.NoErr(err)
	d4, err := PackMove("d2d4")
	is.NoErr(err)

	path := writeBook(t, []Entry{
		{Key: key, Move: e4, Weight: 100},
		{Key: key, Move: d4, Weight: 50},
		{Key: 1, Move: e4, Weight: 10},
	})

	bk, err := Load(path)
	is.NoErr(err)
	is.Equal(bk.Len(), 3)

	entries := bk.Probe(dragontoothmg.Startpos)
	is.Equal(len(entries), 2)
	for _, e := range entries {
		is.Equal(e.Key, key)
	}
}

func TestLoadRejectsTruncatedFile(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "bad.bin")
	is.NoErr(os.WriteFile(path, make([]byte, EntrySize+3), 0644))

	_, err := Load(path)
	is.Equal(err, ErrBadFormat)
}

func TestLoadRejectsUnsortedFile(t *testing.T) {
	is := is.New(t)

	// Hand-write two records out of key order.
	buf := make([]byte, 2*EntrySize)
	buf[0] = 0xff // first key larger than second
	path := filepath.Join(t.TempDir(), "unsorted.bin")
	is.NoErr(os.WriteFile(path, buf, 0644))

	_, err := Load(path)
	is.Equal(err, ErrBadFormat)
}

func TestLoadMissingFile(t *testing.T) {
	is := is.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.bin"))
	is.True(err != nil)
}

func TestPackMoveUCIMoveInverse(t *testing.T) {
	for _, uci := range []string{"e2e4", "g8f6", "a7a8q", "h2h1n", "e1g1"} {
		packed, err := PackMove(uci)
		require.NoError(t, err)
		require.Equal(t, uci, Entry{Move: packed}.UCIMove())
	}

	_, err := PackMove("not a move")
	require.Error(t, err)
	_, err = PackMove("e2e9")
	require.Error(t, err)
}

func TestSeededPickIsDeterministic(t *testing.T) {
	is := is.New(t)

	key, err := KeyFromFEN(dragontoothmg.Startpos)
	is.NoErr(err)

	var entries []Entry
	for _, uci := range []string{"e2e4", "d2d4", "c2c4", "g1f3"} {
		packed, err := PackMove(uci)
		is.NoErr(err)
		entries = append(entries, Entry{Key: key, Move: packed, Weight: 25})
	}
	path := writeBook(t, entries)

	pickSequence := func(seed uint64) []string {
		bk, err := Load(path)
		is.NoErr(err)
		bk.Seed(seed)
		var picks []string
		for i := 0; i < 20; i++ {
			move, ok := bk.Pick(dragontoothmg.Startpos)
			is.True(ok)
			picks = append(picks, move)
		}
		return picks
	}

	is.Equal(pickSequence(42), pickSequence(42))
}

func TestPickRespectsWeights(t *testing.T) {
	is := is.New(t)

	key, err := KeyFromFEN(dragontoothmg.Startpos)
	is.NoErr(err)

	e4, _ := PackMove("e2e4")
	d4, _ := PackMove("d2d4")
	path := writeBook(t, []Entry{
		{Key: key, Move: e4, Weight: 1000},
		{Key: key, Move: d4, Weight: 0}, // filtered out entirely
	})

	bk, err := Load(path)
	is.NoErr(err)
	bk.Seed(7)

	for i := 0; i < 50; i++ {
		move, ok := bk.Pick(dragontoothmg.Startpos)
		is.True(ok)
		is.Equal(move, "e2e4")
	}
}

func TestPickMissingPosition(t *testing.T) {
	is := is.New(t)

	e4, _ := PackMove("e2e4")
	path := writeBook(t, []Entry{{Key: 99, Move: e4, Weight: 1}})

	bk, err := Load(path)
	is.NoErr(err)

	_, ok := bk.Pick("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	is.Equal(ok, false)
}
