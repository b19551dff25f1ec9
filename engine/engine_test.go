package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/matryer/is"
	"github.com/stretchr/testify/require"

	"mallard/book"
	"mallard/tablebase"
)

func TestEnginePlaysBookMove(t *testing.T) {
	is := is.New(t)

	key, err := book.KeyFromFEN(dragontoothmg.Startpos)
	is.NoErr(err)
	packed, err := book.PackMove("e2e4")
	is.NoErr(err)

	path := filepath.Join(t.TempDir(), "openings.bin")
	is.NoErr(book.Save(path, []book.Entry{{Key: key, Move: packed, Weight: 100}}))

	eng := New(Options{TTSizeMB: 1, BookPath: path, BookSeed: 1})
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)

	result, err := eng.Search(context.Background(), &board, Limits{Depth: 2})
	is.NoErr(err)
	is.Equal(result.Status, StatusBookMove)
	is.Equal(result.BestMove.String(), "e2e4")
}

func TestEngineLeavesBookAfterConfiguredPlies(t *testing.T) {
	is := is.New(t)

	key, err := book.KeyFromFEN("4k3/8/8/8/8/8/8/R3K3 w - - 0 40")
	is.NoErr(err)
	packed, err := book.PackMove("a1a2")
	is.NoErr(err)

	path := filepath.Join(t.TempDir(), "openings.bin")
	is.NoErr(book.Save(path, []book.Entry{{Key: key, Move: packed, Weight: 100}}))

	eng := New(Options{TTSizeMB: 1, BookPath: path, BookPlies: 10})
	board := dragontoothmg.ParseFen("4k3/8/8/8/8/8/8/R3K3 w - - 0 40")

	// Move 40 is far past the book window; the entry must be ignored.
	result, err := eng.Search(context.Background(), &board, Limits{Depth: 2})
	is.NoErr(err)
	is.Equal(result.Status, StatusNormal)
}

func TestEngineSoftMissesAbsentBookAndTables(t *testing.T) {
	is := is.New(t)

	eng := New(Options{
		TTSizeMB:      1,
		BookPath:      "/nonexistent/book.bin",
		TablebasePath: "/nonexistent/tables",
	})
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)

	result, err := eng.Search(context.Background(), &board, Limits{Depth: 2})
	is.NoErr(err)
	is.Equal(result.Status, StatusNormal)
	is.True(result.BestMove != 0)
}

func TestEnginePlaysTablebaseMove(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	root := dragontoothmg.ParseFen("4k3/8/8/8/8/8/3Q4/4K3 w - - 0 1")

	moves := root.GenerateLegalMoves()
	require.NotEmpty(t, moves)
	fastest := moves[0]

	var entries []tablebase.Entry
	for _, move := range moves {
		child := root
		child.Apply(move)
		dtz := uint16(30)
		if move == fastest {
			dtz = 4
		}
		entries = append(entries, tablebase.Entry{Key: child.Hash(), WDL: tablebase.Loss, DTZ: dtz})
	}
	is.NoErr(tablebase.SaveTable(filepath.Join(dir, "KQvK.mtb"), entries))

	eng := New(Options{TTSizeMB: 1, TablebasePath: dir, TablebaseMen: 6})
	result, err := eng.Search(context.Background(), &root, Limits{Depth: 2})
	is.NoErr(err)
	is.Equal(result.Status, StatusTablebaseMove)
	is.Equal(result.BestMove, fastest)
	is.True(result.Score > 0)
}

func TestEngineSkipsTablebaseWithTooManyMen(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	is.NoErr(tablebase.SaveTable(filepath.Join(dir, "KQvK.mtb"), nil))

	eng := New(Options{TTSizeMB: 1, TablebasePath: dir, TablebaseMen: 6})
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)

	result, err := eng.Search(context.Background(), &board, Limits{Depth: 2})
	is.NoErr(err)
	is.Equal(result.Status, StatusNormal)
}

func TestMatchBookMoveCastlingRemap(t *testing.T) {
	is := is.New(t)

	board := dragontoothmg.ParseFen("r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1")
	legal := board.GenerateLegalMoves()

	// Books store castling as king-takes-rook.
	move, ok := matchBookMove("e1h1", &board, legal)
	is.True(ok)
	is.Equal(move.String(), "e1g1")

	// No king on e1: the remap must not fire.
	noKing := dragontoothmg.ParseFen("4k3/8/8/8/8/8/8/R2K4 w - - 0 1")
	_, ok = matchBookMove("e1h1", &noKing, noKing.GenerateLegalMoves())
	is.Equal(ok, false)
}

func TestNilBoardIsRejected(t *testing.T) {
	is := is.New(t)

	eng := New(Options{TTSizeMB: 1})
	_, err := eng.Search(context.Background(), nil, Limits{Depth: 1})
	is.Equal(err, ErrNilBoard)
}

func TestStatusString(t *testing.T) {
	is := is.New(t)

	is.Equal(StatusNormal.String(), "normal")
	is.Equal(StatusCheckmated.String(), "checkmated")
	is.Equal(StatusStalemate.String(), "stalemate")
	is.Equal(StatusDraw.String(), "draw")
	is.Equal(StatusBookMove.String(), "book")
	is.Equal(StatusTablebaseMove.String(), "tablebase")
}

func TestNewGameResetsState(t *testing.T) {
	is := is.New(t)

	eng := New(Options{TTSizeMB: 1})
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	eng.ResetStateTracking(&board)

	_, err := eng.Search(context.Background(), &board, Limits{Depth: 3})
	is.NoErr(err)

	eng.NewGame()
	is.Equal(len(eng.states), 0)
	is.Equal(eng.hasPrevScore, false)

	_, hit := eng.tt.ProbeEntry(board.Hash())
	is.Equal(hit, false)
}
