package main

import (
	"context"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/matryer/is"

	"mallard/engine"
)

func TestParseGoCommand(t *testing.T) {
	is := is.New(t)

	limits := parseGoCommand("go wtime 30000 btime 28000 winc 1000 binc 1000 movestogo 12")
	is.Equal(limits.WhiteTimeMs, 30000)
	is.Equal(limits.BlackTimeMs, 28000)
	is.Equal(limits.WhiteIncMs, 1000)
	is.Equal(limits.BlackIncMs, 1000)
	is.Equal(limits.MovesToGo, 12)
	is.Equal(limits.Infinite, false)

	limits = parseGoCommand("go depth 6")
	is.Equal(limits.Depth, uint8(6))

	limits = parseGoCommand("go movetime 500")
	is.Equal(limits.MoveTimeMs, 500)

	limits = parseGoCommand("go infinite")
	is.True(limits.Infinite)
}

func TestParseSetOption(t *testing.T) {
	is := is.New(t)

	name, value, ok := parseSetOption([]string{"setoption", "name", "Hash", "value", "128"})
	is.True(ok)
	is.Equal(name, "Hash")
	is.Equal(value, "128")

	_, _, ok = parseSetOption([]string{"setoption", "name", "Hash"})
	is.Equal(ok, false)
}

func TestApplyPositionCommand(t *testing.T) {
	is := is.New(t)

	eng := engine.New(engine.Options{TTSizeMB: 1})
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)

	ok := applyPositionCommand("position startpos moves e2e4 e7e5 g1f3", &board, eng)
	is.True(ok)
	is.Equal(board.Wtomove, false)
	is.Equal(int(board.Fullmoveno), 2)
}

func TestMatchMoveCastling(t *testing.T) {
	is := is.New(t)

	board := dragontoothmg.ParseFen("r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1")
	move, found := matchMove("e1g1", &board)
	is.True(found)
	is.Equal(move.String(), "e1g1")
}

func BenchmarkSearchStartpos(b *testing.B) {
	eng := engine.New(engine.Options{TTSizeMB: 16})
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	limits := engine.Limits{Depth: 5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng.NewGame()
		if _, err := eng.Search(context.Background(), &board, limits); err != nil {
			b.Fatal(err)
		}
	}
}
