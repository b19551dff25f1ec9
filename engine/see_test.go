package engine

import (
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/matryer/is"
)

func findMove(t *testing.T, b *dragontoothmg.Board, uci string) dragontoothmg.Move {
	t.Helper()
	for _, m := range b.GenerateLegalMoves() {
		if m.String() == uci {
			return m
		}
	}
	t.Fatalf("move %s not legal in %s", uci, b.ToFen())
	return 0
}

func TestSEEEqualExchange(t *testing.T) {
	is := is.New(t)

	// Bishop takes knight, queen recaptures: minor for minor.
	board := dragontoothmg.ParseFen("6k1/4q1p1/4n3/8/2B5/8/8/6K1 w - - 0 1")
	move := findMove(t, &board, "c4e6")

	is.Equal(see(&board, move), int32(0))
}

func TestSEEEnPassant(t *testing.T) {
	is := is.New(t)

	// The captured pawn is off the target square; SEE still counts it.
	board := dragontoothmg.ParseFen("4k3/8/8/3pP3/8/8/8/6K1 w - d6 0 1")
	move := findMove(t, &board, "e5d6")

	is.Equal(see(&board, move), seePieceValue[dragontoothmg.Pawn])
}

func TestSEELosingCapture(t *testing.T) {
	is := is.New(t)

	// Queen grabs a pawn defended by a pawn.
	board := dragontoothmg.ParseFen("4k3/8/2p5/3p4/8/8/3Q4/4K3 w - - 0 1")
	move := findMove(t, &board, "d2d5")

	is.Equal(see(&board, move), seePieceValue[dragontoothmg.Pawn]-seePieceValue[dragontoothmg.Queen])
}

func TestSEEFreeCapture(t *testing.T) {
	is := is.New(t)

	board := dragontoothmg.ParseFen("4k3/8/8/3r4/8/8/3R4/4K3 w - - 0 1")
	move := findMove(t, &board, "d2d5")

	is.Equal(see(&board, move), seePieceValue[dragontoothmg.Rook])
}
