// Command perft counts leaf nodes of the legal move tree to a fixed depth,
// the standard way to sanity-check move generation and measure its speed.
package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/namsral/flag"
)

func main() {
	fs := flag.NewFlagSet("perft", flag.ExitOnError)
	fen := fs.String("fen", dragontoothmg.Startpos, "FEN string (defaults to the initial position)")
	depth := fs.Int("depth", 0, "perft depth (required)")
	divide := fs.Bool("divide", false, "print per-move node counts at the root")
	fs.Parse(os.Args[1:])

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	board := dragontoothmg.ParseFen(*fen)
	start := time.Now()

	var total uint64
	if *divide {
		type rootCount struct {
			move  string
			nodes uint64
		}
		var counts []rootCount
		for _, move := range board.GenerateLegalMoves() {
			unapply := board.Apply(move)
			nodes := perft(&board, *depth-1)
			unapply()
			counts = append(counts, rootCount{move.String(), nodes})
			total += nodes
		}
		sort.Slice(counts, func(i, j int) bool { return counts[i].move < counts[j].move })
		for _, c := range counts {
			fmt.Printf("%s: %d\n", c.move, c.nodes)
		}
	} else {
		total = perft(&board, *depth)
	}

	elapsed := time.Since(start)
	fmt.Printf("perft(%d) = %d  time %s  nps %.0f\n",
		*depth, total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
}

func perft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, move := range moves {
		unapply := b.Apply(move)
		nodes += perft(b, depth-1)
		unapply()
	}
	return nodes
}
