// Command bench runs a fixed-depth search over a standard position suite and
// reports node counts and speed, for comparing search changes.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/namsral/flag"

	"mallard/engine"
)

var benchPositions = []string{
	dragontoothmg.Startpos,
	"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	"r1bqkb1r/2pp1ppp/p1n2n2/1p2p3/4P3/1B3N2/PPPP1PPP/RNBQ1RK1 w kq - 0 6",
	"r2q1rk1/pp2bppp/2n1bn2/2pp4/8/1P2PNP1/PBPP1PBP/RN1Q1RK1 w - - 4 9",
	"8/2k5/3p4/p2P1p2/P2P1P2/8/8/4K3 w - - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/8/1p6/1P6/1K2k3/8/8/8 w - - 0 1",
	"2rq1rk1/pb1nbppp/1p2pn2/8/2pP4/1PN1PN2/PBQ1BPPP/R4RK1 w - - 0 12",
}

func main() {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	depth := fs.Int("depth", 6, "search depth per position")
	ttSize := fs.Int("tt-size-mb", 64, "transposition table size in megabytes")
	fs.Parse(os.Args[1:])

	eng := engine.New(engine.Options{TTSizeMB: *ttSize})
	limits := engine.Limits{Depth: uint8(*depth)}

	var totalNodes uint64
	start := time.Now()

	for i, fen := range benchPositions {
		board := dragontoothmg.ParseFen(fen)
		eng.NewGame()

		posStart := time.Now()
		result, err := eng.Search(context.Background(), &board, limits)
		if err != nil {
			fmt.Fprintln(os.Stderr, "search failed:", err)
			os.Exit(1)
		}
		elapsed := time.Since(posStart)

		totalNodes += result.Nodes
		fmt.Printf("position %d/%d  best %-6s  depth %d  nodes %10d  time %8s\n",
			i+1, len(benchPositions), result.BestMove.String(), result.Depth, result.Nodes,
			elapsed.Round(time.Millisecond))
	}

	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()
	fmt.Printf("\ntotal nodes %d  time %s  nps %.0f\n", totalNodes, elapsed.Round(time.Millisecond), nps)
}
