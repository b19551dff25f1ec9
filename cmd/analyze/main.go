// Command analyze is an interactive console for poking at positions: run
// searches, show static evaluations, and probe the book and tablebases.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mallard/book"
	"mallard/config"
	"mallard/engine"
	"mallard/tablebase"
)

type analyzer struct {
	l     *readline.Instance
	eng   *engine.Engine
	board dragontoothmg.Board
	book  *book.Book
	tb    tablebase.Prober
}

func main() {
	var cfg config.Config
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[33manalyze>\033[0m ",
		HistoryFile:     "/tmp/mallard-analyze.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}

	a := &analyzer{
		l: l,
		eng: engine.New(engine.Options{
			TTSizeMB:      cfg.TTSizeMB,
			BookPath:      cfg.BookPath,
			BookPlies:     cfg.BookPlies,
			BookSeed:      cfg.BookSeed,
			TablebasePath: cfg.TablebasePath,
			TablebaseMen:  cfg.TablebaseMen,
			MaxDepth:      uint8(cfg.MaxDepth),
			Info:          os.Stdout,
		}),
		board: dragontoothmg.ParseFen(dragontoothmg.Startpos),
		tb:    tablebase.NoopProber{},
	}
	if cfg.BookPath != "" {
		if bk, err := book.Load(cfg.BookPath); err == nil {
			a.book = bk
		}
	}
	if cfg.TablebasePath != "" {
		if prober, err := tablebase.OpenDirectory(cfg.TablebasePath, cfg.TablebaseMen); err == nil {
			a.tb = prober
		}
	}

	a.loop()
}

func (a *analyzer) loop() {
	defer a.l.Close()

	for {
		line, err := a.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch strings.ToLower(fields[0]) {
		case "quit", "exit":
			return
		case "help":
			a.printHelp()
		case "position":
			a.cmdPosition(fields[1:])
		case "fen":
			fmt.Println(a.board.ToFen())
		case "go":
			a.cmdGo(fields[1:])
		case "eval":
			fmt.Printf("static eval: %d cp (side to move)\n", engine.Evaluate(&a.board))
		case "book":
			a.cmdBook()
		case "tb":
			a.cmdTablebase()
		default:
			fmt.Println("unknown command:", fields[0], "(try help)")
		}
	}
}

func (a *analyzer) printHelp() {
	fmt.Println(`commands:
  position startpos [moves ...]   set up the start position
  position fen <fen> [moves ...]  set up an arbitrary position
  fen                             print the current position
  go [depth N | movetime MS]      search the current position
  eval                            static evaluation, side to move
  book                            list book entries for the position
  tb                              probe the tablebases
  quit`)
}

func (a *analyzer) cmdPosition(args []string) {
	if len(args) == 0 {
		fmt.Println("usage: position startpos|fen <fen> [moves ...]")
		return
	}

	var rest []string
	switch strings.ToLower(args[0]) {
	case "startpos":
		a.board = dragontoothmg.ParseFen(dragontoothmg.Startpos)
		rest = args[1:]
	case "fen":
		fenEnd := len(args)
		for i, tok := range args {
			if strings.ToLower(tok) == "moves" {
				fenEnd = i
				break
			}
		}
		if fenEnd < 2 {
			fmt.Println("usage: position fen <fen> [moves ...]")
			return
		}
		a.board = dragontoothmg.ParseFen(strings.Join(args[1:fenEnd], " "))
		rest = args[fenEnd:]
	default:
		fmt.Println("usage: position startpos|fen <fen> [moves ...]")
		return
	}

	a.eng.ResetStateTracking(&a.board)

	if len(rest) == 0 || strings.ToLower(rest[0]) != "moves" {
		return
	}
	for _, moveStr := range rest[1:] {
		move, found := findLegalMove(moveStr, &a.board)
		if !found {
			fmt.Println("illegal move:", moveStr)
			return
		}
		a.board.Apply(move)
		a.eng.RecordState(&a.board)
	}
}

func (a *analyzer) cmdGo(args []string) {
	limits := engine.Limits{Depth: 8}
	for i := 0; i+1 < len(args); i += 2 {
		n, err := strconv.Atoi(args[i+1])
		if err != nil || n <= 0 {
			fmt.Println("bad value for", args[i])
			return
		}
		switch strings.ToLower(args[i]) {
		case "depth":
			limits = engine.Limits{Depth: uint8(n)}
		case "movetime":
			limits = engine.Limits{MoveTimeMs: n}
		default:
			fmt.Println("unknown go option:", args[i])
			return
		}
	}

	searchBoard := a.board
	result, err := a.eng.Search(context.Background(), &searchBoard, limits)
	if err != nil {
		fmt.Println("search failed:", err)
		return
	}
	if result.Status != engine.StatusNormal {
		fmt.Println("result:", result.Status)
	}
	if result.BestMove != 0 {
		fmt.Println("bestmove", result.BestMove.String())
	}
}

func (a *analyzer) cmdBook() {
	if a.book == nil {
		fmt.Println("no book loaded (set -book-path)")
		return
	}
	entries := a.book.Probe(a.board.ToFen())
	if len(entries) == 0 {
		fmt.Println("position not in book")
		return
	}
	for _, e := range entries {
		fmt.Printf("  %-6s weight %d\n", e.UCIMove(), e.Weight)
	}
}

func (a *analyzer) cmdTablebase() {
	res, err := a.tb.Probe(&a.board)
	if err != nil {
		if errors.Is(err, tablebase.ErrNotFound) {
			fmt.Println("position not in tablebases")
		} else {
			fmt.Println("probe failed:", err)
		}
		return
	}
	fmt.Printf("wdl %s  dtz %d\n", res.WDL, res.DTZ)

	searchBoard := a.board
	if move, best, err := tablebase.BestRootMove(a.tb, &searchBoard); err == nil {
		fmt.Printf("best %s (%s in %d)\n", move.String(), best.WDL, best.DTZ)
	}
}

func findLegalMove(moveStr string, board *dragontoothmg.Board) (dragontoothmg.Move, bool) {
	for _, mv := range board.GenerateLegalMoves() {
		if mv.String() == strings.ToLower(moveStr) {
			return mv, true
		}
	}
	return 0, false
}
