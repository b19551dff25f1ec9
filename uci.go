package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mallard/config"
	"mallard/engine"
)

const (
	engineName   = "Mallard 0.9"
	engineAuthor = "the mallard authors"
)

// Evaluation weights adjustable over setoption, for tuning matches.
var evalOptions = map[string]*int32{
	"doubledpawnpenalty":    &engine.DoubledPawnPenalty,
	"isolatedpawnpenalty":   &engine.IsolatedPawnPenalty,
	"bishoppairbonus":       &engine.BishopPairBonus,
	"rookopenfilebonus":     &engine.RookOpenFileBonus,
	"rooksemiopenfilebonus": &engine.RookSemiOpenFileBonus,
	"kingshieldbonus":       &engine.KingShieldBonus,
	"kingattackweight":      &engine.KingAttackWeight,
	"mobilityweight":        &engine.MobilityWeight,
}

func main() {
	var cfg config.Config
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	uciLoop(cfg)
}

func uciLoop(cfg config.Config) {
	eng := newEngine(cfg)
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)

	var searchWG sync.WaitGroup
	var cancelSearch context.CancelFunc = func() {}
	stopSearch := func() {
		cancelSearch()
		searchWG.Wait()
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			fmt.Println("id name", engineName)
			fmt.Println("id author", engineAuthor)
			fmt.Println("option name Hash type spin default", cfg.TTSizeMB, "min 1 max 4096")
			fmt.Println("option name BookPlies type spin default", cfg.BookPlies, "min 0 max 100")
			for name, weight := range evalOptions {
				fmt.Println("option name", name, "type spin default", *weight, "min 0 max 500")
			}
			fmt.Println("uciok")
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			stopSearch()
			board = dragontoothmg.ParseFen(dragontoothmg.Startpos)
			eng.NewGame()
			eng.ResetStateTracking(&board)
		case "setoption":
			stopSearch()
			name, value, ok := parseSetOption(tokens)
			if !ok {
				fmt.Println("info string Malformed setoption command")
				continue
			}
			switch strings.ToLower(name) {
			case "hash":
				if mb, err := strconv.Atoi(value); err == nil && mb > 0 {
					cfg.TTSizeMB = mb
					eng = newEngine(cfg)
					eng.ResetStateTracking(&board)
				}
			case "bookplies":
				if plies, err := strconv.Atoi(value); err == nil && plies >= 0 {
					cfg.BookPlies = plies
					eng = newEngine(cfg)
					eng.ResetStateTracking(&board)
				}
			default:
				weight, known := evalOptions[strings.ToLower(name)]
				if !known {
					fmt.Println("info string Unknown option", name)
					continue
				}
				if v, err := strconv.Atoi(value); err == nil {
					*weight = int32(v)
				}
			}
		case "position":
			stopSearch()
			if !applyPositionCommand(line, &board, eng) {
				continue
			}
		case "go":
			stopSearch()
			limits := parseGoCommand(line)

			var ctx context.Context
			ctx, cancelSearch = context.WithCancel(context.Background())
			searchBoard := board // searched on a copy so the loop keeps the game state
			searchWG.Add(1)
			go func() {
				defer searchWG.Done()
				result, err := eng.Search(ctx, &searchBoard, limits)
				if err != nil {
					log.Error().Err(err).Msg("search failed")
					return
				}
				if result.BestMove == 0 {
					fmt.Println("bestmove 0000")
					return
				}
				fmt.Println("bestmove", result.BestMove.String())
			}()
		case "stop":
			stopSearch()
		case "quit":
			stopSearch()
			return
		default:
			fmt.Println("info string Unknown command:", line)
		}
	}
}

func newEngine(cfg config.Config) *engine.Engine {
	return engine.New(engine.Options{
		TTSizeMB:      cfg.TTSizeMB,
		BookPath:      cfg.BookPath,
		BookPlies:     cfg.BookPlies,
		BookSeed:      cfg.BookSeed,
		TablebasePath: cfg.TablebasePath,
		TablebaseMen:  cfg.TablebaseMen,
		MaxDepth:      uint8(cfg.MaxDepth),
		Info:          os.Stdout,
	})
}

// parseSetOption pulls name and value out of
// "setoption name <name...> value <value>".
func parseSetOption(tokens []string) (name, value string, ok bool) {
	var nameParts, valueParts []string
	target := &nameParts
	for _, tok := range tokens[1:] {
		switch strings.ToLower(tok) {
		case "name":
			target = &nameParts
		case "value":
			target = &valueParts
		default:
			*target = append(*target, tok)
		}
	}
	if len(nameParts) == 0 || len(valueParts) == 0 {
		return "", "", false
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " "), true
}

// applyPositionCommand sets the board from a "position" command and replays
// its move list, recording every played position for draw detection.
func applyPositionCommand(line string, board *dragontoothmg.Board, eng *engine.Engine) bool {
	posScanner := bufio.NewScanner(strings.NewReader(line))
	posScanner.Split(bufio.ScanWords)
	posScanner.Scan() // skip the first token
	if !posScanner.Scan() {
		fmt.Println("info string Malformed position command")
		return false
	}

	switch strings.ToLower(posScanner.Text()) {
	case "startpos":
		*board = dragontoothmg.ParseFen(dragontoothmg.Startpos)
		posScanner.Scan() // advance the scanner to leave it in a consistent state
	case "fen":
		fenstr := ""
		for posScanner.Scan() && strings.ToLower(posScanner.Text()) != "moves" {
			fenstr += posScanner.Text() + " "
		}
		if fenstr == "" {
			fmt.Println("info string Invalid fen position")
			return false
		}
		*board = dragontoothmg.ParseFen(fenstr)
	default:
		fmt.Println("info string Invalid position subcommand")
		return false
	}

	eng.ResetStateTracking(board)

	if strings.ToLower(posScanner.Text()) != "moves" {
		return true
	}
	for posScanner.Scan() { // for each move
		moveStr := strings.ToLower(posScanner.Text())
		move, found := matchMove(moveStr, board)
		if !found {
			fmt.Println("info string Move", moveStr, "not found for position", board.ToFen())
			continue
		}
		board.Apply(move)
		eng.RecordState(board)
	}
	return true
}

// matchMove resolves a coordinate move string against the legal moves.
func matchMove(moveStr string, board *dragontoothmg.Board) (dragontoothmg.Move, bool) {
	legalMoves := board.GenerateLegalMoves()
	for _, mv := range legalMoves {
		if mv.String() == moveStr {
			return mv, true
		}
	}
	parsed, err := dragontoothmg.ParseMove(moveStr)
	if err != nil {
		return 0, false
	}
	for _, mv := range legalMoves {
		if mv.From() == parsed.From() && mv.To() == parsed.To() && mv.Promote() == parsed.Promote() {
			return mv, true
		}
	}
	return 0, false
}

// parseGoCommand translates a "go" command into search limits.
func parseGoCommand(line string) engine.Limits {
	var limits engine.Limits
	goScanner := bufio.NewScanner(strings.NewReader(line))
	goScanner.Split(bufio.ScanWords)
	goScanner.Scan() // skip the first token

	readInt := func(dst *int, option string) {
		if !goScanner.Scan() {
			fmt.Println("info string Malformed go command option", option)
			return
		}
		v, err := strconv.Atoi(goScanner.Text())
		if err != nil {
			fmt.Println("info string Malformed go command option", option)
			return
		}
		*dst = v
	}

	for goScanner.Scan() {
		switch strings.ToLower(goScanner.Text()) {
		case "infinite":
			limits.Infinite = true
		case "wtime":
			readInt(&limits.WhiteTimeMs, "wtime")
		case "btime":
			readInt(&limits.BlackTimeMs, "btime")
		case "winc":
			readInt(&limits.WhiteIncMs, "winc")
		case "binc":
			readInt(&limits.BlackIncMs, "binc")
		case "movestogo":
			readInt(&limits.MovesToGo, "movestogo")
		case "movetime":
			readInt(&limits.MoveTimeMs, "movetime")
		case "depth":
			var depth int
			readInt(&depth, "depth")
			if depth > 0 {
				limits.Depth = uint8(depth)
			}
		default:
			fmt.Println("info string Unknown go subcommand", goScanner.Text())
		}
	}
	return limits
}
