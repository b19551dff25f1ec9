package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"sync/atomic"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"mallard/book"
	"mallard/tablebase"
)

const (
	MaxScore  int32 = 32500
	Checkmate int32 = 20000
	DrawScore int32 = 0
)

var ErrNilBoard = errors.New("engine: nil board")

// Status tells the caller what kind of result came back from a search.
type Status uint8

const (
	StatusNormal Status = iota
	StatusCheckmated
	StatusStalemate
	StatusDraw
	StatusBookMove
	StatusTablebaseMove
)

func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusCheckmated:
		return "checkmated"
	case StatusStalemate:
		return "stalemate"
	case StatusDraw:
		return "draw"
	case StatusBookMove:
		return "book"
	case StatusTablebaseMove:
		return "tablebase"
	}
	return "unknown"
}

// Limits bounds a single search. Zero values mean "not set"; with nothing
// set the search runs a minimal clock budget. Depth caps the iteration
// depth; MoveTimeMs fixes the budget exactly; Infinite disables the clock.
type Limits struct {
	WhiteTimeMs int
	BlackTimeMs int
	WhiteIncMs  int
	BlackIncMs  int
	MovesToGo   int
	Depth       uint8
	MoveTimeMs  int
	Infinite    bool
}

// Result is everything a search produced. BestMove is the zero move when
// Status reports the game is already over at the root.
type Result struct {
	BestMove dragontoothmg.Move
	Score    int32
	Depth    uint8
	Nodes    uint64
	PV       []dragontoothmg.Move
	Status   Status
}

// Searcher is the capability the front ends program against.
type Searcher interface {
	Search(ctx context.Context, board *dragontoothmg.Board, limits Limits) (Result, error)
}

// Options configures a new engine instance.
type Options struct {
	TTSizeMB      int
	BookPath      string
	BookPlies     int // consult the book through this many game plies
	BookSeed      uint64
	TablebasePath string
	TablebaseMen  int
	MaxDepth      uint8
	Info          io.Writer // optional sink for UCI "info" lines
}

const defaultBookPlies = 16

// Engine owns every piece of search state: transposition table, killer,
// history and counter tables, the game history used for draw detection, and
// the book and tablebase probes. Instances are independent, so one process
// can serve several games at once.
type Engine struct {
	opts Options

	tt       *TransTable
	killers  [MaxDepth + 1][2]dragontoothmg.Move
	history  [2][64][64]int
	counters [2][64][64]dragontoothmg.Move
	states   []positionState
	timing   timeHandler

	book *book.Book
	tb   tablebase.Prober

	// per-search state
	ctx          context.Context
	nodes        atomic.Uint64
	stopped      bool
	allowStop    bool
	prevScore    int32
	hasPrevScore bool
}

var _ Searcher = (*Engine)(nil)

// New builds an engine. A missing book or tablebase directory is a soft
// miss: the engine logs it and plays on without.
func New(opts Options) *Engine {
	if opts.TTSizeMB <= 0 {
		opts.TTSizeMB = DefaultTTSizeMB
	}
	if opts.BookPlies <= 0 {
		opts.BookPlies = defaultBookPlies
	}
	if opts.TablebaseMen <= 0 {
		opts.TablebaseMen = tablebase.DefaultMaxMen
	}
	if opts.MaxDepth == 0 || opts.MaxDepth > MaxDepth {
		opts.MaxDepth = MaxDepth
	}

	e := &Engine{
		opts: opts,
		tt:   NewTransTable(opts.TTSizeMB),
		tb:   tablebase.NoopProber{},
	}

	if opts.BookPath != "" {
		bk, err := book.Load(opts.BookPath)
		if err != nil {
			log.Warn().Err(err).Str("path", opts.BookPath).Msg("opening book unavailable")
		} else {
			bk.Seed(opts.BookSeed)
			e.book = bk
			log.Debug().Int("entries", bk.Len()).Str("path", opts.BookPath).Msg("opening book loaded")
		}
	}

	if opts.TablebasePath != "" {
		prober, err := tablebase.OpenDirectory(opts.TablebasePath, opts.TablebaseMen)
		if err != nil {
			log.Warn().Err(err).Str("path", opts.TablebasePath).Msg("tablebase unavailable")
		} else {
			e.tb = prober
		}
	}

	return e
}

// NewGame resets everything that must not leak between games.
func (e *Engine) NewGame() {
	e.tt.Clear()
	e.clearSearchTables()
	e.states = e.states[:0]
	e.prevScore = 0
	e.hasPrevScore = false
}

// Search picks a move for the side to move within the given limits.
//
// The root is resolved in this order: game-over verdicts (no legal moves,
// fifty-move rule, threefold repetition), then the opening book, then the
// endgame tablebase, then iterative deepening. Whatever the time budget,
// the depth-1 iteration always runs to completion, so a legal move comes
// back whenever one exists.
func (e *Engine) Search(ctx context.Context, board *dragontoothmg.Board, limits Limits) (Result, error) {
	if board == nil {
		return Result{}, ErrNilBoard
	}

	e.ensureStateStackSynced(board)

	legalMoves := board.GenerateLegalMoves()
	if len(legalMoves) == 0 {
		if board.OurKingInCheck() {
			return Result{Score: -MaxScore, Status: StatusCheckmated}, nil
		}
		return Result{Score: DrawScore, Status: StatusStalemate}, nil
	}
	if e.rootIsDraw() {
		return Result{Score: DrawScore, Status: StatusDraw}, nil
	}

	if move, ok := e.probeBook(board, legalMoves); ok {
		return Result{BestMove: move, Status: StatusBookMove, PV: []dragontoothmg.Move{move}}, nil
	}
	if move, score, ok := e.probeTablebase(board); ok {
		return Result{BestMove: move, Score: score, Status: StatusTablebaseMove, PV: []dragontoothmg.Move{move}}, nil
	}

	depth := limits.Depth
	unbounded := limits.Infinite || depth > 0
	if depth == 0 || depth > e.opts.MaxDepth {
		depth = e.opts.MaxDepth
	}

	remaining, increment := limits.WhiteTimeMs, limits.WhiteIncMs
	if !board.Wtomove {
		remaining, increment = limits.BlackTimeMs, limits.BlackIncMs
	}
	e.timing.start(board, remaining, increment, limits.MovesToGo, limits.MoveTimeMs, unbounded && limits.MoveTimeMs == 0)

	e.ctx = ctx
	e.nodes.Store(0)
	e.stopped = false
	e.tt.NextGeneration()

	searchDone := make(chan struct{})
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-searchDone:
				return nil
			case <-ticker.C:
				nodes := e.nodes.Load()
				elapsed := time.Since(start)
				log.Debug().
					Uint64("nodes", nodes).
					Float64("nps", float64(nodes)/elapsed.Seconds()).
					Dur("elapsed", elapsed).
					Msg("searching")
			}
		}
	})

	result := e.iterate(board, depth)
	close(searchDone)
	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

// iterate runs iterative deepening with an aspiration window seeded by the
// previous iteration's score. A fail outside the window widens it and
// repeats the same depth, so the returned scores stay exact.
func (e *Engine) iterate(b *dragontoothmg.Board, depth uint8) Result {
	var alpha int32 = -MaxScore
	var beta int32 = MaxScore
	var bestScore int32 = -MaxScore
	rootIndex := len(e.states) - 1

	if e.hasPrevScore {
		alpha = e.prevScore - aspirationWindowSize
		beta = e.prevScore + aspirationWindowSize
	}

	var pvLine PVLine
	var prevPVLine PVLine
	var depthReached uint8
	var mateFound bool

	currentWindow := aspirationWindowSize
	startTime := time.Now()

	for i := uint8(1); i <= depth; i++ {
		// Depth 1 always completes: it is what guarantees a legal move
		// under an exhausted clock.
		e.allowStop = i > 1

		if i > 1 && e.timing.softExceeded() {
			break
		}
		if i > 1 && e.ctx != nil && e.ctx.Err() != nil {
			break
		}

		pvLine.Clear()
		score := e.alphabeta(b, alpha, beta, int8(i), 0, &pvLine, 0, rootIndex)

		if e.stopped {
			if len(prevPVLine.Moves) == 0 && len(pvLine.Moves) > 0 {
				bestScore = score
				prevPVLine = pvLine.Clone()
				depthReached = i
			}
			break
		}

		// Aspiration window re-search on a fail: widen and repeat.
		if score <= alpha || score >= beta {
			currentWindow *= 2
			if currentWindow > MaxScore {
				currentWindow = MaxScore
			}
			alpha = score - currentWindow
			beta = score + currentWindow
			if alpha < -MaxScore {
				alpha = -MaxScore
			}
			if beta > MaxScore {
				beta = MaxScore
			}
			i--
			continue
		}

		bestScore = score
		depthReached = i
		prevPVLine = pvLine.Clone()
		e.prevScore = score
		e.hasPrevScore = true

		alpha = score - aspirationWindowSize
		beta = score + aspirationWindowSize
		currentWindow = aspirationWindowSize

		if score > Checkmate || score < -Checkmate {
			mateFound = true
		}

		elapsed := time.Since(startTime).Milliseconds()
		if elapsed == 0 {
			elapsed = 1
		}
		nodes := e.nodes.Load()
		if e.opts.Info != nil {
			fmt.Fprintln(e.opts.Info,
				"info depth", i,
				"score", getMateOrCPScore(score),
				"nodes", nodes,
				"time", elapsed,
				"nps", nodes*1000/uint64(elapsed),
				"pv", prevPVLine.String(),
			)
		}
		log.Debug().
			Uint8("depth", i).
			Int32("score", score).
			Uint64("nodes", nodes).
			Str("pv", prevPVLine.String()).
			Msg("iteration complete")

		if mateFound {
			break
		}
	}

	bestMove := prevPVLine.GetPVMove()
	if bestMove == 0 {
		// Interrupted before depth 1 could report: any legal move is
		// better than none.
		moves := b.GenerateLegalMoves()
		if len(moves) > 0 {
			bestMove = moves[0]
		}
	}

	return Result{
		BestMove: bestMove,
		Score:    bestScore,
		Depth:    depthReached,
		Nodes:    e.nodes.Load(),
		PV:       prevPVLine.Moves,
		Status:   StatusNormal,
	}
}

// rootIsDraw reports whether the game is already drawn where we stand:
// fifty-move rule, or the current position seen twice before in the game.
func (e *Engine) rootIsDraw() bool {
	if len(e.states) == 0 {
		return false
	}
	curr := e.states[len(e.states)-1]
	if curr.Rule50 >= fiftyMoveLimit {
		return true
	}
	count, _ := e.repetitionInfo(curr.Hash, curr.Rule50)
	return count >= 2
}

// probeBook consults the opening book while within the configured ply
// range. Every failure mode is a soft miss.
func (e *Engine) probeBook(b *dragontoothmg.Board, legalMoves []dragontoothmg.Move) (dragontoothmg.Move, bool) {
	if e.book == nil {
		return 0, false
	}
	ply := (int(b.Fullmoveno) - 1) * 2
	if !b.Wtomove {
		ply++
	}
	if ply >= e.opts.BookPlies {
		return 0, false
	}

	uci, ok := e.book.Pick(b.ToFen())
	if !ok {
		log.Debug().Str("fen", b.ToFen()).Msg("book miss")
		return 0, false
	}

	if move, ok := matchBookMove(uci, b, legalMoves); ok {
		log.Debug().Str("move", move.String()).Msg("book hit")
		return move, true
	}
	log.Debug().Str("uci", uci).Msg("book move not legal here")
	return 0, false
}

// matchBookMove resolves a book move string against the legal move list.
// Books store castling as king-takes-rook (e1h1); remap when the king
// actually stands on the from-square.
func matchBookMove(uci string, b *dragontoothmg.Board, legalMoves []dragontoothmg.Move) (dragontoothmg.Move, bool) {
	for _, m := range legalMoves {
		if m.String() == uci {
			return m, true
		}
	}

	castle := map[string]string{
		"e1h1": "e1g1", "e1a1": "e1c1",
		"e8h8": "e8g8", "e8a8": "e8c8",
	}
	remapped, isCastle := castle[uci]
	if !isCastle {
		return 0, false
	}
	kings := b.White.Kings | b.Black.Kings
	fromSq := (uci[0] - 'a') + (uci[1]-'1')*8
	if kings&PositionBB[fromSq] == 0 {
		return 0, false
	}
	for _, m := range legalMoves {
		if m.String() == remapped {
			return m, true
		}
	}
	return 0, false
}

// probeTablebase asks for a root best move once little enough material is
// left. Failures and absent tables are soft misses.
func (e *Engine) probeTablebase(b *dragontoothmg.Board) (dragontoothmg.Move, int32, bool) {
	men := bits.OnesCount64(b.White.All | b.Black.All)
	if men > e.tb.MaxMen() {
		return 0, 0, false
	}

	move, res, err := tablebase.BestRootMove(e.tb, b)
	if err != nil {
		if !errors.Is(err, tablebase.ErrNotFound) {
			log.Debug().Err(err).Msg("tablebase probe failed")
		}
		return 0, 0, false
	}

	var score int32
	switch {
	case res.WDL > 0:
		score = Checkmate - int32(res.DTZ)
	case res.WDL < 0:
		score = -Checkmate + int32(res.DTZ)
	}
	log.Debug().Str("move", move.String()).Int8("wdl", int8(res.WDL)).Msg("tablebase hit")
	return move, score, true
}
