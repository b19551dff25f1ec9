package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

// Root aspiration window half-width, in centipawns.
var aspirationWindowSize int32 = 50

// Quiescence tuning.
var deltaMargin int32 = 975
var quiescenceSeeMargin int32 = 100
var quiescenceMaxDepth int8 = 30

// alphabeta is a fail-soft negamax search. Every pruning device in here is
// score-preserving: the value returned for the window (alpha, beta) is the
// same one a full-width negamax of the same depth would find.
func (e *Engine) alphabeta(b *dragontoothmg.Board, alpha int32, beta int32, depth int8, ply int8, pvLine *PVLine, prevMove dragontoothmg.Move, rootIndex int) int32 {
	nodes := e.nodes.Add(1)

	if nodes&4095 == 0 && e.allowStop {
		if e.timing.hardExceeded() || (e.ctx != nil && e.ctx.Err() != nil) {
			e.stopped = true
		}
	}
	if e.stopped {
		return 0
	}

	if ply >= MaxDepth {
		return Evaluate(b)
	}

	var childPVLine = PVLine{}
	isRoot := ply == 0

	if !isRoot && e.isDraw(rootIndex) {
		return DrawScore
	}

	inCheck := b.OurKingInCheck()
	if inCheck {
		depth++
	}

	if depth <= 0 {
		return e.quiescence(b, alpha, beta, pvLine, quiescenceMaxDepth, ply)
	}

	posHash := b.Hash()

	var bestMove dragontoothmg.Move
	var ttMove dragontoothmg.Move
	ttEntry, ttHit := e.tt.ProbeEntry(posHash)
	if ttHit {
		ttMove = ttEntry.Move
	}
	usable, ttScore := e.tt.UseEntry(ttEntry, posHash, depth, alpha, beta, ply)
	if usable && !isRoot {
		return ttScore
	}

	allMoves := b.GenerateLegalMoves()
	if len(allMoves) == 0 {
		if inCheck {
			return -MaxScore + int32(ply)
		}
		return DrawScore
	}

	var bestScore int32 = -MaxScore
	var ttFlag = AlphaFlag
	moveList := e.scoreMovesList(b, allMoves, ply, ttMove, prevMove)
	legalMoves := 0

	// Quiet moves tried before the cutoff move, for the history malus.
	quietMovesTried := make([]dragontoothmg.Move, 0, 16)

	for index := uint8(0); index < uint8(len(moveList.moves)); index++ {
		orderNextMove(index, &moveList)
		move := moveList.moves[index].move

		isCapture := dragontoothmg.IsCapture(move, b)
		if !isCapture {
			quietMovesTried = append(quietMovesTried, move)
		}
		legalMoves++

		unapply := e.applyMoveWithState(b, move)

		var score int32
		if legalMoves == 1 {
			score = -e.alphabeta(b, -beta, -alpha, depth-1, ply+1, &childPVLine, move, rootIndex)
		} else {
			score = e.searchMoveWithPVS(b, move, depth-1, alpha, beta, ply, rootIndex, &childPVLine)
		}

		unapply()

		if e.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
		}

		if score >= beta {
			ttFlag = BetaFlag
			if !isCapture {
				e.insertKiller(move, ply)
				e.storeCounter(b.Wtomove, prevMove, move)
				e.incrementHistoryScore(b.Wtomove, move, depth)
				for _, failedMove := range quietMovesTried {
					if failedMove != move {
						e.decrementHistoryScoreBy(b.Wtomove, failedMove, depth)
					}
				}
			}
			break
		}

		if score > alpha {
			alpha = score
			ttFlag = ExactFlag
			pvLine.Update(move, childPVLine)
			if !isCapture {
				e.incrementHistoryScore(b.Wtomove, move, depth)
			}
		}
		childPVLine.Clear()
	}

	if !e.stopped {
		e.tt.StoreEntry(posHash, depth, ply, bestMove, bestScore, ttFlag)
	}

	return bestScore
}

// quiescence resolves captures (and check evasions) until the position is
// quiet, so the leaf evaluation never sits in the middle of an exchange.
// Depth is bounded; each recursion consumes a capture or an evasion, so the
// move stack cannot run away.
func (e *Engine) quiescence(b *dragontoothmg.Board, alpha int32, beta int32, pvLine *PVLine, depth int8, ply int8) int32 {
	nodes := e.nodes.Add(1)

	if nodes&4095 == 0 && e.allowStop {
		if e.timing.hardExceeded() || (e.ctx != nil && e.ctx.Err() != nil) {
			e.stopped = true
		}
	}
	if e.stopped {
		return 0
	}

	inCheck := b.OurKingInCheck()
	var childPVLine = PVLine{}

	standpat := Evaluate(b)
	if depth <= 0 || ply >= MaxDepth {
		return standpat
	}

	if !inCheck {
		if standpat >= beta {
			return standpat
		}
		if standpat > alpha {
			alpha = standpat
		}
	}

	var bestScore int32
	if inCheck {
		bestScore = -MaxScore // must escape the check
	} else {
		bestScore = standpat
	}

	allMoves := b.GenerateLegalMoves()
	if len(allMoves) == 0 {
		if inCheck {
			return -MaxScore + int32(ply)
		}
		return DrawScore
	}

	var moves moveList
	if inCheck {
		moves = e.scoreMovesList(b, allMoves, ply, 0, 0)
	} else {
		moves = e.scoreCaptures(b, allMoves)
	}

	for index := uint8(0); index < uint8(len(moves.moves)); index++ {
		orderNextMove(index, &moves)
		move := moves.moves[index].move

		if !inCheck {
			// Skip clearly losing exchanges.
			if see(b, move) < -quiescenceSeeMargin {
				continue
			}

			// Delta pruning: even the best case for this capture cannot
			// lift us back to alpha.
			var moveGain int32
			if captured, isCapture := capturedPieceType(b, move); isCapture {
				moveGain = PieceValue[captured]
			}
			if promo := move.Promote(); promo != dragontoothmg.Nothing {
				moveGain += PieceValue[promo] - PieceValue[dragontoothmg.Pawn]
			}
			if standpat+moveGain+deltaMargin < alpha {
				continue
			}
		}

		unapply := e.applyMoveWithState(b, move)
		score := -e.quiescence(b, -beta, -alpha, &childPVLine, depth-1, ply+1)
		unapply()

		if score > bestScore {
			bestScore = score
		}
		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
			pvLine.Update(move, childPVLine)
		}
		childPVLine.Clear()
	}

	return bestScore
}

// searchMoveWithPVS searches a non-first move with a null window, then
// re-searches with the full window if it might raise alpha. The re-search
// keeps the score exact for the PV.
func (e *Engine) searchMoveWithPVS(b *dragontoothmg.Board, move dragontoothmg.Move, depth int8,
	alpha int32, beta int32, ply int8, rootIndex int, childPVLine *PVLine) int32 {

	score := -e.alphabeta(b, -(alpha + 1), -alpha, depth, ply+1, childPVLine, move, rootIndex)

	if score > alpha && score < beta {
		score = -e.alphabeta(b, -beta, -alpha, depth, ply+1, childPVLine, move, rootIndex)
	}
	return score
}

// applyMoveWithState makes a move and tracks the resulting position on the
// draw-detection stack; the returned closure undoes both.
func (e *Engine) applyMoveWithState(b *dragontoothmg.Board, move dragontoothmg.Move) func() {
	unapply := b.Apply(move)
	e.pushState(b)
	return func() {
		unapply()
		e.popState()
	}
}

// capturedPieceType reports what a capture takes; en passant counts a pawn.
func capturedPieceType(b *dragontoothmg.Board, move dragontoothmg.Move) (dragontoothmg.Piece, bool) {
	them := &b.Black
	if !b.Wtomove {
		them = &b.White
	}
	if piece, occupied := GetPieceTypeAtPosition(move.To(), them); occupied {
		return piece, true
	}
	if dragontoothmg.IsCapture(move, b) {
		return dragontoothmg.Pawn, true
	}
	return dragontoothmg.Nothing, false
}
