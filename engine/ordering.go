package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

type scoredMove struct {
	move  dragontoothmg.Move
	score uint16
}

type moveList struct {
	moves []scoredMove
}

// Most Valuable Victim - Least Valuable Aggressor; used to score & sort captures
var mvvLva [7][7]uint16 = [7][7]uint16{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 14, 13, 12, 11, 10, 0}, // victim Pawn
	{0, 24, 23, 22, 21, 20, 0}, // victim Knight
	{0, 34, 33, 32, 31, 30, 0}, // victim Bishop
	{0, 44, 43, 42, 41, 40, 0}, // victim Rook
	{0, 54, 53, 52, 51, 50, 0}, // victim Queen
	{0, 0, 0, 0, 0, 0, 0},      // victim King
}

/*
	Move ordering offsets.
	The hash move goes first: it guided us here before and usually still
	does. Promotions and captures follow so tactical shots are never buried.
	Among quiets, killers and the counter move get fixed bumps while history
	supplies the fine grain; a hot history score may outrank both.
*/
var pvOffset uint16 = 25000
var promotionOffset uint16 = 20000
var captureOffset uint16 = 15000

var killerOffset uint16 = 2000
var counterOffset uint16 = 1000

var historyMaxVal = 10000 // aging halves the table once any cell reaches this

// GetPieceTypeAtPosition reports which piece of the given side sits on a square.
func GetPieceTypeAtPosition(position uint8, bitboards *dragontoothmg.Bitboards) (pieceType dragontoothmg.Piece, occupied bool) {
	if bitboards.Pawns&(1<<position) > 0 {
		return dragontoothmg.Pawn, true
	} else if bitboards.Knights&(1<<position) > 0 {
		return dragontoothmg.Knight, true
	} else if bitboards.Bishops&(1<<position) > 0 {
		return dragontoothmg.Bishop, true
	} else if bitboards.Rooks&(1<<position) > 0 {
		return dragontoothmg.Rook, true
	} else if bitboards.Queens&(1<<position) > 0 {
		return dragontoothmg.Queen, true
	} else if bitboards.Kings&(1<<position) > 0 {
		return dragontoothmg.King, true
	}
	return 0, false
}

// orderNextMove selection-sorts the highest scored remaining move into
// position currIndex. Cheaper than a full sort since a cutoff usually comes
// within the first few moves.
func orderNextMove(currIndex uint8, moves *moveList) {
	bestIndex := currIndex
	bestScore := moves.moves[bestIndex].score

	for index := bestIndex + 1; index < uint8(len(moves.moves)); index++ {
		if moves.moves[index].score > bestScore {
			bestIndex = index
			bestScore = moves.moves[index].score
		}
	}

	tempMove := moves.moves[currIndex]
	moves.moves[currIndex] = moves.moves[bestIndex]
	moves.moves[bestIndex] = tempMove
}

func (e *Engine) scoreMovesList(board *dragontoothmg.Board, moves []dragontoothmg.Move, ply int8, pvMove dragontoothmg.Move, prevMove dragontoothmg.Move) (movesList moveList) {
	var bitboardsOwn *dragontoothmg.Bitboards
	var bitboardsOpponent *dragontoothmg.Bitboards
	if board.Wtomove {
		bitboardsOwn = &board.White
		bitboardsOpponent = &board.Black
	} else {
		bitboardsOwn = &board.Black
		bitboardsOpponent = &board.White
	}

	side := 0
	if !board.Wtomove {
		side = 1
	}

	movesList.moves = make([]scoredMove, len(moves))
	for i := 0; i < len(moves); i++ {
		move := moves[i]
		var moveEval uint16
		capturedPiece, isCapture := GetPieceTypeAtPosition(move.To(), bitboardsOpponent)
		promotePiece := move.Promote()

		if move == pvMove && pvMove != 0 {
			moveEval = pvOffset + 1500 // clears every other offset
		} else if promotePiece != dragontoothmg.Nothing {
			moveEval = promotionOffset + uint16(PieceValue[promotePiece])
		} else if isCapture {
			pieceTypeFrom, _ := GetPieceTypeAtPosition(move.From(), bitboardsOwn)
			moveEval = captureOffset + mvvLva[capturedPiece][pieceTypeFrom]
		} else if e.killers[ply][0] == move {
			moveEval = killerOffset + 200
		} else if e.killers[ply][1] == move {
			moveEval = killerOffset
		} else {
			moveEval = uint16(e.history[side][move.From()][move.To()])
			if e.counters[side][prevMove.From()][prevMove.To()] == move {
				moveEval += counterOffset
			}
		}

		movesList.moves[i].move = move
		movesList.moves[i].score = moveEval
	}
	return movesList
}

// scoreCaptures keeps only captures and promotions, scored for quiescence.
func (e *Engine) scoreCaptures(board *dragontoothmg.Board, moves []dragontoothmg.Move) (movesList moveList) {
	var bitboardsOwn *dragontoothmg.Bitboards
	var bitboardsOpponent *dragontoothmg.Bitboards
	if board.Wtomove {
		bitboardsOwn = &board.White
		bitboardsOpponent = &board.Black
	} else {
		bitboardsOwn = &board.Black
		bitboardsOpponent = &board.White
	}

	movesList.moves = make([]scoredMove, 0, len(moves))
	for i := 0; i < len(moves); i++ {
		move := moves[i]
		isPromotion := move.Promote() != dragontoothmg.Nothing
		if !isPromotion && !dragontoothmg.IsCapture(move, board) {
			continue
		}

		var moveEval uint16
		if isPromotion {
			moveEval = captureOffset + 75
		} else {
			ourPiece, _ := GetPieceTypeAtPosition(move.From(), bitboardsOwn)
			enemyPiece, _ := GetPieceTypeAtPosition(move.To(), bitboardsOpponent)
			moveEval = mvvLva[enemyPiece][ourPiece]
		}

		movesList.moves = append(movesList.moves, scoredMove{move: move, score: moveEval})
	}
	return movesList
}

// insertKiller remembers a quiet move that refuted this ply.
func (e *Engine) insertKiller(move dragontoothmg.Move, ply int8) {
	if move != e.killers[ply][0] {
		e.killers[ply][1] = e.killers[ply][0]
		e.killers[ply][0] = move
	}
}

func (e *Engine) isKiller(move dragontoothmg.Move, ply int8) bool {
	return e.killers[ply][0] == move || e.killers[ply][1] == move
}

// storeCounter keeps the move that refuted the opponent's previous move.
func (e *Engine) storeCounter(sideToMove bool, prevMove dragontoothmg.Move, move dragontoothmg.Move) {
	if sideToMove {
		e.counters[0][prevMove.From()][prevMove.To()] = move
	} else {
		e.counters[1][prevMove.From()][prevMove.To()] = move
	}
}

// incrementHistoryScore rewards a quiet move that caused a cutoff, scaled by
// depth so results near the root dominate.
func (e *Engine) incrementHistoryScore(sideToMove bool, move dragontoothmg.Move, depth int8) {
	sideIdx := 0
	if !sideToMove {
		sideIdx = 1
	}

	e.history[sideIdx][move.From()][move.To()] += int(depth) * int(depth)
	if e.history[sideIdx][move.From()][move.To()] >= historyMaxVal {
		e.ageHistoryTable(sideIdx)
	}
}

// decrementHistoryScoreBy punishes quiet moves that were tried before the
// cutoff move and failed.
func (e *Engine) decrementHistoryScoreBy(sideToMove bool, move dragontoothmg.Move, depth int8) {
	sideIdx := 0
	if !sideToMove {
		sideIdx = 1
	}

	e.history[sideIdx][move.From()][move.To()] -= int(depth) * int(depth)
	if e.history[sideIdx][move.From()][move.To()] < 0 {
		e.history[sideIdx][move.From()][move.To()] = 0
	}
}

// ageHistoryTable halves the scores so old games stop dominating ordering.
func (e *Engine) ageHistoryTable(sideIdx int) {
	for sq1 := 0; sq1 < 64; sq1++ {
		for sq2 := 0; sq2 < 64; sq2++ {
			e.history[sideIdx][sq1][sq2] /= 2
		}
	}
}

// clearSearchTables wipes the killer, history and counter tables.
func (e *Engine) clearSearchTables() {
	for ply := 0; ply <= MaxDepth; ply++ {
		e.killers[ply][0] = 0
		e.killers[ply][1] = 0
	}
	for sq1 := 0; sq1 < 64; sq1++ {
		for sq2 := 0; sq2 < 64; sq2++ {
			e.history[0][sq1][sq2] = 0
			e.history[1][sq1][sq2] = 0
			e.counters[0][sq1][sq2] = 0
			e.counters[1][sq1][sq2] = 0
		}
	}
}
