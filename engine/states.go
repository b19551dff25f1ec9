package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

const fiftyMoveLimit = 100

// positionState is what we need to reason about repetitions and the
// fifty-move rule; the rules engine does not track either across moves.
type positionState struct {
	Hash   uint64
	Rule50 int
}

// ResetStateTracking rebuilds the history so it only contains the current board.
func (e *Engine) ResetStateTracking(board *dragontoothmg.Board) {
	e.states = e.states[:0]
	e.pushState(board)
}

// RecordState appends the board's current state to the game history. The
// front end calls this for every move actually played, so repetitions that
// span the root are detected during search.
func (e *Engine) RecordState(board *dragontoothmg.Board) {
	e.pushState(board)
}

// ensureStateStackSynced guarantees the top of the stack is the given board.
func (e *Engine) ensureStateStackSynced(board *dragontoothmg.Board) {
	if len(e.states) == 0 {
		e.pushState(board)
		return
	}
	last := &e.states[len(e.states)-1]
	if last.Hash != board.Hash() {
		e.ResetStateTracking(board)
		return
	}
	last.Rule50 = int(board.Halfmoveclock)
}

func (e *Engine) pushState(board *dragontoothmg.Board) {
	e.states = append(e.states, positionState{
		Hash:   board.Hash(),
		Rule50: int(board.Halfmoveclock),
	})
}

func (e *Engine) popState() {
	if len(e.states) == 0 {
		return
	}
	e.states = e.states[:len(e.states)-1]
}

// isDraw reports a fifty-move draw or a repetition. A single repetition
// inside the search tree (at or past rootIndex) already counts: the side
// that allows it could force the threefold.
func (e *Engine) isDraw(rootIndex int) bool {
	if len(e.states) == 0 {
		return false
	}
	curr := e.states[len(e.states)-1]
	if curr.Rule50 >= fiftyMoveLimit {
		return true
	}

	matchCount, firstIdx := e.repetitionInfo(curr.Hash, curr.Rule50)
	if matchCount >= 2 {
		return true
	}
	return matchCount >= 1 && firstIdx >= rootIndex
}

func (e *Engine) repetitionInfo(hash uint64, rule50 int) (count int, firstIdx int) {
	firstIdx = -1
	if len(e.states) <= 1 {
		return 0, firstIdx
	}
	start := len(e.states) - 1 - rule50
	if start < 0 {
		start = 0
	}
	for i := start; i <= len(e.states)-2; i++ {
		if e.states[i].Hash == hash {
			count++
			if firstIdx == -1 {
				firstIdx = i
			}
		}
	}
	return count, firstIdx
}
