package engine

import (
	"time"

	"github.com/dylhunn/dragontoothmg"
)

// timeHandler turns a clock state into one budget for the current move.
// The hard deadline is polled inside the search; the soft check between
// iterations refuses to start a depth that realistically cannot finish.
type timeHandler struct {
	started      time.Time
	budget       time.Duration
	hardDeadline time.Time
	unbounded    bool
}

const (
	overheadMs     = 30   // reserve for protocol/IO jitter
	minMoveMs      = 5    // never less than this
	maxFrac        = 0.7  // never spend more than 70% of the clock
	panicThreshMs  = 1000 // below this, live off the increment
	panicFrac      = 0.90
	noIncrementDiv = 40
)

// start computes the budget for this move. movesToGo, moveTimeMs and a zero
// remaining clock all change the shape of the allocation; an unbounded
// search (fixed depth, infinite) disables the deadline entirely.
func (th *timeHandler) start(b *dragontoothmg.Board, remainingMs, incrementMs, movesToGo, moveTimeMs int, unbounded bool) {
	th.started = time.Now()
	th.unbounded = unbounded
	if unbounded {
		th.budget = 0
		th.hardDeadline = time.Time{}
		return
	}

	if moveTimeMs > 0 {
		th.budget = time.Duration(moveTimeMs) * time.Millisecond
		th.hardDeadline = th.started.Add(th.budget)
		return
	}

	movesLeft := movesToGo
	if movesLeft <= 0 {
		movesLeft = estimateMovesRemaining(GetPiecePhase(b))
	}

	var moveTime int
	if incrementMs > 0 {
		if remainingMs < panicThreshMs {
			// Panic: try to bank a little time off the increment.
			moveTime = int(float64(incrementMs) * panicFrac)
		} else {
			moveTime = remainingMs/movesLeft + incrementMs
		}
	} else {
		moveTime = remainingMs / noIncrementDiv
	}

	if moveTime > int(float64(remainingMs)*maxFrac) {
		moveTime = int(float64(remainingMs) * maxFrac)
	}
	if moveTime > remainingMs-overheadMs {
		moveTime = remainingMs - overheadMs
	}
	if moveTime < minMoveMs {
		moveTime = minMoveMs
	}

	th.budget = time.Duration(moveTime) * time.Millisecond
	th.hardDeadline = th.started.Add(th.budget)
}

// hardExceeded is the poll the search runs every few thousand nodes.
func (th *timeHandler) hardExceeded() bool {
	if th.unbounded {
		return false
	}
	return time.Now().After(th.hardDeadline)
}

// softExceeded is checked between iterations: once more than half the
// budget is gone, the next iteration would almost certainly be cut short.
func (th *timeHandler) softExceeded() bool {
	if th.unbounded {
		return false
	}
	return time.Since(th.started) > th.budget/2
}

// estimateMovesRemaining interpolates between 20 moves left (endgame) and
// 45 (opening) from the material phase.
func estimateMovesRemaining(phase int) int {
	return (phase*25)/24 + 20
}
