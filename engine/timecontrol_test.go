package engine

import (
	"testing"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/matryer/is"
)

func TestTimeHandlerFixedMoveTime(t *testing.T) {
	is := is.New(t)

	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	var th timeHandler
	th.start(&board, 60000, 0, 0, 250, false)

	is.Equal(th.budget, 250*time.Millisecond)
	is.Equal(th.hardExceeded(), false)
}

func TestTimeHandlerUnbounded(t *testing.T) {
	is := is.New(t)

	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	var th timeHandler
	th.start(&board, 0, 0, 0, 0, true)

	is.Equal(th.hardExceeded(), false)
	is.Equal(th.softExceeded(), false)
}

func TestTimeHandlerNoIncrementDivision(t *testing.T) {
	is := is.New(t)

	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	var th timeHandler
	th.start(&board, 4000, 0, 0, 0, false)

	is.Equal(th.budget, 100*time.Millisecond) // 4000 / 40
}

func TestTimeHandlerPanicLivesOffIncrement(t *testing.T) {
	is := is.New(t)

	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	var th timeHandler
	th.start(&board, 500, 1000, 0, 0, false)

	// 90% of the increment, clamped to 70% of the remaining clock.
	is.Equal(th.budget, 350*time.Millisecond)
}

func TestTimeHandlerNeverBelowFloor(t *testing.T) {
	is := is.New(t)

	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	var th timeHandler
	th.start(&board, 100, 0, 0, 0, false)

	is.Equal(th.budget, time.Duration(minMoveMs)*time.Millisecond)
}

func TestTimeHandlerMovesToGoOverridesEstimate(t *testing.T) {
	is := is.New(t)

	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	var th timeHandler
	th.start(&board, 40000, 1000, 10, 0, false)

	// 40000/10 + 1000 increment.
	is.Equal(th.budget, 5000*time.Millisecond)
}

func TestTimeHandlerSoftExceeded(t *testing.T) {
	is := is.New(t)

	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	var th timeHandler
	th.start(&board, 60000, 0, 0, 100, false)

	is.Equal(th.softExceeded(), false)
	th.started = time.Now().Add(-80 * time.Millisecond)
	is.True(th.softExceeded())
}

func TestEstimateMovesRemaining(t *testing.T) {
	is := is.New(t)

	// Full board: plan for a long game. Bare kings: wrap up soon.
	is.Equal(estimateMovesRemaining(TotalPhase), 45)
	is.Equal(estimateMovesRemaining(0), 20)
}
