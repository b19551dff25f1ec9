package engine

import (
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// PVLine is the principal variation gathered while searching: the sequence
// of best moves from the root as far as the search resolved it.
type PVLine struct {
	Moves []dragontoothmg.Move
}

// Clear the principal variation line.
func (pvLine *PVLine) Clear() {
	pvLine.Moves = pvLine.Moves[:0]
}

// Update replaces the line with a new best move followed by the best
// continuation found below it.
func (pvLine *PVLine) Update(move dragontoothmg.Move, childLine PVLine) {
	pvLine.Moves = pvLine.Moves[:0]
	pvLine.Moves = append(pvLine.Moves, move)
	pvLine.Moves = append(pvLine.Moves, childLine.Moves...)
}

// GetPVMove returns the first move of the line, or the zero move when the
// line is empty.
func (pvLine *PVLine) GetPVMove() dragontoothmg.Move {
	if len(pvLine.Moves) == 0 {
		return 0
	}
	return pvLine.Moves[0]
}

// Clone copies the line so a later Clear cannot disturb it.
func (pvLine *PVLine) Clone() PVLine {
	cloned := PVLine{Moves: make([]dragontoothmg.Move, len(pvLine.Moves))}
	copy(cloned.Moves, pvLine.Moves)
	return cloned
}

func (pvLine PVLine) String() string {
	var sb strings.Builder
	for i, move := range pvLine.Moves {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(move.String())
	}
	return sb.String()
}
