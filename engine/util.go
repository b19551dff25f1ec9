package engine

import "fmt"

// MaxDepth bounds the search ply; also sizes the killer table.
const MaxDepth = 100

func maxInt32(x, y int32) int32 {
	if x > y {
		return x
	}
	return y
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// getMateOrCPScore renders a score the way the UCI protocol wants it:
// "mate N" for forced mates, "cp N" otherwise.
func getMateOrCPScore(score int32) string {
	if score >= Checkmate {
		pliesToMate := MaxScore - score
		if pliesToMate < 0 {
			pliesToMate = 0
		}
		return fmt.Sprintf("mate %d", (pliesToMate+1)/2)
	}
	if score <= -Checkmate {
		pliesToMate := MaxScore + score
		if pliesToMate < 0 {
			pliesToMate = 0
		}
		return fmt.Sprintf("mate %d", -(pliesToMate+1)/2)
	}
	return fmt.Sprintf("cp %d", score)
}

// MateIn converts a mate-encoded score into full moves until mate, ok=false
// for ordinary scores.
func MateIn(score int32) (moves int32, ok bool) {
	if score >= Checkmate {
		return (MaxScore - score + 1) / 2, true
	}
	if score <= -Checkmate {
		return -(MaxScore + score + 1) / 2, true
	}
	return 0, false
}
