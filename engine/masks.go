package engine

// Precomputed square, file, rank and attack masks used by evaluation,
// move ordering and static exchange evaluation.

var PositionBB [65]uint64

var KnightMasks [64]uint64
var KingMoves [65]uint64

const bitboardFileA uint64 = 0x0101010101010101
const bitboardFileH uint64 = 0x8080808080808080

var onlyFile [8]uint64
var onlyRank [8]uint64

// adjacentFiles[f] covers the files next to f, not f itself.
var adjacentFiles [8]uint64

// passedPawnMask[side][sq] covers every square a pawn on sq must clear of
// enemy pawns to count as passed: its own file and both neighbours, all
// ranks ahead of it.
var passedPawnMask [2]uint64Per64

type uint64Per64 [64]uint64

func init() {
	for f := 0; f < 8; f++ {
		onlyFile[f] = bitboardFileA << uint(f)
	}
	for r := 0; r < 8; r++ {
		onlyRank[r] = uint64(0xFF) << uint(r*8)
	}
	for f := 0; f < 8; f++ {
		if f > 0 {
			adjacentFiles[f] |= onlyFile[f-1]
		}
		if f < 7 {
			adjacentFiles[f] |= onlyFile[f+1]
		}
	}

	for sq := 0; sq < 64; sq++ {
		PositionBB[sq] = uint64(1) << uint(sq)
	}
	PositionBB[64] = 0

	for sq := 0; sq < 64; sq++ {
		sqBB := PositionBB[sq]

		top := sqBB << 8
		bottom := sqBB >> 8
		left := (sqBB >> 1) &^ bitboardFileH
		right := (sqBB << 1) &^ bitboardFileA
		topLeft := (sqBB << 7) &^ bitboardFileH
		topRight := (sqBB << 9) &^ bitboardFileA
		bottomLeft := (sqBB >> 9) &^ bitboardFileH
		bottomRight := (sqBB >> 7) &^ bitboardFileA
		KingMoves[sq] = top | bottom | left | right | topLeft | topRight | bottomLeft | bottomRight

		nne := (sqBB << 17) &^ bitboardFileA
		nee := (sqBB << 10) &^ (bitboardFileA | bitboardFileA<<1)
		see := (sqBB >> 6) &^ (bitboardFileA | bitboardFileA<<1)
		sse := (sqBB >> 15) &^ bitboardFileA
		nnw := (sqBB << 15) &^ bitboardFileH
		nww := (sqBB << 6) &^ (bitboardFileH | bitboardFileH>>1)
		sww := (sqBB >> 10) &^ (bitboardFileH | bitboardFileH>>1)
		ssw := (sqBB >> 17) &^ bitboardFileH
		KnightMasks[sq] = nne | nee | see | sse | nnw | nww | sww | ssw
	}
	KingMoves[64] = 0

	for sq := 0; sq < 64; sq++ {
		file := sq % 8
		rank := sq / 8

		var ahead, behind uint64
		for r := rank + 1; r < 8; r++ {
			ahead |= onlyRank[r]
		}
		for r := 0; r < rank; r++ {
			behind |= onlyRank[r]
		}

		span := onlyFile[file] | adjacentFiles[file]
		passedPawnMask[0][sq] = span & ahead
		passedPawnMask[1][sq] = span & behind
	}
}

// PawnCaptureBitboards returns the east and west capture targets for the
// given pawn set. White pawns capture up the board, black pawns down.
func PawnCaptureBitboards(pawns uint64, white bool) (east uint64, west uint64) {
	if white {
		east = (pawns << 9) &^ bitboardFileA
		west = (pawns << 7) &^ bitboardFileH
	} else {
		east = (pawns >> 7) &^ bitboardFileA
		west = (pawns >> 9) &^ bitboardFileH
	}
	return east, west
}
