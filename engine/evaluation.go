package engine

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

// Evaluation weights, in centipawns. All of these can be reconfigured over
// UCI setoption before a search starts.
var (
	PieceValue = [7]int32{0, 100, 320, 330, 500, 900, 0}

	DoubledPawnPenalty  int32 = 15
	IsolatedPawnPenalty int32 = 15
	PassedPawnBonus           = [8]int32{0, 5, 10, 20, 35, 60, 100, 0}

	BishopPairBonus       int32 = 30
	RookOpenFileBonus     int32 = 25
	RookSemiOpenFileBonus int32 = 12

	KingShieldBonus  int32 = 10
	KingAttackWeight int32 = 8

	MobilityWeight int32 = 2
)

const TotalPhase = 24

// Piece-square tables, written as the board looks from white's side: the
// first row is rank 8. White pieces index with sq^56, black with sq.
var pawnPSTMG = [64]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 27, 27, 10, 5, 5,
	0, 0, 0, 25, 25, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -25, -25, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPSTMG = [64]int32{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPSTMG = [64]int32{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPSTMG = [64]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPSTMG = [64]int32{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-10, 5, 5, 5, 5, 5, 0, -10,
	0, 0, 5, 5, 5, 5, 0, -5,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingPSTMG = [64]int32{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var pawnPSTEG = [64]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	80, 80, 80, 80, 80, 80, 80, 80,
	50, 50, 50, 50, 50, 50, 50, 50,
	30, 30, 30, 30, 30, 30, 30, 30,
	20, 20, 20, 20, 20, 20, 20, 20,
	10, 10, 10, 10, 10, 10, 10, 10,
	10, 10, 10, 10, 10, 10, 10, 10,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPSTEG = [64]int32{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPSTEG = [64]int32{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPSTEG = [64]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPSTEG = [64]int32{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingPSTEG = [64]int32{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var pstMG = [7]*[64]int32{nil, &pawnPSTMG, &knightPSTMG, &bishopPSTMG, &rookPSTMG, &queenPSTMG, &kingPSTMG}
var pstEG = [7]*[64]int32{nil, &pawnPSTEG, &knightPSTEG, &bishopPSTEG, &rookPSTEG, &queenPSTEG, &kingPSTEG}

// GetPiecePhase sums the remaining non-pawn material into the 0..24 scale
// used for tapering: minors count 1, rooks 2, queens 4.
func GetPiecePhase(b *dragontoothmg.Board) int {
	phase := bits.OnesCount64(b.White.Knights|b.White.Bishops) +
		bits.OnesCount64(b.Black.Knights|b.Black.Bishops) +
		2*bits.OnesCount64(b.White.Rooks|b.Black.Rooks) +
		4*bits.OnesCount64(b.White.Queens|b.Black.Queens)
	if phase > TotalPhase {
		phase = TotalPhase
	}
	return phase
}

// gamePhase maps remaining material onto 0 (opening) .. 256 (bare endgame).
func gamePhase(b *dragontoothmg.Board) int32 {
	remaining := TotalPhase - GetPiecePhase(b)
	return int32((remaining*256 + TotalPhase/2) / TotalPhase)
}

// Evaluate scores the position from the side to move's perspective.
// Material and piece-square bonuses are tapered between the midgame and
// endgame tables by remaining material; pawn structure, piece activity,
// king safety and mobility terms come on top.
func Evaluate(b *dragontoothmg.Board) int32 {
	phase := gamePhase(b)

	var score int32
	var mg, eg int32

	occ := b.White.All | b.Black.All
	for x := occ; x != 0; x &= x - 1 {
		sq := uint8(bits.TrailingZeros64(x))
		piece, isWhite := GetPieceTypeAtPosition(sq, &b.White)
		if !isWhite {
			piece, _ = GetPieceTypeAtPosition(sq, &b.Black)
		}
		if piece == dragontoothmg.Nothing {
			continue
		}
		if isWhite {
			score += PieceValue[piece]
			mg += pstMG[piece][sq^56]
			eg += pstEG[piece][sq^56]
		} else {
			score -= PieceValue[piece]
			mg -= pstMG[piece][sq]
			eg -= pstEG[piece][sq]
		}
	}
	score += (mg*(256-phase) + eg*phase) / 256

	score += pawnStructure(b.White.Pawns, b.Black.Pawns, true)
	score -= pawnStructure(b.Black.Pawns, b.White.Pawns, false)

	score += pieceActivity(&b.White, &b.Black)
	score -= pieceActivity(&b.Black, &b.White)

	score += kingSafety(b, phase)

	score += MobilityWeight * mobility(b, true)
	score -= MobilityWeight * mobility(b, false)

	if !b.Wtomove {
		return -score
	}
	return score
}

// pawnStructure scores doubled, isolated and passed pawns for one side.
func pawnStructure(ourPawns uint64, theirPawns uint64, white bool) int32 {
	var score int32

	sideIdx := 0
	if !white {
		sideIdx = 1
	}

	for f := 0; f < 8; f++ {
		count := int32(bits.OnesCount64(ourPawns & onlyFile[f]))
		if count >= 2 {
			score -= DoubledPawnPenalty * (count - 1)
		}
	}

	for x := ourPawns; x != 0; x &= x - 1 {
		sq := bits.TrailingZeros64(x)
		file := sq % 8

		if ourPawns&adjacentFiles[file] == 0 {
			score -= IsolatedPawnPenalty
		}

		if theirPawns&passedPawnMask[sideIdx][sq] == 0 {
			rank := sq / 8
			if !white {
				rank = 7 - rank
			}
			score += PassedPawnBonus[rank]
		}
	}
	return score
}

// pieceActivity scores the bishop pair and rooks on open or half-open files.
func pieceActivity(us *dragontoothmg.Bitboards, them *dragontoothmg.Bitboards) int32 {
	var score int32

	if bits.OnesCount64(us.Bishops) >= 2 {
		score += BishopPairBonus
	}

	for x := us.Rooks; x != 0; x &= x - 1 {
		file := bits.TrailingZeros64(x) % 8
		ourPawnsOnFile := us.Pawns&onlyFile[file] != 0
		theirPawnsOnFile := them.Pawns&onlyFile[file] != 0
		if !ourPawnsOnFile && !theirPawnsOnFile {
			score += RookOpenFileBonus
		} else if !ourPawnsOnFile {
			score += RookSemiOpenFileBonus
		}
	}
	return score
}

// kingSafety rewards an intact pawn shield and punishes enemy pressure on
// the king zone. Fades out entirely once nearly all material is gone.
func kingSafety(b *dragontoothmg.Board, phase int32) int32 {
	if phase > 200 {
		return 0
	}

	whiteAttacks := attackBitboard(b, true)
	blackAttacks := attackBitboard(b, false)

	var score int32
	score += kingSafetySide(&b.White, blackAttacks, true)
	score -= kingSafetySide(&b.Black, whiteAttacks, false)
	return score
}

func kingSafetySide(us *dragontoothmg.Bitboards, enemyAttacks uint64, white bool) int32 {
	if us.Kings == 0 {
		return 0
	}
	ksq := bits.TrailingZeros64(us.Kings)

	var score int32

	// The three squares directly ahead of the king.
	kingSpan := KingMoves[ksq] | PositionBB[ksq]
	var shield uint64
	if white && ksq/8 < 7 {
		shield = kingSpan & onlyRank[ksq/8+1]
	} else if !white && ksq/8 > 0 {
		shield = kingSpan & onlyRank[ksq/8-1]
	}
	score += KingShieldBonus * int32(bits.OnesCount64(shield&us.Pawns))

	zone := KingMoves[ksq] | PositionBB[ksq]
	score -= KingAttackWeight * int32(bits.OnesCount64(zone&enemyAttacks))
	return score
}

// attackBitboard collects every square the given side attacks.
func attackBitboard(b *dragontoothmg.Board, white bool) uint64 {
	us := &b.White
	if !white {
		us = &b.Black
	}
	occ := b.White.All | b.Black.All

	east, west := PawnCaptureBitboards(us.Pawns, white)
	attacks := east | west

	for x := us.Knights; x != 0; x &= x - 1 {
		attacks |= KnightMasks[bits.TrailingZeros64(x)]
	}
	for x := us.Bishops | us.Queens; x != 0; x &= x - 1 {
		attacks |= dragontoothmg.CalculateBishopMoveBitboard(uint8(bits.TrailingZeros64(x)), occ)
	}
	for x := us.Rooks | us.Queens; x != 0; x &= x - 1 {
		attacks |= dragontoothmg.CalculateRookMoveBitboard(uint8(bits.TrailingZeros64(x)), occ)
	}
	for x := us.Kings; x != 0; x &= x - 1 {
		attacks |= KingMoves[bits.TrailingZeros64(x)]
	}
	return attacks
}

// mobility counts attacked squares for every piece except the king.
func mobility(b *dragontoothmg.Board, white bool) int32 {
	us := &b.White
	if !white {
		us = &b.Black
	}
	occ := b.White.All | b.Black.All

	var count int32
	east, west := PawnCaptureBitboards(us.Pawns, white)
	count += int32(bits.OnesCount64(east) + bits.OnesCount64(west))

	for x := us.Knights; x != 0; x &= x - 1 {
		count += int32(bits.OnesCount64(KnightMasks[bits.TrailingZeros64(x)]))
	}
	for x := us.Bishops; x != 0; x &= x - 1 {
		count += int32(bits.OnesCount64(dragontoothmg.CalculateBishopMoveBitboard(uint8(bits.TrailingZeros64(x)), occ)))
	}
	for x := us.Rooks; x != 0; x &= x - 1 {
		count += int32(bits.OnesCount64(dragontoothmg.CalculateRookMoveBitboard(uint8(bits.TrailingZeros64(x)), occ)))
	}
	for x := us.Queens; x != 0; x &= x - 1 {
		sq := uint8(bits.TrailingZeros64(x))
		count += int32(bits.OnesCount64(dragontoothmg.CalculateBishopMoveBitboard(sq, occ) | dragontoothmg.CalculateRookMoveBitboard(sq, occ)))
	}
	return count
}
