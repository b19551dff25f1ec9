package engine

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

var seePieceValue = [7]int32{
	dragontoothmg.King:   5000,
	dragontoothmg.Pawn:   100,
	dragontoothmg.Knight: 300,
	dragontoothmg.Bishop: 300,
	dragontoothmg.Rook:   500,
	dragontoothmg.Queen:  900,
}

// see runs a static exchange evaluation for a capture: the material balance
// after both sides keep recapturing on the target square with their least
// valuable attacker, stopping as soon as standing pat is better.
func see(b *dragontoothmg.Board, move dragontoothmg.Move) int32 {
	var gain [32]int32
	var depth uint8
	sideToMove := b.Wtomove

	initSquare := move.From()
	targetSquare := move.To()

	whiteAttackers := piecesAttackingSquare(targetSquare, b.White, b.Black, true)
	blackAttackers := piecesAttackingSquare(targetSquare, b.Black, b.White, false)
	attadef := whiteAttackers | blackAttackers

	var targetPiece dragontoothmg.Piece
	var attacker dragontoothmg.Piece
	if sideToMove {
		targetPiece, _ = GetPieceTypeAtPosition(targetSquare, &b.Black)
		attacker, _ = GetPieceTypeAtPosition(initSquare, &b.White)
	} else {
		targetPiece, _ = GetPieceTypeAtPosition(targetSquare, &b.White)
		attacker, _ = GetPieceTypeAtPosition(initSquare, &b.Black)
	}

	// En passant: the captured pawn is not on the target square.
	if targetPiece == dragontoothmg.Nothing {
		targetPiece = dragontoothmg.Pawn
	}

	attackerBB := PositionBB[initSquare]
	gain[depth] = seePieceValue[targetPiece]
	sideToMove = !sideToMove

	for attackerBB != 0 {
		depth++
		gain[depth] = seePieceValue[attacker] - gain[depth-1]

		if maxInt32(-gain[depth-1], gain[depth]) < 0 {
			break
		}

		attadef ^= attackerBB
		attackerBB, attacker = closestAttacker(b, attadef, sideToMove, targetSquare)
		sideToMove = !sideToMove
	}

	for x := depth - 1; x > 0; x-- {
		gain[x-1] = -maxInt32(-gain[x-1], gain[x])
	}
	return gain[0]
}

// piecesAttackingSquare finds every piece of one side that can reach the
// target square, xraying through that side's own rooks/queens on lines and
// bishops/queens/pawns on diagonals.
func piecesAttackingSquare(targetSquare uint8, usBB dragontoothmg.Bitboards, enemyBB dragontoothmg.Bitboards, sideToMove bool) uint64 {
	orthogonalXray := dragontoothmg.CalculateRookMoveBitboard(targetSquare,
		((usBB.All&^(usBB.Rooks|usBB.Queens))|(enemyBB.All&^(enemyBB.Rooks|enemyBB.Queens)))) &^
		(usBB.All &^ (usBB.Rooks | usBB.Queens | enemyBB.Rooks | enemyBB.Queens))

	var attackBB uint64
	var pawnBB uint64

	targetBB := PositionBB[targetSquare]
	for x := usBB.Pawns; x != 0; x &= x - 1 {
		bb := PositionBB[bits.TrailingZeros64(x)]
		east, west := PawnCaptureBitboards(bb, sideToMove)
		if (east|west)&targetBB > 0 {
			attackBB |= bb
			pawnBB |= bb
		}
	}

	diagonalXray := dragontoothmg.CalculateBishopMoveBitboard(targetSquare,
		((usBB.All&^(usBB.Bishops|usBB.Queens|pawnBB))|enemyBB.All)) &^
		(usBB.All &^ (usBB.Bishops | usBB.Queens))

	hitPieces := attackBB | orthogonalXray&(usBB.Rooks|usBB.Queens)
	hitPieces |= diagonalXray & (usBB.Bishops | usBB.Queens)
	hitPieces |= KnightMasks[targetSquare] & usBB.Knights
	hitPieces |= KingMoves[targetSquare] & usBB.Kings

	return hitPieces
}

// closestAttacker picks the least valuable remaining attacker of the target
// square for the side to move.
func closestAttacker(b *dragontoothmg.Board, attadef uint64, sideToMove bool, targetSquare uint8) (uint64, dragontoothmg.Piece) {
	var usBB dragontoothmg.Bitboards
	if sideToMove {
		usBB = b.White
	} else {
		usBB = b.Black
	}

	diagonalAttack := dragontoothmg.CalculateBishopMoveBitboard(targetSquare, attadef) &^
		(usBB.All &^ (usBB.Bishops | usBB.Queens))
	diagonalAttack &= attadef

	orthogonalAttack := dragontoothmg.CalculateRookMoveBitboard(targetSquare, attadef) &^
		(usBB.All &^ (usBB.Rooks | usBB.Queens))
	orthogonalAttack &= attadef

	east, west := PawnCaptureBitboards(PositionBB[targetSquare], !sideToMove)
	hitPieces := ((east | west) | diagonalAttack | orthogonalAttack | (KnightMasks[targetSquare] & usBB.Knights) | (KingMoves[targetSquare] & usBB.Kings)) & attadef
	return minAttacker(hitPieces, usBB)
}

func minAttacker(attadef uint64, bb dragontoothmg.Bitboards) (uint64, dragontoothmg.Piece) {
	var subset uint64
	var piece dragontoothmg.Piece

	if attadef&bb.Pawns > 0 {
		subset = attadef & bb.Pawns
		piece = dragontoothmg.Pawn
	} else if attadef&bb.Knights > 0 {
		subset = attadef & bb.Knights
		piece = dragontoothmg.Knight
	} else if attadef&bb.Bishops > 0 {
		subset = attadef & bb.Bishops
		piece = dragontoothmg.Bishop
	} else if attadef&bb.Rooks > 0 {
		subset = attadef & bb.Rooks
		piece = dragontoothmg.Rook
	} else if attadef&bb.Queens > 0 {
		subset = attadef & bb.Queens
		piece = dragontoothmg.Queen
	} else if attadef&bb.Kings > 0 {
		subset = attadef & bb.Kings
		piece = dragontoothmg.King
	}

	if subset != 0 {
		return PositionBB[bits.TrailingZeros64(subset)], piece
	}
	return 0, piece
}
