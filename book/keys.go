package book

import (
	"errors"
	"strings"
)

// Zobrist keys in the Polyglot layout: 768 piece keys in the order
// bP bN bB bR bQ bK wP wN wB wR wQ wK (black block first), then four
// castling keys (KQkq), eight en passant file keys and the side-to-move
// key. The table is generated once from a fixed xorshift seed, so every
// book this module writes or reads hashes identically.
var (
	zobristPieces     [12][64]uint64
	zobristCastling   [4]uint64
	zobristEnPassant  [8]uint64
	zobristSideToMove uint64
)

func init() {
	var s uint64 = 0x37b4a4b3f0d1c0d0

	rng := func() uint64 {
		s ^= s >> 12
		s ^= s << 25
		s ^= s >> 27
		return s * 0x2545F4914F6CDD1D
	}

	for piece := 0; piece < 12; piece++ {
		for sq := 0; sq < 64; sq++ {
			zobristPieces[piece][sq] = rng()
		}
	}
	for i := 0; i < 4; i++ {
		zobristCastling[i] = rng()
	}
	for i := 0; i < 8; i++ {
		zobristEnPassant[i] = rng()
	}
	zobristSideToMove = rng()
}

// pieceKind maps a FEN piece letter onto the key table row.
var pieceKind = map[byte]int{
	'p': 0, 'n': 1, 'b': 2, 'r': 3, 'q': 4, 'k': 5,
	'P': 6, 'N': 7, 'B': 8, 'R': 9, 'Q': 10, 'K': 11,
}

var ErrBadFEN = errors.New("book: malformed FEN")

// KeyFromFEN computes the book key for a position. The en passant key only
// counts when a pawn of the side to move actually stands ready to capture,
// matching how book builders hash positions.
func KeyFromFEN(fen string) (uint64, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return 0, ErrBadFEN
	}
	placement, side, castling, epField := fields[0], fields[1], fields[2], fields[3]

	var hash uint64
	var pawns [2]uint64 // white, black pawn bitboards for the ep check

	rank := 7
	file := 0
	for i := 0; i < len(placement); i++ {
		c := placement[i]
		switch {
		case c == '/':
			rank--
			file = 0
			if rank < 0 {
				return 0, ErrBadFEN
			}
		case c >= '1' && c <= '8':
			file += int(c - '0')
		default:
			kind, ok := pieceKind[c]
			if !ok || file > 7 {
				return 0, ErrBadFEN
			}
			sq := rank*8 + file
			hash ^= zobristPieces[kind][sq]
			if c == 'P' {
				pawns[0] |= 1 << uint(sq)
			} else if c == 'p' {
				pawns[1] |= 1 << uint(sq)
			}
			file++
		}
	}

	if strings.ContainsRune(castling, 'K') {
		hash ^= zobristCastling[0]
	}
	if strings.ContainsRune(castling, 'Q') {
		hash ^= zobristCastling[1]
	}
	if strings.ContainsRune(castling, 'k') {
		hash ^= zobristCastling[2]
	}
	if strings.ContainsRune(castling, 'q') {
		hash ^= zobristCastling[3]
	}

	whiteToMove := side == "w"
	if !whiteToMove && side != "b" {
		return 0, ErrBadFEN
	}

	if epField != "-" && len(epField) == 2 {
		epFile := int(epField[0] - 'a')
		if epFile < 0 || epFile > 7 {
			return 0, ErrBadFEN
		}
		if epCaptureReady(pawns, whiteToMove, epFile) {
			hash ^= zobristEnPassant[epFile]
		}
	}

	if whiteToMove {
		hash ^= zobristSideToMove
	}

	return hash, nil
}

// epCaptureReady reports whether a pawn of the side to move sits beside the
// en passant target, on rank 5 for white and rank 4 for black.
func epCaptureReady(pawns [2]uint64, whiteToMove bool, epFile int) bool {
	var capturerRank int
	var capturers uint64
	if whiteToMove {
		capturerRank = 4 // rank 5
		capturers = pawns[0]
	} else {
		capturerRank = 3 // rank 4
		capturers = pawns[1]
	}
	if epFile > 0 {
		if capturers&(1<<uint(capturerRank*8+epFile-1)) != 0 {
			return true
		}
	}
	if epFile < 7 {
		if capturers&(1<<uint(capturerRank*8+epFile+1)) != 0 {
			return true
		}
	}
	return false
}
