package book

import (
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/matryer/is"
)

func TestKeyFromFENDeterministic(t *testing.T) {
	is := is.New(t)

	a, err := KeyFromFEN(dragontoothmg.Startpos)
	is.NoErr(err)
	b, err := KeyFromFEN(dragontoothmg.Startpos)
	is.NoErr(err)
	is.Equal(a, b)
	is.True(a != 0)
}

func TestKeyFromFENSideToMove(t *testing.T) {
	is := is.New(t)

	w, err := KeyFromFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	is.NoErr(err)
	b, err := KeyFromFEN("4k3/8/8/8/8/8/8/4K3 b - - 0 1")
	is.NoErr(err)
	is.True(w != b)
}

func TestKeyFromFENCastlingRights(t *testing.T) {
	is := is.New(t)

	full, err := KeyFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	is.NoErr(err)
	none, err := KeyFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w - - 0 1")
	is.NoErr(err)
	kingsideOnly, err := KeyFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w Kk - 0 1")
	is.NoErr(err)

	is.True(full != none)
	is.True(full != kingsideOnly)
	is.True(none != kingsideOnly)
}

func TestKeyFromFENEnPassantOnlyWhenCapturable(t *testing.T) {
	is := is.New(t)

	// After 1.e4 no black pawn can take en passant: the ep field must not
	// change the key.
	withEP, err := KeyFromFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	is.NoErr(err)
	withoutEP, err := KeyFromFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	is.NoErr(err)
	is.Equal(withEP, withoutEP)

	// Here e5xf6 is a real en passant capture, so the file key counts.
	capturable, err := KeyFromFEN("rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	is.NoErr(err)
	plain, err := KeyFromFEN("rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq - 0 3")
	is.NoErr(err)
	is.True(capturable != plain)
}

func TestKeyFromFENMalformed(t *testing.T) {
	is := is.New(t)

	_, err := KeyFromFEN("")
	is.Equal(err, ErrBadFEN)
	_, err = KeyFromFEN("only two fields")
	is.Equal(err, ErrBadFEN)
	_, err = KeyFromFEN("rnbqkbnr/pppppppp/8/8/8/8 x KQkq - 0 1")
	is.True(err != nil)
}
