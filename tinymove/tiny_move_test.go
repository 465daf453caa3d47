package tinymove

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tuple2048/board"
)

func TestTinyMove(t *testing.T) {
	is := is.New(t)
	tm := New(board.Down, 0.75)
	is.True(tm.Valid())
	is.Equal(tm.Move(), board.Down)
	is.Equal(tm.Prob(), 0.75)
	is.Equal(tm.Fixed(), uint32(ProbOne*3/4))
}

func TestZeroIsValid(t *testing.T) {
	is := is.New(t)
	tm := New(board.Right, 0)
	is.True(tm.Valid())
	is.Equal(tm.Prob(), 0.0)
	is.Equal(tm.Move(), board.Right)
}

func TestInvalid(t *testing.T) {
	is := is.New(t)
	is.True(!InvalidRecord.Valid())
	is.Equal(InvalidRecord.Prob(), 0.0)
	is.Equal(InvalidRecord.String(), "<invalid>")
	// every valid record differs from the sentinel
	for _, m := range board.AllMoves {
		is.True(New(m, 1) != InvalidRecord)
		is.True(New(m, 1).Valid())
	}
}

func TestClamp(t *testing.T) {
	is := is.New(t)
	is.Equal(New(board.Up, 1.5).Prob(), 1.0)
	is.Equal(New(board.Up, -0.2).Prob(), 0.0)
	is.Equal(New(board.NoMove, 0.5).Move(), board.Up)
}

func TestResolution(t *testing.T) {
	is := is.New(t)
	p := 0.123456789
	got := New(board.Left, p).Prob()
	is.True(got-p <= Resolution/2 && p-got <= Resolution/2)
}
