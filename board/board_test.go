package board

import (
	"testing"

	"github.com/matryer/is"
)

func mustParse(t *testing.T, s string) Board {
	t.Helper()
	b, err := Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestParse(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, "2 4 8 16 / 0 0 0 0 / 1024 0 0 0 / 0 0 0 32768")
	is.Equal(b.At(0, 0), 1)
	is.Equal(b.At(3, 0), 4)
	is.Equal(b.At(0, 2), 10)
	is.Equal(b.At(3, 3), 15)
	is.Equal(b.NumEmpty(), 10)

	_, err := Parse("2 4 8")
	is.Equal(err, ErrWrongCellCount)
	_, err = Parse("3 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0")
	is.True(err != nil)
}

func TestSlide(t *testing.T) {
	is := is.New(t)
	type tc struct {
		before string
		move   Move
		after  string
		moved  bool
	}
	cases := []tc{
		{"2 2 2 2 / 0 0 0 0 / 0 0 0 0 / 0 0 0 0", Left,
			"4 4 0 0 / 0 0 0 0 / 0 0 0 0 / 0 0 0 0", true},
		{"2 2 2 0 / 0 0 0 0 / 0 0 0 0 / 0 0 0 0", Right,
			"0 0 2 4 / 0 0 0 0 / 0 0 0 0 / 0 0 0 0", true},
		{"0 0 0 32 / 0 0 0 32 / 0 0 0 64 / 0 0 0 0", Up,
			"0 0 0 64 / 0 0 0 64 / 0 0 0 0 / 0 0 0 0", true},
		{"0 0 0 32 / 0 0 0 32 / 0 0 0 64 / 0 0 0 0", Down,
			"0 0 0 0 / 0 0 0 0 / 0 0 0 64 / 0 0 0 64", true},
		{"2 4 8 16 / 0 0 0 0 / 0 0 0 0 / 0 0 0 0", Left,
			"2 4 8 16 / 0 0 0 0 / 0 0 0 0 / 0 0 0 0", false},
		{"4 0 4 8 / 0 0 0 0 / 0 0 0 0 / 0 0 0 0", Left,
			"8 8 0 0 / 0 0 0 0 / 0 0 0 0 / 0 0 0 0", true},
	}
	for _, c := range cases {
		after, moved := mustParse(t, c.before).Move(c.move)
		is.Equal(moved, c.moved)
		is.Equal(after, mustParse(t, c.after))
	}
}

func TestRotateAndTranspose(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, "2 4 8 16 / 0 0 0 32 / 0 0 0 0 / 0 0 0 64")
	r := b.Rotate()
	// the top row becomes the right column
	is.Equal(r, mustParse(t, "0 0 0 2 / 0 0 0 4 / 0 0 0 8 / 64 0 32 16"))
	is.Equal(r.Rotate().Rotate().Rotate(), b)
	is.Equal(b.Transpose().Transpose(), b)
	is.Equal(b.Transpose().At(0, 3), b.At(3, 0))
}

func TestMoveMappings(t *testing.T) {
	is := is.New(t)
	b := mustParse(t, "2 0 4 0 / 0 8 0 2 / 16 0 0 4 / 0 2 4 8")
	for _, m := range AllMoves {
		want, _ := b.Move(m)

		rotated := b
		for d := 0; d < 4; d++ {
			// find the move on the rotated board that maps back to m
			for _, rm := range AllMoves {
				if rm.Unrotate(d) != m {
					continue
				}
				got, _ := rotated.Move(rm)
				for k := 0; k < (4-d)%4; k++ {
					got = got.Rotate()
				}
				is.Equal(got, want)
			}
			rotated = rotated.Rotate()
		}

		got, _ := b.Transpose().Move(m.Transposed())
		is.Equal(got.Transpose(), want)
	}
	is.Equal(NoMove.Unrotate(3), NoMove)
}

func TestParseMove(t *testing.T) {
	is := is.New(t)
	m, err := ParseMove("Right")
	is.NoErr(err)
	is.Equal(m, Right)
	m, err = ParseMove("d")
	is.NoErr(err)
	is.Equal(m, Down)
	_, err = ParseMove("sideways")
	is.True(err != nil)
	is.Equal(Left.String(), "left")
	is.Equal(NoMove.String(), "none")
}
