package board

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Dim is the side length of the board.
const Dim = 4

// NumCells is the number of cells on the board.
const NumCells = Dim * Dim

// MaxRank is the largest rank a cell can be parsed with (2^15 = 32768).
const MaxRank = 15

var (
	ErrWrongCellCount = errors.New("a board needs exactly 16 cells")
	ErrNotPowerOfTwo  = errors.New("tile values must be 0 or a power of two >= 2")
)

// A Board is a 4x4 grid of ranks. A rank of 0 is an empty cell; any other
// rank r stands for the tile 2^r. Cells are stored row-major, so the cell
// in column x of row y lives at index y*Dim+x.
//
// Board is a plain value. Every operation returns a new Board and leaves
// the receiver untouched.
type Board [NumCells]uint8

// Index returns the cell index of column x, row y.
func Index(x, y int) int {
	return y*Dim + x
}

// At returns the rank in column x, row y.
func (b Board) At(x, y int) int {
	return int(b[y*Dim+x])
}

// Set returns a copy of the board with column x, row y set to rank.
func (b Board) Set(x, y, rank int) Board {
	b[y*Dim+x] = uint8(rank)
	return b
}

// Rotate returns the board rotated 90 degrees clockwise. The top row
// becomes the rightmost column.
func (b Board) Rotate() Board {
	var r Board
	for x := 0; x < Dim; x++ {
		for y := 0; y < Dim; y++ {
			r[x*Dim+Dim-1-y] = b[y*Dim+x]
		}
	}
	return r
}

// Transpose returns the board mirrored along its main diagonal.
func (b Board) Transpose() Board {
	var t Board
	for x := 0; x < Dim; x++ {
		for y := 0; y < Dim; y++ {
			t[x*Dim+y] = b[y*Dim+x]
		}
	}
	return t
}

// NumEmpty returns the number of empty cells.
func (b Board) NumEmpty() int {
	n := 0
	for _, r := range b {
		if r == 0 {
			n++
		}
	}
	return n
}

// FromTiles builds a board from 16 tile values (0, 2, 4, 8, ...) in
// row-major order.
func FromTiles(tiles []int) (Board, error) {
	var b Board
	if len(tiles) != NumCells {
		return b, ErrWrongCellCount
	}
	for i, t := range tiles {
		r, err := TileToRank(t)
		if err != nil {
			return b, err
		}
		b[i] = uint8(r)
	}
	return b, nil
}

// TileToRank converts a tile value such as 256 to its rank (8).
func TileToRank(tile int) (int, error) {
	if tile == 0 {
		return 0, nil
	}
	if tile < 2 || tile&(tile-1) != 0 {
		return 0, fmt.Errorf("%w: %d", ErrNotPowerOfTwo, tile)
	}
	r := bits.TrailingZeros(uint(tile))
	if r > MaxRank {
		return 0, fmt.Errorf("tile %d is too large", tile)
	}
	return r, nil
}

// RankToTile converts a rank back to its tile value; rank 0 is 0.
func RankToTile(rank int) int {
	if rank == 0 {
		return 0
	}
	return 1 << rank
}

// Parse reads a board from 16 tile values separated by spaces, commas or
// slashes, e.g. "2048 1024 512 0 / 0 0 0 0 / ...". Rows are read top to
// bottom.
func Parse(s string) (Board, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '/' || r == '\t' || r == '\n'
	})
	tiles := make([]int, 0, len(fields))
	for _, f := range fields {
		if f == "." {
			tiles = append(tiles, 0)
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return Board{}, err
		}
		tiles = append(tiles, v)
	}
	return FromTiles(tiles)
}

// String renders the board as a grid of tile values.
func (b Board) String() string {
	var sb strings.Builder
	sb.WriteString("+------+------+------+------+\n")
	for y := 0; y < Dim; y++ {
		for x := 0; x < Dim; x++ {
			r := b.At(x, y)
			if r == 0 {
				sb.WriteString("|      ")
			} else {
				fmt.Fprintf(&sb, "|%6d", RankToTile(r))
			}
		}
		sb.WriteString("|\n+------+------+------+------+\n")
	}
	return sb.String()
}
