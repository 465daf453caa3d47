package board

import (
	"fmt"
	"strings"
)

// A Move is one of the four sliding directions.
type Move int8

const (
	Up Move = iota
	Left
	Right
	Down
)

// NoMove is reported when no move is needed or none exists.
const NoMove Move = -1

// MoveNames are indexed by Move.
var MoveNames = [4]string{"up", "left", "right", "down"}

// AllMoves lists the moves in search order.
var AllMoves = [4]Move{Up, Left, Right, Down}

// rotatedMoves[d][m] is the move on the original board that corresponds to
// move m on the board rotated clockwise d times.
var rotatedMoves = [4][4]Move{
	{Up, Left, Right, Down},
	{Left, Down, Up, Right},
	{Down, Right, Left, Up},
	{Right, Up, Down, Left},
}

func (m Move) String() string {
	if m < Up || m > Down {
		return "none"
	}
	return MoveNames[m]
}

// Unrotate maps a move found on a board rotated clockwise `turns` times
// back onto the unrotated board.
func (m Move) Unrotate(turns int) Move {
	if m == NoMove {
		return NoMove
	}
	return rotatedMoves[turns&3][m]
}

// Transposed maps a move across a transpose: up and left swap, as do
// right and down.
func (m Move) Transposed() Move {
	switch m {
	case Up:
		return Left
	case Left:
		return Up
	case Right:
		return Down
	case Down:
		return Right
	}
	return NoMove
}

// ParseMove accepts a move name or its first letter.
func ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range MoveNames {
		if s == n || (len(s) == 1 && s[0] == n[0]) {
			return Move(i), nil
		}
	}
	return NoMove, fmt.Errorf("unknown move %q", s)
}

// cell returns the index of the j-th cell of line i, where j = 0 is the
// cell tiles slide towards.
func cell(m Move, i, j int) int {
	switch m {
	case Up:
		return j*Dim + i
	case Down:
		return (Dim-1-j)*Dim + i
	case Left:
		return i*Dim + j
	case Right:
		return i*Dim + Dim - 1 - j
	}
	panic("unknown move")
}

// Move slides the board in direction m, merging equal neighbours once per
// move. It reports whether anything changed.
func (b Board) Move(m Move) (Board, bool) {
	n := b
	for i := 0; i < Dim; i++ {
		var line [Dim]int
		for j := 0; j < Dim; j++ {
			line[j] = cell(m, i, j)
		}
		n.slide(line)
	}
	return n, n != b
}

func (b *Board) slide(line [Dim]int) {
	var out [Dim]uint8
	n := 0
	var pending uint8
	for _, k := range line {
		v := b[k]
		if v == 0 {
			continue
		}
		if v == pending {
			out[n] = v + 1
			n++
			pending = 0
			continue
		}
		if pending != 0 {
			out[n] = pending
			n++
		}
		pending = v
	}
	if pending != 0 {
		out[n] = pending
	}
	for j, k := range line {
		b[k] = out[j]
	}
}
