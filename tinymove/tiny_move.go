package tinymove

import (
	"fmt"
	"math"

	"github.com/domino14/tuple2048/board"
)

// TinyMove is a 32-bit record of the best move for a tuple arrangement and
// the probability of reaching the goal with it. It is made to be as small
// as possible, since a table holds one per key and there can be billions.
type TinyMove uint32

// Schema:
// 2 bits for the move (up, left, right, down)
// 30 bits for the probability, in units of 2^-29. 1.0 is 1<<29.
//
// 31   27   23   19   15   11    7    3
//  xxxx xxxx xxxx xxxx xxxx xxxx xxxx xxxx
//  MMPP PPPP PPPP PPPP PPPP PPPP PPPP PPPP
//
// A table slot that was never computed is all ones. Its probability
// field (1<<30 - 1) is above 1<<29, so no valid record collides with it.

const (
	ProbBits      = 30
	ProbBitMask   = 1<<ProbBits - 1
	ProbOne       = 1 << 29
	moveShift     = ProbBits
	InvalidRecord = TinyMove(math.MaxUint32)
)

// Resolution is the smallest representable probability step.
const Resolution = 1.0 / ProbOne

// New builds a valid record. Probabilities are clamped to [0, 1].
func New(m board.Move, prob float64) TinyMove {
	if m < board.Up || m > board.Down {
		m = board.Up
	}
	return TinyMove(uint32(m)<<moveShift | probToFixed(prob))
}

func probToFixed(prob float64) uint32 {
	if !(prob > 0) {
		return 0
	}
	if prob >= 1 {
		return ProbOne
	}
	return uint32(math.Round(prob * ProbOne))
}

// Valid is false for a slot that was never computed. A valid record may
// still have probability 0.
func (t TinyMove) Valid() bool {
	return t&ProbBitMask <= ProbOne
}

// Move returns the stored move. It is meaningless for an invalid record.
func (t TinyMove) Move() board.Move {
	return board.Move(t >> moveShift)
}

// Prob returns the stored probability, or 0 for an invalid record.
func (t TinyMove) Prob() float64 {
	if !t.Valid() {
		return 0
	}
	return float64(t&ProbBitMask) / ProbOne
}

// Fixed returns the raw fixed-point probability.
func (t TinyMove) Fixed() uint32 {
	return uint32(t & ProbBitMask)
}

func (t TinyMove) String() string {
	if !t.Valid() {
		return "<invalid>"
	}
	return fmt.Sprintf("%s %.6f", t.Move(), t.Prob())
}
