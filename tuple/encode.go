package tuple

import "github.com/domino14/tuple2048/board"

// backgroundTopRank is the rank given to the first background cell by
// Prefill; later background cells get successively smaller ranks.
const backgroundTopRank = 15

// Encode packs the tracked cells of b into a key, most significant cell
// first. Tracked ranks must be below their cell's arity.
func (s *Shape) Encode(b board.Board) uint64 {
	var v uint64
	for _, i := range s.tracked {
		v = v*uint64(s.Arities[i]) + uint64(b[i])
	}
	return v
}

// Decode unpacks key into tracked ranks, in key order.
func (s *Shape) Decode(key uint64) []int {
	tiles := make([]int, len(s.tracked))
	for t := len(s.tracked) - 1; t >= 0; t-- {
		a := uint64(s.Arities[s.tracked[t]])
		tiles[t] = int(key % a)
		key /= a
	}
	return tiles
}

// SetTracked returns b with its tracked cells set to tiles, in key order.
func (s *Shape) SetTracked(b board.Board, tiles []int) board.Board {
	for t, i := range s.tracked {
		b[i] = uint8(tiles[t])
	}
	return b
}

// Tracked returns the tracked ranks of b, in key order.
func (s *Shape) Tracked(b board.Board) []int {
	tiles := make([]int, len(s.tracked))
	for t, i := range s.tracked {
		tiles[t] = int(b[i])
	}
	return tiles
}

// Prefill returns b with its background cells set to distinct descending
// ranks starting at 15, so searches run against the largest anchor the
// shape allows.
func (s *Shape) Prefill(b board.Board) board.Board {
	r := backgroundTopRank
	for i, a := range s.Arities {
		if a == 1 {
			b[i] = uint8(r)
			r--
		}
	}
	return b
}

// BoardForKey builds the prefilled board that key stands for.
func (s *Shape) BoardForKey(key uint64) board.Board {
	return s.Prefill(s.SetTracked(board.Board{}, s.Decode(key)))
}
