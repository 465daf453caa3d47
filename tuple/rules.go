package tuple

import "github.com/domino14/tuple2048/board"

// Rules hold the shape-specific predicates. A board is regular when its
// anchor cells follow the shape's ordering pattern and every other cell
// stays under the anchor rank; a regular board is a goal when it already
// holds one of the shape's finishing arrangements.
type Rules interface {
	// AnchorRank bounds the ranks allowed on non-anchor cells.
	AnchorRank(b board.Board) int
	IsRegular(b board.Board) bool
	IsGoal(b board.Board) bool
}

// Pattern selects one of the known rule sets.
type Pattern int

const (
	// RowPattern anchors on the second row: the anchor rank is the
	// smallest of its three leftmost cells.
	RowPattern Pattern = iota
	// CornerPattern anchors on the top-left 3x2 block, whose lower row
	// descends strictly left to right.
	CornerPattern
)

func (p Pattern) String() string {
	switch p {
	case RowPattern:
		return "row"
	case CornerPattern:
		return "corner"
	}
	return "unknown"
}

// NewRules returns the rule set for pattern. big enables the variant for
// larger tuples, which requires the two top-left cells to be occupied and
// accepts more goal shapes.
func NewRules(p Pattern, maxAnchorRank int, big bool) Rules {
	switch p {
	case RowPattern:
		return rowRules{maxAnchor: maxAnchorRank, big: big}
	case CornerPattern:
		return cornerRules{maxAnchor: maxAnchorRank, big: big}
	}
	panic("unknown rules pattern")
}

// rowRules:
//
//	(0,0) != (1,0) != (2,0) >  (3,0)
//	 !=       !=       !=
//	(0,1) != (1,1) != (2,1)
type rowRules struct {
	maxAnchor int
	big       bool
}

func (r rowRules) AnchorRank(b board.Board) int {
	return min(b.At(0, 1), b.At(1, 1), b.At(2, 1))
}

func (r rowRules) IsRegular(b board.Board) bool {
	if r.big && (b.At(0, 0) == 0 || b.At(1, 0) == 0) {
		return false
	}
	if b.At(0, 0) == b.At(1, 0) || b.At(1, 0) == b.At(2, 0) {
		return false
	}
	if b.At(0, 1) == b.At(1, 1) || b.At(1, 1) == b.At(2, 1) {
		return false
	}
	if b.At(0, 0) == b.At(0, 1) || b.At(1, 0) == b.At(1, 1) {
		return false
	}
	if r.big {
		if b.At(2, 0) == b.At(2, 1) || b.At(2, 0) <= b.At(3, 0) {
			return false
		}
	} else if b.At(2, 0) <= b.At(2, 1) {
		return false
	}

	a := r.AnchorRank(b)
	if a > r.maxAnchor {
		return false
	}
	bounds := [...]struct{ x, y, under int }{
		{3, 0, 1}, {3, 1, 2},
		{0, 2, 1}, {1, 2, 2}, {2, 2, 3}, {3, 2, 3},
		{0, 3, 3}, {1, 3, 3}, {2, 3, 3}, {3, 3, 3},
	}
	for _, c := range bounds {
		if b.At(c.x, c.y) > a-c.under {
			return false
		}
	}
	return true
}

func (r rowRules) IsGoal(b board.Board) bool {
	a := r.AnchorRank(b)
	at := b.At
	return (at(0, 2) == a-1 && at(1, 2) == a-2 &&
		((at(2, 2) == a-3 && (at(2, 3) == a-3 || at(3, 2) == a-3)) ||
			(at(1, 3) == a-3 && (at(0, 3) == a-3 || at(2, 3) == a-3)))) ||
		(at(3, 0) == a-1 && at(3, 1) == a-2 && at(3, 2) == a-3 &&
			(at(2, 2) == a-3 || at(3, 3) == a-3))
}

// cornerRules:
//
//	(0,0) != (1,0) != (2,0)
//	 !=       !=        V
//	(0,1) >  (1,1) >  (2,1)
//
// plus (1,1) != (2,0).
type cornerRules struct {
	maxAnchor int
	big       bool
}

func (r cornerRules) AnchorRank(b board.Board) int {
	return min(r.maxAnchor, b.At(1, 1), b.At(2, 0))
}

func (r cornerRules) IsRegular(b board.Board) bool {
	if r.big && (b.At(0, 0) == 0 || b.At(1, 0) == 0) {
		return false
	}
	if b.At(0, 0) == b.At(1, 0) || b.At(1, 0) == b.At(2, 0) {
		return false
	}
	if b.At(0, 1) <= b.At(1, 1) || b.At(1, 1) <= b.At(2, 1) {
		return false
	}
	if b.At(0, 0) == b.At(0, 1) || b.At(1, 0) == b.At(1, 1) {
		return false
	}
	if b.At(2, 0) <= b.At(2, 1) || b.At(1, 1) == b.At(2, 0) {
		return false
	}

	if b.At(2, 1) > r.maxAnchor {
		return false
	}
	a := r.AnchorRank(b)
	for _, c := range [...][2]int{{3, 0}, {3, 1}, {0, 2}, {1, 2}, {2, 2}, {3, 2}} {
		if b.At(c[0], c[1]) > a-1 {
			return false
		}
	}
	for x := 0; x < board.Dim; x++ {
		if b.At(x, 3) > a-2 {
			return false
		}
	}
	return true
}

func (r cornerRules) IsGoal(b board.Board) bool {
	// one below the regular anchor, unless that is already capped
	a := min(r.maxAnchor, min(b.At(1, 1), b.At(2, 0))-1)
	at := b.At
	if at(2, 1) != a {
		return false
	}
	if r.big {
		for _, c := range [...][2]int{{3, 0}, {3, 1}, {0, 2}, {1, 2}, {2, 2}, {3, 2}} {
			if at(c[0], c[1]) == a {
				return true
			}
		}
	}
	return (at(3, 1) == a-1 && (at(3, 0) == a-1 || at(3, 2) == a-1)) ||
		(at(3, 0) == a-1 && at(3, 1) == a-2 && at(3, 2) == a-2) ||
		(at(2, 2) == a-1 && (at(1, 2) == a-1 || at(2, 3) == a-1 || at(3, 2) == a-1))
}
