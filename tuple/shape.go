package tuple

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/tuple2048/board"
)

var ErrUnknownShape = errors.New("unknown tuple shape")

// A Shape describes one lookup table. Arities are given per cell in
// row-major order:
//
//	 0  1  2  3
//	 4  5  6  7
//	 8  9 10 11
//	12 13 14 15
//
// An arity of 1 marks a background cell, which is fixed during search and
// left out of the key. A larger arity marks a tracked cell holding ranks
// 0..arity-1.
type Shape struct {
	Name          string
	Arities       [board.NumCells]int
	MaxAnchorRank int
	// File is the snapshot file name, relative to the data path.
	File  string
	Rules Rules

	numTuples uint64
	tracked   []int
	free      []int
}

// NewShape derives the key space from arities. free lists the cells new
// tiles may spawn into during search; pass nil for DefaultFreeRegion.
func NewShape(name string, arities [board.NumCells]int, maxAnchorRank int,
	file string, rules Rules, free []int) *Shape {

	if free == nil {
		free = DefaultFreeRegion
	}
	s := &Shape{
		Name:          name,
		Arities:       arities,
		MaxAnchorRank: maxAnchorRank,
		File:          file,
		Rules:         rules,
		free:          free,
	}
	s.tracked = lo.Filter(lo.Range(board.NumCells), func(i int, _ int) bool {
		return arities[i] > 1
	})
	s.numTuples = lo.Reduce(arities[:], func(acc uint64, a int, _ int) uint64 {
		return acc * uint64(a)
	}, 1)
	return s
}

// DefaultFreeRegion is the bottom two rows without the right column, then
// the right column top to bottom. The ordered anchor block never receives
// spawned tiles.
var DefaultFreeRegion = []int{
	board.Index(0, 2), board.Index(1, 2), board.Index(2, 2),
	board.Index(0, 3), board.Index(1, 3), board.Index(2, 3),
	board.Index(3, 0), board.Index(3, 1), board.Index(3, 2), board.Index(3, 3),
}

// NumTuples is the size of the key space, the product of all arities.
func (s *Shape) NumTuples() uint64 {
	return s.numTuples
}

// NumTiles is the number of tracked cells.
func (s *Shape) NumTiles() int {
	return len(s.tracked)
}

// TrackedCells returns the tracked cell indexes in key order.
func (s *Shape) TrackedCells() []int {
	return s.tracked
}

// FreeRegion returns the cells tiles may spawn into.
func (s *Shape) FreeRegion() []int {
	return s.free
}

func (s *Shape) IsRegular(b board.Board) bool {
	return s.Rules.IsRegular(b)
}

func (s *Shape) IsGoal(b board.Board) bool {
	return s.Rules.IsGoal(b)
}

// HasSameTops reports whether every background cell of b matches parent.
func (s *Shape) HasSameTops(b, parent board.Board) bool {
	for i, a := range s.Arities {
		if a == 1 && b[i] != parent[i] {
			return false
		}
	}
	return true
}

func (s *Shape) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d tiles, %d tuples, max anchor %d, file %s\n",
		s.Name, s.NumTiles(), s.NumTuples(), s.MaxAnchorRank, s.File)
	for y := 0; y < board.Dim; y++ {
		for x := 0; x < board.Dim; x++ {
			fmt.Fprintf(&sb, "%3d", s.Arities[board.Index(x, y)])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

var shapes = map[string]*Shape{}

// Register adds a shape to the set known by name.
func Register(s *Shape) {
	shapes[s.Name] = s
}

// ShapeByName looks up a registered shape.
func ShapeByName(name string) (*Shape, error) {
	s, ok := shapes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
	return s, nil
}

// ShapeNames lists the registered shapes, sorted.
func ShapeNames() []string {
	names := lo.Keys(shapes)
	sort.Strings(names)
	return names
}

func init() {
	tuple10 := [board.NumCells]int{
		1, 1, 1, 10,
		1, 1, 1, 9,
		10, 9, 8, 8,
		8, 8, 8, 8,
	}
	Register(NewShape("10a", tuple10, 10, "tuple_moves.10a",
		NewRules(RowPattern, 10, false), nil))
	Register(NewShape("10b", tuple10, 10, "tuple_moves.10b",
		NewRules(RowPattern, 10, true), nil))

	Register(NewShape("11a", [board.NumCells]int{
		1, 1, 1, 7,
		1, 1, 8, 7,
		7, 7, 7, 7,
		6, 6, 6, 6,
	}, 7, "tuple_moves.11a", NewRules(CornerPattern, 7, false), nil))
	Register(NewShape("11b", [board.NumCells]int{
		1, 1, 1, 9,
		1, 1, 10, 9,
		9, 9, 9, 9,
		8, 8, 8, 8,
	}, 9, "tuple_moves.11b", NewRules(CornerPattern, 9, true), nil))
}
