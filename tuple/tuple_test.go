package tuple

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"lukechampine.com/frand"

	"github.com/domino14/tuple2048/board"
	"github.com/domino14/tuple2048/config"
	"github.com/domino14/tuple2048/table"
	"github.com/domino14/tuple2048/tinymove"
)

// columnRules model a one-column game: the right column must stay under
// the goal rank and the game is won once it holds a goal tile.
type columnRules struct {
	goal int
}

func (r columnRules) AnchorRank(board.Board) int {
	return r.goal
}

func (r columnRules) IsRegular(b board.Board) bool {
	for y := 0; y < board.Dim; y++ {
		if b.At(3, y) > r.goal {
			return false
		}
	}
	return true
}

func (r columnRules) IsGoal(b board.Board) bool {
	for y := 0; y < board.Dim; y++ {
		if b.At(3, y) == r.goal {
			return true
		}
	}
	return false
}

// columnShape tracks the right column with ranks 0..3 (tiles up to 8).
func columnShape() *Shape {
	var arities [board.NumCells]int
	for i := range arities {
		arities[i] = 1
	}
	column := []int{3, 7, 11, 15}
	for _, i := range column {
		arities[i] = 4
	}
	return NewShape("column", arities, 3, "tuple_moves.column", columnRules{goal: 3}, column)
}

func columnBoard(ranks ...int) board.Board {
	var b board.Board
	for y, r := range ranks {
		b = b.Set(3, y, r)
	}
	return b
}

func newColumnTuple(t *testing.T, dir string) *Tuple {
	t.Helper()
	opts := DefaultOptions()
	opts.DataPath = dir
	return New(columnShape(), opts)
}

func TestColumnShape(t *testing.T) {
	is := is.New(t)
	s := columnShape()
	is.Equal(s.NumTuples(), uint64(256))
	is.Equal(s.NumTiles(), 4)
	is.Equal(s.TrackedCells(), []int{3, 7, 11, 15})
}

func TestOneMoveFromGoal(t *testing.T) {
	is := is.New(t)
	s := columnShape()
	moves := table.New(s.NumTuples())
	sr := NewSearcher(s, moves, 0.1)

	b := s.Prefill(columnBoard(2, 2, 0, 0))
	is.True(s.IsRegular(b))
	is.True(!s.IsGoal(b))
	is.Equal(sr.TryMoves(b), 1.0)

	tm := moves.Get(s.Encode(b))
	is.True(tm.Valid())
	is.Equal(tm.Move(), board.Up)
	is.Equal(tm.Prob(), 1.0)
}

func TestTryTilesExpectation(t *testing.T) {
	is := is.New(t)
	s := columnShape()
	sr := NewSearcher(s, table.New(s.NumTuples()), 0.1)

	// Only the bottom cell is free. A 2 there leaves a dead column; a 4
	// merges into an 8 on the next move.
	b := s.Prefill(columnBoard(2, 1, 2, 0))
	is.Equal(sr.TryTiles(b), 0.1)
}

func TestZeroTile4Prob(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	is.NoErr(cfg.Load([]string{"--tile4-prob", "0"}))
	opts, err := OptionsFromConfig(cfg)
	is.NoErr(err)
	is.Equal(opts.Tile4Prob, 0.0)

	opts.DataPath = ""
	tp := New(columnShape(), opts)
	// only 2s spawn, so the bottom cell can never set up the merge
	b := tp.Shape().Prefill(columnBoard(2, 1, 2, 0))
	is.Equal(tp.Searcher().TryTiles(b), 0.0)

	is.NoErr(cfg.Load([]string{"--tile4-prob", "1.5"}))
	_, err = OptionsFromConfig(cfg)
	is.True(err != nil)
}

func TestTryTilesNoRoom(t *testing.T) {
	is := is.New(t)
	s := columnShape()
	sr := NewSearcher(s, table.New(s.NumTuples()), 0.1)
	is.Equal(sr.TryTiles(s.Prefill(columnBoard(2, 1, 2, 1))), 0.0)
}

func TestTryMovesOutsideRegion(t *testing.T) {
	is := is.New(t)
	s := columnShape()
	moves := table.New(s.NumTuples())
	sr := NewSearcher(s, moves, 0.1)
	is.Equal(sr.TryMoves(columnBoard(5, 0, 0, 0)), 0.0)
	is.Equal(moves.Count(), uint64(0))
}

func TestGoalIsTerminal(t *testing.T) {
	is := is.New(t)
	tp := newColumnTuple(t, "")
	b := columnBoard(0, 3, 0, 0)

	m, prob := tp.Searcher().SuggestMove(b)
	is.Equal(m, board.NoMove)
	is.Equal(prob, 1.0)
	is.Equal(tp.Table().Count(), uint64(0))

	// other rotations may compute their own entries, never b's
	m, prob = tp.SuggestMove(b)
	is.Equal(m, board.NoMove)
	is.Equal(prob, 1.0)
	tm, _ := tp.Table().Locate(tp.Shape().Encode(b))
	is.True(!tm.Valid())
}

func TestComputePanics(t *testing.T) {
	s := columnShape()
	sr := NewSearcher(s, table.New(s.NumTuples()), 0.1)
	assert.Panics(t, func() { sr.Compute(columnBoard(3, 0, 0, 0)) })
	assert.Panics(t, func() { sr.Compute(columnBoard(0, 0, 0, 9)) })
}

func TestNotRegularAnywhere(t *testing.T) {
	is := is.New(t)
	tp := newColumnTuple(t, "")
	// The corner cell is in the right column of every rotation and of
	// the transpose.
	b := board.Board{}.Set(3, 3, 5).Set(0, 0, 5).Set(3, 0, 5).Set(0, 3, 5)
	m, prob := tp.SuggestMove(b)
	is.Equal(m, board.NoMove)
	is.Equal(prob, 0.0)

	_, err := tp.Simulate(context.Background(), b, 10)
	is.True(errors.Is(err, ErrNotRegular))
}

func TestSuggestMoveIsDeterministic(t *testing.T) {
	is := is.New(t)
	a := newColumnTuple(t, "")
	b := newColumnTuple(t, "")
	for key := uint64(0); key < a.Shape().NumTuples(); key++ {
		bd := a.Shape().SetTracked(board.Board{}, a.Shape().Decode(key))
		ma, pa := a.SuggestMove(bd)
		computed := a.Searcher().Progress().Computed
		mb, pb := b.SuggestMove(bd)
		is.Equal(ma, mb)
		is.Equal(pa, pb)

		// asking again reads the table
		ma2, pa2 := a.SuggestMove(bd)
		is.Equal(ma, ma2)
		is.Equal(pa, pa2)
		is.Equal(a.Searcher().Progress().Computed, computed)
	}
	is.Equal(a.Table().Count(), b.Table().Count())
}

func TestSymmetryInvariance(t *testing.T) {
	is := is.New(t)
	tp := newColumnTuple(t, "")
	for i := 0; i < 200; i++ {
		var b board.Board
		for c := range b {
			b[c] = uint8(frand.Intn(5))
		}
		_, want := tp.SuggestMove(b)
		r := b
		for d := 1; d < 4; d++ {
			r = r.Rotate()
			_, got := tp.SuggestMove(r)
			is.Equal(got, want)
		}
	}
}

func TestRotatedMoveMapsBack(t *testing.T) {
	is := is.New(t)
	tp := newColumnTuple(t, "")
	// Only the rotation with the pair in the right column can win; on the
	// original board that column is the top row, merged by a left move.
	b := columnBoard(2, 2, 0, 0)
	b = b.Rotate().Rotate().Rotate()
	m, prob := tp.SuggestMove(b)
	is.Equal(prob, 1.0)
	n, changed := b.Move(m)
	is.True(changed)
	found := false
	for _, r := range n {
		if r == 3 {
			found = true
		}
	}
	is.True(found)
}

func TestGenerate(t *testing.T) {
	is := is.New(t)
	tp := newColumnTuple(t, "")
	gs, err := tp.Generate(context.Background(), 0, 1<<20)
	is.NoErr(err)
	is.Equal(gs.Visited, uint64(256))
	is.Equal(gs.Regular, uint64(256))
	// keys holding no 8 anywhere: 3^4
	is.Equal(gs.Goal, uint64(256-81))
	is.Equal(gs.Computed, uint64(81))
	is.Equal(tp.Table().Count(), uint64(81))

	again, err := tp.Generate(context.Background(), 0, 256)
	is.NoErr(err)
	is.Equal(again.Computed, uint64(0))
}

func TestGenerateCancelled(t *testing.T) {
	is := is.New(t)
	tp := newColumnTuple(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gs, err := tp.Generate(ctx, 0, 256)
	is.True(errors.Is(err, context.Canceled))
	is.Equal(gs.Visited, uint64(0))
}

func TestLookupShowQuery(t *testing.T) {
	is := is.New(t)
	tp := newColumnTuple(t, "")

	var buf bytes.Buffer
	is.NoErr(tp.Query(&buf, []int{2, 2, 0, 0}))
	is.Equal(buf.String(), ":( 0.000\n")

	_, prob := tp.SuggestMove(columnBoard(2, 2, 0, 0))
	is.Equal(prob, 1.0)

	key, err := tp.Key([]int{2, 2, 0, 0})
	is.NoErr(err)
	m, prob := tp.Lookup(key)
	is.Equal(m, board.Up)
	is.Equal(prob, 1.0)

	buf.Reset()
	is.NoErr(tp.Query(&buf, []int{2, 2, 0, 0}))
	is.Equal(buf.String(), "up 1.000\n")

	buf.Reset()
	is.NoErr(tp.Show(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	is.Equal(uint64(len(lines)), tp.Table().Count())
	is.True(strings.Contains(buf.String(), "4 4 0 0, up, 1.000000\n"))

	err = tp.Query(&buf, []int{1, 2})
	is.True(errors.Is(err, ErrWrongTileCount))
	_, err = tp.Key([]int{1, 2, 3, 4})
	is.True(err != nil)
}

func TestEmptySnapshot(t *testing.T) {
	is := is.New(t)
	tp := newColumnTuple(t, t.TempDir())
	is.Equal(tp.Table().Count(), uint64(0))
	for key := uint64(0); key < tp.Shape().NumTuples(); key++ {
		m, prob := tp.Lookup(key)
		is.Equal(prob, 0.0)
		is.True(m >= board.Up && m <= board.Down)
	}
	var buf bytes.Buffer
	is.NoErr(tp.Query(&buf, []int{0, 0, 0, 0}))
	is.Equal(buf.String(), ":( 0.000\n")
}

func TestCloseAndReload(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	tp := newColumnTuple(t, dir)
	_, err := tp.Generate(context.Background(), 0, 256)
	is.NoErr(err)

	want := map[uint64]tinymove.TinyMove{}
	tp.Table().ForEach(func(key uint64, tm tinymove.TinyMove) bool {
		if tm.Prob() > 0 {
			want[key] = tm
		}
		return true
	})
	is.NoErr(tp.Close())

	again := newColumnTuple(t, dir)
	is.Equal(again.Table().Count(), uint64(len(want)))
	for key, tm := range want {
		m, prob := again.Lookup(key)
		is.Equal(m, tm.Move())
		is.Equal(prob, tm.Prob())
	}
}

func TestSimulate(t *testing.T) {
	is := is.New(t)
	tp := newColumnTuple(t, "")
	res, err := tp.Simulate(context.Background(), columnBoard(2, 2, 0, 0), 50)
	is.NoErr(err)
	is.Equal(res.Trials, 50)
	is.Equal(res.Successes, 50)
	is.Equal(res.Predicted, 1.0)
	is.Equal(res.MaxMoves, 1)

	// One free cell, which must get a 4 for the column to finish.
	res, err = tp.Simulate(context.Background(), columnBoard(2, 1, 2, 0), 2000)
	is.NoErr(err)
	is.Equal(res.Trials, 2000)
	is.True(res.Empirical() < 0.5)
}

func TestStats(t *testing.T) {
	is := is.New(t)
	tp := newColumnTuple(t, "")
	_, err := tp.Generate(context.Background(), 0, 256)
	is.NoErr(err)
	s := tp.Stats(0)
	is.Equal(s.Entries, uint64(81))
	is.True(s.Mean > 0 && s.Mean <= 1)
	is.True(s.Max <= 1)
}
