package tuple

import (
	"github.com/rs/zerolog/log"

	"github.com/domino14/tuple2048/board"
	"github.com/domino14/tuple2048/table"
	"github.com/domino14/tuple2048/tinymove"
)

// DefaultTile4Prob is the chance that a spawned tile is a 4.
const DefaultTile4Prob = 0.1

// DefaultProgressInterval is how many newly computed entries pass between
// progress log lines.
const DefaultProgressInterval = 1 << 20

// Progress counts the entries a Searcher has computed.
type Progress struct {
	Computed uint64
	Interval uint64
	shape    string
}

func (p *Progress) tick() {
	p.Computed++
	if p.Interval > 0 && p.Computed%p.Interval == 0 {
		log.Info().Str("shape", p.shape).Uint64("computed", p.Computed).
			Msg("tuple-search-progress")
	}
}

// A Searcher runs the exhaustive expectimax search for one shape and
// memoizes every result in a table it borrows from its owner. Boards are
// values; every recursive call works on its own copy.
type Searcher struct {
	shape     *Shape
	moves     *table.Table
	tile4Prob float64
	progress  *Progress
}

// NewSearcher creates a searcher writing into moves, which must have room
// for shape.NumTuples() keys.
func NewSearcher(shape *Shape, moves *table.Table, tile4Prob float64) *Searcher {
	if moves.Len() != shape.NumTuples() {
		panic("table size does not match shape")
	}
	return &Searcher{
		shape:     shape,
		moves:     moves,
		tile4Prob: tile4Prob,
		progress:  &Progress{Interval: DefaultProgressInterval, shape: shape.Name},
	}
}

// Progress returns the searcher's running counters.
func (s *Searcher) Progress() *Progress {
	return s.progress
}

// TryMoves returns the probability of reaching a goal from b with the
// player to move. A goal board is worth 1 and a board outside the
// shape's regular region is worth 0; neither touches the table. Any
// other board is computed at most once, then read back from the table.
//
// b is expected to carry the prefilled background (see Shape.Prefill),
// since the key only covers tracked cells.
func (s *Searcher) TryMoves(b board.Board) float64 {
	if !s.shape.IsRegular(b) {
		return 0
	}
	if s.shape.IsGoal(b) {
		return 1
	}
	key := s.shape.Encode(b)
	if tm, _ := s.moves.Locate(key); tm.Valid() {
		return tm.Prob()
	}

	maxProb := 0.0
	maxMove := board.Up
	for _, m := range board.AllMoves {
		prob := s.tryMove(b, m)
		if maxProb < prob {
			maxProb = prob
			maxMove = m
		}
	}
	tm := tinymove.New(maxMove, maxProb)
	s.moves.Store(key, tm)
	s.progress.tick()
	return tm.Prob()
}

func (s *Searcher) tryMove(b board.Board, m board.Move) float64 {
	n, changed := b.Move(m)
	switch {
	case !changed, !s.shape.IsRegular(n), !s.shape.HasSameTops(n, b):
		return 0
	case s.shape.IsGoal(n):
		return 1
	}
	return s.TryTiles(n)
}

// TryTiles returns the expected probability over every tile the game may
// spawn into an empty cell of the free region. With no room to spawn the
// position is lost.
func (s *Searcher) TryTiles(b board.Board) float64 {
	empty := 0
	tile2Prob, tile4Prob := 0.0, 0.0
	for _, i := range s.shape.free {
		if b[i] != 0 {
			continue
		}
		empty++
		n := b
		n[i] = 1
		tile2Prob += s.TryMoves(n)
		n[i] = 2
		tile4Prob += s.TryMoves(n)
	}
	if empty == 0 {
		return 0
	}
	return (tile2Prob*(1-s.tile4Prob) + tile4Prob*s.tile4Prob) / float64(empty)
}

// SuggestMove looks up, computing on a miss, the best move for b as given
// or transposed, whichever is regular first. A regular board that is
// already a goal needs no move and reports probability 1. A board that is
// regular in neither orientation reports 0.
func (s *Searcher) SuggestMove(b board.Board) (board.Move, float64) {
	for i := 0; i < 2; i++ {
		transposed := i == 1
		if s.shape.IsRegular(b) {
			if s.shape.IsGoal(b) {
				return board.NoMove, 1
			}
			key := s.shape.Encode(b)
			tm, ok := s.moves.Locate(key)
			if !ok || !tm.Valid() {
				s.Compute(b)
				tm = s.moves.Get(key)
			}
			m := tm.Move()
			if transposed {
				m = m.Transposed()
			}
			return m, tm.Prob()
		}
		b = b.Transpose()
	}
	return board.NoMove, 0
}

// Compute fills the table entry for b's tracked cells, searching from b
// with its background replaced by the prefilled ranks. It panics if that
// board is not regular or is already a goal: callers must check first.
func (s *Searcher) Compute(b board.Board) float64 {
	p := s.shape.Prefill(b)
	if !s.shape.IsRegular(p) {
		panic("compute called on a board outside the regular region")
	}
	if s.shape.IsGoal(p) {
		panic("compute called on a goal board")
	}
	return s.TryMoves(p)
}
