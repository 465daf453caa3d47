package tuple

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/tuple2048/board"
)

var ErrNotRegular = errors.New("board is not regular for this shape in any orientation")

// SimulateResult compares the table's prediction for a board with the
// success rate of actually playing its policy.
type SimulateResult struct {
	Trials    int
	Successes int
	Predicted float64
	// MaxMoves is the longest game played, in moves.
	MaxMoves int
}

// Empirical is the observed success rate.
func (r SimulateResult) Empirical() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Successes) / float64(r.Trials)
}

func (r SimulateResult) String() string {
	return fmt.Sprintf("%d/%d reached a goal (%.4f), table predicts %.4f, longest game %d moves",
		r.Successes, r.Trials, r.Empirical(), r.Predicted, r.MaxMoves)
}

// Simulate plays the table's policy from b trials times. Games are played
// the way the search models them: b is put in the orientation the searcher
// uses, its background is prefilled, and tiles only spawn into the free
// region. Each game ends on a goal (success) or on a board that leaves
// the regular region or has no room to spawn (failure).
func (t *Tuple) Simulate(ctx context.Context, b board.Board, trials int) (SimulateResult, error) {
	start, ok := t.orient(b)
	if !ok {
		return SimulateResult{}, ErrNotRegular
	}
	start = t.shape.Prefill(start)
	res := SimulateResult{}
	if !t.shape.IsRegular(start) {
		return res, ErrNotRegular
	}
	if t.shape.IsGoal(start) {
		res.Predicted = 1
	} else {
		res.Predicted = t.searcher.TryMoves(start)
	}

	rng := frand.New()
	for i := 0; i < trials; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		won, moves := t.playOut(rng, start)
		res.Trials++
		if won {
			res.Successes++
		}
		res.MaxMoves = max(res.MaxMoves, moves)
	}
	log.Debug().Str("shape", t.shape.Name).Int("trials", res.Trials).
		Float64("empirical", res.Empirical()).Float64("predicted", res.Predicted).
		Msg("simulation-done")
	return res, nil
}

// orient returns b as-is or transposed, whichever is regular first.
func (t *Tuple) orient(b board.Board) (board.Board, bool) {
	if t.shape.IsRegular(b) {
		return b, true
	}
	if b = b.Transpose(); t.shape.IsRegular(b) {
		return b, true
	}
	return b, false
}

func (t *Tuple) playOut(rng *frand.RNG, b board.Board) (bool, int) {
	moves := 0
	for {
		if !t.shape.IsRegular(b) {
			return false, moves
		}
		if t.shape.IsGoal(b) {
			return true, moves
		}
		tm := t.moves.Get(t.shape.Encode(b))
		if !tm.Valid() {
			t.searcher.TryMoves(b)
			tm = t.moves.Get(t.shape.Encode(b))
		}
		n, changed := b.Move(tm.Move())
		moves++
		switch {
		case !changed, !t.shape.IsRegular(n), !t.shape.HasSameTops(n, b):
			return false, moves
		case t.shape.IsGoal(n):
			return true, moves
		}
		var ok bool
		b, ok = t.spawn(rng, n)
		if !ok {
			return false, moves
		}
	}
}

// spawn places a 2, or a 4 with the configured probability, on a random
// empty cell of the free region.
func (t *Tuple) spawn(rng *frand.RNG, b board.Board) (board.Board, bool) {
	empty := make([]int, 0, len(t.shape.free))
	for _, i := range t.shape.free {
		if b[i] == 0 {
			empty = append(empty, i)
		}
	}
	if len(empty) == 0 {
		return b, false
	}
	rank := uint8(1)
	if rng.Float64() < t.opts.Tile4Prob {
		rank = 2
	}
	b[empty[rng.Intn(len(empty))]] = rank
	return b, true
}
