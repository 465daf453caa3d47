package tuple

import (
	"context"
	"fmt"
)

// GenerateStats counts what a Generate pass saw.
type GenerateStats struct {
	Visited  uint64
	Regular  uint64
	Goal     uint64
	Computed uint64
}

func (g GenerateStats) String() string {
	return fmt.Sprintf("visited %d, regular %d, goal %d, computed %d",
		g.Visited, g.Regular, g.Goal, g.Computed)
}

// Generate fills the table offline for keys in [start, end). Each key is
// decoded, prefilled and searched when it is regular and not yet a goal.
// ctx is only checked between keys; one key's search runs to completion.
func (t *Tuple) Generate(ctx context.Context, start, end uint64) (GenerateStats, error) {
	var gs GenerateStats
	end = min(end, t.shape.NumTuples())
	before := t.searcher.progress.Computed
	for key := start; key < end; key++ {
		if err := ctx.Err(); err != nil {
			gs.Computed = t.searcher.progress.Computed - before
			return gs, err
		}
		gs.Visited++
		b := t.shape.BoardForKey(key)
		if !t.shape.IsRegular(b) {
			continue
		}
		gs.Regular++
		if t.shape.IsGoal(b) {
			gs.Goal++
			continue
		}
		t.searcher.TryMoves(b)
	}
	gs.Computed = t.searcher.progress.Computed - before
	return gs, nil
}
