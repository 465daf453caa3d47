package tuple

import (
	"github.com/domino14/tuple2048/stats"
	"github.com/domino14/tuple2048/tinymove"
)

// Stats summarizes the probabilities of every computed entry, with the
// mean's confidence interval at 95%.
func (t *Tuple) Stats(sampleSize int) stats.Summary {
	c := stats.NewCollector(sampleSize)
	t.moves.ForEach(func(_ uint64, tm tinymove.TinyMove) bool {
		c.Add(tm.Prob())
		return true
	})
	return c.Summary(95)
}
