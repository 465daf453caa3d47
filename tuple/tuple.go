package tuple

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tuple2048/board"
	"github.com/domino14/tuple2048/table"
	"github.com/domino14/tuple2048/tinymove"
)

var ErrWrongTileCount = errors.New("wrong number of tiles for shape")

// Options tune a Tuple. Start from DefaultOptions; a zero Tile4Prob means
// only 2s are ever spawned.
type Options struct {
	// DataPath is the directory holding snapshot files. An empty path
	// disables loading and saving.
	DataPath string
	// Tile4Prob is the chance that a spawned tile is a 4.
	Tile4Prob float64
	// SaveThreshold is the quantization step for saved probabilities.
	SaveThreshold float64
	Codec         table.Codec
	// ProgressInterval is how many computed entries pass between
	// progress log lines. Zero means DefaultProgressInterval.
	ProgressInterval uint64
}

// DefaultOptions returns options with the standard spawn odds and no data
// path.
func DefaultOptions() Options {
	return Options{
		Tile4Prob:        DefaultTile4Prob,
		Codec:            table.CodecZSTD,
		ProgressInterval: DefaultProgressInterval,
	}
}

// A Tuple owns the lookup table for one shape. The table is loaded from its
// snapshot when the Tuple is created and saved when it is closed.
type Tuple struct {
	shape    *Shape
	moves    *table.Table
	searcher *Searcher
	opts     Options
}

// New creates a Tuple and loads its snapshot. A missing or unreadable
// snapshot is logged and leaves the table empty.
func New(shape *Shape, opts Options) *Tuple {
	if opts.ProgressInterval == 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	moves := table.New(shape.NumTuples())
	t := &Tuple{
		shape:    shape,
		moves:    moves,
		searcher: NewSearcher(shape, moves, opts.Tile4Prob),
		opts:     opts,
	}
	t.searcher.progress.Interval = opts.ProgressInterval
	t.load()
	return t
}

func (t *Tuple) path() string {
	if t.opts.DataPath == "" {
		return ""
	}
	return filepath.Join(t.opts.DataPath, t.shape.File)
}

func (t *Tuple) load() {
	path := t.path()
	if path == "" {
		return
	}
	n, err := t.moves.Load(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info().Str("shape", t.shape.Name).Str("path", path).
			Msg("no snapshot found; starting with an empty table")
	case err != nil:
		log.Warn().Err(err).Str("shape", t.shape.Name).Str("path", path).
			Msg("could not load snapshot; starting with an empty table")
	default:
		log.Info().Str("shape", t.shape.Name).Str("path", path).Int("records", n).
			Msg("tuple-loaded")
	}
}

// Shape returns the tuple's shape.
func (t *Tuple) Shape() *Shape {
	return t.shape
}

// Table returns the backing table.
func (t *Tuple) Table() *table.Table {
	return t.moves
}

// Searcher returns the search engine bound to this tuple's table.
func (t *Tuple) Searcher() *Searcher {
	return t.searcher
}

// SuggestMove tries all four rotations of b and returns the move, in b's
// own orientation, with the highest probability of reaching a goal. It
// returns NoMove and 0 if no rotation falls in the shape's region.
func (t *Tuple) SuggestMove(b board.Board) (board.Move, float64) {
	maxProb := 0.0
	move := board.NoMove
	for d := 0; d < 4; d++ {
		if d > 0 {
			b = b.Rotate()
		}
		m, prob := t.searcher.SuggestMove(b)
		if maxProb < prob {
			maxProb = prob
			move = m.Unrotate(d)
		}
	}
	return move, maxProb
}

// Lookup reads the table entry for key without computing anything. An
// entry that was never computed reads as probability 0.
func (t *Tuple) Lookup(key uint64) (board.Move, float64) {
	tm := t.moves.Get(key)
	return tm.Move(), tm.Prob()
}

func tileString(tiles []int) string {
	parts := make([]string, len(tiles))
	for i, r := range tiles {
		parts[i] = fmt.Sprint(board.RankToTile(r))
	}
	return strings.Join(parts, " ")
}

// Show writes every computed entry: the tracked tiles, the move and the
// probability.
func (t *Tuple) Show(w io.Writer) error {
	var err error
	t.moves.ForEach(func(key uint64, tm tinymove.TinyMove) bool {
		_, err = fmt.Fprintf(w, "%s, %s, %f\n",
			tileString(t.shape.Decode(key)), tm.Move(), tm.Prob())
		return err == nil
	})
	return err
}

// Query writes the stored move and probability for the given tracked
// ranks, in key order, or ":(" when nothing useful is stored.
func (t *Tuple) Query(w io.Writer, tiles []int) error {
	key, err := t.Key(tiles)
	if err != nil {
		return err
	}
	m, prob := t.Lookup(key)
	name := ":("
	if prob > 0 {
		name = m.String()
	}
	_, err = fmt.Fprintf(w, "%s %.3f\n", name, prob)
	return err
}

// Key encodes tracked ranks, in key order, into a table key.
func (t *Tuple) Key(tiles []int) (uint64, error) {
	if len(tiles) != t.shape.NumTiles() {
		return 0, fmt.Errorf("%w: want %d, got %d", ErrWrongTileCount,
			t.shape.NumTiles(), len(tiles))
	}
	for i, r := range tiles {
		if a := t.shape.Arities[t.shape.tracked[i]]; r < 0 || r >= a {
			return 0, fmt.Errorf("rank %d out of range for tile %d (arity %d)", r, i, a)
		}
	}
	return t.shape.Encode(t.shape.SetTracked(board.Board{}, tiles)), nil
}

func keepPositive(tm tinymove.TinyMove) bool {
	return tm.Valid() && tm.Prob() > 0
}

// Save writes the snapshot. Only entries with a positive probability are
// kept; the others are cheap to recompute.
func (t *Tuple) Save() (int, error) {
	path := t.path()
	if path == "" {
		return 0, nil
	}
	return t.moves.Save(path, keepPositive, t.opts.SaveThreshold, t.opts.Codec)
}

// Close saves the snapshot. The Tuple must not be used afterwards.
func (t *Tuple) Close() error {
	_, err := t.Save()
	if err != nil {
		return fmt.Errorf("saving %s: %w", t.shape.Name, err)
	}
	return nil
}
