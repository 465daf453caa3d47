package stats

import "lukechampine.com/frand"

// A Reservoir keeps a uniform random sample of at most Size values from a
// stream of unknown length (algorithm R).
type Reservoir struct {
	size   int
	seen   uint64
	sample []float64
	rng    *frand.RNG
}

func NewReservoir(size int) *Reservoir {
	return &Reservoir{
		size:   size,
		sample: make([]float64, 0, size),
		rng:    frand.New(),
	}
}

func (r *Reservoir) Add(val float64) {
	r.seen++
	if len(r.sample) < r.size {
		r.sample = append(r.sample, val)
		return
	}
	if j := r.rng.Uint64n(r.seen); j < uint64(r.size) {
		r.sample[j] = val
	}
}

// Seen returns how many values were offered.
func (r *Reservoir) Seen() uint64 {
	return r.seen
}

// Sample returns the values kept. The slice is owned by the reservoir.
func (r *Reservoir) Sample() []float64 {
	return r.sample
}
