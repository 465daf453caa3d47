package stats

import (
	"fmt"
	"io"
	"slices"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/stat"
)

// DefaultSampleSize bounds the memory a Collector spends on its sample.
const DefaultSampleSize = 100000

// A Collector summarizes the probabilities stored in a table: exact
// running moments over every value, and a bounded random sample for
// quantiles and the histogram.
type Collector struct {
	all      Running
	positive uint64
	certain  uint64
	sample   *Reservoir
}

func NewCollector(sampleSize int) *Collector {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Collector{sample: NewReservoir(sampleSize)}
}

func (c *Collector) Add(prob float64) {
	c.all.Push(prob)
	if prob > 0 {
		c.positive++
	}
	if prob >= 1 {
		c.certain++
	}
	c.sample.Add(prob)
}

// Summary is a snapshot of a Collector.
type Summary struct {
	Entries  uint64
	Positive uint64
	Certain  uint64
	Mean     float64
	Stdev    float64
	Min      float64
	Max      float64
	// CILow and CIHigh bound the mean at the requested confidence.
	CILow, CIHigh float64
	Confidence    float64
	// Median and SampleStdev come from the random sample.
	Median      float64
	SampleStdev float64
	Sample      []float64
}

// Summary computes the summary at the given confidence, in percent.
func (c *Collector) Summary(confidence float64) Summary {
	s := Summary{
		Entries:    c.all.N(),
		Positive:   c.positive,
		Certain:    c.certain,
		Mean:       c.all.Mean(),
		Stdev:      c.all.Stdev(),
		Min:        c.all.Min(),
		Max:        c.all.Max(),
		Confidence: confidence,
	}
	if s.Entries == 0 {
		return s
	}
	s.CILow, s.CIHigh = MeanInterval(&c.all, confidence)
	s.Sample = slices.Clone(c.sample.Sample())
	slices.Sort(s.Sample)
	s.Median = stat.Quantile(0.5, stat.Empirical, s.Sample, nil)
	_, s.SampleStdev = stat.MeanStdDev(s.Sample, nil)
	return s
}

// Fprint writes the summary and, when there is anything to plot, a
// histogram of the sample with the given number of bins.
func (s Summary) Fprint(w io.Writer, bins, width int) error {
	_, err := fmt.Fprintf(w,
		"entries: %d\npositive: %d\ncertain: %d\nmean: %.6f (%.0f%% CI %.6f - %.6f)\nstdev: %.6f\nmin: %.6f max: %.6f\nmedian (sampled): %.6f\n",
		s.Entries, s.Positive, s.Certain, s.Mean, s.Confidence, s.CILow, s.CIHigh,
		s.Stdev, s.Min, s.Max, s.Median)
	if err != nil || len(s.Sample) == 0 {
		return err
	}
	h := histogram.Hist(bins, s.Sample)
	return histogram.Fprint(w, h, histogram.Linear(width))
}
