package stats

import (
	"bytes"
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []int
		mean   float64
		stdev  float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Running{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
	}
}

func TestMinMax(t *testing.T) {
	is := is.New(t)
	s := &Running{}
	for _, v := range []float64{0.5, 0.25, 0.75, 0.5} {
		s.Push(v)
	}
	is.Equal(s.Min(), 0.25)
	is.Equal(s.Max(), 0.75)
	is.Equal(s.N(), uint64(4))
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(FuzzyEqual(ZVal(95), 1.959963984540054))
	is.True(FuzzyEqual(ZVal(99), 2.5758293035489004))
}

func TestReservoirKeepsAllWhenSmall(t *testing.T) {
	is := is.New(t)
	r := NewReservoir(10)
	for i := 0; i < 5; i++ {
		r.Add(float64(i))
	}
	is.Equal(r.Sample(), []float64{0, 1, 2, 3, 4})
	is.Equal(r.Seen(), uint64(5))
}

func TestReservoirBounded(t *testing.T) {
	is := is.New(t)
	r := NewReservoir(100)
	for i := 0; i < 10000; i++ {
		r.Add(float64(i))
	}
	is.Equal(len(r.Sample()), 100)
	is.Equal(r.Seen(), uint64(10000))
	for _, v := range r.Sample() {
		is.True(v >= 0 && v < 10000)
	}
}

func TestCollectorSummary(t *testing.T) {
	is := is.New(t)
	c := NewCollector(0)
	for _, p := range []float64{0, 0.25, 0.5, 0.75, 1} {
		c.Add(p)
	}
	s := c.Summary(95)
	is.Equal(s.Entries, uint64(5))
	is.Equal(s.Positive, uint64(4))
	is.Equal(s.Certain, uint64(1))
	is.True(FuzzyEqual(s.Mean, 0.5))
	is.True(FuzzyEqual(s.Median, 0.5))
	is.True(s.CILow < s.Mean && s.Mean < s.CIHigh)

	var buf bytes.Buffer
	is.NoErr(s.Fprint(&buf, 4, 20))
	is.True(bytes.Contains(buf.Bytes(), []byte("entries: 5")))
}

func TestEmptySummary(t *testing.T) {
	is := is.New(t)
	s := NewCollector(10).Summary(95)
	is.Equal(s.Entries, uint64(0))
	var buf bytes.Buffer
	is.NoErr(s.Fprint(&buf, 10, 20))
}
