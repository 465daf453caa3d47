package stats

import "gonum.org/v1/gonum/stat/distuv"

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	return dist.Quantile((1 + confidenceInterval/100) / 2)
}

// MeanInterval returns the bounds of the confidence interval, in percent,
// for the mean tracked by r.
func MeanInterval(r *Running, confidenceInterval float64) (lo, hi float64) {
	d := ZVal(confidenceInterval) * r.StandardError()
	return r.Mean() - d, r.Mean() + d
}
