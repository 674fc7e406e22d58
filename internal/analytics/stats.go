package analytics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

// madScale converts a median absolute deviation into a standard-deviation
// equivalent for normally distributed data.
const madScale = 0.6745

// defined filters the missing sentinel out of a value slice.
func defined(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !domain.IsMissing(x) {
			out = append(out, x)
		}
	}
	return out
}

// meanDefined averages the defined values, returning Missing for an empty set.
func meanDefined(xs []float64) float64 {
	d := defined(xs)
	if len(d) == 0 {
		return domain.Missing
	}
	return stat.Mean(d, nil)
}

// median returns the averaging median of the defined values, Missing if none.
func median(xs []float64) float64 {
	d := defined(xs)
	if len(d) == 0 {
		return domain.Missing
	}
	sort.Float64s(d)
	n := len(d)
	if n%2 == 1 {
		return d[n/2]
	}
	return (d[n/2-1] + d[n/2]) / 2
}

// quantile returns the empirical p-quantile of the defined values, Missing if none.
func quantile(p float64, xs []float64) float64 {
	d := defined(xs)
	if len(d) == 0 {
		return domain.Missing
	}
	sort.Float64s(d)
	return stat.Quantile(p, stat.Empirical, d, nil)
}

// robustZ computes MAD-based z-scores for a value slice. Missing values get a
// zero score, as does the whole slice when the MAD is zero (an all-equal
// window has no spread to score against).
func robustZ(xs []float64) []float64 {
	z := make([]float64, len(xs))

	med := median(xs)
	if domain.IsMissing(med) {
		return z
	}

	devs := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !domain.IsMissing(x) {
			d := x - med
			if d < 0 {
				d = -d
			}
			devs = append(devs, d)
		}
	}
	mad := median(devs)
	if domain.IsMissing(mad) || mad == 0 {
		return z
	}

	for i, x := range xs {
		if !domain.IsMissing(x) {
			z[i] = madScale * (x - med) / mad
		}
	}
	return z
}
