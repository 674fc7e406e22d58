package analytics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

const (
	roll24Window  = 24
	roll168Window = 168

	// roll168MinSamples keeps the weekly mean usable through short gaps while
	// the strict daily mean stays undefined across any gap at all.
	roll168MinSamples = 24
)

// AddRollingStats fills Roll24Mean and Roll168Mean in place.
//
// Roll24Mean is strict: it is defined for an hour iff that hour and the 23
// before it are all on the grid with a clean temperature. Early-series hours
// and any hour downstream of a gap are missing.
//
// Roll168Mean trails up to 7 days and needs only 24 defined samples.
func AddRollingStats(recs []domain.CleanedHourlyRecord) {
	for i := range recs {
		recs[i].Roll24Mean = strictWindowMean(recs, i, roll24Window)
		recs[i].Roll168Mean = looseWindowMean(recs, i, roll168Window, roll168MinSamples)
	}
}

// strictWindowMean averages the trailing window ending at i, requiring every
// sample in the window to be present.
func strictWindowMean(recs []domain.CleanedHourlyRecord, i, window int) float64 {
	if i < window-1 {
		return domain.Missing
	}
	vals := make([]float64, 0, window)
	for j := i - window + 1; j <= i; j++ {
		if domain.IsMissing(recs[j].CleanTemp) {
			return domain.Missing
		}
		vals = append(vals, recs[j].CleanTemp)
	}
	return stat.Mean(vals, nil)
}

// looseWindowMean averages the defined samples in the trailing window ending
// at i, truncated at the series start, requiring at least minSamples of them.
func looseWindowMean(recs []domain.CleanedHourlyRecord, i, window, minSamples int) float64 {
	lo := i - window + 1
	if lo < 0 {
		lo = 0
	}
	vals := make([]float64, 0, i-lo+1)
	for j := lo; j <= i; j++ {
		if !domain.IsMissing(recs[j].CleanTemp) {
			vals = append(vals, recs[j].CleanTemp)
		}
	}
	if len(vals) < minSamples {
		return domain.Missing
	}
	return stat.Mean(vals, nil)
}
