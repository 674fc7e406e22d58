package analytics

import (
	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

// Deseasonalize fills SeasonalMean and Anomaly in place. Records are grouped
// by (weekday, hour-of-day) across the full series; each group's mean clean
// temperature is subtracted from its members. A bucket with no defined
// readings yields missing anomalies, never zero.
func Deseasonalize(recs []domain.CleanedHourlyRecord) {
	const buckets = 7 * 24
	sums := make([]float64, buckets)
	counts := make([]int, buckets)

	for i := range recs {
		if domain.IsMissing(recs[i].CleanTemp) {
			continue
		}
		b := recs[i].Weekday*24 + recs[i].Hour
		sums[b] += recs[i].CleanTemp
		counts[b]++
	}

	means := make([]float64, buckets)
	for b := range means {
		if counts[b] == 0 {
			means[b] = domain.Missing
			continue
		}
		means[b] = sums[b] / float64(counts[b])
	}

	for i := range recs {
		b := recs[i].Weekday*24 + recs[i].Hour
		recs[i].SeasonalMean = means[b]
		if domain.IsMissing(recs[i].CleanTemp) || domain.IsMissing(means[b]) {
			recs[i].Anomaly = domain.Missing
			continue
		}
		recs[i].Anomaly = recs[i].CleanTemp - means[b]
	}
}
