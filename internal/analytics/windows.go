package analytics

import (
	"sort"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

// HourWindows ranks the 24 hours of the day by average temperature and
// average anomaly to suggest cool, low-anomaly intervention windows. The
// result is sorted best-first (lowest combined rank, ties by hour).
func HourWindows(recs []domain.CleanedHourlyRecord, days []domain.DailyAggregate, zone string) []domain.HourWindow {
	temps := make([][]float64, 24)
	anomalies := make([][]float64, 24)
	for i := range recs {
		h := recs[i].Hour
		temps[h] = append(temps[h], recs[i].CleanTemp)
		anomalies[h] = append(anomalies[h], recs[i].Anomaly)
	}

	retentions := make([]float64, 0, len(days))
	for i := range days {
		retentions = append(retentions, days[i].NightRetention)
	}
	meanRetention := meanDefined(retentions)

	windows := make([]domain.HourWindow, 24)
	avgTemps := make([]float64, 24)
	avgAnomalies := make([]float64, 24)
	for h := 0; h < 24; h++ {
		avgTemps[h] = meanDefined(temps[h])
		avgAnomalies[h] = meanDefined(anomalies[h])
		windows[h] = domain.HourWindow{
			Zone:               zone,
			Hour:               h,
			AvgTemp:            avgTemps[h],
			AvgAnomaly:         avgAnomalies[h],
			MeanNightRetention: meanRetention,
		}
	}

	tempRanks := denseRank(avgTemps)
	anomalyRanks := denseRank(avgAnomalies)
	for h := 0; h < 24; h++ {
		windows[h].RankCoolest = tempRanks[h]
		windows[h].RankLowAnomaly = anomalyRanks[h]
		windows[h].Score = (float64(tempRanks[h]) + float64(anomalyRanks[h])) / 2
	}

	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Score != windows[j].Score {
			return windows[i].Score < windows[j].Score
		}
		return windows[i].Hour < windows[j].Hour
	})
	return windows
}

// denseRank assigns ascending dense ranks starting at 1; equal values share a
// rank. Missing values rank last.
func denseRank(xs []float64) []int {
	uniq := make([]float64, 0, len(xs))
	seen := make(map[float64]bool, len(xs))
	for _, x := range xs {
		if domain.IsMissing(x) {
			continue
		}
		if !seen[x] {
			seen[x] = true
			uniq = append(uniq, x)
		}
	}
	sort.Float64s(uniq)

	rankOf := make(map[float64]int, len(uniq))
	for i, v := range uniq {
		rankOf[v] = i + 1
	}

	missingRank := len(uniq) + 1
	ranks := make([]int, len(xs))
	for i, x := range xs {
		if domain.IsMissing(x) {
			ranks[i] = missingRank
			continue
		}
		ranks[i] = rankOf[x]
	}
	return ranks
}
