package analytics

import (
	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

// OutlierPolicy bounds what counts as a plausible reading.
type OutlierPolicy struct {
	TempMinC   float64
	TempMaxC   float64
	RobustZMax float64
}

// repairMinSamples is the minimum trailing-window population for the rolling
// median used to replace a flagged reading.
const repairMinSamples = 6

// Clean flags implausible readings and repairs them. A reading is an outlier
// when it falls outside the configured plausible range or its robust z-score
// within its calendar month exceeds the policy threshold. Flagged readings
// are replaced by the trailing 24-hour rolling median; holes that remain are
// filled from the nearest repaired neighbor. Hours that were missing in the
// source stay missing.
func Clean(grid []domain.HourlyObservation, policy OutlierPolicy) []domain.CleanedHourlyRecord {
	recs := make([]domain.CleanedHourlyRecord, len(grid))
	for i, o := range grid {
		hour := o.Timestamp.Hour()
		recs[i] = domain.CleanedHourlyRecord{
			HourlyObservation: o,
			Weekday:           domain.MondayWeekday(o.Timestamp),
			Hour:              hour,
			IsNight:           domain.IsNightHour(hour),
			CleanTemp:         domain.Missing,
			Roll24Mean:        domain.Missing,
			Roll168Mean:       domain.Missing,
			SeasonalMean:      domain.Missing,
			Anomaly:           domain.Missing,
		}
	}

	flagOutliers(recs, policy)
	repairOutliers(recs)
	fillRepairHoles(recs)

	return recs
}

// flagOutliers marks readings outside the plausible range or with an extreme
// robust z-score inside their calendar month.
func flagOutliers(recs []domain.CleanedHourlyRecord, policy OutlierPolicy) {
	months := make(map[int][]int) // year*100+month -> record indices
	for i := range recs {
		ts := recs[i].Timestamp
		key := ts.Year()*100 + int(ts.Month())
		months[key] = append(months[key], i)
	}

	for _, idx := range months {
		temps := make([]float64, len(idx))
		for j, i := range idx {
			temps[j] = recs[i].TempC
		}
		z := robustZ(temps)

		for j, i := range idx {
			t := recs[i].TempC
			if domain.IsMissing(t) {
				continue
			}
			zj := z[j]
			if zj < 0 {
				zj = -zj
			}
			if t < policy.TempMinC || t > policy.TempMaxC || zj > policy.RobustZMax {
				recs[i].IsOutlier = true
			}
		}
	}
}

// repairOutliers sets CleanTemp: raw value for good readings, trailing
// 24-hour rolling median for flagged ones. The median window includes the
// flagged values themselves; the median shrugs them off.
func repairOutliers(recs []domain.CleanedHourlyRecord) {
	for i := range recs {
		if domain.IsMissing(recs[i].TempC) {
			continue
		}
		if !recs[i].IsOutlier {
			recs[i].CleanTemp = recs[i].TempC
			continue
		}

		lo := i - 23
		if lo < 0 {
			lo = 0
		}
		window := make([]float64, 0, i-lo+1)
		for j := lo; j <= i; j++ {
			if !domain.IsMissing(recs[j].TempC) {
				window = append(window, recs[j].TempC)
			}
		}
		if len(window) >= repairMinSamples {
			recs[i].CleanTemp = median(window)
		}
	}
}

// fillRepairHoles backfills then forward-fills outlier positions whose
// rolling median was undefined. Only flagged readings are filled; hours with
// no source reading are left missing.
func fillRepairHoles(recs []domain.CleanedHourlyRecord) {
	for i := range recs {
		if !recs[i].IsOutlier || !domain.IsMissing(recs[i].CleanTemp) {
			continue
		}
		for j := i + 1; j < len(recs); j++ {
			if !domain.IsMissing(recs[j].CleanTemp) {
				recs[i].CleanTemp = recs[j].CleanTemp
				break
			}
		}
		if domain.IsMissing(recs[i].CleanTemp) {
			for j := i - 1; j >= 0; j-- {
				if !domain.IsMissing(recs[j].CleanTemp) {
					recs[i].CleanTemp = recs[j].CleanTemp
					break
				}
			}
		}
	}
}
