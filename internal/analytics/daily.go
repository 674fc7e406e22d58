package analytics

import (
	"time"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

// retentionSmoothingDays is the trailing window for the presentation-smoothed
// retention series.
const retentionSmoothingDays = 7

// DailyAggregates rolls the hourly records up to one row per calendar day:
// temperature summary, mean anomaly, outlier proportion, nighttime heat
// retention and its 7-day trailing mean.
//
// Retention for day D is mean(D's night-window temps) minus mean(D-1's
// 15:00-18:00 temps); either window empty makes it missing. The 7-day mean
// is strict: missing until seven consecutive days carry a defined retention.
func DailyAggregates(recs []domain.CleanedHourlyRecord) []domain.DailyAggregate {
	if len(recs) == 0 {
		return nil
	}

	var dates []time.Time
	byDate := make(map[time.Time][]int)
	for i := range recs {
		d := dateOf(recs[i].Timestamp)
		if _, seen := byDate[d]; !seen {
			dates = append(dates, d)
		}
		byDate[d] = append(byDate[d], i)
	}

	days := make([]domain.DailyAggregate, len(dates))
	nightAvg := make(map[time.Time]float64, len(dates))
	aftAvg := make(map[time.Time]float64, len(dates))

	for di, date := range dates {
		idx := byDate[date]

		var temps, anomalies, night, afternoon []float64
		outliers, readings := 0, 0
		for _, i := range idx {
			r := &recs[i]
			temps = append(temps, r.CleanTemp)
			anomalies = append(anomalies, r.Anomaly)
			if r.IsNight {
				night = append(night, r.CleanTemp)
			}
			if domain.IsAfternoonHour(r.Hour) {
				afternoon = append(afternoon, r.CleanTemp)
			}
			if !domain.IsMissing(r.TempC) {
				readings++
				if r.IsOutlier {
					outliers++
				}
			}
		}

		day := domain.DailyAggregate{
			Date:           date,
			Zone:           recs[idx[0]].Zone,
			MeanTempC:      meanDefined(temps),
			MaxTempC:       maxDefined(temps),
			MinTempC:       minDefined(temps),
			MeanAnomaly:    meanDefined(anomalies),
			PropOutliers:   domain.Missing,
			NightRetention: domain.Missing,
			Retention7d:    domain.Missing,
		}
		if readings > 0 {
			day.PropOutliers = float64(outliers) / float64(readings)
		}

		nightAvg[date] = meanDefined(night)
		aftAvg[date] = meanDefined(afternoon)
		days[di] = day
	}

	for di := range days {
		n := nightAvg[days[di].Date]
		a, ok := aftAvg[days[di].Date.AddDate(0, 0, -1)]
		if !ok || domain.IsMissing(n) || domain.IsMissing(a) {
			continue
		}
		days[di].NightRetention = n - a
	}

	smoothRetention(days)
	return days
}

// smoothRetention fills Retention7d with the strict trailing 7-day mean.
func smoothRetention(days []domain.DailyAggregate) {
	for i := range days {
		if i < retentionSmoothingDays-1 {
			continue
		}
		sum := 0.0
		ok := true
		for j := i - retentionSmoothingDays + 1; j <= i; j++ {
			if domain.IsMissing(days[j].NightRetention) {
				ok = false
				break
			}
			sum += days[j].NightRetention
		}
		if ok {
			days[i].Retention7d = sum / retentionSmoothingDays
		}
	}
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func maxDefined(xs []float64) float64 {
	out := domain.Missing
	for _, x := range xs {
		if domain.IsMissing(x) {
			continue
		}
		if domain.IsMissing(out) || x > out {
			out = x
		}
	}
	return out
}

func minDefined(xs []float64) float64 {
	out := domain.Missing
	for _, x := range xs {
		if domain.IsMissing(x) {
			continue
		}
		if domain.IsMissing(out) || x < out {
			out = x
		}
	}
	return out
}
