package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

func TestDenseRank(t *testing.T) {
	ranks := denseRank([]float64{3.0, 1.0, 2.0, 1.0, domain.Missing})
	assert.Equal(t, []int{3, 1, 2, 1, 4}, ranks)
}

func TestDenseRank_AllEqual(t *testing.T) {
	ranks := denseRank([]float64{5, 5, 5})
	assert.Equal(t, []int{1, 1, 1}, ranks)
}

func TestHourWindows_CoolestHourRanksFirst(t *testing.T) {
	// One day where the temperature equals the hour of day, so hour 0 is the
	// unambiguous coolest. Anomalies are flat, so the temperature rank decides.
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	recs := make([]domain.CleanedHourlyRecord, 24)
	for h := 0; h < 24; h++ {
		recs[h] = recAt(start.Add(time.Duration(h)*time.Hour), float64(h))
		recs[h].Anomaly = 0
	}

	days := []domain.DailyAggregate{
		{Date: start, NightRetention: 1.5},
		{Date: start.AddDate(0, 0, 1), NightRetention: 2.5},
	}

	windows := HourWindows(recs, days, "athens")
	require.Len(t, windows, 24)

	best := windows[0]
	assert.Equal(t, "athens", best.Zone)
	assert.Equal(t, 0, best.Hour)
	assert.Equal(t, 0.0, best.AvgTemp)
	assert.Equal(t, 1, best.RankCoolest)
	assert.Equal(t, 1, best.RankLowAnomaly)
	assert.Equal(t, 1.0, best.Score)
	assert.InDelta(t, 2.0, best.MeanNightRetention, 1e-12)

	// Scores never decrease down the list and ties break on the hour.
	for i := 1; i < len(windows); i++ {
		assert.LessOrEqual(t, windows[i-1].Score, windows[i].Score)
	}
	worst := windows[23]
	assert.Equal(t, 23, worst.Hour)
	assert.Equal(t, 24, worst.RankCoolest)
}

func TestHourWindows_UnobservedHourRanksLast(t *testing.T) {
	// Only three hours ever observed; the other 21 carry missing averages and
	// must sort behind every observed hour.
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	var recs []domain.CleanedHourlyRecord
	for _, h := range []int{4, 12, 15} {
		r := recAt(start.Add(time.Duration(h)*time.Hour), float64(h))
		r.Anomaly = 0
		recs = append(recs, r)
	}

	windows := HourWindows(recs, nil, "athens")
	require.Len(t, windows, 24)

	assert.Equal(t, 4, windows[0].Hour)
	assert.Equal(t, 12, windows[1].Hour)
	assert.Equal(t, 15, windows[2].Hour)
	for i := 3; i < 24; i++ {
		assert.True(t, domain.IsMissing(windows[i].AvgTemp))
	}
}
