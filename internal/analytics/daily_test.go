package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

// twoDayGrid builds 48 hours where day one's 15:00-18:00 window averages
// aftTemp and day two's night hours (00-05 and 21-23) average nightTemp.
// Every other hour sits at base.
func twoDayGrid(base, aftTemp, nightTemp float64) []domain.CleanedHourlyRecord {
	temps := make([]float64, 48)
	for i := range temps {
		temps[i] = base
	}
	for h := 15; h <= 18; h++ {
		temps[h] = aftTemp
	}
	for h := 0; h <= 5; h++ {
		temps[24+h] = nightTemp
	}
	for h := 21; h <= 23; h++ {
		temps[24+h] = nightTemp
	}
	return cleanRecs(temps)
}

func TestDailyAggregates_NightRetention(t *testing.T) {
	// Night averaging 28 against a prior afternoon of 25 retains +3 degrees.
	recs := twoDayGrid(20, 25, 28)

	days := DailyAggregates(recs)
	require.Len(t, days, 2)

	assert.True(t, domain.IsMissing(days[0].NightRetention), "first day has no prior afternoon")
	assert.InDelta(t, 3.0, days[1].NightRetention, 1e-12)
}

func TestDailyAggregates_RetentionMissingWithoutNightReadings(t *testing.T) {
	recs := twoDayGrid(20, 25, 28)
	// Blank out all of day two's night readings.
	for i := range recs {
		if i >= 24 && recs[i].IsNight {
			recs[i].TempC = domain.Missing
			recs[i].CleanTemp = domain.Missing
		}
	}

	days := DailyAggregates(recs)
	require.Len(t, days, 2)
	assert.True(t, domain.IsMissing(days[1].NightRetention))
}

func TestDailyAggregates_TemperatureSummary(t *testing.T) {
	temps := make([]float64, 24)
	for i := range temps {
		temps[i] = float64(10 + i) // 10..33
	}
	recs := cleanRecs(temps)

	days := DailyAggregates(recs)
	require.Len(t, days, 1)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), days[0].Date)
	assert.Equal(t, "athens", days[0].Zone)
	assert.InDelta(t, 21.5, days[0].MeanTempC, 1e-12)
	assert.Equal(t, 33.0, days[0].MaxTempC)
	assert.Equal(t, 10.0, days[0].MinTempC)
}

func TestDailyAggregates_PropOutliers(t *testing.T) {
	temps := make([]float64, 24)
	for i := range temps {
		temps[i] = 20
	}
	temps[12] = 99 // out of plausible range
	temps[13] = domain.Missing
	recs := cleanRecs(temps)

	days := DailyAggregates(recs)
	require.Len(t, days, 1)

	// One outlier among 23 actual readings; the missing hour is not a reading.
	assert.InDelta(t, 1.0/23.0, days[0].PropOutliers, 1e-12)
}

func TestSmoothRetention_StrictSevenDayWindow(t *testing.T) {
	days := make([]domain.DailyAggregate, 10)
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range days {
		days[i] = domain.DailyAggregate{
			Date:           start.AddDate(0, 0, i),
			NightRetention: 2.0,
			Retention7d:    domain.Missing,
		}
	}
	days[0].NightRetention = domain.Missing

	smoothRetention(days)

	// Day seven is the first whose trailing window avoids the missing day.
	for i := 0; i < 7; i++ {
		assert.True(t, domain.IsMissing(days[i].Retention7d), "day %d", i)
	}
	for i := 7; i < 10; i++ {
		assert.InDelta(t, 2.0, days[i].Retention7d, 1e-12, "day %d", i)
	}
}
