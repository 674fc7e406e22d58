package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

func obsAt(hour int, zone string, temp float64) domain.HourlyObservation {
	return domain.HourlyObservation{
		Timestamp: time.Date(2024, 6, 1, hour, 0, 0, 0, time.UTC),
		Zone:      zone,
		TempC:     temp,
	}
}

func TestBuildSeries_GapsBecomeMissing(t *testing.T) {
	obs := []domain.HourlyObservation{
		obsAt(0, "athens", 20),
		obsAt(1, "athens", 21),
		obsAt(4, "athens", 24),
	}

	zone, grid, err := BuildSeries(obs)
	require.NoError(t, err)
	assert.Equal(t, "athens", zone)
	require.Len(t, grid, 5)

	assert.Equal(t, 20.0, grid[0].TempC)
	assert.Equal(t, 21.0, grid[1].TempC)
	assert.True(t, domain.IsMissing(grid[2].TempC))
	assert.True(t, domain.IsMissing(grid[3].TempC))
	assert.Equal(t, 24.0, grid[4].TempC)

	for i := range grid {
		assert.Equal(t, "athens", grid[i].Zone)
		assert.Equal(t, i, grid[i].Timestamp.Hour())
	}
}

func TestBuildSeries_DuplicateKeepsFirst(t *testing.T) {
	obs := []domain.HourlyObservation{
		obsAt(0, "athens", 20),
		obsAt(0, "athens", 99),
	}

	_, grid, err := BuildSeries(obs)
	require.NoError(t, err)
	require.Len(t, grid, 1)
	assert.Equal(t, 20.0, grid[0].TempC)
}

func TestBuildSeries_TruncatesToHour(t *testing.T) {
	obs := []domain.HourlyObservation{
		{
			Timestamp: time.Date(2024, 6, 1, 10, 37, 12, 0, time.UTC),
			Zone:      "athens",
			TempC:     22,
		},
	}

	_, grid, err := BuildSeries(obs)
	require.NoError(t, err)
	require.Len(t, grid, 1)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), grid[0].Timestamp)
}

func TestBuildSeries_MixedZonesRejected(t *testing.T) {
	obs := []domain.HourlyObservation{
		obsAt(0, "athens", 20),
		obsAt(1, "thessaloniki", 18),
	}

	_, _, err := BuildSeries(obs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "athens")
	assert.Contains(t, err.Error(), "thessaloniki")
}

func TestBuildSeries_EmptyZoneLabelTolerated(t *testing.T) {
	obs := []domain.HourlyObservation{
		obsAt(0, "", 20),
		obsAt(1, "athens", 21),
	}

	zone, grid, err := BuildSeries(obs)
	require.NoError(t, err)
	assert.Equal(t, "athens", zone)
	assert.Len(t, grid, 2)
}

func TestBuildSeries_NoData(t *testing.T) {
	_, _, err := BuildSeries(nil)
	assert.ErrorIs(t, err, ErrNoData)
}
