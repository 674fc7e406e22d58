package domain

import (
	"math"
	"time"
)

// Missing is the in-memory sentinel for an absent measurement. Absent data
// is identified as missing, never as zero.
var Missing = math.NaN()

// IsMissing reports whether a value is the missing sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// HourlyObservation is one raw reading on the hourly UTC grid.
type HourlyObservation struct {
	Timestamp time.Time // hour resolution, UTC
	Zone      string
	TempC     float64 // Missing when the hour has no reading
}

// CleanedHourlyRecord is an observation plus every derived hourly column.
type CleanedHourlyRecord struct {
	HourlyObservation

	IsOutlier bool
	CleanTemp float64 // repaired temperature, Missing if unrecoverable

	Weekday int // 0=Monday .. 6=Sunday
	Hour    int // 0..23
	IsNight bool

	Roll24Mean  float64 // trailing 24-sample mean, Missing unless all 24 present
	Roll168Mean float64 // trailing 7-day mean, Missing below 24 samples

	SeasonalMean float64 // mean clean temp of this (weekday, hour) bucket
	Anomaly      float64 // CleanTemp - SeasonalMean
}

// DailyAggregate is one row per calendar day of the study year.
type DailyAggregate struct {
	Date time.Time // midnight UTC
	Zone string

	MeanTempC   float64
	MaxTempC    float64
	MinTempC    float64
	MeanAnomaly float64

	// PropOutliers is the fraction of the day's readings flagged as outliers.
	PropOutliers float64

	// NightRetention is mean(21:00-05:00 temps) minus the prior day's
	// mean(15:00-18:00 temps). Missing when either window is empty.
	NightRetention float64

	// Retention7d is the trailing 7-day mean of NightRetention, Missing
	// until seven consecutive days have a defined retention value.
	Retention7d float64
}

// HotspotRow is an hourly record whose anomaly met the configured threshold.
type HotspotRow struct {
	Timestamp time.Time
	Zone      string
	TempC     float64 // clean temperature
	Anomaly   float64
	Hour      int
	Weekday   int
}

// HourWindow summarizes one hour-of-day across the year, used to suggest
// cool, low-anomaly intervention windows.
type HourWindow struct {
	Zone               string
	Hour               int
	AvgTemp            float64
	AvgAnomaly         float64
	MeanNightRetention float64
	RankCoolest        int // dense rank, 1 = coolest hour
	RankLowAnomaly     int // dense rank, 1 = least anomalous hour
	Score              float64
}

// MondayWeekday returns the weekday index with Monday as 0, the convention
// the dashboard's weekday column uses.
func MondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsNightHour reports whether an hour-of-day falls in the 21:00-05:00
// nighttime window (spanning midnight).
func IsNightHour(hour int) bool {
	return hour >= 21 || hour <= 5
}

// IsAfternoonHour reports whether an hour-of-day falls in the 15:00-18:00
// late-afternoon reference window.
func IsAfternoonHour(hour int) bool {
	return hour >= 15 && hour <= 18
}
