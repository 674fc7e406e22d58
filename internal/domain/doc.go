// Package domain models one city's hourly temperature series and the derived
// tables the dashboard consumes.
//
// # Data Source
//
// The raw file is a CSV of hourly observations for a single zone and study
// year, columns timestamp, zone_id, temp_c. The fetch command builds it from
// the Open-Meteo archive API; any provider producing the same columns works.
// Timestamps are UTC at hour resolution. Hours with no reading are missing,
// never zero.
//
// # Conventions
//
// Weekday:
//
//	Integer 0-6 with Monday as 0, matching the dashboard's weekday axis.
//
// Nighttime window:
//
//	Hours {21, 22, 23, 0, 1, 2, 3, 4, 5}. A calendar day's night average
//	mixes its own early-morning and late-evening hours; the window is said
//	to "span midnight" in that sense.
//
// Afternoon reference window:
//
//	Hours {15, 16, 17, 18}. The nighttime heat retention of day D is the
//	night average of D minus the afternoon average of D-1.
//
// Missing values:
//
//	NaN in memory (see [Missing] and [IsMissing]), empty cells in CSV
//	output. A rolling statistic without enough history, an empty seasonal
//	bucket, or a retention window with no readings all surface as missing.
//
// Anomaly:
//
//	Clean temperature minus the mean clean temperature of the record's
//	(weekday, hour-of-day) bucket across the whole series. Bucket anomaly
//	sums are therefore approximately zero.
package domain
