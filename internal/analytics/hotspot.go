package analytics

import (
	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

// Hotspots returns exactly the cleaned records whose anomaly meets or exceeds
// the threshold, in timestamp order. Missing anomalies never match.
func Hotspots(recs []domain.CleanedHourlyRecord, threshold float64) []domain.HotspotRow {
	var rows []domain.HotspotRow
	for i := range recs {
		r := &recs[i]
		if domain.IsMissing(r.Anomaly) || r.Anomaly < threshold {
			continue
		}
		rows = append(rows, domain.HotspotRow{
			Timestamp: r.Timestamp,
			Zone:      r.Zone,
			TempC:     r.CleanTemp,
			Anomaly:   r.Anomaly,
			Hour:      r.Hour,
			Weekday:   r.Weekday,
		})
	}
	return rows
}
