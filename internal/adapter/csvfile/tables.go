package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

// Read-back functions for the written tables, used by the validate command
// and the round-trip tests. Each returns rows in file order.

// ReadHourly loads a zone_hourly.csv written by Writer.
func ReadHourly(path string) ([]domain.CleanedHourlyRecord, error) {
	rows, err := loadTable(path)
	if err != nil {
		return nil, err
	}
	recs := make([]domain.CleanedHourlyRecord, 0, len(rows))
	for _, row := range rows {
		ts, err := time.Parse(time.RFC3339, row.get("timestamp"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		rec := domain.CleanedHourlyRecord{
			HourlyObservation: domain.HourlyObservation{
				Timestamp: ts.UTC(),
				Zone:      row.get("zone_id"),
				TempC:     row.getFloat("temp_c"),
			},
			IsOutlier:    row.get("is_outlier") == "true",
			CleanTemp:    row.getFloat("temp_c_clean"),
			Roll24Mean:   row.getFloat("roll24_mean"),
			Roll168Mean:  row.getFloat("roll168_mean"),
			Weekday:      row.getInt("weekday"),
			Hour:         row.getInt("hour"),
			SeasonalMean: row.getFloat("seasonal_mean"),
			Anomaly:      row.getFloat("anomaly"),
			IsNight:      row.get("is_night") == "true",
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ReadDaily loads a zone_daily.csv written by Writer.
func ReadDaily(path string) ([]domain.DailyAggregate, error) {
	rows, err := loadTable(path)
	if err != nil {
		return nil, err
	}
	days := make([]domain.DailyAggregate, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(dateLayout, row.get("date"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		days = append(days, domain.DailyAggregate{
			Date:           date.UTC(),
			Zone:           row.get("zone_id"),
			MeanTempC:      row.getFloat("mean_temp_c"),
			MaxTempC:       row.getFloat("max_temp_c"),
			MinTempC:       row.getFloat("min_temp_c"),
			MeanAnomaly:    row.getFloat("mean_anomaly"),
			PropOutliers:   row.getFloat("prop_outliers"),
			NightRetention: row.getFloat("night_retention"),
			Retention7d:    row.getFloat("retention_7d"),
		})
	}
	return days, nil
}

// ReadHotspots loads a hotspots.csv written by Writer.
func ReadHotspots(path string) ([]domain.HotspotRow, error) {
	rows, err := loadTable(path)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HotspotRow, 0, len(rows))
	for _, row := range rows {
		ts, err := time.Parse(time.RFC3339, row.get("timestamp"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, domain.HotspotRow{
			Timestamp: ts.UTC(),
			Zone:      row.get("zone_id"),
			TempC:     row.getFloat("temp_c"),
			Anomaly:   row.getFloat("anomaly"),
			Hour:      row.getInt("hour"),
			Weekday:   row.getInt("weekday"),
		})
	}
	return out, nil
}

// ReadWindows loads an intervention_windows.csv written by Writer.
func ReadWindows(path string) ([]domain.HourWindow, error) {
	rows, err := loadTable(path)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HourWindow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.HourWindow{
			Zone:               row.get("zone_id"),
			Hour:               row.getInt("hour"),
			AvgTemp:            row.getFloat("avg_temp"),
			AvgAnomaly:         row.getFloat("avg_anomaly"),
			MeanNightRetention: row.getFloat("mean_night_retention"),
			RankCoolest:        row.getInt("rank_coolest"),
			RankLowAnomaly:     row.getInt("rank_low_anomaly"),
			Score:              row.getFloat("suggested_window_score"),
		})
	}
	return out, nil
}

// tableRow is a parsed CSV row with field values keyed by header name.
type tableRow map[string]string

func (r tableRow) get(col string) string { return r[col] }

func (r tableRow) getFloat(col string) float64 {
	s := strings.TrimSpace(r[col])
	if s == "" {
		return domain.Missing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.Missing
	}
	return v
}

func (r tableRow) getInt(col string) int {
	v, err := strconv.Atoi(strings.TrimSpace(r[col]))
	if err != nil {
		return 0
	}
	return v
}

func loadTable(path string) ([]tableRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	header := all[0]
	rows := make([]tableRow, 0, len(all)-1)
	for _, raw := range all[1:] {
		row := make(tableRow, len(header))
		for i, h := range header {
			if i < len(raw) {
				row[h] = raw[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
