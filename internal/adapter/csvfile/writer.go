package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

// Output file names, fixed by the dashboard workbook.
const (
	HourlyFile  = "zone_hourly.csv"
	DailyFile   = "zone_daily.csv"
	HotspotFile = "hotspots.csv"
	WindowsFile = "intervention_windows.csv"
)

const dateLayout = "2006-01-02"

// Writer emits the derived tables into an output directory.
// It implements pipeline.TableSink.
type Writer struct {
	dir string
}

// NewWriter creates a table writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// WriteTables writes all four dashboard CSVs. Any write error is fatal to
// the run; partial outputs are not cleaned up so the operator can inspect them.
func (w *Writer) WriteTables(
	_ context.Context,
	hourly []domain.CleanedHourlyRecord,
	daily []domain.DailyAggregate,
	hotspots []domain.HotspotRow,
	windows []domain.HourWindow,
) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := w.writeHourly(hourly); err != nil {
		return err
	}
	if err := w.writeDaily(daily); err != nil {
		return err
	}
	if err := w.writeHotspots(hotspots); err != nil {
		return err
	}
	return w.writeWindows(windows)
}

func (w *Writer) writeHourly(recs []domain.CleanedHourlyRecord) error {
	rows := make([][]string, 0, len(recs)+1)
	rows = append(rows, []string{
		"timestamp", "zone_id", "temp_c", "is_outlier", "temp_c_clean",
		"roll24_mean", "roll168_mean", "weekday", "hour",
		"seasonal_mean", "anomaly", "is_night",
	})
	for i := range recs {
		r := &recs[i]
		rows = append(rows, []string{
			r.Timestamp.Format(time.RFC3339),
			r.Zone,
			formatFloat(r.TempC),
			strconv.FormatBool(r.IsOutlier),
			formatFloat(r.CleanTemp),
			formatFloat(r.Roll24Mean),
			formatFloat(r.Roll168Mean),
			strconv.Itoa(r.Weekday),
			strconv.Itoa(r.Hour),
			formatFloat(r.SeasonalMean),
			formatFloat(r.Anomaly),
			strconv.FormatBool(r.IsNight),
		})
	}
	return w.writeFile(HourlyFile, rows)
}

func (w *Writer) writeDaily(days []domain.DailyAggregate) error {
	rows := make([][]string, 0, len(days)+1)
	rows = append(rows, []string{
		"date", "zone_id", "mean_temp_c", "max_temp_c", "min_temp_c",
		"mean_anomaly", "prop_outliers", "night_retention", "retention_7d",
	})
	for i := range days {
		d := &days[i]
		rows = append(rows, []string{
			d.Date.Format(dateLayout),
			d.Zone,
			formatFloat(d.MeanTempC),
			formatFloat(d.MaxTempC),
			formatFloat(d.MinTempC),
			formatFloat(d.MeanAnomaly),
			formatFloat(d.PropOutliers),
			formatFloat(d.NightRetention),
			formatFloat(d.Retention7d),
		})
	}
	return w.writeFile(DailyFile, rows)
}

func (w *Writer) writeHotspots(rows []domain.HotspotRow) error {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, []string{"timestamp", "zone_id", "temp_c", "anomaly", "hour", "weekday"})
	for i := range rows {
		h := &rows[i]
		out = append(out, []string{
			h.Timestamp.Format(time.RFC3339),
			h.Zone,
			formatFloat(h.TempC),
			formatFloat(h.Anomaly),
			strconv.Itoa(h.Hour),
			strconv.Itoa(h.Weekday),
		})
	}
	return w.writeFile(HotspotFile, out)
}

func (w *Writer) writeWindows(windows []domain.HourWindow) error {
	rows := make([][]string, 0, len(windows)+1)
	rows = append(rows, []string{
		"zone_id", "hour", "avg_temp", "avg_anomaly", "mean_night_retention",
		"rank_coolest", "rank_low_anomaly", "suggested_window_score",
	})
	for i := range windows {
		hw := &windows[i]
		rows = append(rows, []string{
			hw.Zone,
			strconv.Itoa(hw.Hour),
			formatFloat(hw.AvgTemp),
			formatFloat(hw.AvgAnomaly),
			formatFloat(hw.MeanNightRetention),
			strconv.Itoa(hw.RankCoolest),
			strconv.Itoa(hw.RankLowAnomaly),
			formatFloat(hw.Score),
		})
	}
	return w.writeFile(WindowsFile, rows)
}

func (w *Writer) writeFile(name string, rows [][]string) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

// formatFloat renders a value exactly enough to round-trip; missing values
// become empty cells.
func formatFloat(v float64) string {
	if domain.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
