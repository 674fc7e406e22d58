// Package csvfile reads the raw observation file and writes the dashboard
// tables. All tables are plain CSV with a header row; timestamps are RFC 3339
// UTC, dates are YYYY-MM-DD, and missing values are empty cells.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

// rawTimeLayouts are accepted timestamp formats for the raw file, most
// specific first. The fetch command writes RFC 3339; the legacy collector
// wrote space-separated UTC.
var rawTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// Reader loads raw hourly observations from a CSV file.
// It implements pipeline.SeriesSource.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a raw-file reader.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// ReadSeries parses the raw file. Malformed rows are skipped and counted,
// never fatal; a file that is absent, unreadable, or yields no rows at all is
// a configuration error for the operator.
func (r *Reader) ReadSeries(_ context.Context) ([]domain.HourlyObservation, int, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, 0, fmt.Errorf("open raw file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, 0, fmt.Errorf("raw file %s is empty", r.path)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read raw header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(strings.ToLower(h))] = i
	}
	tsCol, ok := colIdx["timestamp"]
	if !ok {
		return nil, 0, fmt.Errorf("raw file %s has no timestamp column", r.path)
	}
	tempCol, ok := colIdx["temp_c"]
	if !ok {
		return nil, 0, fmt.Errorf("raw file %s has no temp_c column", r.path)
	}
	zoneCol, hasZone := colIdx["zone_id"]

	var obs []domain.HourlyObservation
	malformed := 0
	line := 1

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			malformed++
			r.logger.Warn("skipping unreadable row", "line", line, "error", err)
			continue
		}

		o, perr := parseRow(row, tsCol, tempCol, zoneCol, hasZone)
		if perr != nil {
			malformed++
			r.logger.Warn("skipping malformed row", "line", line, "error", perr)
			continue
		}
		obs = append(obs, o)
	}

	if len(obs) == 0 {
		return nil, malformed, fmt.Errorf("raw file %s contains no parsable rows", r.path)
	}
	return obs, malformed, nil
}

func parseRow(row []string, tsCol, tempCol, zoneCol int, hasZone bool) (domain.HourlyObservation, error) {
	if tsCol >= len(row) || tempCol >= len(row) {
		return domain.HourlyObservation{}, fmt.Errorf("row has %d fields", len(row))
	}

	ts, err := parseRawTime(strings.TrimSpace(row[tsCol]))
	if err != nil {
		return domain.HourlyObservation{}, err
	}

	o := domain.HourlyObservation{Timestamp: ts, TempC: domain.Missing}
	if hasZone && zoneCol < len(row) {
		o.Zone = strings.TrimSpace(row[zoneCol])
	}

	raw := strings.TrimSpace(row[tempCol])
	if raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.HourlyObservation{}, fmt.Errorf("bad temp_c %q", raw)
		}
		o.TempC = v
	}
	return o, nil
}

func parseRawTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range rawTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}
