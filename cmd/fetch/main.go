// Command fetch downloads one city's hourly temperature history from the
// Open-Meteo archive API and writes the raw CSV the ETL consumes.
//
// Usage:
//
//	go run ./cmd/fetch \
//	  -lat 37.98 -lon 23.73 -zone Athens \
//	  -start 2024-01-01 -end 2024-12-31 \
//	  -out data/raw/temperatures.csv
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/uhi-zone-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/uhi-zone-etl/internal/config"
	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
	"github.com/couchcryptid/uhi-zone-etl/internal/observability"
)

const dateLayout = "2006-01-02"

// minCoverage is the fraction of grid hours that must carry a reading for
// the year to be usable downstream.
const minCoverage = 0.85

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	lat := flag.Float64("lat", 0, "latitude of the city center")
	lon := flag.Float64("lon", 0, "longitude of the city center")
	zone := flag.String("zone", "", "zone label written to every row")
	start := flag.String("start", "", "first day, YYYY-MM-DD")
	end := flag.String("end", "", "last day, YYYY-MM-DD (defaults to yesterday)")
	out := flag.String("out", "data/raw/temperatures.csv", "output CSV path")
	timeout := flag.Duration("timeout", 60*time.Second, "HTTP timeout for the archive request")
	flag.Parse()

	if *zone == "" || *start == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -zone, -start")
	}

	startDay, err := time.Parse(dateLayout, *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	endDay := domain.ProcessedAt().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	if *end != "" {
		endDay, err = time.Parse(dateLayout, *end)
		if err != nil {
			return fmt.Errorf("invalid -end: %w", err)
		}
	}
	if endDay.Before(startDay) {
		return fmt.Errorf("-end %s is before -start %s", endDay.Format(dateLayout), startDay.Format(dateLayout))
	}

	logger := observability.NewLogger(&config.Config{LogLevel: "info", LogFormat: "text"})
	client := openmeteo.NewClient(*timeout, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger.Info("fetching hourly temperatures",
		"zone", *zone, "lat", *lat, "lon", *lon,
		"start", startDay.Format(dateLayout), "end", endDay.Format(dateLayout),
	)

	obs, err := client.FetchHourly(ctx, *lat, *lon, startDay, endDay)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", *zone, err)
	}
	if len(obs) == 0 {
		return fmt.Errorf("no hourly data returned for %s", *zone)
	}

	covered := 0
	for i := range obs {
		if !domain.IsMissing(obs[i].TempC) {
			covered++
		}
	}
	coverage := float64(covered) / float64(len(obs))
	if coverage < minCoverage {
		return fmt.Errorf("coverage %.2f for %s is below %.2f; the year would be unusable", coverage, *zone, minCoverage)
	}

	if err := writeRaw(*out, *zone, obs); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	logger.Info("raw file written",
		"path", *out, "rows", len(obs), "coverage", fmt.Sprintf("%.3f", coverage),
	)
	return nil
}

func writeRaw(path, zone string, obs []domain.HourlyObservation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	rows := make([][]string, 0, len(obs)+1)
	rows = append(rows, []string{"timestamp", "zone_id", "temp_c"})
	for i := range obs {
		temp := ""
		if !domain.IsMissing(obs[i].TempC) {
			temp = strconv.FormatFloat(obs[i].TempC, 'g', -1, 64)
		}
		rows = append(rows, []string{obs[i].Timestamp.Format(time.RFC3339), zone, temp})
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
