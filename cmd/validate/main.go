// Command validate cross-checks the written dashboard tables against the raw
// observation file. It re-runs the transforms and verifies the pipeline's
// advertised properties: rolling-mean definedness, bucket anomaly sums,
// retention reproducibility, hotspot exactness, and CSV round-trip fidelity.
//
// Usage:
//
//	go run ./cmd/validate -raw data/raw/temperatures.csv -out-dir reports/tableau
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/uhi-zone-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/uhi-zone-etl/internal/analytics"
	"github.com/couchcryptid/uhi-zone-etl/internal/config"
	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

const floatTolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawPath := flag.String("raw", "", "raw observation CSV (defaults to RAW_PATH)")
	outDir := flag.String("out-dir", "", "directory holding the written tables (defaults to OUT_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}
	if *rawPath == "" {
		*rawPath = cfg.RawPath
	}
	if *outDir == "" {
		*outDir = cfg.OutDir
	}

	if code := run(cfg, *rawPath, *outDir); code != 0 {
		os.Exit(code)
	}
}

func run(cfg *config.Config, rawPath, outDir string) int {
	fmt.Println("=== Zone Table Integrity Validation ===")
	fmt.Println()

	// ── Recompute the pipeline from the raw file ──
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	obs, _, err := csvfile.NewReader(rawPath, discard).ReadSeries(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw file: %v\n", err)
		return 1
	}
	zone, grid, err := analytics.BuildSeries(obs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: build series: %v\n", err)
		return 1
	}
	recomputed := analytics.Clean(grid, analytics.OutlierPolicy{
		TempMinC:   cfg.TempMinC,
		TempMaxC:   cfg.TempMaxC,
		RobustZMax: cfg.RobustZMax,
	})
	analytics.AddRollingStats(recomputed)
	analytics.Deseasonalize(recomputed)
	recomputedDaily := analytics.DailyAggregates(recomputed)

	// ── Load written tables ──
	hourly, err := csvfile.ReadHourly(filepath.Join(outDir, csvfile.HourlyFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", csvfile.HourlyFile, err)
		return 1
	}
	daily, err := csvfile.ReadDaily(filepath.Join(outDir, csvfile.DailyFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", csvfile.DailyFile, err)
		return 1
	}
	hotspots, err := csvfile.ReadHotspots(filepath.Join(outDir, csvfile.HotspotFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", csvfile.HotspotFile, err)
		return 1
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateRoundTrip(recomputed, recomputedDaily, hourly, daily),
		validateRollingDefinedness(hourly),
		validateBucketSums(hourly),
		validateRetention(hourly, daily),
		validateHotspots(hourly, hotspots, cfg.AnomalyThresholdC),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-44s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d hourly, %d daily, %d hotspots (zone %q)\n",
		len(hourly), len(daily), len(hotspots), zone)
	printStats(hourly)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Round Trip ──
// The written tables must match a fresh recomputation row for row.

func validateRoundTrip(recomputed []domain.CleanedHourlyRecord, recomputedDaily []domain.DailyAggregate, hourly []domain.CleanedHourlyRecord, daily []domain.DailyAggregate) *phase {
	p := &phase{name: "Phase 1: Round Trip (recompute vs files)"}

	if len(recomputed) != len(hourly) {
		p.errorf("hourly: recomputed %d rows, file has %d", len(recomputed), len(hourly))
		return p
	}
	if len(recomputedDaily) != len(daily) {
		p.errorf("daily: recomputed %d rows, file has %d", len(recomputedDaily), len(daily))
		return p
	}

	for i := range recomputed {
		want, got := &recomputed[i], &hourly[i]
		if !want.Timestamp.Equal(got.Timestamp) {
			p.errorf("hourly row %d: timestamp %s != %s", i, want.Timestamp, got.Timestamp)
			continue
		}
		checkValue(p, fmt.Sprintf("hourly row %d temp_c_clean", i), want.CleanTemp, got.CleanTemp)
		checkValue(p, fmt.Sprintf("hourly row %d roll24_mean", i), want.Roll24Mean, got.Roll24Mean)
		checkValue(p, fmt.Sprintf("hourly row %d anomaly", i), want.Anomaly, got.Anomaly)
	}

	for i := range recomputedDaily {
		want, got := &recomputedDaily[i], &daily[i]
		checkValue(p, fmt.Sprintf("daily row %d night_retention", i), want.NightRetention, got.NightRetention)
		checkValue(p, fmt.Sprintf("daily row %d retention_7d", i), want.Retention7d, got.Retention7d)
	}
	return p
}

// ── Phase 2: Rolling Definedness ──
// roll24_mean is defined iff the trailing 24 hours are present and non-missing.

func validateRollingDefinedness(hourly []domain.CleanedHourlyRecord) *phase {
	p := &phase{name: "Phase 2: Rolling Definedness (24h window)"}

	for i := range hourly {
		shouldBeDefined := i >= 23
		if shouldBeDefined {
			for j := i - 23; j <= i; j++ {
				if domain.IsMissing(hourly[j].CleanTemp) {
					shouldBeDefined = false
					break
				}
			}
		}
		isDefined := !domain.IsMissing(hourly[i].Roll24Mean)
		if isDefined != shouldBeDefined {
			p.errorf("row %d (%s): roll24_mean defined=%v, window complete=%v",
				i, hourly[i].Timestamp.Format(time.RFC3339), isDefined, shouldBeDefined)
		}
	}
	return p
}

// ── Phase 3: Bucket Sums ──
// Anomalies within each (weekday, hour) bucket sum to approximately zero.

func validateBucketSums(hourly []domain.CleanedHourlyRecord) *phase {
	p := &phase{name: "Phase 3: Bucket Sums (mean subtraction)"}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i := range hourly {
		if domain.IsMissing(hourly[i].Anomaly) {
			continue
		}
		b := hourly[i].Weekday*24 + hourly[i].Hour
		sums[b] += hourly[i].Anomaly
		counts[b]++
	}

	for b, sum := range sums {
		// Tolerance scales with bucket size: each term carries rounding error.
		tol := 1e-6 * float64(counts[b])
		if math.Abs(sum) > tol {
			p.errorf("bucket weekday=%d hour=%d: anomaly sum %g exceeds tolerance %g", b/24, b%24, sum, tol)
		}
	}
	return p
}

// ── Phase 4: Retention ──
// night_retention must be reproducible from the hourly file.

func validateRetention(hourly []domain.CleanedHourlyRecord, daily []domain.DailyAggregate) *phase {
	p := &phase{name: "Phase 4: Retention (recompute from hourly)"}

	nightSums := make(map[time.Time]float64)
	nightCounts := make(map[time.Time]int)
	aftSums := make(map[time.Time]float64)
	aftCounts := make(map[time.Time]int)

	for i := range hourly {
		r := &hourly[i]
		if domain.IsMissing(r.CleanTemp) {
			continue
		}
		d := time.Date(r.Timestamp.Year(), r.Timestamp.Month(), r.Timestamp.Day(), 0, 0, 0, 0, time.UTC)
		if r.IsNight {
			nightSums[d] += r.CleanTemp
			nightCounts[d]++
		}
		if domain.IsAfternoonHour(r.Hour) {
			aftSums[d] += r.CleanTemp
			aftCounts[d]++
		}
	}

	for i := range daily {
		day := &daily[i]
		prior := day.Date.AddDate(0, 0, -1)

		expected := domain.Missing
		if nightCounts[day.Date] > 0 && aftCounts[prior] > 0 {
			expected = nightSums[day.Date]/float64(nightCounts[day.Date]) - aftSums[prior]/float64(aftCounts[prior])
		}
		checkValue(p, fmt.Sprintf("day %s night_retention", day.Date.Format("2006-01-02")), expected, day.NightRetention)
	}
	return p
}

// ── Phase 5: Hotspots ──
// hotspots.csv is exactly the subset of hourly rows with anomaly >= threshold.

func validateHotspots(hourly []domain.CleanedHourlyRecord, hotspots []domain.HotspotRow, threshold float64) *phase {
	p := &phase{name: "Phase 5: Hotspots (exact threshold subset)"}

	expected := make(map[time.Time]float64)
	for i := range hourly {
		if !domain.IsMissing(hourly[i].Anomaly) && hourly[i].Anomaly >= threshold {
			expected[hourly[i].Timestamp] = hourly[i].Anomaly
		}
	}

	seen := make(map[time.Time]bool, len(hotspots))
	for i := range hotspots {
		h := &hotspots[i]
		if seen[h.Timestamp] {
			p.errorf("duplicate hotspot row for %s", h.Timestamp.Format(time.RFC3339))
			continue
		}
		seen[h.Timestamp] = true

		want, ok := expected[h.Timestamp]
		if !ok {
			p.errorf("hotspot %s: anomaly %g below threshold %g or not in hourly table",
				h.Timestamp.Format(time.RFC3339), h.Anomaly, threshold)
			continue
		}
		checkValue(p, fmt.Sprintf("hotspot %s anomaly", h.Timestamp.Format(time.RFC3339)), want, h.Anomaly)
	}

	if len(seen) != len(expected) {
		p.errorf("hotspot count: expected %d rows above threshold, file has %d unique", len(expected), len(seen))
	}
	return p
}

// ── Helpers ──

func checkValue(p *phase, what string, want, got float64) {
	if domain.IsMissing(want) != domain.IsMissing(got) {
		p.errorf("%s: expected missing=%v, got missing=%v", what, domain.IsMissing(want), domain.IsMissing(got))
		return
	}
	if domain.IsMissing(want) {
		return
	}
	if math.Abs(want-got) > floatTolerance {
		p.errorf("%s: expected %g, got %g", what, want, got)
	}
}

func printStats(hourly []domain.CleanedHourlyRecord) {
	var anomalies []float64
	outliers, missing := 0, 0
	for i := range hourly {
		if hourly[i].IsOutlier {
			outliers++
		}
		if domain.IsMissing(hourly[i].TempC) {
			missing++
		}
		if !domain.IsMissing(hourly[i].Anomaly) {
			anomalies = append(anomalies, hourly[i].Anomaly)
		}
	}
	fmt.Printf("Outliers: %d, missing hours: %d\n", outliers, missing)

	if len(anomalies) == 0 {
		return
	}
	sort.Float64s(anomalies)
	fmt.Printf("Anomaly p95: %.3f, max: %.3f\n",
		stat.Quantile(0.95, stat.Empirical, anomalies, nil),
		anomalies[len(anomalies)-1])
}
