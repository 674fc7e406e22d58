package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/uhi-zone-etl/internal/analytics"
	"github.com/couchcryptid/uhi-zone-etl/internal/config"
	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
	"github.com/couchcryptid/uhi-zone-etl/internal/observability"
)

// SeriesSource reads the raw hourly observations. It returns the parsed rows
// and the count of malformed rows that were skipped.
type SeriesSource interface {
	ReadSeries(ctx context.Context) ([]domain.HourlyObservation, int, error)
}

// TableSink persists the derived tables.
type TableSink interface {
	WriteTables(
		ctx context.Context,
		hourly []domain.CleanedHourlyRecord,
		daily []domain.DailyAggregate,
		hotspots []domain.HotspotRow,
		windows []domain.HourWindow,
	) error
}

// HotspotExporter publishes hotspot rows after the tables are written.
type HotspotExporter interface {
	ExportHotspots(ctx context.Context, zone string, rows []domain.HotspotRow) error
}

// Result summarizes one completed run.
type Result struct {
	Zone          string
	Hourly        []domain.CleanedHourlyRecord
	Daily         []domain.DailyAggregate
	Hotspots      []domain.HotspotRow
	Windows       []domain.HourWindow
	RowsRead      int
	RowsMalformed int
	Outliers      int
}

// Pipeline runs the one-shot load → clean → derive → aggregate → write flow.
type Pipeline struct {
	source   SeriesSource
	sink     TableSink
	exporter HotspotExporter // nil when the Kafka export is disabled
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Pipeline with the given stages and observability. Pass a nil
// exporter to skip the hotspot export.
func New(source SeriesSource, sink TableSink, exporter HotspotExporter, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:   source,
		sink:     sink,
		exporter: exporter,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run executes the batch once. Any returned error is fatal for the run; the
// caller maps it to a non-zero exit code.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.metrics.RunInProgress.Set(1)
	defer p.metrics.RunInProgress.Set(0)

	obs, malformed, err := p.extract(ctx)
	if err != nil {
		return nil, err
	}

	zone, recs, outliers, err := p.clean(ctx, obs)
	if err != nil {
		return nil, err
	}

	p.derive(recs)
	daily, hotspots, windows := p.aggregate(zone, recs)

	res := &Result{
		Zone:          zone,
		Hourly:        recs,
		Daily:         daily,
		Hotspots:      hotspots,
		Windows:       windows,
		RowsRead:      len(obs),
		RowsMalformed: malformed,
		Outliers:      outliers,
	}

	if err := p.load(ctx, res); err != nil {
		return nil, err
	}
	if err := p.export(ctx, res); err != nil {
		return nil, err
	}

	p.metrics.LastRunTimestamp.Set(float64(domain.ProcessedAt().Unix()))
	return res, nil
}

func (p *Pipeline) extract(ctx context.Context) ([]domain.HourlyObservation, int, error) {
	start := time.Now()
	obs, malformed, err := p.source.ReadSeries(ctx)
	p.metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, 0, err
	}

	p.metrics.RowsRead.Add(float64(len(obs)))
	p.metrics.RowsMalformed.Add(float64(malformed))
	p.logger.Info("raw series loaded", "rows", len(obs), "malformed", malformed)
	return obs, malformed, nil
}

func (p *Pipeline) clean(ctx context.Context, obs []domain.HourlyObservation) (string, []domain.CleanedHourlyRecord, int, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, 0, err
	}

	start := time.Now()
	zone, grid, err := analytics.BuildSeries(obs)
	if err != nil {
		return "", nil, 0, err
	}

	recs := analytics.Clean(grid, analytics.OutlierPolicy{
		TempMinC:   p.cfg.TempMinC,
		TempMaxC:   p.cfg.TempMaxC,
		RobustZMax: p.cfg.RobustZMax,
	})

	outliers := 0
	for i := range recs {
		if recs[i].IsOutlier {
			outliers++
		}
	}
	p.metrics.OutliersDetected.Add(float64(outliers))
	p.metrics.StageDuration.WithLabelValues("clean").Observe(time.Since(start).Seconds())
	p.logger.Info("series cleaned",
		"zone", zone,
		"grid_hours", len(recs),
		"outliers", outliers,
	)
	return zone, recs, outliers, nil
}

func (p *Pipeline) derive(recs []domain.CleanedHourlyRecord) {
	start := time.Now()
	analytics.AddRollingStats(recs)
	analytics.Deseasonalize(recs)
	p.metrics.StageDuration.WithLabelValues("derive").Observe(time.Since(start).Seconds())
	p.logger.Info("derived columns computed", "hours", len(recs))
}

func (p *Pipeline) aggregate(zone string, recs []domain.CleanedHourlyRecord) ([]domain.DailyAggregate, []domain.HotspotRow, []domain.HourWindow) {
	start := time.Now()
	daily := analytics.DailyAggregates(recs)
	hotspots := analytics.Hotspots(recs, p.cfg.AnomalyThresholdC)
	windows := analytics.HourWindows(recs, daily, zone)

	p.metrics.HotspotRows.Add(float64(len(hotspots)))
	p.metrics.StageDuration.WithLabelValues("aggregate").Observe(time.Since(start).Seconds())
	p.logger.Info("tables aggregated",
		"days", len(daily),
		"hotspots", len(hotspots),
		"threshold_c", p.cfg.AnomalyThresholdC,
	)
	return daily, hotspots, windows
}

func (p *Pipeline) load(ctx context.Context, res *Result) error {
	start := time.Now()
	err := p.sink.WriteTables(ctx, res.Hourly, res.Daily, res.Hotspots, res.Windows)
	p.metrics.StageDuration.WithLabelValues("load").Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	p.logger.Info("tables written",
		"hourly_rows", len(res.Hourly),
		"daily_rows", len(res.Daily),
		"hotspot_rows", len(res.Hotspots),
	)
	return nil
}

// export publishes hotspots when an exporter is configured. The files are
// already on disk at this point; an export failure still fails the run so
// the operator notices, but nothing written is rolled back.
func (p *Pipeline) export(ctx context.Context, res *Result) error {
	if p.exporter == nil {
		return nil
	}

	start := time.Now()
	err := p.exporter.ExportHotspots(ctx, res.Zone, res.Hotspots)
	p.metrics.StageDuration.WithLabelValues("export").Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	p.logger.Info("hotspots exported", "rows", len(res.Hotspots))
	return nil
}
