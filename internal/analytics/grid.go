package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

// ErrNoData is returned when the source produced no usable observations.
var ErrNoData = errors.New("no usable observations in source data")

// BuildSeries places raw observations on a contiguous hourly UTC grid from
// the first to the last observed hour. Duplicate timestamps keep their first
// reading; grid gaps become missing observations. Mixing more than one zone
// label is an error because a run processes exactly one city.
func BuildSeries(obs []domain.HourlyObservation) (string, []domain.HourlyObservation, error) {
	if len(obs) == 0 {
		return "", nil, ErrNoData
	}

	zone := ""
	byHour := make(map[time.Time]float64, len(obs))
	var first, last time.Time

	for _, o := range obs {
		if o.Zone != "" {
			if zone == "" {
				zone = o.Zone
			} else if o.Zone != zone {
				return "", nil, fmt.Errorf("raw file mixes zones %q and %q; one zone per run", zone, o.Zone)
			}
		}

		ts := o.Timestamp.UTC().Truncate(time.Hour)
		if _, seen := byHour[ts]; !seen {
			byHour[ts] = o.TempC
		}
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}

	n := int(last.Sub(first)/time.Hour) + 1
	grid := make([]domain.HourlyObservation, 0, n)
	for ts := first; !ts.After(last); ts = ts.Add(time.Hour) {
		temp, ok := byHour[ts]
		if !ok {
			temp = domain.Missing
		}
		grid = append(grid, domain.HourlyObservation{Timestamp: ts, Zone: zone, TempC: temp})
	}

	return zone, grid, nil
}
