// Package openmeteo fetches hourly 2 m temperature history from the
// Open-Meteo archive API for the fetch command.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

const hourlyTimeLayout = "2006-01-02T15:04"

// Client calls the Open-Meteo archive endpoint. The API is unauthenticated.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an archive API client.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://archive-api.open-meteo.com/v1/archive",
		logger:  logger,
	}
}

// FetchHourly returns one observation per hour of [start, end] (inclusive,
// whole days, UTC) for the given coordinates. Hours the provider reports as
// null come back as missing observations, so the series stays contiguous.
func (c *Client) FetchHourly(ctx context.Context, lat, lon float64, start, end time.Time) ([]domain.HourlyObservation, error) {
	params := url.Values{
		"latitude":   {fmt.Sprintf("%.4f", lat)},
		"longitude":  {fmt.Sprintf("%.4f", lon)},
		"start_date": {start.UTC().Format("2006-01-02")},
		"end_date":   {end.UTC().Format("2006-01-02")},
		"hourly":     {"temperature_2m"},
		"timezone":   {"UTC"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var archive response
	if err := json.NewDecoder(resp.Body).Decode(&archive); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(archive.Hourly.Time) != len(archive.Hourly.Temperature2M) {
		return nil, fmt.Errorf("open-meteo response misaligned: %d times, %d temperatures",
			len(archive.Hourly.Time), len(archive.Hourly.Temperature2M))
	}

	obs := make([]domain.HourlyObservation, 0, len(archive.Hourly.Time))
	for i, stamp := range archive.Hourly.Time {
		ts, err := time.Parse(hourlyTimeLayout, stamp)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q in response: %w", stamp, err)
		}
		o := domain.HourlyObservation{Timestamp: ts.UTC(), TempC: domain.Missing}
		if v := archive.Hourly.Temperature2M[i]; v != nil {
			o.TempC = *v
		}
		obs = append(obs, o)
	}
	return obs, nil
}

// Open-Meteo API response types. Temperatures are pointers because the API
// returns JSON null for hours without a reading.

type response struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Hourly    hourly  `json:"hourly"`
}

type hourly struct {
	Time          []string   `json:"time"`
	Temperature2M []*float64 `json:"temperature_2m"`
}
