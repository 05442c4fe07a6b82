package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pv-simulator/internal/model"

	"github.com/rs/zerolog/log"
)

const (
	DefaultPVGISBaseURL = "https://re.jrc.ec.europa.eu/api/v5_3"
	PVGISVersion        = "PVGIS 5.3"
	pvgisTimeLayout     = "20060102:1504"
)

// PVGISClient fetches typical meteorological years from the PVGIS API.
type PVGISClient struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// NewPVGISClient creates a client. An empty baseURL uses DefaultPVGISBaseURL.
func NewPVGISClient(baseURL string, timeout time.Duration) *PVGISClient {
	if baseURL == "" {
		baseURL = DefaultPVGISBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PVGISClient{
		BaseURL:   baseURL,
		UserAgent: "pv-simulator/1.0",
		Client:    &http.Client{Timeout: timeout},
	}
}

// PVGISError is a non-200 answer from the API.
type PVGISError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string
}

func (e *PVGISError) Error() string {
	return e.Message
}

type tmyResponse struct {
	Outputs struct {
		TMYHourly []tmyRow `json:"tmy_hourly"`
	} `json:"outputs"`
}

type tmyRow struct {
	Time string   `json:"time(UTC)"`
	GHI  float64  `json:"G(h)"`
	T2m  *float64 `json:"T2m"`
}

// TMY downloads the typical meteorological year at a location.
func (c *PVGISClient) TMY(ctx context.Context, lat, lon float64) (*model.Weather, error) {
	if err := model.ValidateLocation(lat, lon); err != nil {
		return nil, err
	}
	u, err := url.Parse(c.BaseURL + "/tmy")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("outputformat", "json")
	q.Set("usehorizon", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	log.Info().Str("path", u.Path).Float64("lat", lat).Float64("lon", lon).Msg("pvgis request")
	start := time.Now()
	resp, err := c.Client.Do(req)
	dur := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("duration", dur).Msg("pvgis request failed")
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	log.Info().Int("status", resp.StatusCode).Dur("duration", dur).Msg("pvgis response")

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &PVGISError{
			StatusCode: resp.StatusCode,
			Code:       "BAD_REQUEST",
			Message:    fmt.Sprintf("PVGIS rejected the location: %s", body),
		}
	case http.StatusTooManyRequests:
		retry := resp.Header.Get("Retry-After")
		return nil, &PVGISError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retry),
			RetryAfter: retry,
		}
	default:
		return nil, &PVGISError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	w, err := ParseTMY(resp.Body)
	if err != nil {
		return nil, err
	}
	w.Meta.Source = model.SourceAPI
	w.Meta.APIVersion = PVGISVersion
	w.Meta.Latitude = lat
	w.Meta.Longitude = lon
	log.Info().Float64("irradiation", w.Meta.AnnualIrradiation).Bool("timestamps", w.HasTimestamps).Msg("pvgis tmy parsed")
	return w, nil
}

// ParseTMY decodes a PVGIS TMY JSON document.
// Rows are placed by their UTC timestamp on the abstract year; without
// usable timestamps they are taken in file order.
func ParseTMY(r io.Reader) (*model.Weather, error) {
	var doc tmyResponse
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode TMY: %w", err)
	}
	rows := doc.Outputs.TMYHourly
	if len(rows) == 0 {
		return nil, fmt.Errorf("TMY has no hourly rows")
	}

	ghi, temp, stamped := placeByTime(rows)
	if !stamped {
		if len(rows) != model.HoursPerYear {
			return nil, &model.LengthError{Series: "ghi", Got: len(rows), Want: model.HoursPerYear}
		}
		ghi, temp = model.NewSeries(), model.NewSeries()
		for i, row := range rows {
			ghi[i] = row.GHI
			temp[i] = tempOrNaN(row.T2m)
		}
	}

	w := &model.Weather{GHI: ghi, Temperature: temp, HasTimestamps: stamped}
	if hasNaN(temp) {
		w.Temperature = nil
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	w.Meta = model.WeatherMetadata{
		AnnualIrradiation: w.AnnualIrradiation(),
		RetrievedAt:       time.Now().UTC(),
	}
	return w, nil
}

// placeByTime succeeds only when every row parses and the 8760 slots are filled exactly once.
func placeByTime(rows []tmyRow) (model.Series, model.Series, bool) {
	ghi, temp := model.NewSeries(), model.NewSeries()
	seen := make([]bool, model.HoursPerYear)
	filled := 0
	for _, row := range rows {
		ts, err := time.Parse(pvgisTimeLayout, row.Time)
		if err != nil {
			return nil, nil, false
		}
		idx, ok := model.HourIndex(ts.Month(), ts.Day(), ts.Hour())
		if !ok {
			continue
		}
		if seen[idx] {
			return nil, nil, false
		}
		seen[idx] = true
		filled++
		ghi[idx] = row.GHI
		temp[idx] = tempOrNaN(row.T2m)
	}
	return ghi, temp, filled == model.HoursPerYear
}

func tempOrNaN(t *float64) float64 {
	if t == nil {
		return math.NaN()
	}
	return *t
}

func hasNaN(s model.Series) bool {
	for _, v := range s {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
