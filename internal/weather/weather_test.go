package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pv-simulator/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateIrradiation(t *testing.T) {
	assert.InDelta(t, 1550, EstimateIrradiation(45), 1e-9)
	assert.InDelta(t, 1550, EstimateIrradiation(-45), 1e-9)
	assert.InDelta(t, 1800, EstimateIrradiation(5), 1e-9)
	assert.InDelta(t, 1100, EstimateIrradiation(90), 1e-9)
	assert.InDelta(t, 1100, EstimateIrradiation(-90), 1e-9)
	assert.InDelta(t, 1600, EstimateIrradiation(40), 1e-9)
}

func TestFallback(t *testing.T) {
	w := Fallback(45, 2, 0)
	require.NoError(t, Validate(w))

	assert.Equal(t, model.SourceFallback, w.Meta.Source)
	assert.True(t, w.Meta.Synthetic)
	assert.False(t, w.HasTimestamps)
	assert.InDelta(t, 1550, w.AnnualIrradiation(), 1e-6)
	assert.InDelta(t, 1550, w.Meta.AnnualIrradiation, 1e-9)

	for h := range w.GHI {
		hod := model.HourOfDay(h)
		if hod <= 6 || hod >= 18 {
			assert.InDelta(t, 0, w.GHI[h], 1e-9, "hour %d", h)
		}
	}
	// Summer noon beats winter noon.
	assert.Greater(t, w.GHI[172*24+12], w.GHI[355*24+12])
	assert.InDelta(t, 12, w.Temperature[80*24], 1e-9)
	assert.InDelta(t, 22, w.Temperature[171*24], 0.01)
}

func TestFallbackIsDeterministic(t *testing.T) {
	a, b := Fallback(47.2, -1.5, 0), Fallback(47.2, -1.5, 0)
	assert.Equal(t, a, b)
	assert.True(t, a.Meta.RetrievedAt.IsZero())
}

func TestFallbackExplicitIrradiation(t *testing.T) {
	w := Fallback(10, 0, 1234)
	assert.InDelta(t, 1234, w.AnnualIrradiation(), 1e-6)
}

func tmyDoc(t *testing.T, rotate int, withTemp bool) []byte {
	t.Helper()
	start := time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]map[string]any, model.HoursPerYear)
	for h := range rows {
		row := map[string]any{
			"time(UTC)": start.Add(time.Duration(h) * time.Hour).Format(pvgisTimeLayout),
			"G(h)":      float64(h%24) * 10,
		}
		if withTemp {
			row["T2m"] = 5.0
		}
		rows[h] = row
	}
	rows = append(rows[rotate:], rows[:rotate]...)
	doc := map[string]any{"outputs": map[string]any{"tmy_hourly": rows}}
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return b
}

func TestParseTMYPlacesRowsByTimestamp(t *testing.T) {
	w, err := ParseTMY(bytes.NewReader(tmyDoc(t, 500, true)))
	require.NoError(t, err)

	assert.True(t, w.HasTimestamps)
	for _, h := range []int{0, 13, 499, 500, 8759} {
		assert.Equal(t, float64(h%24)*10, w.GHI[h], "hour %d", h)
	}
	require.NotNil(t, w.Temperature)
	assert.Equal(t, 5.0, w.Temperature[42])
}

func TestParseTMYWithoutTemperature(t *testing.T) {
	w, err := ParseTMY(bytes.NewReader(tmyDoc(t, 0, false)))
	require.NoError(t, err)
	assert.Nil(t, w.Temperature)
}

func TestParseTMYWithoutTimestampsUsesFileOrder(t *testing.T) {
	rows := make([]map[string]any, model.HoursPerYear)
	for h := range rows {
		rows[h] = map[string]any{"G(h)": float64(h % 24), "T2m": 1.0}
	}
	b, err := json.Marshal(map[string]any{"outputs": map[string]any{"tmy_hourly": rows}})
	require.NoError(t, err)

	w, err := ParseTMY(bytes.NewReader(b))
	require.NoError(t, err)
	assert.False(t, w.HasTimestamps)
	assert.Equal(t, 23.0, w.GHI[47])
}

func TestParseTMYRejectsShortYear(t *testing.T) {
	rows := []map[string]any{{"G(h)": 1.0}}
	b, err := json.Marshal(map[string]any{"outputs": map[string]any{"tmy_hourly": rows}})
	require.NoError(t, err)

	_, err = ParseTMY(bytes.NewReader(b))
	var le *model.LengthError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 1, le.Got)
	assert.ErrorIs(t, err, model.ErrContract)
}

func TestPVGISClientTMY(t *testing.T) {
	doc := tmyDoc(t, 0, true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tmy", r.URL.Path)
		assert.Equal(t, "45.0000", r.URL.Query().Get("lat"))
		assert.Equal(t, "json", r.URL.Query().Get("outputformat"))
		assert.Equal(t, "1", r.URL.Query().Get("usehorizon"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc)
	}))
	defer srv.Close()

	c := NewPVGISClient(srv.URL, time.Second)
	w, err := c.TMY(context.Background(), 45, 2.5)
	require.NoError(t, err)
	assert.Equal(t, model.SourceAPI, w.Meta.Source)
	assert.Equal(t, PVGISVersion, w.Meta.APIVersion)
	assert.Equal(t, 2.5, w.Meta.Longitude)
	assert.False(t, w.Meta.Synthetic)
}

func TestPVGISClientErrors(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, "BAD_REQUEST"},
		{http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{http.StatusInternalServerError, "API_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "30")
				http.Error(w, "location over sea", tc.status)
			}))
			defer srv.Close()

			_, err := NewPVGISClient(srv.URL, time.Second).TMY(context.Background(), 45, 2)
			var pe *PVGISError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.status, pe.StatusCode)
			assert.Equal(t, tc.code, pe.Code)
		})
	}
}

type stubFetcher struct {
	calls atomic.Int32
	w     *model.Weather
	err   error
}

func (s *stubFetcher) TMY(ctx context.Context, lat, lon float64) (*model.Weather, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	out := *s.w
	out.Meta.Source = model.SourceAPI
	return &out, nil
}

func TestProviderCacheThenAPI(t *testing.T) {
	f := &stubFetcher{w: Fallback(45, 2, 1200)}
	c := NewCache(time.Hour)
	defer c.Close()
	p := NewProvider(f, c)

	w, err := p.Get(context.Background(), 45, 2)
	require.NoError(t, err)
	assert.Equal(t, model.SourceAPI, w.Meta.Source)
	assert.False(t, w.Meta.CachedUntil.IsZero())

	w, err = p.Get(context.Background(), 45.001, 2.001)
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, w.Meta.Source)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestProviderFallsBack(t *testing.T) {
	p := NewProvider(&stubFetcher{err: errors.New("boom")}, nil)
	w, err := p.Get(context.Background(), 45, 2)
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, w.Meta.Source)
	assert.True(t, w.Meta.Synthetic)

	w, err = NewProvider(nil, nil).Get(context.Background(), 30, 2)
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, w.Meta.Source)
}

func TestProviderRejectsBadLocation(t *testing.T) {
	_, err := NewProvider(nil, nil).Get(context.Background(), 95, 0)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Close()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	key := CacheKey(1, 2)
	c.Set(key, Fallback(1, 2, 0))
	_, _, ok := c.Get(key)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, _, ok = c.Get(key)
	assert.False(t, ok)
	c.sweep()
	assert.Zero(t, c.Len())

	var nilCache *Cache
	_, _, ok = nilCache.Get(key)
	assert.False(t, ok)
}

func TestCSVRoundTrip(t *testing.T) {
	src := Fallback(45, 2, 0)
	path := filepath.Join(t.TempDir(), "site", "tmy.csv")
	require.NoError(t, SaveCSV(path, src))

	w, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, model.SourceFile, w.Meta.Source)
	assert.InDelta(t, src.AnnualIrradiation(), w.AnnualIrradiation(), 1)
	assert.InDelta(t, src.Temperature[100], w.Temperature[100], 0.01)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("hour,temperature\n0,1\n"))
	assert.ErrorContains(t, err, "missing ghi column")

	_, err = ReadCSV(strings.NewReader("ghi\n1\n2\n"))
	assert.ErrorIs(t, err, model.ErrContract)

	_, err = ReadCSV(strings.NewReader("ghi\nabc\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestLoadFileRejectsUnknownExtension(t *testing.T) {
	_, err := LoadFile("weather.txt")
	assert.Error(t, err)
}

func TestSitesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.json")
	list := &SiteList{
		UpdatedAt: "2024-01-01T00:00:00Z",
		Sites: []Site{
			{ID: "lyon", Name: "Lyon", Latitude: 45.76, Longitude: 4.84, AltitudeM: 170, WeatherFile: "tmy/lyon.csv"},
			{ID: "nice", Name: "Nice", Latitude: 43.7, Longitude: 7.27},
		},
	}
	require.NoError(t, SaveSites(list, path))

	got, err := LoadSites(path)
	require.NoError(t, err)
	assert.Equal(t, list, got)

	s, ok := got.Find("lyon")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "tmy/lyon.csv"), WeatherPath(path, s))
	_, ok = got.Find("paris")
	assert.False(t, ok)
}

func TestSitesValidate(t *testing.T) {
	l := &SiteList{Sites: []Site{{ID: "a", Latitude: 1}, {ID: "a", Latitude: 2}}}
	assert.ErrorContains(t, l.Validate(), "duplicate")

	l = &SiteList{Sites: []Site{{ID: "a", Latitude: 200}}}
	assert.Error(t, l.Validate())
}
