package api

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pv-simulator/internal/api/models"
	"pv-simulator/internal/model"
	"pv-simulator/internal/simulation"
	"pv-simulator/internal/weather"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `{
	"installation": {"panel_count": 12, "panel_power_wc": 400, "latitude": 45.76, "longitude": 4.84},
	"household": {"area_m2": 100, "occupants": 3, "dpe": "C", "archetype": "family"},
	"consumption": {"seed": 7}
}`

const testBatteryConfig = `{
	"installation": {"panel_count": 12, "panel_power_wc": 400, "latitude": 45.76, "longitude": 4.84},
	"household": {"area_m2": 100, "occupants": 3, "dpe": "C", "archetype": "family"},
	"battery_file": "standard-10kwh.yaml",
	"consumption": {"seed": 7}
}`

func newTestRouter(t *testing.T) (*gin.Engine, *simulation.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	runner := simulation.NewRunner(nil)
	sites, err := weather.LoadSites("../../examples/sites.json")
	require.NoError(t, err)
	runner.Sites = sites

	store := simulation.NewStore(time.Hour, 16)
	t.Cleanup(store.Close)
	return NewRouter(Deps{Runner: runner, Store: store, BatteryDir: "../../examples/batteries"}), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorDetail {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func simulate(t *testing.T, h http.Handler, cfg string) models.SimulationResponse {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/v1/simulate", `{"config": `+cfg+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.SimulationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Report)
	return resp
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSimulateWithoutBattery(t *testing.T) {
	router, store := newTestRouter(t)
	resp := simulate(t, router, testConfig)

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, model.SourceFallback, resp.Weather.Source)
	assert.Greater(t, resp.Production.AnnualKWh, 0.0)
	assert.Nil(t, resp.Battery)
	assert.Empty(t, resp.Hourly)
	assert.Equal(t, 1, store.Len())

	w := do(t, router, http.MethodGet, "/api/v1/simulate/"+resp.ID+"/ledger.csv", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NO_LEDGER", decodeError(t, w).Code)
}

func TestSimulateWithBatteryPreset(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := simulate(t, router, testBatteryConfig)

	require.NotNil(t, resp.Battery)
	assert.Equal(t, 10.0, resp.Battery.CapacityKWh)
	assert.GreaterOrEqual(t, resp.Battery.SelfConsumptionRate, resp.Balance.SelfConsumptionRate)
	require.NotNil(t, resp.Financial.WithBattery)

	w := do(t, router, http.MethodGet, "/api/v1/simulate/"+resp.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var again models.SimulationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	assert.Equal(t, resp.ID, again.ID)
	assert.InDelta(t, resp.Balance.SelfKWh, again.Balance.SelfKWh, 1e-9)

	w = do(t, router, http.MethodGet, "/api/v1/simulate/"+resp.ID+"/hourly?from=24&to=48", "")
	require.Equal(t, http.StatusOK, w.Code)
	var hourly models.HourlyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hourly))
	assert.Equal(t, 24, hourly.From)
	assert.Equal(t, 48, hourly.To)
	require.Len(t, hourly.Hours, 24)
	assert.Equal(t, 24, hourly.Hours[0].Hour)
	assert.Equal(t, 1, hourly.Hours[0].Day)
	assert.NotNil(t, hourly.Hours[0].SOCKWh)

	w = do(t, router, http.MethodGet, "/api/v1/simulate/"+resp.ID+"/ledger.csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, model.HoursPerYear+1)
	assert.True(t, strings.HasPrefix(lines[0], "index,day,hour"))
}

func TestSimulateIncludeHourly(t *testing.T) {
	router, _ := newTestRouter(t)
	w := do(t, router, http.MethodPost, "/api/v1/simulate",
		`{"config": `+testConfig+`, "options": {"include_hourly": true}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SimulationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Hourly, model.HoursPerYear)
	assert.Nil(t, resp.Hourly[0].SOCKWh)
}

func TestSimulateErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"config": `, http.StatusBadRequest, "INVALID_REQUEST"},
		{"weather file", `{"config": {"weather_file": "/etc/passwd"}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown preset", `{"config": {"battery_file": "nope.yaml"}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"no panels", `{"config": {"household": {"area_m2": 100, "occupants": 3}}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown site", `{"config": {"site": "atlantis", "installation": {"panel_count": 10, "panel_power_wc": 400},
			"household": {"area_m2": 100, "occupants": 3}}}`, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/simulate", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestUnknownReport(t *testing.T) {
	router, _ := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/api/v1/simulate/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)

	w = do(t, router, http.MethodGet, "/api/v1/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConsumptionEstimate(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/consumption/estimate", `{
		"household": {"area_m2": 90, "occupants": 2, "dpe": "B", "declared_annual_kwh": 4500},
		"latitude": 48.86,
		"options": {"seed": 3},
		"include_hourly": true
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.ConsumptionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "generic", string(resp.Mode))
	assert.InDelta(t, 4500, resp.AnnualKWh, 1e-6)
	require.Len(t, resp.Hourly, model.HoursPerYear)

	sum := 0.0
	for _, v := range resp.Hourly {
		sum += v
	}
	assert.InDelta(t, 4500, sum, 1e-3)

	w = do(t, router, http.MethodPost, "/api/v1/consumption/estimate", `{
		"household": {"area_m2": 90, "occupants": 2},
		"options": {"mode": "psychic"}
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, w).Code)
}

func TestProductionEstimate(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/production/estimate", `{
		"installation": {"panel_count": 10, "panel_power_wc": 500, "latitude": 43.3, "longitude": 5.37},
		"include_hourly": true
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.ProductionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5.0, resp.PeakKW)
	assert.True(t, resp.Weather.Synthetic)
	assert.Greater(t, resp.Production.SpecificYield, 0.0)
	assert.Len(t, resp.Hourly, model.HoursPerYear)

	w = do(t, router, http.MethodPost, "/api/v1/production/estimate", `{"installation": {"panel_count": 0}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListBatteries(t *testing.T) {
	router, _ := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/api/v1/batteries", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Batteries []models.BatteryInfo `json:"batteries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Batteries, 3)
	for _, b := range resp.Batteries {
		assert.NotEmpty(t, b.Name)
		assert.Greater(t, b.Specs.UsableKWh, 0.0)
		require.NotNil(t, b.Price, b.ID)
		assert.Greater(t, b.Price.Total, 0.0)
	}
}

func TestBatteryPrice(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/v1/battery/price?capacity_kwh=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	var p struct {
		CapacityKWh float64 `json:"capacity_kwh"`
		Tier        string  `json:"tier"`
		Total       float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, 10.0, p.CapacityKWh)
	assert.Equal(t, "standard", p.Tier)
	assert.Greater(t, p.Total, 0.0)

	w = do(t, router, http.MethodGet, "/api/v1/battery/price?capacity_kwh=10&tier=gold", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, w).Code)

	w = do(t, router, http.MethodGet, "/api/v1/battery/price", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Code)
}

func TestBatterySizing(t *testing.T) {
	router, _ := newTestRouter(t)
	w := do(t, router, http.MethodPost, "/api/v1/battery/sizing",
		`{"config": `+testBatteryConfig+`, "tier": "economy", "capacities": [5, 10]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SizingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Recommendation)
	assert.Len(t, resp.Recommendation.Candidates, 2)
	assert.Equal(t, model.ArchetypeFamily, resp.Recommendation.Archetype)
	assert.InDelta(t, resp.Baseline.SelfConsumptionRate, resp.Recommendation.BaselineRate, 1e-9)
	assert.Greater(t, resp.ProductionKWh, 0.0)
}

func TestReferenceLists(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/v1/archetypes", "")
	require.Equal(t, http.StatusOK, w.Code)
	var arch struct {
		Archetypes []models.ArchetypeInfo `json:"archetypes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &arch))
	require.Len(t, arch.Archetypes, 4)
	for _, a := range arch.Archetypes {
		assert.NotEmpty(t, a.Description)
		assert.Greater(t, a.Sizing.OptimalRatio, 0.0)
	}

	w = do(t, router, http.MethodGet, "/api/v1/sites", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sites struct {
		Sites []weather.Site `json:"sites"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sites))
	assert.Equal(t, 5, sites.Count)
	assert.Equal(t, "lille", sites.Sites[0].ID)
}

func TestSimulateBySite(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := simulate(t, router, `{
		"site": "marseille",
		"installation": {"panel_count": 10, "panel_power_wc": 400},
		"household": {"area_m2": 80, "occupants": 2}
	}`)
	assert.InDelta(t, 43.30, resp.Weather.Latitude, 1e-9)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/simulate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandlerCompresses(t *testing.T) {
	router, _ := newTestRouter(t)
	h, err := Handler(router, gzip.DefaultCompression)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/production/estimate", strings.NewReader(`{
		"installation": {"panel_count": 10, "panel_power_wc": 400, "latitude": 45, "longitude": 2},
		"include_hourly": true
	}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"hourly"`)

	_, err = Handler(router, 42)
	assert.Error(t, err)
}

func TestStream(t *testing.T) {
	router, store := newTestRouter(t)
	h, err := Handler(router, gzip.DefaultCompression)
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/simulate/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"config": `+testBatteryConfig+`}`)))

	var stages []string
	months := 0
	var result models.SimulationResponse
	for {
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg models.StreamMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		switch msg.Type {
		case "stage":
			var e simulation.Event
			require.NoError(t, json.Unmarshal(msg.Payload, &e))
			stages = append(stages, string(e.Stage))
		case "month":
			months++
		case "result":
			require.NoError(t, json.Unmarshal(msg.Payload, &result))
		default:
			t.Fatalf("unexpected frame %s: %s", msg.Type, msg.Payload)
		}
	}

	assert.Equal(t, []string{"weather", "production", "consumption", "reconcile", "battery", "financial"}, stages)
	assert.Equal(t, 12, months)
	require.NotNil(t, result.Report)
	assert.NotNil(t, result.Battery)

	_, ok := store.Get(result.ID)
	assert.True(t, ok)
}

func TestStreamRejectsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/simulate/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"config": {"weather_file": "x.csv"}}`)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg models.StreamMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "error", msg.Type)
	var detail models.ErrorDetail
	require.NoError(t, json.Unmarshal(msg.Payload, &detail))
	assert.Equal(t, "INVALID_INPUT", detail.Code)
}
