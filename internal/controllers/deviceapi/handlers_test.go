package deviceapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/seaglow/seaglow/internal/database"
	"github.com/seaglow/seaglow/pkg/config"
	"github.com/seaglow/seaglow/pkg/locations"
)

type fakeStore struct {
	contexts  map[int64]*database.DeviceContext
	loadErr   error
	healthErr error
	touched   chan uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contexts: make(map[int64]*database.DeviceContext),
		touched:  make(chan uint, 8),
	}
}

func (f *fakeStore) LoadDeviceContext(ctx context.Context, hardwareID int64) (*database.DeviceContext, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	dc, ok := f.contexts[hardwareID]
	if !ok {
		return nil, database.ErrDeviceNotFound
	}
	return dc, nil
}

func (f *fakeStore) TouchDevice(ctx context.Context, deviceID uint) error {
	f.touched <- deviceID
	return nil
}

func (f *fakeStore) HealthCheck(ctx context.Context) error {
	return f.healthErr
}

type fakeRegistry struct{}

func (fakeRegistry) Timezone(location string) (string, bool) {
	if location == "Hadera, Israel" {
		return "Asia/Jerusalem", true
	}
	return "", false
}

func (fakeRegistry) Coordinates(location string) (locations.Coordinates, bool) {
	if location == "Hadera, Israel" {
		return locations.Coordinates{Latitude: 32.4340, Longitude: 34.8877}, true
	}
	return locations.Coordinates{}, false
}

func (fakeRegistry) Sources(location string) ([]locations.Source, bool) {
	if location == "Hadera, Israel" {
		return []locations.Source{{Name: "isramar", Priority: 1}}, true
	}
	return nil, false
}

func (fakeRegistry) Names() []string {
	return []string{"Hadera, Israel"}
}

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func testConfig() config.IngestData {
	return config.IngestData{
		IntervalMinutes:     15,
		StrictWindUnits:     true,
		QuietHoursStart:     22,
		QuietHoursEnd:       6,
		SunsetWindowMinutes: 15,
	}
}

func newTestHandlers(store *fakeStore, now time.Time) *Handlers {
	h := NewHandlers(store, fakeRegistry{}, testConfig(), zap.NewNop().Sugar())
	h.nowFn = func() time.Time { return now }
	return h
}

func newTestRouter(h *Handlers) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/arduino/{hardware_id:[0-9]+}/data", h.GetDeviceData).Methods(http.MethodGet)
	router.HandleFunc("/api/locations", h.GetLocations).Methods(http.MethodGet)
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	return router
}

func haderaContext(conditions *database.Conditions) *database.DeviceContext {
	return &database.DeviceContext{
		User: database.User{
			ID:                 1,
			Email:              "surfer@example.com",
			Location:           "Hadera, Israel",
			Theme:              "day",
			WaveThresholdM:     1.5,
			WindThresholdKnots: 25,
		},
		Device:     database.Device{ID: 7, UserID: 1, HardwareID: 4433},
		Conditions: conditions,
	}
}

func getPayload(t *testing.T, h *Handlers, hardwareID string) (int, DevicePayload) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/arduino/"+hardwareID+"/data", nil)
	newTestRouter(h).ServeHTTP(rec, req)

	var payload DevicePayload
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
	}
	return rec.Code, payload
}

// Daytime instant in Israel, far from sunset and outside every window.
var quietNoon = time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)

func TestGetDeviceDataHappyPath(t *testing.T) {
	store := newFakeStore()
	store.contexts[4433] = haderaContext(&database.Conditions{
		Location:         "Hadera, Israel",
		WaveHeightM:      f64(0.65),
		WavePeriodS:      f64(5.0),
		WindSpeedMPS:     f64(7.5),
		WindDirectionDeg: f64(315),
		LastUpdated:      time.Date(2025, 10, 13, 8, 45, 0, 0, time.UTC),
	})

	h := newTestHandlers(store, quietNoon)
	code, payload := getPayload(t, h, "4433")

	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if payload.WaveHeightCm != 65 {
		t.Errorf("wave_height_cm = %d, want 65", payload.WaveHeightCm)
	}
	if payload.WavePeriodS != 5.0 {
		t.Errorf("wave_period_s = %v, want 5.0", payload.WavePeriodS)
	}
	if payload.WindSpeedMps != 8 {
		t.Errorf("wind_speed_mps = %d, want 8 (7.5 rounds up)", payload.WindSpeedMps)
	}
	if payload.WindDirectionDeg != 315 {
		t.Errorf("wind_direction_deg = %d, want 315", payload.WindDirectionDeg)
	}
	if payload.WaveThresholdCm != 150 {
		t.Errorf("wave_threshold_cm = %d, want 150", payload.WaveThresholdCm)
	}
	if payload.WindSpeedThresholdKnots != 25 {
		t.Errorf("wind_speed_threshold_knots = %d, want 25", payload.WindSpeedThresholdKnots)
	}
	if payload.LedTheme != "day" {
		t.Errorf("led_theme = %q, want day", payload.LedTheme)
	}
	if !payload.DataAvailable {
		t.Error("data_available = false, want true")
	}
	if payload.LastUpdated != "2025-10-13T08:45:00Z" {
		t.Errorf("last_updated = %q, want 2025-10-13T08:45:00Z", payload.LastUpdated)
	}

	select {
	case deviceID := <-store.touched:
		if deviceID != 7 {
			t.Errorf("touched device %d, want 7", deviceID)
		}
	case <-time.After(2 * time.Second):
		t.Error("device poll time was never recorded")
	}
}

func TestGetDeviceDataUnknownDevice(t *testing.T) {
	h := newTestHandlers(newFakeStore(), quietNoon)
	code, _ := getPayload(t, h, "99999")
	if code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestGetDeviceDataStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.loadErr = errors.New("connection refused")

	h := newTestHandlers(store, quietNoon)
	code, _ := getPayload(t, h, "4433")
	if code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", code)
	}
}

func TestGetDeviceDataMissingConditions(t *testing.T) {
	store := newFakeStore()
	store.contexts[4433] = haderaContext(nil)

	h := newTestHandlers(store, quietNoon)
	code, payload := getPayload(t, h, "4433")

	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if payload.DataAvailable {
		t.Error("data_available = true, want false")
	}
	if payload.WaveHeightCm != 0 || payload.WavePeriodS != 0 || payload.WindSpeedMps != 0 || payload.WindDirectionDeg != 0 {
		t.Errorf("sensor fields not zeroed: %+v", payload)
	}
	if payload.LastUpdated != "1970-01-01T00:00:00Z" {
		t.Errorf("last_updated = %q, want epoch", payload.LastUpdated)
	}
	// Thresholds and theme still come through so the lamp can render.
	if payload.WaveThresholdCm != 150 {
		t.Errorf("wave_threshold_cm = %d, want 150", payload.WaveThresholdCm)
	}
}

func TestGetDeviceDataNullFieldsZeroed(t *testing.T) {
	store := newFakeStore()
	store.contexts[4433] = haderaContext(&database.Conditions{
		Location:     "Hadera, Israel",
		WindSpeedMPS: f64(7.5),
		LastUpdated:  time.Date(2025, 10, 13, 8, 45, 0, 0, time.UTC),
	})

	h := newTestHandlers(store, quietNoon)
	code, payload := getPayload(t, h, "4433")

	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !payload.DataAvailable {
		t.Error("data_available = false, want true (row exists)")
	}
	if payload.WaveHeightCm != 0 || payload.WavePeriodS != 0 {
		t.Errorf("null wave fields not zeroed: %+v", payload)
	}
	if payload.WindSpeedMps != 8 {
		t.Errorf("wind_speed_mps = %d, want 8", payload.WindSpeedMps)
	}
}

func TestGetDeviceDataQuietHours(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		// 22:30 UTC on Oct 13 is 01:30 IDT the next day.
		{"after midnight local", time.Date(2025, 10, 13, 22, 30, 0, 0, time.UTC), true},
		// 20:00 UTC is 23:00 IDT.
		{"late evening local", time.Date(2025, 10, 13, 20, 0, 0, 0, time.UTC), true},
		// 09:00 UTC is noon local.
		{"midday local", quietNoon, false},
		// 03:30 UTC is 06:30 IDT, just past the quiet window's end.
		{"early morning local", time.Date(2025, 10, 13, 3, 30, 0, 0, time.UTC), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			store.contexts[4433] = haderaContext(nil)
			h := newTestHandlers(store, tc.now)

			_, payload := getPayload(t, h, "4433")
			if payload.QuietHoursActive != tc.want {
				t.Errorf("quiet_hours_active = %v, want %v", payload.QuietHoursActive, tc.want)
			}
		})
	}
}

func TestGetDeviceDataOffHours(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		now        time.Time
		want       bool
	}{
		// Window 23:00-07:00 crosses midnight; 01:30 IDT is inside.
		{"inside crossing window", "23:00", "07:00", time.Date(2025, 10, 13, 22, 30, 0, 0, time.UTC), true},
		{"outside crossing window", "23:00", "07:00", quietNoon, false},
		// Same-day window.
		{"inside same-day window", "10:00", "14:00", quietNoon, true},
		// Start equal to end is an empty window, never active.
		{"empty window", "08:00", "08:00", quietNoon, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			dc := haderaContext(nil)
			dc.User.OffTimesEnabled = true
			dc.User.OffTimeStart = str(tc.start)
			dc.User.OffTimeEnd = str(tc.end)
			store.contexts[4433] = dc

			h := newTestHandlers(store, tc.now)
			_, payload := getPayload(t, h, "4433")
			if payload.OffHoursActive != tc.want {
				t.Errorf("off_hours_active = %v, want %v", payload.OffHoursActive, tc.want)
			}
		})
	}
}

func TestGetDeviceDataThresholdSentinel(t *testing.T) {
	store := newFakeStore()
	dc := haderaContext(&database.Conditions{
		Location:     "Hadera, Israel",
		WaveHeightM:  f64(2.5),
		WindSpeedMPS: f64(15.0), // ~29 knots
		LastUpdated:  time.Date(2025, 10, 13, 8, 45, 0, 0, time.UTC),
	})
	dc.User.WaveThresholdMaxM = f64(2.0)
	dc.User.WindThresholdMaxKnots = f64(28.0)
	store.contexts[4433] = dc

	h := newTestHandlers(store, quietNoon)
	_, payload := getPayload(t, h, "4433")

	if payload.WaveThresholdCm != 9999 {
		t.Errorf("wave_threshold_cm = %d, want sentinel 9999 (observed above max)", payload.WaveThresholdCm)
	}
	if payload.WindSpeedThresholdKnots != 9999 {
		t.Errorf("wind_speed_threshold_knots = %d, want sentinel 9999", payload.WindSpeedThresholdKnots)
	}
}

func TestGetDeviceDataThresholdSentinelNotTripped(t *testing.T) {
	store := newFakeStore()
	dc := haderaContext(&database.Conditions{
		Location:    "Hadera, Israel",
		WaveHeightM: f64(1.0),
		LastUpdated: time.Date(2025, 10, 13, 8, 45, 0, 0, time.UTC),
	})
	dc.User.WaveThresholdMaxM = f64(2.0)
	store.contexts[4433] = dc

	h := newTestHandlers(store, quietNoon)
	_, payload := getPayload(t, h, "4433")

	if payload.WaveThresholdCm != 150 {
		t.Errorf("wave_threshold_cm = %d, want 150 (observed below max)", payload.WaveThresholdCm)
	}
}

func TestGetDeviceDataFullSchema(t *testing.T) {
	store := newFakeStore()
	store.contexts[4433] = haderaContext(nil)

	h := newTestHandlers(store, quietNoon)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/arduino/4433/data", nil)
	newTestRouter(h).ServeHTTP(rec, req)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decoding body: %v", err)
	}

	want := []string{
		"wave_height_cm", "wave_period_s", "wind_speed_mps", "wind_direction_deg",
		"wave_threshold_cm", "wind_speed_threshold_knots", "led_theme",
		"quiet_hours_active", "off_hours_active", "sunset_animation",
		"day_of_year", "last_updated", "data_available",
	}
	for _, key := range want {
		if _, ok := raw[key]; !ok {
			t.Errorf("payload missing field %q", key)
		}
	}
	if len(raw) != len(want) {
		t.Errorf("payload has %d fields, want %d", len(raw), len(want))
	}
}

func TestGetLocations(t *testing.T) {
	h := newTestHandlers(newFakeStore(), quietNoon)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/locations", nil)
	newTestRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var summaries []locationSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Location != "Hadera, Israel" {
		t.Errorf("summaries = %+v, want one Hadera entry", summaries)
	}
	if summaries[0].Timezone != "Asia/Jerusalem" || summaries[0].SourceCount != 1 {
		t.Errorf("summary = %+v, want Asia/Jerusalem with 1 source", summaries[0])
	}
}

func TestGetHealth(t *testing.T) {
	store := newFakeStore()
	h := newTestHandlers(store, quietNoon)
	router := newTestRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d, want 200", rec.Code)
	}

	store.healthErr = errors.New("connection refused")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d, want 503", rec.Code)
	}
}
