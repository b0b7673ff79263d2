package extract

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testTransformer() *Transformer {
	return NewTransformer(zap.NewNop().Sugar())
}

func parseJSON(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("parsing test document: %v", err)
	}
	return doc
}

func TestKindForURL(t *testing.T) {
	tests := []struct {
		url      string
		want     Kind
		wantMiss bool
	}{
		{"https://api.openweathermap.org/data/2.5/weather?lat=32&lon=34", KindOpenWeatherMap, false},
		{"https://isramar.ocean.org.il/isramar2009/station_data/json/Hadera.json", KindIsramar, false},
		{"https://marine-api.open-meteo.com/v1/marine?latitude=32", KindOpenMeteoMarine, false},
		{"https://api.open-meteo.com/v1/forecast?hourly=wind_speed_10m", KindOpenMeteoForecast, false},
		{"https://api.weather.gov/points/32,34", KindUnknown, true},
		{"", KindUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := KindForURL(tt.url)
			if ok == tt.wantMiss {
				t.Fatalf("KindForURL(%q) ok = %v, want %v", tt.url, ok, !tt.wantMiss)
			}
			if got != tt.want {
				t.Errorf("KindForURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

// The marine host contains "api.open-meteo.com" as a substring, so table
// order is what keeps marine URLs from resolving as forecast URLs.
func TestMarineURLWinsOverForecastSubstring(t *testing.T) {
	kind, ok := KindForURL("https://marine-api.open-meteo.com/v1/marine?hourly=wave_height")
	if !ok || kind != KindOpenMeteoMarine {
		t.Errorf("marine URL resolved to %v, want %v", kind, KindOpenMeteoMarine)
	}
}

func TestTransformHourlySelectsCurrentHour(t *testing.T) {
	doc := parseJSON(t, `{
		"hourly": {
			"time": ["2025-01-01T00:00", "2025-01-01T01:00", "2025-01-01T02:00"],
			"wave_height": [1.0, 1.4, 1.8],
			"wave_period": [5.0, 5.5, 6.0],
			"wave_direction": [270, 280, 290]
		}
	}`)
	now := time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC)

	obs := testTransformer().Transform(doc, "https://marine-api.open-meteo.com/v1/marine", now)
	if obs == nil {
		t.Fatal("Transform returned nil for a known URL family")
	}
	if got, want := obs.Fields[FieldWaveHeightM], 1.0; got != want {
		t.Errorf("wave_height_m = %v, want %v", got, want)
	}
	if got, want := obs.Fields[FieldWavePeriodS], 5.0; got != want {
		t.Errorf("wave_period_s = %v, want %v", got, want)
	}

	// An hour later the next slot should win.
	later := time.Date(2025, 1, 1, 1, 5, 0, 0, time.UTC)
	obs = testTransformer().Transform(doc, "https://marine-api.open-meteo.com/v1/marine", later)
	if got, want := obs.Fields[FieldWaveHeightM], 1.4; got != want {
		t.Errorf("wave_height_m at 01:05 = %v, want %v", got, want)
	}
}

func TestTransformHourlyFallsBackToIndexZero(t *testing.T) {
	doc := parseJSON(t, `{
		"hourly": {
			"time": ["2025-01-01T00:00", "2025-01-01T01:00"],
			"wave_height": [0.8, 1.1]
		}
	}`)
	// Wall clock far outside the served window.
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	obs := testTransformer().Transform(doc, "https://marine-api.open-meteo.com/v1/marine", now)
	if got, want := obs.Fields[FieldWaveHeightM], 0.8; got != want {
		t.Errorf("wave_height_m = %v, want %v (index 0 fallback)", got, want)
	}
}

func TestTransformHourlySeriesShorterThanTimeArray(t *testing.T) {
	doc := parseJSON(t, `{
		"hourly": {
			"time": ["2025-01-01T00:00", "2025-01-01T01:00", "2025-01-01T02:00"],
			"wave_height": [0.9]
		}
	}`)
	now := time.Date(2025, 1, 1, 2, 10, 0, 0, time.UTC)

	obs := testTransformer().Transform(doc, "https://marine-api.open-meteo.com/v1/marine", now)
	if got, want := obs.Fields[FieldWaveHeightM], 0.9; got != want {
		t.Errorf("wave_height_m = %v, want %v (short series takes slot 0)", got, want)
	}
}

func TestTransformOpenWeatherMap(t *testing.T) {
	doc := parseJSON(t, `{
		"main": {"temp": 293.15},
		"wind": {"speed": 7.5, "deg": 315}
	}`)
	now := time.Date(2025, 10, 13, 12, 0, 0, 0, time.UTC)

	obs := testTransformer().Transform(doc, "https://api.openweathermap.org/data/2.5/weather", now)
	if got, want := obs.Fields[FieldWindSpeedMPS], 7.5; got != want {
		t.Errorf("wind_speed_mps = %v, want %v", got, want)
	}
	if got, want := obs.Fields[FieldWindDirectionDeg], 315.0; got != want {
		t.Errorf("wind_direction_deg = %v, want %v", got, want)
	}
	if got, want := obs.Fields[FieldTemperatureC], 20.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("temperature_c = %v, want %v", got, want)
	}
	// No marine data: wave fields fall back to zero.
	if got, want := obs.Fields[FieldWaveHeightM], 0.0; got != want {
		t.Errorf("wave_height_m fallback = %v, want %v", got, want)
	}
	if got, want := obs.Fields[FieldWavePeriodS], 0.0; got != want {
		t.Errorf("wave_period_s fallback = %v, want %v", got, want)
	}
}

func TestTransformUnknownURLReturnsNil(t *testing.T) {
	doc := parseJSON(t, `{"wind": {"speed": 5}}`)
	obs := testTransformer().Transform(doc, "https://api.weather.gov/gridpoints", time.Now())
	if obs != nil {
		t.Errorf("Transform for unknown URL = %+v, want nil", obs)
	}
}

// Explicit JSON null and an absent key must behave identically: the field
// is missing and the next provider in priority order supplies it.
func TestNullAndOmittedAreEquivalent(t *testing.T) {
	explicitNull := parseJSON(t, `{
		"hourly": {
			"time": ["2025-01-01T00:00"],
			"wave_height": [null],
			"wave_period": [4.2]
		}
	}`)
	omitted := parseJSON(t, `{
		"hourly": {
			"time": ["2025-01-01T00:00"],
			"wave_period": [4.2]
		}
	}`)
	now := time.Date(2025, 1, 1, 0, 15, 0, 0, time.UTC)

	for name, doc := range map[string]map[string]interface{}{"explicit null": explicitNull, "omitted": omitted} {
		t.Run(name, func(t *testing.T) {
			obs := testTransformer().Transform(doc, "https://marine-api.open-meteo.com/v1/marine", now)
			if _, present := obs.Fields[FieldWaveHeightM]; present {
				t.Error("wave_height_m should be absent")
			}
			if got, want := obs.Fields[FieldWavePeriodS], 4.2; got != want {
				t.Errorf("wave_period_s = %v, want %v", got, want)
			}
		})
	}
}

func TestTransformEmptyWhenNothingExtracted(t *testing.T) {
	doc := parseJSON(t, `{"generationtime_ms": 0.2}`)
	now := time.Now()

	obs := testTransformer().Transform(doc, "https://marine-api.open-meteo.com/v1/marine", now)
	if obs == nil {
		t.Fatal("Transform should return an empty observation, not nil")
	}
	if !obs.Empty() {
		t.Errorf("observation should be empty, got %+v", obs.Fields)
	}
}

func TestResolveFieldConversionErrorKeepsRaw(t *testing.T) {
	doc := map[string]interface{}{"main": map[string]interface{}{"temp": 300.0}}
	fr := FieldRecipe{
		Path:    []string{"main", "temp"},
		Convert: func(v float64) (float64, error) { return 0, errors.New("bad conversion") },
	}

	got := testTransformer().resolveField(doc, FieldTemperatureC, fr, 0, "test://provider")
	if got == nil {
		t.Fatal("resolveField returned nil, want raw value")
	}
	if *got != 300.0 {
		t.Errorf("resolveField = %v, want raw 300.0", *got)
	}
}

func TestResolveFieldTypeMismatch(t *testing.T) {
	doc := parseJSON(t, `{"wind": {"speed": "fresh breeze"}}`)
	fr := FieldRecipe{Path: []string{"wind", "speed"}}

	if got := testTransformer().resolveField(doc, FieldWindSpeedMPS, fr, 0, "test://provider"); got != nil {
		t.Errorf("resolveField on string value = %v, want nil", *got)
	}
}
