package extract

import (
	"testing"
	"time"
)

const isramarURL = "https://isramar.ocean.org.il/isramar2009/station_data/json/Hadera.json"

func TestIsramarExtraction(t *testing.T) {
	doc := parseJSON(t, `{
		"datetime": "2025-10-13 12:00",
		"parameters": [
			{"name": "Significant wave height Hm0 [m]", "values": [0.65]},
			{"name": "Peak wave period Tp [s]", "values": [5.0]},
			{"name": "Sea surface temperature [degC]", "values": [24.1]}
		]
	}`)

	obs := testTransformer().Transform(doc, isramarURL, time.Now())
	if obs == nil {
		t.Fatal("Transform returned nil for isramar URL")
	}
	if got, want := obs.Fields[FieldWaveHeightM], 0.65; got != want {
		t.Errorf("wave_height_m = %v, want %v", got, want)
	}
	if got, want := obs.Fields[FieldWavePeriodS], 5.0; got != want {
		t.Errorf("wave_period_s = %v, want %v", got, want)
	}
	if len(obs.Fields) != 2 {
		t.Errorf("extracted %d fields, want 2: %+v", len(obs.Fields), obs.Fields)
	}
}

func TestIsramarEmptyValues(t *testing.T) {
	doc := parseJSON(t, `{
		"parameters": [
			{"name": "Significant wave height Hm0 [m]", "values": []},
			{"name": "Peak wave period Tp [s]"}
		]
	}`)

	obs := testTransformer().Transform(doc, isramarURL, time.Now())
	if !obs.Empty() {
		t.Errorf("observation should be empty, got %+v", obs.Fields)
	}
}

func TestIsramarMalformedDocument(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no parameters key", `{"datetime": "2025-10-13"}`},
		{"parameters not an array", `{"parameters": {"name": "x"}}`},
		{"entry not an object", `{"parameters": ["wave"]}`},
		{"non-numeric value", `{"parameters": [{"name": "Significant wave height", "values": ["high"]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := testTransformer().Transform(parseJSON(t, tt.raw), isramarURL, time.Now())
			if obs == nil {
				t.Fatal("Transform should degrade to an empty observation, not nil")
			}
			if !obs.Empty() {
				t.Errorf("observation should be empty, got %+v", obs.Fields)
			}
		})
	}
}
