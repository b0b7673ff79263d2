// Package extract turns raw provider JSON into normalized condition
// observations. A static endpoint table maps URL families to provider
// kinds; each kind carries a declarative recipe (or a custom extractor)
// for pulling canonical fields out of the document.
package extract

import (
	"strings"
	"time"
)

// Field names a canonical conditions field. Values are always metric:
// meters, seconds, meters per second, degrees, Celsius.
type Field string

const (
	FieldWaveHeightM      Field = "wave_height_m"
	FieldWavePeriodS      Field = "wave_period_s"
	FieldWaveDirectionDeg Field = "wave_direction_deg"
	FieldWindSpeedMPS     Field = "wind_speed_mps"
	FieldWindDirectionDeg Field = "wind_direction_deg"
	FieldTemperatureC     Field = "temperature_c"
)

// Kind identifies a supported provider family.
type Kind int

const (
	KindUnknown Kind = iota
	KindOpenWeatherMap
	KindOpenMeteoMarine
	KindOpenMeteoForecast
	KindIsramar
)

func (k Kind) String() string {
	switch k {
	case KindOpenWeatherMap:
		return "openweathermap"
	case KindOpenMeteoMarine:
		return "open-meteo-marine"
	case KindOpenMeteoForecast:
		return "open-meteo-forecast"
	case KindIsramar:
		return "isramar"
	default:
		return "unknown"
	}
}

// endpointTable maps URL substrings to provider kinds. First match wins,
// so marine-api.open-meteo.com must precede api.open-meteo.com: the
// latter is a substring of marine URLs too.
var endpointTable = []struct {
	substring string
	kind      Kind
}{
	{"openweathermap.org", KindOpenWeatherMap},
	{"isramar.ocean.org.il", KindIsramar},
	{"marine-api.open-meteo.com", KindOpenMeteoMarine},
	{"api.open-meteo.com", KindOpenMeteoForecast},
}

// KindForURL resolves the provider kind for a full request URL.
func KindForURL(url string) (Kind, bool) {
	for _, entry := range endpointTable {
		if strings.Contains(url, entry.substring) {
			return entry.kind, true
		}
	}
	return KindUnknown, false
}

// Observation is the normalized output of one provider response. Empty
// Fields means the provider contributed nothing this cycle.
type Observation struct {
	Fields      map[Field]float64
	SourceURL   string
	RetrievedAt time.Time
}

// Empty reports whether no fields were extracted.
func (o *Observation) Empty() bool {
	return o == nil || len(o.Fields) == 0
}
