// Command swell-simulator serves synthetic provider responses for all
// four supported URL families, letting a local seaglow instance run full
// ingestion cycles with no external traffic.
//
// Routes embed each provider's hostname in the path, so a source URL
// like http://localhost:9100/marine-api.open-meteo.com/v1/marine still
// matches the extraction recipe for that family.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// conditionsModel draws plausible sea states: wave heights cluster near
// the Mediterranean mean, wind speeds follow the usual Weibull shape,
// and directions are uniform.
type conditionsModel struct {
	waveHeight distuv.Normal
	wavePeriod distuv.Normal
	windSpeed  distuv.Weibull
	direction  distuv.Uniform
	tempK      distuv.Normal
}

func newConditionsModel(seed uint64) *conditionsModel {
	src := rand.NewPCG(seed, seed)
	return &conditionsModel{
		waveHeight: distuv.Normal{Mu: 0.8, Sigma: 0.4, Src: src},
		wavePeriod: distuv.Normal{Mu: 6.0, Sigma: 1.5, Src: src},
		windSpeed:  distuv.Weibull{K: 2.0, Lambda: 7.0, Src: src},
		direction:  distuv.Uniform{Min: 0, Max: 360, Src: src},
		tempK:      distuv.Normal{Mu: 295, Sigma: 4, Src: src},
	}
}

func (m *conditionsModel) drawWaveHeight() float64 { return math.Abs(m.waveHeight.Rand()) }
func (m *conditionsModel) drawWavePeriod() float64 { return math.Max(1, m.wavePeriod.Rand()) }
func (m *conditionsModel) drawWindSpeed() float64  { return m.windSpeed.Rand() }
func (m *conditionsModel) drawDirection() float64  { return math.Floor(m.direction.Rand()) }

// hourlyTimes returns the 24 slot labels for the current UTC day in the
// Open-Meteo format.
func hourlyTimes(now time.Time) []string {
	day := now.UTC().Truncate(24 * time.Hour)
	labels := make([]string, 24)
	for i := range labels {
		labels[i] = day.Add(time.Duration(i) * time.Hour).Format("2006-01-02T15:04")
	}
	return labels
}

func series(n int, draw func() float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Round(draw()*100) / 100
	}
	return values
}

func (m *conditionsModel) marineHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"hourly": map[string]interface{}{
			"time":           hourlyTimes(time.Now()),
			"wave_height":    series(24, m.drawWaveHeight),
			"wave_period":    series(24, m.drawWavePeriod),
			"wave_direction": series(24, m.drawDirection),
		},
	})
}

func (m *conditionsModel) forecastHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"hourly": map[string]interface{}{
			"time":               hourlyTimes(time.Now()),
			"wind_speed_10m":     series(24, m.drawWindSpeed),
			"wind_direction_10m": series(24, m.drawDirection),
		},
	})
}

func (m *conditionsModel) openWeatherMapHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"wind": map[string]interface{}{
			"speed": math.Round(m.drawWindSpeed()*100) / 100,
			"deg":   m.drawDirection(),
		},
		"main": map[string]interface{}{
			"temp": math.Round(m.tempK.Rand()*100) / 100,
		},
	})
}

func (m *conditionsModel) isramarHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"datetime": time.Now().UTC().Format("2006-01-02 15:04"),
		"parameters": []map[string]interface{}{
			{
				"name":   "Significant wave height [m]",
				"values": []float64{math.Round(m.drawWaveHeight()*100) / 100},
			},
			{
				"name":   "Peak wave period [s]",
				"values": []float64{math.Round(m.drawWavePeriod()*10) / 10},
			},
		},
	})
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

func main() {
	addr := flag.String("addr", ":9100", "Listen address")
	seed := flag.Uint64("seed", 0, "Random seed; 0 derives one from the clock")
	flag.Parse()

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	model := newConditionsModel(*seed)

	srv := http.NewServeMux()
	srv.HandleFunc("/marine-api.open-meteo.com/v1/marine", model.marineHandler)
	srv.HandleFunc("/api.open-meteo.com/v1/forecast", model.forecastHandler)
	srv.HandleFunc("/api.openweathermap.org/data/2.5/weather", model.openWeatherMapHandler)
	srv.HandleFunc("/isramar.ocean.org.il/isramar2009/station_data/json/Hadera.json", model.isramarHandler)

	fmt.Printf("swell-simulator listening on %s (seed %d)\n", *addr, *seed)
	if err := http.ListenAndServe(*addr, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
