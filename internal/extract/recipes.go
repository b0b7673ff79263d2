package extract

// FieldRecipe describes how one canonical field is pulled out of a
// provider document.
type FieldRecipe struct {
	// Path navigates string keys from the document root. A nil Path means
	// the field has no extraction source and is served by Fallback alone.
	Path []string
	// Hourly marks a path whose final element is an hourly series array;
	// the transformer indexes it with the current UTC hour.
	Hourly bool
	// Convert maps the raw extracted value. A conversion failure is
	// logged and the raw value kept.
	Convert func(float64) (float64, error)
	// Fallback fills the field when extraction yields nothing.
	Fallback *float64
}

// Recipe is the full extraction rule set for one provider kind.
type Recipe map[Field]FieldRecipe

var recipes = map[Kind]Recipe{
	// Current weather only; OpenWeatherMap has no marine data, so the wave
	// fields fall back to zero and rely on merge priority to be displaced
	// by a real wave source.
	KindOpenWeatherMap: {
		FieldWindSpeedMPS:     {Path: []string{"wind", "speed"}},
		FieldWindDirectionDeg: {Path: []string{"wind", "deg"}},
		FieldTemperatureC:     {Path: []string{"main", "temp"}, Convert: kelvinToCelsius},
		FieldWaveHeightM:      {Fallback: f64(0)},
		FieldWavePeriodS:      {Fallback: f64(0)},
	},
	KindOpenMeteoMarine: {
		FieldWaveHeightM:      {Path: []string{"hourly", "wave_height"}, Hourly: true},
		FieldWavePeriodS:      {Path: []string{"hourly", "wave_period"}, Hourly: true},
		FieldWaveDirectionDeg: {Path: []string{"hourly", "wave_direction"}, Hourly: true},
	},
	KindOpenMeteoForecast: {
		FieldWindSpeedMPS:     {Path: []string{"hourly", "wind_speed_10m"}, Hourly: true},
		FieldWindDirectionDeg: {Path: []string{"hourly", "wind_direction_10m"}, Hourly: true},
	},
	// KindIsramar uses a custom extractor, not a path recipe.
}

func kelvinToCelsius(k float64) (float64, error) {
	return k - 273.15, nil
}

func f64(v float64) *float64 {
	return &v
}
