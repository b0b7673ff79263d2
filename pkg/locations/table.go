package locations

// The shipped location table. Adding a coastal location means adding an
// entry here with its sources in priority order; the ingestion engine and
// device API pick it up with no further wiring.
//
// Priorities: the Isramar buoy is authoritative for wave data where it
// exists, so it carries priority 1. The two Open-Meteo feeds cover
// disjoint fields (marine: waves, forecast: wind) and share a priority.
// OpenWeatherMap is the last-resort wind source and only joins when an
// API key is configured.
var locationTable = map[string]struct {
	timezone string
	coords   Coordinates
	sources  []Source
}{
	"Hadera, Israel": {
		timezone: "Asia/Jerusalem",
		coords:   Coordinates{Latitude: 32.4340, Longitude: 34.8877},
		sources: []Source{
			{
				Name:     "isramar",
				URL:      "https://isramar.ocean.org.il/isramar2009/station_data/json/Hadera.json",
				Priority: 1,
			},
			{
				Name:     "open-meteo-marine",
				URL:      "https://marine-api.open-meteo.com/v1/marine?latitude=32.434&longitude=34.888&hourly=wave_height,wave_period,wave_direction&timezone=UTC",
				Priority: 2,
			},
			{
				Name:     "open-meteo-forecast",
				URL:      "https://api.open-meteo.com/v1/forecast?latitude=32.434&longitude=34.888&hourly=wind_speed_10m,wind_direction_10m&wind_speed_unit=ms&timezone=UTC",
				Priority: 2,
			},
			{
				Name:     "openweathermap",
				URL:      "https://api.openweathermap.org/data/2.5/weather?lat=32.434&lon=34.888&appid={api_key}",
				Priority: 3,
			},
		},
	},
	"Tel Aviv, Israel": {
		timezone: "Asia/Jerusalem",
		coords:   Coordinates{Latitude: 32.0853, Longitude: 34.7818},
		sources: []Source{
			{
				Name:     "open-meteo-marine",
				URL:      "https://marine-api.open-meteo.com/v1/marine?latitude=32.085&longitude=34.782&hourly=wave_height,wave_period,wave_direction&timezone=UTC",
				Priority: 1,
			},
			{
				Name:     "open-meteo-forecast",
				URL:      "https://api.open-meteo.com/v1/forecast?latitude=32.085&longitude=34.782&hourly=wind_speed_10m,wind_direction_10m&wind_speed_unit=ms&timezone=UTC",
				Priority: 1,
			},
			{
				Name:     "openweathermap",
				URL:      "https://api.openweathermap.org/data/2.5/weather?lat=32.085&lon=34.782&appid={api_key}",
				Priority: 2,
			},
		},
	},
	"Haifa, Israel": {
		timezone: "Asia/Jerusalem",
		coords:   Coordinates{Latitude: 32.7940, Longitude: 34.9896},
		sources: []Source{
			{
				Name:     "open-meteo-marine",
				URL:      "https://marine-api.open-meteo.com/v1/marine?latitude=32.794&longitude=34.990&hourly=wave_height,wave_period,wave_direction&timezone=UTC",
				Priority: 1,
			},
			{
				Name:     "open-meteo-forecast",
				URL:      "https://api.open-meteo.com/v1/forecast?latitude=32.794&longitude=34.990&hourly=wind_speed_10m,wind_direction_10m&wind_speed_unit=ms&timezone=UTC",
				Priority: 1,
			},
			{
				Name:     "openweathermap",
				URL:      "https://api.openweathermap.org/data/2.5/weather?lat=32.794&lon=34.990&appid={api_key}",
				Priority: 2,
			},
		},
	},
	"Ashdod, Israel": {
		timezone: "Asia/Jerusalem",
		coords:   Coordinates{Latitude: 31.8014, Longitude: 34.6435},
		sources: []Source{
			{
				Name:     "open-meteo-marine",
				URL:      "https://marine-api.open-meteo.com/v1/marine?latitude=31.801&longitude=34.644&hourly=wave_height,wave_period,wave_direction&timezone=UTC",
				Priority: 1,
			},
			{
				Name:     "open-meteo-forecast",
				URL:      "https://api.open-meteo.com/v1/forecast?latitude=31.801&longitude=34.644&hourly=wind_speed_10m,wind_direction_10m&wind_speed_unit=ms&timezone=UTC",
				Priority: 1,
			},
			{
				Name:     "openweathermap",
				URL:      "https://api.openweathermap.org/data/2.5/weather?lat=31.801&lon=34.644&appid={api_key}",
				Priority: 2,
			},
		},
	},
	"Netanya, Israel": {
		timezone: "Asia/Jerusalem",
		coords:   Coordinates{Latitude: 32.3215, Longitude: 34.8532},
		sources: []Source{
			{
				Name:     "open-meteo-marine",
				URL:      "https://marine-api.open-meteo.com/v1/marine?latitude=32.322&longitude=34.853&hourly=wave_height,wave_period,wave_direction&timezone=UTC",
				Priority: 1,
			},
			{
				Name:     "open-meteo-forecast",
				URL:      "https://api.open-meteo.com/v1/forecast?latitude=32.322&longitude=34.853&hourly=wind_speed_10m,wind_direction_10m&wind_speed_unit=ms&timezone=UTC",
				Priority: 1,
			},
			{
				Name:     "openweathermap",
				URL:      "https://api.openweathermap.org/data/2.5/weather?lat=32.322&lon=34.853&appid={api_key}",
				Priority: 2,
			},
		},
	},
}
