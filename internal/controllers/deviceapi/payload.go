package deviceapi

import (
	"math"
	"time"

	"github.com/seaglow/seaglow/internal/database"
	"github.com/seaglow/seaglow/pkg/solar"
)

// DevicePayload is the wire contract the lamp firmware renders. Every
// field is always present; null sensor readings are coerced to zero so
// the firmware sees a total schema on every poll.
type DevicePayload struct {
	WaveHeightCm            int     `json:"wave_height_cm"`
	WavePeriodS             float64 `json:"wave_period_s"`
	WindSpeedMps            int     `json:"wind_speed_mps"`
	WindDirectionDeg        int     `json:"wind_direction_deg"`
	WaveThresholdCm         int     `json:"wave_threshold_cm"`
	WindSpeedThresholdKnots int     `json:"wind_speed_threshold_knots"`
	LedTheme                string  `json:"led_theme"`
	QuietHoursActive        bool    `json:"quiet_hours_active"`
	OffHoursActive          bool    `json:"off_hours_active"`
	SunsetAnimation         bool    `json:"sunset_animation"`
	DayOfYear               int     `json:"day_of_year"`
	LastUpdated             string  `json:"last_updated"`
	DataAvailable           bool    `json:"data_available"`
}

const (
	defaultTheme = "day"

	// epochTimestamp marks "no conditions row" alongside
	// data_available=false; the firmware treats the pair as "render
	// nothing yet".
	epochTimestamp = "1970-01-01T00:00:00Z"

	// unreachableThreshold simulates a threshold range on firmware that
	// only understands a single minimum: once the observed value passes
	// the user's max, the device is told a floor it can never reach.
	unreachableThreshold = 9999

	knotsPerMeterPerSecond = 1.94384
)

// buildPayload derives the full device payload from the joined
// user/device/conditions row at one instant.
func (h *Handlers) buildPayload(dc *database.DeviceContext, now time.Time) DevicePayload {
	user := dc.User
	conditions := dc.Conditions
	local := h.localTime(user.Location, now)

	payload := DevicePayload{
		LedTheme:         defaultTheme,
		QuietHoursActive: hourInWindow(local.Hour(), h.cfg.QuietHoursStart, h.cfg.QuietHoursEnd),
		OffHoursActive:   offHoursActive(user, local),
		LastUpdated:      epochTimestamp,
	}
	if user.Theme != "" {
		payload.LedTheme = user.Theme
	}

	sunset := h.sunsetResult(user.Location, now, local)
	payload.SunsetAnimation = sunset.Trigger
	payload.DayOfYear = sunset.DayOfYear

	if conditions != nil {
		payload.DataAvailable = true
		payload.LastUpdated = conditions.LastUpdated.UTC().Format(time.RFC3339)
		if conditions.WaveHeightM != nil {
			payload.WaveHeightCm = int(math.Round(*conditions.WaveHeightM * 100))
		}
		if conditions.WavePeriodS != nil {
			payload.WavePeriodS = *conditions.WavePeriodS
		}
		if conditions.WindSpeedMPS != nil {
			payload.WindSpeedMps = int(math.Round(*conditions.WindSpeedMPS))
		}
		if conditions.WindDirectionDeg != nil {
			payload.WindDirectionDeg = int(math.Round(*conditions.WindDirectionDeg)) % 360
		}
	}

	payload.WaveThresholdCm = waveThresholdCm(user, conditions)
	payload.WindSpeedThresholdKnots = windThresholdKnots(user, conditions)

	return payload
}

// localTime resolves the user's wall clock. The registry is the only
// timezone source; an unknown location degrades to UTC, which only skews
// the derived flags, never the data.
func (h *Handlers) localTime(location string, now time.Time) time.Time {
	tzName, ok := h.registry.Timezone(location)
	if !ok {
		h.logger.Warnf("no timezone registered for %q, deriving flags in UTC", location)
		return now.UTC()
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		h.logger.Warnf("invalid timezone %q for %q, deriving flags in UTC", tzName, location)
		return now.UTC()
	}
	return now.In(loc)
}

func (h *Handlers) sunsetResult(location string, now, local time.Time) solar.Result {
	coords, ok := h.registry.Coordinates(location)
	if !ok {
		return solar.Result{DayOfYear: local.YearDay(), SunsetLocal: "Unknown"}
	}
	tzName, _ := h.registry.Timezone(location)
	return solar.Sunset(coords.Latitude, coords.Longitude, tzName, now, h.cfg.SunsetWindowMinutes)
}

// hourInWindow reports whether hour falls in [start, end), where a start
// after the end means the window crosses midnight.
func hourInWindow(hour, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

// offHoursActive evaluates the user's configured off interval against
// the local wall clock. Start equal to end is an empty window.
func offHoursActive(user database.User, local time.Time) bool {
	if !user.OffTimesEnabled || user.OffTimeStart == nil || user.OffTimeEnd == nil {
		return false
	}

	start, okStart := parseClock(*user.OffTimeStart)
	end, okEnd := parseClock(*user.OffTimeEnd)
	if !okStart || !okEnd || start == end {
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	if start < end {
		return minutes >= start && minutes < end
	}
	return minutes >= start || minutes < end
}

// parseClock turns "HH:MM" (seconds tolerated) into minutes after
// midnight.
func parseClock(s string) (int, bool) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

func waveThresholdCm(user database.User, conditions *database.Conditions) int {
	if user.WaveThresholdMaxM != nil && conditions != nil && conditions.WaveHeightM != nil &&
		*conditions.WaveHeightM > *user.WaveThresholdMaxM {
		return unreachableThreshold
	}
	return int(math.Round(user.WaveThresholdM * 100))
}

func windThresholdKnots(user database.User, conditions *database.Conditions) int {
	if user.WindThresholdMaxKnots != nil && conditions != nil && conditions.WindSpeedMPS != nil &&
		*conditions.WindSpeedMPS*knotsPerMeterPerSecond > *user.WindThresholdMaxKnots {
		return unreachableThreshold
	}
	return int(math.Round(user.WindThresholdKnots))
}
