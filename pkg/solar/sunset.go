// Package solar computes local sunset times for the lamp's sunset
// animation. Pure functions of (coordinates, timezone, instant); no
// registry lookups and no error returns — failures degrade to a result
// the device can always render.
package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Result is the sunset decision for one instant at one place.
type Result struct {
	// Trigger is true when the instant falls inside the animation window
	// around sunset.
	Trigger bool
	// DayOfYear is 1-366 in the location's local time.
	DayOfYear int
	// SunsetLocal is today's sunset as "HH:MM" local wall clock, or
	// "Unknown" when it could not be computed.
	SunsetLocal string
}

// Sunset never panics: bad coordinates, an unknown timezone, and polar
// day/night all return Trigger=false with SunsetLocal "Unknown".
func Sunset(latitude, longitude float64, timezone string, now time.Time, windowMinutes int) Result {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	unknown := Result{DayOfYear: local.YearDay(), SunsetLocal: "Unknown"}

	if math.Abs(latitude) > 90 || math.Abs(longitude) > 180 || windowMinutes < 0 {
		return unknown
	}

	sunsetUTC, ok := sunsetMinutesUTC(latitude, longitude, now)
	if !ok {
		return unknown
	}

	utcDay := now.UTC()
	midnight := time.Date(utcDay.Year(), utcDay.Month(), utcDay.Day(), 0, 0, 0, 0, time.UTC)
	sunset := midnight.Add(time.Duration(sunsetUTC * float64(time.Minute)))

	window := time.Duration(windowMinutes) * time.Minute
	diff := now.Sub(sunset)

	return Result{
		Trigger:     diff >= -window && diff <= window,
		DayOfYear:   local.YearDay(),
		SunsetLocal: sunset.In(loc).Format("15:04"),
	}
}

// sunsetMinutesUTC returns today's sunset in minutes after midnight UTC,
// or false for polar day/night. NOAA solar position formulation on the
// Julian-centuries time scale.
func sunsetMinutesUTC(latitude, longitude float64, now time.Time) (float64, bool) {
	jd := julian.TimeToJD(now.UTC())
	t := (jd - 2451545.0) / 36525.0

	// Geometric mean longitude and anomaly of the sun, degrees.
	l0 := math.Mod(280.46646+t*(36000.76983+t*0.0003032), 360)
	if l0 < 0 {
		l0 += 360
	}
	m := 357.52911 + t*(35999.05029-0.0001537*t)
	ecc := 0.016708634 - t*(0.000042037+0.0000001267*t)

	// Equation of center and apparent longitude.
	center := math.Sin(rad(m))*(1.914602-t*(0.004817+0.000014*t)) +
		math.Sin(rad(2*m))*(0.019993-0.000101*t) +
		math.Sin(rad(3*m))*0.000289
	omega := 125.04 - 1934.136*t
	lambda := l0 + center - 0.00569 - 0.00478*math.Sin(rad(omega))

	// Obliquity, corrected for nutation.
	obliq := 23.0 + (26.0+(21.448-t*(46.815+t*(0.00059-t*0.001813)))/60.0)/60.0
	obliqCorr := obliq + 0.00256*math.Cos(rad(omega))

	declination := math.Asin(math.Sin(rad(obliqCorr)) * math.Sin(rad(lambda)))

	// Equation of time, minutes.
	y := math.Tan(rad(obliqCorr / 2))
	y *= y
	eot := 4 * deg(y*math.Sin(2*rad(l0))-
		2*ecc*math.Sin(rad(m))+
		4*ecc*y*math.Sin(rad(m))*math.Cos(2*rad(l0))-
		0.5*y*y*math.Sin(4*rad(l0))-
		1.25*ecc*ecc*math.Sin(rad(2*m)))

	// Hour angle at sunset; zenith 90.833 degrees accounts for refraction
	// and the solar radius.
	latRad := rad(latitude)
	cosHA := math.Cos(rad(90.833))/(math.Cos(latRad)*math.Cos(declination)) -
		math.Tan(latRad)*math.Tan(declination)
	if cosHA < -1 || cosHA > 1 || math.IsNaN(cosHA) {
		return 0, false
	}
	hourAngle := deg(math.Acos(cosHA))

	solarNoon := 720 - 4*longitude - eot
	return solarNoon + 4*hourAngle, true
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }
