// Command conditions-export dumps the conditions store as CSV on
// stdout, one row per device joined with its owner and the latest
// conditions for the owner's location. Useful for support queries and
// ad-hoc analysis without poking at the database by hand.
package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

const exportQuery = `
SELECT u.email, u.location, u.theme,
       d.hardware_id, d.last_poll_time,
       c.wave_height_m, c.wave_period_s, c.wind_speed_mps, c.wind_direction_deg, c.last_updated
FROM devices d
JOIN users u ON u.user_id = d.user_id
LEFT JOIN conditions c ON c.location = u.location
ORDER BY u.email, d.hardware_id`

func main() {
	dsn := flag.String("dsn", "", "PostgreSQL connection string (or SEAGLOW_DATABASE_URL)")
	flag.Parse()

	if *dsn == "" {
		*dsn = os.Getenv("SEAGLOW_DATABASE_URL")
	}
	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "a connection string is required: pass -dsn or set SEAGLOW_DATABASE_URL")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", *dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := export(db, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
}

func export(db *sql.DB, out io.Writer) error {
	rows, err := db.Query(exportQuery)
	if err != nil {
		return err
	}
	defer rows.Close()

	w := csv.NewWriter(out)
	if err := w.Write([]string{
		"email", "location", "theme",
		"hardware_id", "last_poll_time",
		"wave_height_m", "wave_period_s", "wind_speed_mps", "wind_direction_deg", "last_updated",
	}); err != nil {
		return err
	}

	for rows.Next() {
		var (
			email, location, theme string
			hardwareID             int64
			lastPollTime           sql.NullTime
			waveHeight             sql.NullFloat64
			wavePeriod             sql.NullFloat64
			windSpeed              sql.NullFloat64
			windDirection          sql.NullFloat64
			lastUpdated            sql.NullTime
		)
		if err := rows.Scan(&email, &location, &theme,
			&hardwareID, &lastPollTime,
			&waveHeight, &wavePeriod, &windSpeed, &windDirection, &lastUpdated); err != nil {
			return err
		}

		record := []string{
			email, location, theme,
			strconv.FormatInt(hardwareID, 10),
			formatTime(lastPollTime),
			formatFloat(waveHeight),
			formatFloat(wavePeriod),
			formatFloat(windSpeed),
			formatFloat(windDirection),
			formatTime(lastUpdated),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func formatTime(v sql.NullTime) string {
	if !v.Valid {
		return ""
	}
	return v.Time.UTC().Format(time.RFC3339)
}
