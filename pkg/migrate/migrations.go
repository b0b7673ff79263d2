package migrate

import "fmt"

// Conditions returns the shipped schema for the conditions store in
// version order. The users and devices tables are written by the web UI;
// they are created here so a fresh deployment has the complete shared
// schema before either writer starts.
func Conditions(dialect Dialect) []Migration {
	serial := "BIGSERIAL"
	jsonType := "JSONB"
	timestampType := "TIMESTAMPTZ"
	emailColumn := "email TEXT NOT NULL"
	emailIndex := "CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_ci ON users (LOWER(email));"

	if dialect == DialectSQLite {
		// SQLite autoincrements INTEGER PRIMARY KEY and has no JSONB or
		// timezone-aware timestamps; NOCASE covers the case-insensitive
		// email uniqueness without an expression index.
		serial = "INTEGER"
		jsonType = "TEXT"
		timestampType = "TIMESTAMP"
		emailColumn = "email TEXT NOT NULL UNIQUE COLLATE NOCASE"
		emailIndex = ""
	}

	return []Migration{
		{
			Version: 1,
			Name:    "create_users",
			UpSQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
				user_id %s PRIMARY KEY,
				username TEXT NOT NULL,
				%s,
				password_hash TEXT NOT NULL,
				location TEXT NOT NULL DEFAULT '',
				theme TEXT NOT NULL DEFAULT 'day',
				preferred_output TEXT NOT NULL DEFAULT 'meters',
				wave_threshold_m DOUBLE PRECISION NOT NULL DEFAULT 1.0,
				wave_threshold_max_m DOUBLE PRECISION,
				wind_threshold_knots DOUBLE PRECISION NOT NULL DEFAULT 15.0,
				wind_threshold_max_knots DOUBLE PRECISION,
				brightness_level DOUBLE PRECISION NOT NULL DEFAULT 1.0,
				off_times_enabled BOOLEAN NOT NULL DEFAULT FALSE,
				off_time_start TEXT,
				off_time_end TEXT,
				is_admin BOOLEAN NOT NULL DEFAULT FALSE
			);
			%s`, serial, emailColumn, emailIndex),
			DownSQL: `DROP TABLE IF EXISTS users;`,
		},
		{
			Version: 2,
			Name:    "create_devices",
			UpSQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS devices (
				device_id %s PRIMARY KEY,
				user_id BIGINT NOT NULL UNIQUE REFERENCES users(user_id),
				hardware_id BIGINT NOT NULL UNIQUE,
				last_poll_time %s
			);`, serial, timestampType),
			DownSQL: `DROP TABLE IF EXISTS devices;`,
		},
		{
			Version: 3,
			Name:    "create_conditions",
			UpSQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS conditions (
				location TEXT PRIMARY KEY,
				wave_height_m DOUBLE PRECISION,
				wave_period_s DOUBLE PRECISION,
				wind_speed_mps DOUBLE PRECISION,
				wind_direction_deg DOUBLE PRECISION,
				last_updated %s NOT NULL
			);`, timestampType),
			DownSQL: `DROP TABLE IF EXISTS conditions;`,
		},
		{
			Version: 4,
			Name:    "create_ingest_cycles",
			UpSQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ingest_cycles (
				cycle_id TEXT PRIMARY KEY,
				started_at %[1]s NOT NULL,
				finished_at %[1]s NOT NULL,
				locations_processed INTEGER NOT NULL DEFAULT 0,
				locations_written INTEGER NOT NULL DEFAULT 0,
				external_calls INTEGER NOT NULL DEFAULT 0,
				errors %[2]s NOT NULL DEFAULT '[]'
			);`, timestampType, jsonType),
			DownSQL: `DROP TABLE IF EXISTS ingest_cycles;`,
		},
	}
}
