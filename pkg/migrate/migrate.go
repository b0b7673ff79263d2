// Package migrate applies versioned schema migrations over database/sql.
// The daemon itself never migrates; the schema is shared with the web UI
// and only the dedicated tooling may change it.
package migrate

import (
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Dialect selects the SQL flavor for generated DDL and placeholders.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Migration represents a single database migration.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Status pairs a migration with whether it has been applied.
type Status struct {
	Migration Migration
	Applied   bool
}

// Migrator handles the execution of migrations against one database.
type Migrator struct {
	db      *sql.DB
	dialect Dialect
}

// NewMigrator creates a migrator for the given connection.
func NewMigrator(db *sql.DB, dialect Dialect) *Migrator {
	return &Migrator{db: db, dialect: dialect}
}

func (m *Migrator) placeholder(n int) string {
	if m.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (m *Migrator) ensureTable() error {
	_, err := m.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}
	return nil
}

// CurrentVersion returns the highest applied migration version, 0 when
// none have been applied.
func (m *Migrator) CurrentVersion() (int, error) {
	if err := m.ensureTable(); err != nil {
		return 0, err
	}
	var version int
	err := m.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("reading current version: %w", err)
	}
	return version, nil
}

// Up applies every pending migration in ascending version order.
func (m *Migrator) Up(migrations []Migration) error {
	current, err := m.CurrentVersion()
	if err != nil {
		return err
	}

	for _, migration := range sortedCopy(migrations, true) {
		if migration.Version <= current {
			continue
		}
		if err := m.apply(migration, true); err != nil {
			return fmt.Errorf("applying migration %d (%s): %w", migration.Version, migration.Name, err)
		}
	}
	return nil
}

// Down reverts applied migrations in descending order until the schema is
// at targetVersion.
func (m *Migrator) Down(migrations []Migration, targetVersion int) error {
	current, err := m.CurrentVersion()
	if err != nil {
		return err
	}
	if targetVersion >= current {
		return fmt.Errorf("target version %d must be less than current version %d", targetVersion, current)
	}

	for _, migration := range sortedCopy(migrations, false) {
		if migration.Version <= targetVersion || migration.Version > current {
			continue
		}
		if err := m.apply(migration, false); err != nil {
			return fmt.Errorf("reverting migration %d (%s): %w", migration.Version, migration.Name, err)
		}
	}
	return nil
}

// ListStatus reports each known migration with its applied state.
func (m *Migrator) ListStatus(migrations []Migration) ([]Status, error) {
	if err := m.ensureTable(); err != nil {
		return nil, err
	}

	applied := make(map[int]bool)
	rows, err := m.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("listing applied migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sorted := sortedCopy(migrations, true)
	statuses := make([]Status, 0, len(sorted))
	for _, migration := range sorted {
		statuses = append(statuses, Status{Migration: migration, Applied: applied[migration.Version]})
	}
	return statuses, nil
}

// apply runs one migration (up or down) with its bookkeeping inside a
// single transaction.
func (m *Migrator) apply(migration Migration, up bool) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if up {
		if _, err := tx.Exec(migration.UpSQL); err != nil {
			return err
		}
		insert := fmt.Sprintf(`INSERT INTO schema_migrations (version, name, applied_at) VALUES (%s, %s, %s)`,
			m.placeholder(1), m.placeholder(2), m.placeholder(3))
		if _, err := tx.Exec(insert, migration.Version, migration.Name, time.Now().UTC()); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(migration.DownSQL); err != nil {
			return err
		}
		remove := fmt.Sprintf(`DELETE FROM schema_migrations WHERE version = %s`, m.placeholder(1))
		if _, err := tx.Exec(remove, migration.Version); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func sortedCopy(migrations []Migration, ascending bool) []Migration {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool {
		if ascending {
			return sorted[i].Version < sorted[j].Version
		}
		return sorted[i].Version > sorted[j].Version
	})
	return sorted
}
