// Command migrate applies the conditions-store schema migrations. The
// daemon never touches the schema; run this (or seaglow-provisioner) at
// deploy time.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/seaglow/seaglow/pkg/migrate"
)

func main() {
	driver := flag.String("driver", "postgres", "Database driver: 'postgres' or 'sqlite'")
	dsn := flag.String("dsn", "", "Database connection string (or SEAGLOW_DATABASE_URL)")
	action := flag.String("action", "up", "Migration action: 'up', 'down', or 'status'")
	target := flag.Int("target", 0, "Target version for 'down'")
	flag.Parse()

	if *dsn == "" {
		*dsn = os.Getenv("SEAGLOW_DATABASE_URL")
	}
	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "a connection string is required: pass -dsn or set SEAGLOW_DATABASE_URL")
		os.Exit(1)
	}

	var dialect migrate.Dialect
	var driverName string
	switch *driver {
	case "postgres":
		dialect = migrate.DialectPostgres
		driverName = "pgx"
	case "sqlite":
		dialect = migrate.DialectSQLite
		driverName = "sqlite"
	default:
		fmt.Fprintf(os.Stderr, "unsupported driver %q: use 'postgres' or 'sqlite'\n", *driver)
		os.Exit(1)
	}

	db, err := sql.Open(driverName, *dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "error connecting to database: %v\n", err)
		os.Exit(1)
	}

	migrator := migrate.NewMigrator(db, dialect)
	migrations := migrate.Conditions(dialect)

	switch *action {
	case "up":
		if err := migrator.Up(migrations); err != nil {
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		version, _ := migrator.CurrentVersion()
		fmt.Printf("schema is at version %d\n", version)

	case "down":
		if err := migrator.Down(migrations, *target); err != nil {
			fmt.Fprintf(os.Stderr, "rollback failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("schema rolled back to version %d\n", *target)

	case "status":
		statuses, err := migrator.ListStatus(migrations)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading status: %v\n", err)
			os.Exit(1)
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			fmt.Printf("%3d  %-22s %s\n", s.Migration.Version, s.Migration.Name, state)
		}

	default:
		fmt.Fprintf(os.Stderr, "unsupported action %q: use 'up', 'down', or 'status'\n", *action)
		os.Exit(1)
	}
}
