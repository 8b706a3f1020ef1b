// migrate-to-postgres copies saved reports from SQLite to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-to-postgres \
//	    -sqlite data/falldice.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user falldice \
//	    -pg-password falldice \
//	    -pg-database falldice
package main

import (
	"flag"
	"log"

	"github.com/geniusisme/falldice/internal/database"
)

func main() {
	defaults := database.DefaultPostgresConfig()

	sqlitePath := flag.String("sqlite", "data/falldice.db", "Path to SQLite database")
	pgHost := flag.String("pg-host", defaults.Host, "PostgreSQL host")
	pgPort := flag.Int("pg-port", defaults.Port, "PostgreSQL port")
	pgUser := flag.String("pg-user", defaults.User, "PostgreSQL user")
	pgPassword := flag.String("pg-password", defaults.Password, "PostgreSQL password")
	pgDatabase := flag.String("pg-database", defaults.Database, "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", defaults.SSLMode, "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("SQLite to PostgreSQL Migration Tool")
	log.Println("====================================")

	log.Printf("Opening SQLite database: %s", *sqlitePath)
	src, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	defer src.Close()

	records, err := src.ListReports(0)
	if err != nil {
		log.Fatalf("Failed to read reports: %v", err)
	}
	log.Printf("Found %d reports", len(records))

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
		for _, rec := range records {
			log.Printf("  would copy %q (%s)", rec.Entry.Name, rec.Entry.Fingerprint[:min(12, len(rec.Entry.Fingerprint))])
		}
		return
	}

	pg := defaults
	pg.Host = *pgHost
	pg.Port = *pgPort
	pg.User = *pgUser
	pg.Password = *pgPassword
	pg.Database = *pgDatabase
	pg.SSLMode = *pgSSLMode

	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", pg.User, pg.Host, pg.Port, pg.Database)
	dst, err := database.OpenWithConfig(database.Config{Driver: "postgres", Postgres: pg})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer dst.Close()

	// ListReports returns newest first; import oldest first so ids keep their order.
	var copied, skipped int
	for i := len(records) - 1; i >= 0; i-- {
		inserted, err := dst.ImportReport(records[i])
		if err != nil {
			log.Fatalf("Failed to copy %q: %v", records[i].Entry.Name, err)
		}
		if inserted {
			copied++
		} else {
			skipped++
		}
	}

	log.Println("====================================")
	log.Printf("Migration complete! Copied %d reports, %d already present", copied, skipped)
}
