package database

import (
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresDialect implements Dialect for PostgreSQL databases.
type PostgresDialect struct{}

// DriverName returns "postgres" for the lib/pq driver.
func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// Placeholder returns "$N" for the given position (PostgreSQL uses numbered placeholders).
func (d *PostgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

func (d *PostgresDialect) AutoIncrementKey() string {
	return "id BIGSERIAL PRIMARY KEY"
}

// InitStatements pins the session time zone so stored timestamps compare in UTC.
func (d *PostgresDialect) InitStatements() []string {
	return []string{
		"SET TIME ZONE 'UTC'",
	}
}
