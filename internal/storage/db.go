// Package storage provides persistent storage for observations awaiting
// submission and for the log of produced ADES files. SQLite holds the
// local observation queue, ClickHouse archives raw detection batches for
// analytics, and PostgreSQL records what was exported when.
package storage

// Config holds connection settings for all backends. Binaries use only
// the backends they were given flags for.
type Config struct {
	SQLitePath string
	ClickHouse ClickHouseConfig
	Postgres   PostgresConfig
}

// DefaultConfig returns a configuration with default local development
// settings.
func DefaultConfig() Config {
	return Config{
		SQLitePath: "observations.db",
		ClickHouse: ClickHouseConfig{
			Host:     "localhost",
			Port:     9000,
			Database: "survey",
			User:     "default",
			Password: "",
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "submissions",
			User:     "ades",
			Password: "ades",
		},
	}
}
