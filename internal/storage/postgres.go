package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresDB wraps a PostgreSQL connection pool for the export log.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// Export is one produced ADES file: where it went, what it contained and
// when it was made.
type Export struct {
	ID         int64
	Path       string
	Station    string
	RowCount   int
	Submitter  string
	ProducedAt time.Time
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Pool returns the underlying connection pool for direct queries.
func (d *PostgresDB) Pool() *pgxpool.Pool {
	return d.pool
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// CreateSchema creates the export log tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		id              BIGSERIAL PRIMARY KEY,
		path            TEXT NOT NULL,
		station         TEXT NOT NULL,
		row_count       INTEGER NOT NULL,
		submitter       TEXT NOT NULL,
		produced_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_exports_station ON exports(station);
	CREATE INDEX IF NOT EXISTS idx_exports_produced ON exports(produced_at);
	`

	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create exports schema: %w", err)
	}
	return nil
}

// RecordExport appends one produced file to the log.
func (d *PostgresDB) RecordExport(ctx context.Context, e Export) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO exports (path, station, row_count, submitter)
		VALUES ($1, $2, $3, $4)`,
		e.Path, e.Station, e.RowCount, e.Submitter)
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

// ListExports returns the most recent exports, newest first.
func (d *PostgresDB) ListExports(ctx context.Context, limit int) ([]Export, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.pool.Query(ctx, `
		SELECT id, path, station, row_count, submitter, produced_at
		FROM exports
		ORDER BY produced_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	var out []Export
	for rows.Next() {
		var e Export
		if err := rows.Scan(&e.ID, &e.Path, &e.Station, &e.RowCount, &e.Submitter, &e.ProducedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
