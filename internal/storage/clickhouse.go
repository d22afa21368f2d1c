package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"ades_exporter/internal/obs"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB wraps a ClickHouse connection for the detection archive.
// The archive keeps every detection batch the feed delivers, including
// ones that never make it into a submission, for later analytics.
type ClickHouseDB struct {
	conn driver.Conn
}

// Conn returns the underlying ClickHouse connection for direct queries.
func (d *ClickHouseDB) Conn() driver.Conn {
	return d.conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the detections table.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS detections (
		source          LowCardinality(String),
		stn             LowCardinality(String),
		perm_id         String,
		prov_id         String,
		trk_sub         String,
		mjd             Float64,
		ra              Float64,
		"dec"           Float64,
		rms_ra          Nullable(Float64),
		rms_dec         Nullable(Float64),
		mag             Float64,
		rms_mag         Nullable(Float64),
		band            LowCardinality(String),
		mode            LowCardinality(String),
		ast_cat         LowCardinality(String),
		remarks         String,
		received_at     DateTime64(3) DEFAULT now64(3)
	) ENGINE = MergeTree()
	ORDER BY (stn, mjd)
	`

	if err := d.conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create detections table: %w", err)
	}
	return nil
}

// InsertDetections archives a batch of detections from the named source.
func (d *ClickHouseDB) InsertDetections(ctx context.Context, source string, recs []obs.Observation) error {
	if len(recs) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO detections (source, stn, perm_id, prov_id, trk_sub, mjd, ra, "dec", rms_ra, rms_dec, mag, rms_mag, band, mode, ast_cat, remarks)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for i := range recs {
		o := &recs[i]
		err := batch.Append(
			source, o.Station, o.PermID, o.ProvID, o.TrkSub,
			o.MJD, o.RA, o.Dec, o.RMSRA, o.RMSDec,
			o.Mag, o.RMSMag, o.Band, o.Mode, o.AstCat, o.Remarks,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// CountDetections returns the total number of archived detections.
func (d *ClickHouseDB) CountDetections(ctx context.Context) (uint64, error) {
	var n uint64
	if err := d.conn.QueryRow(ctx, `SELECT COUNT(*) FROM detections`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count detections: %w", err)
	}
	return n, nil
}
