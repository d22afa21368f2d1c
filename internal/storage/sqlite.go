package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"ades_exporter/internal/obs"
)

// StoredObservation is an observation together with its queue row id,
// needed to mark it exported later.
type StoredObservation struct {
	RowID int64
	obs.Observation
}

// DB wraps a SQLite database holding the local observation queue.
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		perm_id TEXT,
		prov_id TEXT,
		trk_sub TEXT,
		mjd REAL NOT NULL,
		ra REAL NOT NULL,
		dec REAL NOT NULL,
		rms_ra REAL,
		rms_dec REAL,
		mag REAL NOT NULL,
		rms_mag REAL,
		band TEXT NOT NULL,
		stn TEXT NOT NULL,
		mode TEXT NOT NULL,
		ast_cat TEXT NOT NULL,
		remarks TEXT,
		exported_at TEXT,
		created_at TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_observations_stn ON observations(stn);
	CREATE INDEX IF NOT EXISTS idx_observations_mjd ON observations(mjd);
	CREATE INDEX IF NOT EXISTS idx_observations_trk_sub ON observations(trk_sub);
	CREATE INDEX IF NOT EXISTS idx_observations_exported ON observations(exported_at);
	`

	_, err := db.Exec(schema)
	return err
}

// InsertObservations appends a batch to the queue in one transaction.
func (d *DB) InsertObservations(recs []obs.Observation) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO observations
			(perm_id, prov_id, trk_sub, mjd, ra, dec, rms_ra, rms_dec,
			 mag, rms_mag, band, stn, mode, ast_cat, remarks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range recs {
		o := &recs[i]
		_, err := stmt.Exec(
			nullString(o.PermID), nullString(o.ProvID), nullString(o.TrkSub),
			o.MJD, o.RA, o.Dec,
			nullFloat(o.RMSRA), nullFloat(o.RMSDec),
			o.Mag, nullFloat(o.RMSMag),
			o.Band, o.Station, o.Mode, o.AstCat,
			nullString(o.Remarks),
		)
		if err != nil {
			return fmt.Errorf("insert observation %s: %w", o.ID(), err)
		}
	}

	return tx.Commit()
}

// ListPending returns queued observations not yet exported, oldest
// observation time first. An empty station matches all stations; a
// limit <= 0 means no limit.
func (d *DB) ListPending(station string, limit int) ([]StoredObservation, error) {
	query := `
		SELECT id, perm_id, prov_id, trk_sub, mjd, ra, dec, rms_ra, rms_dec,
		       mag, rms_mag, band, stn, mode, ast_cat, remarks
		FROM observations
		WHERE exported_at IS NULL`
	args := []any{}
	if station != "" {
		query += " AND stn = ?"
		args = append(args, station)
	}
	query += " ORDER BY mjd"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending: %w", err)
	}
	defer rows.Close()

	var out []StoredObservation
	for rows.Next() {
		var s StoredObservation
		var permID, provID, trkSub, remarks sql.NullString
		var rmsRA, rmsDec, rmsMag sql.NullFloat64
		err := rows.Scan(
			&s.RowID, &permID, &provID, &trkSub,
			&s.MJD, &s.RA, &s.Dec, &rmsRA, &rmsDec,
			&s.Mag, &rmsMag, &s.Band, &s.Station, &s.Mode, &s.AstCat, &remarks,
		)
		if err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		s.PermID = permID.String
		s.ProvID = provID.String
		s.TrkSub = trkSub.String
		s.Remarks = remarks.String
		s.RMSRA = floatPtr(rmsRA)
		s.RMSDec = floatPtr(rmsDec)
		s.RMSMag = floatPtr(rmsMag)
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkExported stamps the given queue rows with the current time.
func (d *DB) MarkExported(rowIDs []int64) error {
	if len(rowIDs) == 0 {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`UPDATE observations SET exported_at = datetime('now') WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare update: %w", err)
	}
	defer stmt.Close()

	for _, id := range rowIDs {
		if _, err := stmt.Exec(id); err != nil {
			return fmt.Errorf("mark exported %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// CountPending returns the number of observations not yet exported.
func (d *DB) CountPending() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM observations WHERE exported_at IS NULL`).Scan(&n)
	return n, err
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
