// Command-line entry point for the ADES exporter.
//
// Reads candidate observations either from a JSONL file (one observation
// object per line, stdin by default) or from the local SQLite queue, and
// writes a Minor Planet Center submittable ADES PSV file. Submission
// metadata (observatory, submitter, telescope, observers, measurers)
// comes from a JSON config file merged over built-in defaults. When the
// -pg-* flags are given the produced file is recorded in the export log.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"ades_exporter/internal/ades"
	"ades_exporter/internal/config"
	"ades_exporter/internal/obs"
	"ades_exporter/internal/storage"
)

func main() {
	input := flag.String("input", "", "Input JSONL file (default: stdin; ignored with -sqlite)")
	sqlitePath := flag.String("sqlite", "", "Read pending observations from this SQLite queue instead of JSONL")
	station := flag.String("station", "", "Only export queued observations from this station (with -sqlite)")
	limit := flag.Int("limit", 0, "Maximum queued observations to export, 0 = all (with -sqlite)")
	mark := flag.Bool("mark", false, "Mark queued observations exported after a successful write (with -sqlite)")

	output := flag.String("output", "", "Output ADES PSV file (required)")
	configPath := flag.String("config", "", "Submission metadata JSON file (default: built-in defaults)")
	scale := flag.String("scale", "utc", "Time scale of the mjd values (utc, tai or tt)")
	precision := flag.Int("precision", 9, "Fractional-second digits on obsTime, 1-9 (0 falls back to 9)")
	comment := flag.String("comment", "", "Comment line to add to the header")

	pgHost := flag.String("pg-host", "", "PostgreSQL host for the export log (empty: no log)")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "ades", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "", "PostgreSQL password")
	pgDB := flag.String("pg-db", "submissions", "PostgreSQL database")

	showStats := flag.Bool("stats", false, "Print counters to stderr")

	flag.Parse()

	if *output == "" {
		fmt.Fprintln(os.Stderr, "-output is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	var (
		records []obs.Observation
		rowIDs  []int64
		queue   *storage.DB
	)

	if *sqlitePath != "" {
		var err error
		queue, err = storage.Open(*sqlitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open queue: %v\n", err)
			os.Exit(1)
		}
		defer queue.Close()

		pending, err := queue.ListPending(*station, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list pending observations: %v\n", err)
			os.Exit(1)
		}
		for _, p := range pending {
			records = append(records, p.Observation)
			rowIDs = append(rowIDs, p.RowID)
		}
	} else {
		var err error
		records, err = readJSONL(*input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read observations: %v\n", err)
			os.Exit(1)
		}
	}

	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "No observations to export")
		os.Exit(1)
	}

	table := obs.FromObservations(records)
	opts := ades.Options{
		MJDScale:         *scale,
		SecondsPrecision: *precision,
		Metadata:         cfg.Metadata(*comment),
	}

	if err := ades.Export(table, *output, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}

	if *mark && queue != nil {
		if err := queue.MarkExported(rowIDs); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to mark observations exported: %v\n", err)
		}
	}

	if *pgHost != "" {
		recordExport(storage.PostgresConfig{
			Host:     *pgHost,
			Port:     *pgPort,
			Database: *pgDB,
			User:     *pgUser,
			Password: *pgPassword,
		}, storage.Export{
			Path:      *output,
			Station:   exportStation(*station, records),
			RowCount:  len(records),
			Submitter: cfg.Submitter,
		})
	}

	if *showStats {
		fmt.Fprintf(os.Stderr, "Exported %d observations to %s\n", len(records), *output)
	}
}

// readJSONL reads one observation JSON object per line.
func readJSONL(path string) ([]obs.Observation, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	// Lines can be long; bump buffer (20MB).
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 20*1024*1024)

	var out []obs.Observation
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var o obs.Observation
		if err := json.Unmarshal([]byte(text), &o); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, o)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// exportStation picks the station recorded in the export log: the filter
// flag when given, otherwise the first record's station.
func exportStation(flagStation string, records []obs.Observation) string {
	if flagStation != "" {
		return flagStation
	}
	for i := range records {
		if records[i].Station != "" {
			return records[i].Station
		}
	}
	return ""
}

func recordExport(cfg storage.PostgresConfig, e storage.Export) {
	ctx := context.Background()
	pg, err := storage.OpenPostgres(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: export log unavailable: %v\n", err)
		return
	}
	defer pg.Close()

	if err := pg.CreateSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: export log schema: %v\n", err)
		return
	}
	if err := pg.RecordExport(ctx, e); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record export: %v\n", err)
	}
}
