// Package main provides a tool to summarize the export log: which ADES
// files were produced, for which stations, and how many observations
// each submission carried.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"ades_exporter/internal/storage"
)

func main() {
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "ades", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "", "PostgreSQL password")
	pgDB := flag.String("pg-db", "submissions", "PostgreSQL database")

	limit := flag.Int("limit", 20, "Number of recent exports to list")

	flag.Parse()

	ctx := context.Background()

	pg, err := storage.OpenPostgres(ctx, storage.PostgresConfig{
		Host:     *pgHost,
		Port:     *pgPort,
		Database: *pgDB,
		User:     *pgUser,
		Password: *pgPassword,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	showExportStats(ctx, pg)

	exports, err := pg.ListExports(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing exports: %v\n", err)
		os.Exit(1)
	}
	if len(exports) == 0 {
		return
	}

	fmt.Println("\nRecent Exports:")
	fmt.Printf("%-20s %-8s %8s  %s\n", "Produced", "Station", "Rows", "Path")
	for _, e := range exports {
		fmt.Printf("%-20s %-8s %8d  %s\n",
			e.ProducedAt.Format("2006-01-02 15:04:05"), e.Station, e.RowCount, e.Path)
	}
}

// showExportStats displays aggregate statistics about the export log.
func showExportStats(ctx context.Context, pg *storage.PostgresDB) {
	pool := pg.Pool()

	var total, rows int
	_ = pool.QueryRow(ctx, "SELECT COUNT(*), COALESCE(SUM(row_count), 0) FROM exports").Scan(&total, &rows)

	var oldest, newest *time.Time
	_ = pool.QueryRow(ctx, "SELECT MIN(produced_at), MAX(produced_at) FROM exports").Scan(&oldest, &newest)

	fmt.Println("Export Statistics")
	fmt.Println("─────────────────")
	fmt.Printf("Total exports:       %d\n", total)
	fmt.Printf("Total observations:  %d\n", rows)
	if oldest != nil && newest != nil {
		fmt.Printf("Date range:          %s to %s\n", oldest.Format("2006-01-02"), newest.Format("2006-01-02"))
	}

	// Per-station breakdown.
	rowsIter, err := pool.Query(ctx, `
		SELECT station, COUNT(*) AS files, SUM(row_count) AS observations
		FROM exports
		GROUP BY station
		ORDER BY observations DESC
	`)
	if err != nil {
		return
	}
	defer rowsIter.Close()

	fmt.Println("\nPer-Station:")
	fmt.Printf("%-10s %8s %14s\n", "Station", "Files", "Observations")
	for rowsIter.Next() {
		var station string
		var files, observations int
		_ = rowsIter.Scan(&station, &files, &observations)
		fmt.Printf("%-10s %8d %14d\n", station, files, observations)
	}
}
