// Command-line entry point for the observation feed consumer.
//
// Subscribes to a NATS subject carrying candidate observation batches
// from the survey pipeline, appends them to the local SQLite queue for
// later export, and optionally archives every batch to ClickHouse for
// analytics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ades_exporter/internal/feed"
	"ades_exporter/internal/storage"
)

func main() {
	natsURL := flag.String("nats-url", "nats://localhost:4222", "NATS server URL")
	subject := flag.String("subject", "obs.candidates", "NATS subject to subscribe to")
	sqlitePath := flag.String("sqlite", "observations.db", "SQLite observation queue path")

	chHost := flag.String("ch-host", "", "ClickHouse host for the detection archive (empty: no archive)")
	chPort := flag.Int("ch-port", 9000, "ClickHouse port")
	chUser := flag.String("ch-user", "default", "ClickHouse user")
	chPassword := flag.String("ch-password", "", "ClickHouse password")
	chDB := flag.String("ch-db", "survey", "ClickHouse database")

	flag.Parse()

	ctx := context.Background()

	queue, err := storage.Open(*sqlitePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open queue: %v\n", err)
		os.Exit(1)
	}
	defer queue.Close()

	var archive *storage.ClickHouseDB
	if *chHost != "" {
		archive, err = storage.OpenClickHouse(ctx, storage.ClickHouseConfig{
			Host:     *chHost,
			Port:     *chPort,
			Database: *chDB,
			User:     *chUser,
			Password: *chPassword,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open ClickHouse: %v\n", err)
			os.Exit(1)
		}
		defer archive.Close()

		if err := archive.CreateSchema(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create archive schema: %v\n", err)
			os.Exit(1)
		}
	}

	consumer, err := feed.NewConsumer(*natsURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer consumer.Close()

	handler := func(batch *feed.Batch) error {
		if err := queue.InsertObservations(batch.Observations); err != nil {
			return fmt.Errorf("queue batch: %w", err)
		}
		if archive != nil {
			if err := archive.InsertDetections(ctx, batch.SourceName(), batch.Observations); err != nil {
				return fmt.Errorf("archive batch: %w", err)
			}
		}
		log.Printf("ingested %d observations from %s", len(batch.Observations), batch.SourceName())
		return nil
	}

	if err := consumer.Subscribe(*subject, handler); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to subscribe: %v\n", err)
		os.Exit(1)
	}
	log.Printf("listening on %s (queue: %s)", *subject, *sqlitePath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Println("shutting down")
}
