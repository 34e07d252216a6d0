// Package main loads a sales transactions CSV export into the record store
// and optionally materializes the prepared series points into ClickHouse.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"sketchmatch/internal/ingestion"
	"sketchmatch/internal/observability"
	"sketchmatch/internal/storage"
	chstore "sketchmatch/internal/storage/clickhouse"
	"sketchmatch/internal/storage/memory"
	"sketchmatch/internal/storage/migrations"
	pgstore "sketchmatch/internal/storage/postgres"
)

func main() {
	loadEnvFile()

	// Parse flags (env vars as defaults)
	csvPath := flag.String("csv", "", "Path to transactions CSV export")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, enables materialization)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL (dry run)")
	materialize := flag.Bool("materialize", false, "Write prepared series points to ClickHouse after ingest")

	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *csvPath == "" {
		logger.Fatal("--csv is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for a dry run)")
	}
	if *materialize && *clickhouseDSN == "" && !*useMemory {
		logger.Fatal("--materialize requires --clickhouse-dsn")
	}

	ctx := context.Background()
	metrics := observability.NewMetrics("")

	// Open the record store
	var recordStore storage.RecordStore
	if *useMemory {
		recordStore = memory.NewRecordStore()
		logger.Println("Using in-memory record store")
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Run postgres migrations: %v", err)
		}
		recordStore = pgstore.NewRecordStore(pool)
	}

	// Parse the export
	f, err := os.Open(*csvPath)
	if err != nil {
		logger.Fatalf("Open CSV: %v", err)
	}
	records, err := ingestion.ParseRecordsCSV(f)
	f.Close()
	if err != nil {
		metrics.IngestErrors.Inc()
		logger.Fatalf("Parse CSV: %v", err)
	}
	logger.Printf("Parsed %d records from %s", len(records), *csvPath)

	// Ingest
	runner := ingestion.NewRunner(recordStore, logger)
	result, err := runner.IngestRecords(ctx, records)
	if err != nil {
		metrics.IngestErrors.Inc()
		logger.Fatalf("Ingest: %v", err)
	}
	metrics.RecordsIngested.Add(float64(result.Inserted))
	metrics.RecordsDuplicate.Add(float64(result.Skipped))
	metrics.LastIngestSuccess.Set(float64(time.Now().Unix()))

	// Materialize prepared series points
	if *materialize {
		var pointStore storage.SeriesPointStore
		if *useMemory {
			pointStore = memory.NewSeriesPointStore()
		} else {
			conn, err := chstore.NewConn(ctx, *clickhouseDSN)
			if err != nil {
				logger.Fatalf("Connect to clickhouse: %v", err)
			}
			defer conn.Close()

			if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
				logger.Fatalf("Run clickhouse migrations: %v", err)
			}
			pointStore = chstore.NewSeriesPointStore(conn)
		}

		all, err := recordStore.GetAll(ctx)
		if err != nil {
			logger.Fatalf("Load records: %v", err)
		}
		series, periodKeys := ingestion.Prepare(all)
		if err := runner.Materialize(ctx, pointStore, series, periodKeys); err != nil {
			logger.Fatalf("Materialize: %v", err)
		}
	}

	logger.Printf("Done: %d inserted, %d skipped", result.Inserted, result.Skipped)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
