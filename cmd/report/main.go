// Package main runs one pattern search from a stroke file and writes
// markdown and CSV reports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"sketchmatch/internal/corpus"
	"sketchmatch/internal/domain"
	"sketchmatch/internal/ingestion"
	"sketchmatch/internal/reporting"
	"sketchmatch/internal/search"
	pgstore "sketchmatch/internal/storage/postgres"
)

func main() {
	// Parse flags
	strokePath := flag.String("stroke", "", "Path to stroke JSON file ([{\"x\":..,\"y\":..},...], screen-space)")
	csvPath := flag.String("records-csv", "", "Transactions CSV to build the corpus from")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (alternative to --records-csv)")
	category := flag.String("category", corpus.CategoryAll, "Category filter")
	topK := flag.Int("top-k", search.DefaultTopK, "Maximum number of matches")
	resamplePoints := flag.Int("resample-points", search.DefaultResamplePoints, "Resample point count")
	outputDir := flag.String("output-dir", "output", "Output directory for report files")
	flag.Parse()

	if *strokePath == "" {
		fmt.Fprintln(os.Stderr, "Error: --stroke is required")
		os.Exit(1)
	}
	if *csvPath == "" && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: one of --records-csv or --postgres-dsn is required")
		os.Exit(1)
	}

	ctx := context.Background()

	stroke, err := loadStroke(*strokePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading stroke: %v\n", err)
		os.Exit(1)
	}

	records, err := loadRecords(ctx, *csvPath, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading records: %v\n", err)
		os.Exit(1)
	}

	series, periodKeys := ingestion.Prepare(records)
	ix, err := corpus.NewIndex(periodKeys, series)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building corpus: %v\n", err)
		os.Exit(1)
	}

	svc := search.NewService(search.Config{
		ResamplePoints: *resamplePoints,
		TopK:           *topK,
	})
	matches, err := svc.Search(ctx, ix, stroke, *category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching: %v\n", err)
		os.Exit(1)
	}

	report := reporting.NewReport(*category, len(stroke),
		len(ix.Eligible(*category, 0)), ix.PeriodCount(), matches)

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output dir: %v\n", err)
		os.Exit(1)
	}

	mdPath := filepath.Join(*outputDir, "pattern_matches.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", mdPath, err)
		os.Exit(1)
	}

	csvOut := filepath.Join(*outputDir, "pattern_matches.csv")
	if err := os.WriteFile(csvOut, []byte(reporting.RenderCSV(report)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", csvOut, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d matches to %s and %s\n", len(matches), mdPath, csvOut)
}

// loadStroke reads a stroke JSON file.
func loadStroke(path string) (domain.Stroke, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stroke domain.Stroke
	if err := json.Unmarshal(data, &stroke); err != nil {
		return nil, fmt.Errorf("parse stroke json: %w", err)
	}
	return stroke, nil
}

// loadRecords reads transactions from a CSV export or from PostgreSQL.
func loadRecords(ctx context.Context, csvPath, postgresDSN string) ([]*domain.SalesRecord, error) {
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ingestion.ParseRecordsCSV(f)
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	return pgstore.NewRecordStore(pool).GetAll(ctx)
}
