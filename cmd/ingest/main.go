// Command ingest performs one pipeline run: it fetches every configured
// source plus the import CSV, normalizes the records and rewrites the
// incident file. Configuration comes from the environment (see
// internal/config); flags override the most common paths.
//
// Usage:
//
//	go run ./cmd/ingest [-csv data/import.csv] [-out src/_data/crimes.json] [-sources sources.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/crime-data-etl/internal/app"
	"github.com/couchcryptid/crime-data-etl/internal/config"
	"github.com/couchcryptid/crime-data-etl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ingest failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "import CSV path (overrides IMPORT_CSV)")
	outPath := flag.String("out", "", "output JSON path (overrides DATA_DIR and OUTPUT_FILE)")
	sourcesPath := flag.String("sources", "", "source definitions YAML (overrides SOURCES_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *csvPath != "" {
		cfg.ImportCSV = *csvPath
	}
	if *outPath != "" {
		cfg.DataDir, cfg.OutputFile = filepath.Split(*outPath)
	}
	if *sourcesPath != "" {
		cfg.SourcesFile = *sourcesPath
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	a, err := app.Build(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := a.Pipeline.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d incidents to %s\n", res.Summary.Total, a.Store.Path())
	for _, tc := range res.Summary.ByType {
		fmt.Printf("  %-10s %d\n", tc.Type, tc.Count)
	}
	if res.Summary.Newest != nil {
		fmt.Printf("Date range: %s to %s\n",
			res.Summary.Oldest.Format("2006-01-02"),
			res.Summary.Newest.Format("2006-01-02"))
	}
	for name, srcErr := range res.SourceErrors {
		fmt.Fprintf(os.Stderr, "warning: source %s failed: %v\n", name, srcErr)
	}
	return nil
}
