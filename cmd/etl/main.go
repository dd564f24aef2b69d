// Command etl runs the batch normalization and scoring pipeline over a
// directory of source spreadsheets and persists the finalized dataset.
//
// Usage:
//
//	go run ./cmd/etl \
//	  -input data/sources \
//	  -jurisdictions configs/jurisdictions.yaml \
//	  -mappings configs/mappings.yaml \
//	  -scoring configs/scoring.yaml \
//	  -db data/dataset.db \
//	  -out data/dataset.json
//
// Kafka publishing of the visualization records is enabled via KAFKA_BROKERS
// / KAFKA_ENABLED / KAFKA_TOPIC.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawatlas/disaster-law-etl/internal/adapter/ingest"
	kafkaadapter "github.com/lawatlas/disaster-law-etl/internal/adapter/kafka"
	"github.com/lawatlas/disaster-law-etl/internal/adapter/sqlite"
	"github.com/lawatlas/disaster-law-etl/internal/config"
	"github.com/lawatlas/disaster-law-etl/internal/dataset"
	"github.com/lawatlas/disaster-law-etl/internal/observability"
	"github.com/lawatlas/disaster-law-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		slog.Error("etl failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	inputDir := flag.String("input", "", "directory of source spreadsheets (.xlsx/.csv)")
	jurisdictionsPath := flag.String("jurisdictions", "configs/jurisdictions.yaml", "authoritative jurisdiction set")
	mappingsPath := flag.String("mappings", "configs/mappings.yaml", "per-file column mapping table")
	scoringPath := flag.String("scoring", "configs/scoring.yaml", "scoring rule table")
	dbPath := flag.String("db", "", "SQLite path to persist the dataset (optional)")
	outPath := flag.String("out", "", "JSON path to dump the dataset (optional)")
	flag.Parse()

	if *inputDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -input")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Configuration tables are fatal at startup when missing or corrupt.
	set, err := config.LoadJurisdictions(*jurisdictionsPath)
	if err != nil {
		return err
	}
	mappings, err := config.LoadMappings(*mappingsPath)
	if err != nil {
		return err
	}
	rules, err := config.LoadScoring(*scoringPath)
	if err != nil {
		return err
	}

	sources, err := ingest.Discover(*inputDir)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no source files in %s", *inputDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(mappings, set, rules, logger, metrics)
	ds, err := p.Run(ctx, sources)
	if err != nil {
		return err
	}

	if *dbPath != "" {
		if err := persistToStore(ds, *dbPath); err != nil {
			return err
		}
		logger.Info("dataset persisted", "db", *dbPath)
	}

	if *outPath != "" {
		if err := writeJSONDump(ds, *outPath); err != nil {
			return err
		}
		logger.Info("dataset written", "path", *outPath)
	}

	if cfg.KafkaEnabled {
		publisher := kafkaadapter.NewPublisher(cfg, logger)
		defer publisher.Close() //nolint:errcheck // process is exiting
		if err := publisher.PublishDataset(ctx, ds); err != nil {
			return err
		}
		metrics.RecordsPublished.Add(float64(ds.Len()))
	}

	logger.Info("etl complete", "jurisdictions", ds.Len(), "unresolved", len(ds.Unresolved()))
	return nil
}

func persistToStore(ds *dataset.Dataset, path string) error {
	store, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck // single-shot writer
	return store.SaveDataset(ds)
}

// writeJSONDump writes the full dataset plus the unresolved report for ad hoc
// inspection without a SQLite client.
func writeJSONDump(ds *dataset.Dataset, path string) error {
	dump := struct {
		BuiltAt       string `json:"built_at"`
		Jurisdictions any    `json:"jurisdictions"`
		Visualization any    `json:"visualization"`
		Unresolved    any    `json:"unresolved"`
	}{
		BuiltAt:       ds.BuiltAt().UTC().Format(time.RFC3339),
		Jurisdictions: ds.All(),
		Visualization: ds.ForVisualization(),
		Unresolved:    ds.Unresolved(),
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
