// Command backfill re-runs extraction runs that failed or were left pending or
// processing, for example after a provider outage or a crash.
// Usage: go run ./cmd/backfill [-status failed] [-older-than 1h] [-limit 100]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"finextract/internal/chunker"
	"finextract/internal/config"
	"finextract/internal/domain"
	_ "finextract/internal/parser/claude"
	_ "finextract/internal/parser/gemini"
	_ "finextract/internal/parser/openai"
	"finextract/internal/port"
	"finextract/internal/repository/postgres"
	"finextract/internal/service"
	s3storage "finextract/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	status := flag.String("status", string(domain.RunStatusFailed), "run status to reprocess (pending, processing, failed)")
	olderThan := flag.Duration("older-than", time.Hour, "only runs not updated for at least this long")
	limit := flag.Int("limit", 100, "maximum number of runs to reprocess")
	flag.Parse()

	switch domain.RunStatus(*status) {
	case domain.RunStatusPending, domain.RunStatusProcessing, domain.RunStatusFailed:
	default:
		return fmt.Errorf("invalid status %q", *status)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("initializing S3 client: %w", err)
	}
	var cache port.ResultCache
	if cfg.Extraction.CacheResults {
		cache = s3storage.NewResultCache(s3Client, cfg.S3.Bucket)
	}

	extractors, err := service.NewExtractors(&cfg.Parser, cfg.Extraction.RetryDelay())
	if err != nil {
		return err
	}
	pipeline := service.NewPipeline(chunker.NewSplitter(cfg.Extraction.ChunkSize), extractors, cache, cfg.Extraction.Concurrency)

	svc := service.NewExtractionService(postgres.NewExtractionRunRepo(db), s3Client, pipeline, service.ExtractionConfig{
		Bucket:         cfg.S3.Bucket,
		MaxFileSize:    cfg.S3.MaxFileSizeBytes(),
		DefaultBackend: domain.Backend(cfg.Extraction.Backend),
		RunTimeout:     cfg.Extraction.RunTimeout(),
		PresignExpiry:  cfg.S3.PresignExpiry,
	})

	ctx := context.Background()
	cutoff := time.Now().Add(-*olderThan)
	n, err := svc.ReprocessStale(ctx, domain.RunStatus(*status), cutoff, *limit)
	if err != nil {
		return fmt.Errorf("reprocessing %s runs: %w", *status, err)
	}

	log.Printf("Backfill complete: %d %s runs reprocessed successfully", n, *status)
	return nil
}
