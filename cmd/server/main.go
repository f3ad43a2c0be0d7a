package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"finextract/internal/chunker"
	"finextract/internal/config"
	"finextract/internal/domain"
	"finextract/internal/handler"
	_ "finextract/internal/parser/claude"
	_ "finextract/internal/parser/gemini"
	_ "finextract/internal/parser/openai"
	"finextract/internal/port"
	"finextract/internal/repository/postgres"
	"finextract/internal/router"
	"finextract/internal/service"
	s3storage "finextract/internal/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	runRepo := postgres.NewExtractionRunRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	var cache port.ResultCache
	if cfg.Extraction.CacheResults {
		cache = s3storage.NewResultCache(s3Client, cfg.S3.Bucket)
	}

	// Initialize extraction pipeline
	extractors, err := service.NewExtractors(&cfg.Parser, cfg.Extraction.RetryDelay())
	if err != nil {
		return fmt.Errorf("failed to initialize extractors: %w", err)
	}
	pipeline := service.NewPipeline(
		chunker.NewSplitter(cfg.Extraction.ChunkSize),
		extractors,
		cache,
		cfg.Extraction.Concurrency,
	)

	// Initialize services
	extractionSvc := service.NewExtractionService(runRepo, s3Client, pipeline, service.ExtractionConfig{
		Bucket:         cfg.S3.Bucket,
		MaxFileSize:    cfg.S3.MaxFileSizeBytes(),
		DefaultBackend: domain.Backend(cfg.Extraction.Backend),
		RunTimeout:     cfg.Extraction.RunTimeout(),
		PresignExpiry:  cfg.S3.PresignExpiry,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if interval := cfg.Extraction.StalePollInterval(); interval > 0 {
		worker := service.NewStaleRunWorker(extractionSvc, service.StaleRunConfig{
			PollInterval: interval,
			StaleAfter:   cfg.Extraction.StaleAfter(),
		})
		go worker.Start(ctx)
	}

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(extractionSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, extractionH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Printf("Server stopped")
	return nil
}
