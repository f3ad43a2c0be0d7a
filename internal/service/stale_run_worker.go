package service

import (
	"context"
	"log"
	"time"

	"finextract/internal/domain"
)

// StaleRunConfig holds settings for the stale run worker.
type StaleRunConfig struct {
	PollInterval time.Duration
	StaleAfter   time.Duration
	BatchSize    int
}

// StaleRunWorker periodically picks up runs left pending or processing by a
// previous process and runs them again.
type StaleRunWorker struct {
	svc ExtractionService
	cfg StaleRunConfig
	now func() time.Time
}

// NewStaleRunWorker creates a new StaleRunWorker.
func NewStaleRunWorker(svc ExtractionService, cfg StaleRunConfig) *StaleRunWorker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	return &StaleRunWorker{svc: svc, cfg: cfg, now: time.Now}
}

// Start runs the polling loop until ctx is canceled.
func (w *StaleRunWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	log.Printf("staleRunWorker: started (poll=%s, staleAfter=%s, batch=%d)",
		w.cfg.PollInterval, w.cfg.StaleAfter, w.cfg.BatchSize)

	for {
		select {
		case <-ctx.Done():
			log.Printf("staleRunWorker: shutdown complete")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep reprocesses one batch of stale pending and processing runs.
func (w *StaleRunWorker) Sweep(ctx context.Context) {
	cutoff := w.now().Add(-w.cfg.StaleAfter)
	for _, status := range []domain.RunStatus{domain.RunStatusPending, domain.RunStatusProcessing} {
		n, err := w.svc.ReprocessStale(ctx, status, cutoff, w.cfg.BatchSize)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("staleRunWorker: reprocessing %s runs failed: %v", status, err)
			continue
		}
		if n > 0 {
			log.Printf("staleRunWorker: recovered %d %s runs", n, status)
		}
	}
}
