package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"finextract/internal/domain"
	"finextract/internal/port"
)

// DefaultConcurrency is the number of chunks extracted in parallel per wave.
const DefaultConcurrency = 6

// ProgressFunc is called each time a chunk finishes, with the number of
// finished chunks and the chunk total. Calls are serialized.
type ProgressFunc func(done, total int)

// Plan is a document split into the chunks that will be extracted.
type Plan struct {
	PageCount int
	Chunks    []port.DocumentChunk
}

// Pipeline splits a document into page chunks, extracts every chunk with the
// selected backend and merges the chunk results in page order.
type Pipeline struct {
	splitter    port.DocumentSplitter
	extractors  map[domain.Backend]port.StatementExtractor
	cache       port.ResultCache // optional
	concurrency int
}

// NewPipeline creates a Pipeline. cache may be nil to disable result caching.
func NewPipeline(
	splitter port.DocumentSplitter,
	extractors map[domain.Backend]port.StatementExtractor,
	cache port.ResultCache,
	concurrency int,
) *Pipeline {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Pipeline{
		splitter:    splitter,
		extractors:  extractors,
		cache:       cache,
		concurrency: concurrency,
	}
}

// Supports reports whether an extractor is configured for backend.
func (p *Pipeline) Supports(backend domain.Backend) bool {
	_, ok := p.extractors[backend]
	return ok
}

// Plan counts the pages of data and splits it into chunks.
func (p *Pipeline) Plan(ctx context.Context, data []byte) (*Plan, error) {
	pageCount, err := p.splitter.PageCount(ctx, data)
	if err != nil {
		return nil, err
	}
	chunks, err := p.splitter.Split(ctx, data)
	if err != nil {
		return nil, err
	}
	return &Plan{PageCount: pageCount, Chunks: chunks}, nil
}

// Execute extracts the planned chunks in waves of at most concurrency chunks.
// Each wave completes before the next starts. The first chunk failure cancels
// its wave and is returned without a partial result.
func (p *Pipeline) Execute(ctx context.Context, backend domain.Backend, plan *Plan, fileName string, progress ProgressFunc) (*domain.ExtractionResult, error) {
	extractor, ok := p.extractors[backend]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownBackend, backend)
	}

	total := len(plan.Chunks)
	results := make([]*domain.ExtractionResult, total)

	var mu sync.Mutex
	done := 0

	for start := 0; start < total; start += p.concurrency {
		end := min(start+p.concurrency, total)

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			chunk := plan.Chunks[i]
			g.Go(func() error {
				res, err := p.extractChunk(gctx, extractor, backend, chunk, fileName)
				if err != nil {
					return fmt.Errorf("chunk %d (pages %d-%d): %w", chunk.Index, chunk.FirstPage, chunk.LastPage, err)
				}
				results[i] = res

				mu.Lock()
				done++
				if progress != nil {
					progress(done, total)
				}
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return domain.MergeResults(results...), nil
}

// ExtractDocument plans and executes data in one call.
func (p *Pipeline) ExtractDocument(ctx context.Context, backend domain.Backend, data []byte, fileName string, progress ProgressFunc) (*domain.ExtractionResult, error) {
	plan, err := p.Plan(ctx, data)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, backend, plan, fileName, progress)
}

func (p *Pipeline) extractChunk(
	ctx context.Context,
	extractor port.StatementExtractor,
	backend domain.Backend,
	chunk port.DocumentChunk,
	fileName string,
) (*domain.ExtractionResult, error) {
	var digest string
	if p.cache != nil {
		digest = Digest(chunk.PDFBytes)
		cached, err := p.cache.Get(ctx, backend, digest)
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, domain.ErrNotFound):
			log.Printf("pipeline.extractChunk: cache lookup failed for chunk %d: %v", chunk.Index, err)
		}
	}

	res, err := extractor.Extract(ctx, port.ExtractInput{
		PDFBytes:  chunk.PDFBytes,
		FileName:  fileName,
		FirstPage: chunk.FirstPage,
		LastPage:  chunk.LastPage,
	})
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Put(ctx, backend, digest, res); err != nil {
			log.Printf("pipeline.extractChunk: cache store failed for chunk %d: %v", chunk.Index, err)
		}
	}
	return res, nil
}

// Digest returns the hex SHA-256 of data, used as the result cache key.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
