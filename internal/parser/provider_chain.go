package parser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"finextract/internal/domain"
	"finextract/internal/port"
)

// Provider is one named cloud model backend in a ProviderChain.
type Provider struct {
	Name      string
	Extractor port.StatementExtractor
}

// cooldown records until when a rate-limited provider must not be asked for
// another chunk. The zero value means the provider is available.
type cooldown struct {
	mu    sync.RWMutex
	until time.Time
}

func (c *cooldown) active(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.until, now.Before(c.until)
}

// extend never shortens a cooldown already set by a concurrent chunk.
func (c *cooldown) extend(until time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if until.After(c.until) {
		c.until = until
	}
}

// ProviderChain extracts each chunk with the first provider that succeeds.
// A provider that answers with a rate limit sits out until its Retry-After
// has passed, so the other chunks of the run go straight to the next one.
// It implements port.StatementExtractor.
type ProviderChain struct {
	providers []Provider
	cooldowns []*cooldown
}

// NewProviderChain creates a ProviderChain asking providers in the given order.
func NewProviderChain(providers ...Provider) *ProviderChain {
	cooldowns := make([]*cooldown, len(providers))
	for i := range cooldowns {
		cooldowns[i] = &cooldown{}
	}
	return &ProviderChain{providers: providers, cooldowns: cooldowns}
}

// Names returns the provider names in chain order.
func (c *ProviderChain) Names() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name
	}
	return names
}

// Extract asks each available provider in turn. When every provider is
// cooling down or answers with a rate limit, the returned RateLimitError
// carries the shortest remaining wait. Otherwise the error lists what each
// provider answered for this chunk and wraps the last failure that was not a
// rate limit.
func (c *ProviderChain) Extract(ctx context.Context, input port.ExtractInput) (*domain.ExtractionResult, error) {
	now := time.Now()
	chunk := input.Describe()

	var (
		attempts  []string
		hardErr   error
		nextReady time.Time
	)
	noteReady := func(t time.Time) {
		if nextReady.IsZero() || t.Before(nextReady) {
			nextReady = t
		}
	}

	for i, p := range c.providers {
		if until, cooling := c.cooldowns[i].active(now); cooling {
			log.Printf("parser.ProviderChain: %s: %s is rate limited until %s, skipping",
				chunk, p.Name, until.Format(time.RFC3339))
			noteReady(until)
			continue
		}

		res, err := p.Extractor.Extract(ctx, input)
		if err == nil {
			if len(attempts) > 0 {
				log.Printf("parser.ProviderChain: %s extracted by %s after %d failed attempts", chunk, p.Name, len(attempts))
			}
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %s: %w", chunk, p.Name, ctx.Err())
		}

		log.Printf("parser.ProviderChain: %s: %s failed: %v", chunk, p.Name, err)
		attempts = append(attempts, p.Name+": "+err.Error())

		var rl *RateLimitError
		if errors.As(err, &rl) {
			until := now.Add(rl.RetryAfter)
			c.cooldowns[i].extend(until)
			noteReady(until)
		} else {
			hardErr = err
		}
	}

	if hardErr == nil {
		wait := nextReady.Sub(now)
		if wait < time.Second {
			wait = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("%s: every provider is rate limited", chunk), int(wait.Seconds()))
	}

	return nil, fmt.Errorf("%s: no provider could extract the chunk (%s): %w",
		chunk, strings.Join(attempts, "; "), hardErr)
}
