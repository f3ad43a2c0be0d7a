package service

import (
	"fmt"
	"log"
	"time"

	"finextract/internal/config"
	"finextract/internal/domain"
	"finextract/internal/parser"
	"finextract/internal/port"
	"finextract/internal/statement"
)

// NewExtractors returns the extractor for every available backend. The local
// parser is always available; the cloud backend is added only when the
// primary provider has an API key. Provider packages must be imported for
// their registration side effects before calling this.
func NewExtractors(cfg *config.ParserConfig, retryDelay time.Duration) (map[domain.Backend]port.StatementExtractor, error) {
	extractors := map[domain.Backend]port.StatementExtractor{
		domain.BackendLocal: statement.NewExtractor(),
	}

	primary := cfg.PrimaryConfig()
	if primary.APIKey == "" {
		log.Printf("service.NewExtractors: no API key for provider %q, cloud backend disabled", primary.Provider)
		return extractors, nil
	}

	cloud, err := parser.NewCloudExtractor(cfg, retryDelay)
	if err != nil {
		return nil, fmt.Errorf("initializing cloud backend: %w", err)
	}
	extractors[domain.BackendCloud] = cloud
	return extractors, nil
}
