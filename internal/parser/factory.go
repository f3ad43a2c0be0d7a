package parser

import (
	"fmt"
	"sort"
	"time"

	"finextract/internal/config"
	"finextract/internal/port"
)

// ProviderFactory creates a cloud StatementExtractor from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.StatementExtractor, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// RegisteredProviders returns the registered provider names, sorted.
func RegisteredProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewParser creates a StatementExtractor from a provider config using the registered factory.
func NewParser(cfg *config.ParserProviderConfig) (port.StatementExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewCloudExtractor builds the cloud backend: every configured provider in
// fallback order, wrapped in a single retry after retryDelay.
func NewCloudExtractor(cfg *config.ParserConfig, retryDelay time.Duration) (port.StatementExtractor, error) {
	configs := cfg.ProviderChain()
	providers := make([]Provider, 0, len(configs))
	for _, pc := range configs {
		p, err := NewParser(pc)
		if err != nil {
			return nil, err
		}
		providers = append(providers, Provider{Name: pc.Provider, Extractor: p})
	}

	var inner port.StatementExtractor
	if len(providers) == 1 {
		inner = providers[0].Extractor
	} else {
		inner = NewProviderChain(providers...)
	}
	return NewRetryExtractor(inner, retryDelay), nil
}
