package statement

import (
	"context"

	"finextract/internal/domain"
	"finextract/internal/port"
)

// Extractor implements port.StatementExtractor with the local line parser.
type Extractor struct{}

// NewExtractor creates a local heuristic extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract decodes the PDF, rebuilds its lines and extracts batches and transactions.
// A decode failure returns no partial result.
func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*domain.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lines, err := DecodeLines(input.PDFBytes)
	if err != nil {
		return nil, err
	}
	return ExtractLines(lines), nil
}

// ExtractLines runs invoice and transaction extraction over already reconstructed lines.
func ExtractLines(lines []string) *domain.ExtractionResult {
	return domain.NewResult(ExtractInvoices(lines), ExtractTransactions(lines))
}
