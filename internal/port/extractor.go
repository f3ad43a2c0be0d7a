package port

import (
	"context"
	"encoding/base64"
	"fmt"

	"finextract/internal/domain"
)

// ExtractInput carries one PDF document or chunk to extract. FirstPage and
// LastPage locate a chunk in its source document and are zero for a whole
// document.
type ExtractInput struct {
	PDFBytes  []byte
	FileName  string
	FirstPage int
	LastPage  int
}

// Describe names the input for logs and errors, e.g. "releve.pdf pages 26-50".
func (in ExtractInput) Describe() string {
	name := in.FileName
	if name == "" {
		name = "document"
	}
	if in.FirstPage == 0 {
		return name
	}
	return fmt.Sprintf("%s pages %d-%d", name, in.FirstPage, in.LastPage)
}

// DecodeBase64Input builds an ExtractInput from a base64-encoded PDF.
func DecodeBase64Input(encoded, fileName string) (ExtractInput, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ExtractInput{}, fmt.Errorf("decoding base64 pdf: %w", err)
	}
	return ExtractInput{PDFBytes: data, FileName: fileName}, nil
}

// StatementExtractor turns a PDF document into invoice batches and transactions.
// Implementations are the local heuristic parser and the cloud model providers.
type StatementExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*domain.ExtractionResult, error)
}
