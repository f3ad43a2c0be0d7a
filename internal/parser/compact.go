package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"finextract/internal/domain"
)

// compactResult is the abbreviated output shape models are asked for.
type compactResult struct {
	F []compactBatch       `json:"f"`
	T []compactTransaction `json:"t"`
}

type compactBatch struct {
	Dt string  `json:"dt"`
	ID string  `json:"id"`
	R  float64 `json:"r"`
	C  float64 `json:"c"`
	V  float64 `json:"v"`
	N  float64 `json:"n"`
}

type compactTransaction struct {
	D  string   `json:"d"`
	L  string   `json:"l"`
	Db *float64 `json:"db"`
	Cr *float64 `json:"cr"`
}

// StripCodeFences removes markdown json fences a model may wrap its output in.
func StripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// DecodeCompactResult parses a model's abbreviated JSON output and expands it
// to a full ExtractionResult. Missing text becomes "", missing amounts 0, and
// absent or zero debit/credit nil.
func DecodeCompactResult(text string) (*domain.ExtractionResult, error) {
	cleaned := StripCodeFences(text)
	var raw compactResult
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, Truncate(cleaned, 500))
	}

	batches := make([]domain.InvoiceBatch, 0, len(raw.F))
	for _, f := range raw.F {
		batches = append(batches, domain.InvoiceBatch{
			Date:                   f.Dt,
			FactureNumber:          f.ID,
			TotalRemiseDH:          f.R,
			TotalCommissionsHT:     f.C,
			TotalTVASurCommissions: f.V,
			SoldeNetRemise:         f.N,
		})
	}

	txs := make([]domain.Transaction, 0, len(raw.T))
	for _, t := range raw.T {
		txs = append(txs, domain.Transaction{
			Date:    t.D,
			Libelle: t.L,
			Debit:   nonZero(t.Db),
			Credit:  nonZero(t.Cr),
		})
	}

	return domain.NewResult(batches, txs), nil
}

func nonZero(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

// Truncate shortens s to maxLen bytes for log and error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
