package domain

import "strings"

// Summarize returns the elementwise sum of every batch. SoldeGlobal is always 0.
func Summarize(batches []InvoiceBatch) Summary {
	var s Summary
	for i := range batches {
		s.TotalRemiseDH += batches[i].TotalRemiseDH
		s.TotalCommissionsHT += batches[i].TotalCommissionsHT
		s.TotalTVASurCommissions += batches[i].TotalTVASurCommissions
		s.SoldeNetRemise += batches[i].SoldeNetRemise
	}
	return s
}

// NewResult builds a result from extracted batches and transactions, deriving the summary.
// Nil slices are replaced by empty ones so the JSON form always carries arrays.
func NewResult(batches []InvoiceBatch, transactions []Transaction) *ExtractionResult {
	if batches == nil {
		batches = []InvoiceBatch{}
	}
	if transactions == nil {
		transactions = []Transaction{}
	}
	return &ExtractionResult{
		Batches:      batches,
		Transactions: transactions,
		Summary:      Summarize(batches),
		Currency:     Currency,
	}
}

// MergeResults concatenates chunk results in the given order and recomputes the summary.
func MergeResults(results ...*ExtractionResult) *ExtractionResult {
	var batches []InvoiceBatch
	var transactions []Transaction
	for _, r := range results {
		if r == nil {
			continue
		}
		batches = append(batches, r.Batches...)
		transactions = append(transactions, r.Transactions...)
	}
	return NewResult(batches, transactions)
}

// MatchesQuery reports whether the transaction's label contains q (case-insensitive)
// or its date contains q.
func (t Transaction) MatchesQuery(q string) bool {
	return strings.Contains(strings.ToLower(t.Libelle), strings.ToLower(q)) || strings.Contains(t.Date, q)
}

// MinSearchLength is the shortest query that filters transactions.
const MinSearchLength = 3

// FilterTransactions returns the transactions matching q. Queries shorter than
// MinSearchLength return every transaction unfiltered.
func FilterTransactions(txs []Transaction, q string) []Transaction {
	if len(q) < MinSearchLength {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for i := range txs {
		if txs[i].MatchesQuery(q) {
			out = append(out, txs[i])
		}
	}
	return out
}
