package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Currency is the fixed currency unit of every monetary field.
const Currency = "DH"

// RawToken is a positioned text fragment read from a PDF content stream.
type RawToken struct {
	Text  string
	Page  int
	Order int
}

// InvoiceBatch summarizes one merchant settlement (remise) with its fees and net payout.
type InvoiceBatch struct {
	Date                   string  `json:"date"`
	FactureNumber          string  `json:"factureNumber"`
	TotalRemiseDH          float64 `json:"totalRemiseDH"`
	TotalCommissionsHT     float64 `json:"totalCommissionsHT"`
	TotalTVASurCommissions float64 `json:"totalTVASurCommissions"`
	SoldeNetRemise         float64 `json:"soldeNetRemise"`
}

// HasAmounts reports whether at least one monetary field is non-zero.
func (b InvoiceBatch) HasAmounts() bool {
	return b.TotalRemiseDH != 0 || b.TotalCommissionsHT != 0 ||
		b.TotalTVASurCommissions != 0 || b.SoldeNetRemise != 0
}

// Transaction is one dated ledger row.
type Transaction struct {
	Date    string   `json:"date"`
	Libelle string   `json:"libelle"`
	Debit   *float64 `json:"debit"`
	Credit  *float64 `json:"credit"`
	Solde   *float64 `json:"solde"`
}

// Summary holds the totals of all batches in a result.
type Summary struct {
	TotalRemiseDH          float64 `json:"totalRemiseDH"`
	TotalCommissionsHT     float64 `json:"totalCommissionsHT"`
	TotalTVASurCommissions float64 `json:"totalTVASurCommissions"`
	SoldeNetRemise         float64 `json:"soldeNetRemise"`
	SoldeGlobal            float64 `json:"soldeGlobal"`
}

// ExtractionResult is the output of one extraction, either for a single chunk
// or merged across all chunks of a document.
type ExtractionResult struct {
	Batches      []InvoiceBatch `json:"batches"`
	Transactions []Transaction  `json:"transactions"`
	Summary      Summary        `json:"summary"`
	Currency     string         `json:"currency"`
}

// Progress tracks how many chunks of a run have completed.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// ExtractionRun is a persisted extraction of one uploaded PDF.
type ExtractionRun struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	FileName    string          `db:"file_name" json:"file_name"`
	FileSize    int64           `db:"file_size" json:"file_size"`
	Backend     Backend         `db:"backend" json:"backend"`
	Status      RunStatus       `db:"status" json:"status"`
	PageCount   int             `db:"page_count" json:"page_count"`
	ChunksDone  int             `db:"chunks_done" json:"chunks_done"`
	ChunksTotal int             `db:"chunks_total" json:"chunks_total"`
	S3Bucket    string          `db:"s3_bucket" json:"-"`
	S3Key       string          `db:"s3_key" json:"-"`
	Result      json.RawMessage `db:"result" json:"result,omitempty"`
	Error       string          `db:"error" json:"error,omitempty"`
	BatchCount  int             `db:"batch_count" json:"batch_count"`
	TxCount     int             `db:"transaction_count" json:"transaction_count"`
	StartedAt   *time.Time      `db:"started_at" json:"started_at"`
	CompletedAt *time.Time      `db:"completed_at" json:"completed_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Progress returns the chunk progress of the run.
func (r *ExtractionRun) Progress() Progress {
	return Progress{Current: r.ChunksDone, Total: r.ChunksTotal}
}

// DecodeResult unmarshals the stored result, or returns ErrRunNotCompleted.
func (r *ExtractionRun) DecodeResult() (*ExtractionResult, error) {
	if r.Status != RunStatusCompleted || len(r.Result) == 0 {
		return nil, ErrRunNotCompleted
	}
	var res ExtractionResult
	if err := json.Unmarshal(r.Result, &res); err != nil {
		return nil, ErrInvalidResult
	}
	return &res, nil
}
