// Package export renders extraction results as spreadsheet downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"finextract/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// FilePrefix starts every exported file name.
const FilePrefix = "Audit_Factures_Details_"

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// transactionColumns is the header row of the transaction ledger.
var transactionColumns = []string{"DATE", "LIBELLE", "DEBIT", "CREDIT"}

// invoiceColumns is the header row of the invoice list.
var invoiceColumns = []string{
	"DATE",
	"N° FACTURE",
	"TOTAL REMISE (DH)",
	"TOTAL COMMISSIONS HT",
	"TOTAL TVA SUR COMMISSIONS",
	"SOLDE NET REMISE",
}

// CSVWriter wraps csv.Writer for exporting the transaction ledger.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the ledger header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(transactionColumns)
}

// WriteTransactions writes one row per transaction.
func (w *CSVWriter) WriteTransactions(txs []domain.Transaction) error {
	for i := range txs {
		if err := w.csv.Write(transactionToRow(&txs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// WriteCSV writes the BOM, header and every transaction of res.
func WriteCSV(out io.Writer, res *domain.ExtractionResult) error {
	if _, err := out.Write(BOM); err != nil {
		return fmt.Errorf("export.WriteCSV: writing BOM: %w", err)
	}
	w := NewCSVWriter(out)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("export.WriteCSV: writing header: %w", err)
	}
	if err := w.WriteTransactions(res.Transactions); err != nil {
		return fmt.Errorf("export.WriteCSV: writing rows: %w", err)
	}
	w.Flush()
	return w.Error()
}

func transactionToRow(tx *domain.Transaction) []string {
	return []string{tx.Date, tx.Libelle, formatOptional(tx.Debit), formatOptional(tx.Credit)}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatMoney(*v)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns the download name for an export of sourceName.
// Format: Audit_Factures_Details_{sanitized source name without extension}.{ext}
func BuildFilename(sourceName, ext string) string {
	base := strings.TrimSuffix(sourceName, filepath.Ext(sourceName))
	sanitized := SanitizeFilename(base)
	if sanitized == "" {
		sanitized = "releve"
	}
	return fmt.Sprintf("%s%s.%s", FilePrefix, sanitized, ext)
}
