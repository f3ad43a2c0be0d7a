package statement

import (
	"regexp"
	"strings"

	"finextract/internal/domain"
)

// InvoiceWindowSize is the number of lines, marker line included, scanned for
// the totals of one invoice.
const InvoiceWindowSize = 8

var (
	// trailingAmount captures a signed run of digits, spaces and separators at
	// the end of a line. Spaces include U+00A0 and U+202F thousands separators.
	trailingAmount = regexp.MustCompile(`(-?[\d\s\p{Zs}.,]+)$`)
	// factureID captures the token following a "facture" or "n° facture" label.
	factureID = regexp.MustCompile(`(?i)(?:n°\s*)?facture\s*:?\s*([a-z0-9\-/]+)`)
)

// FieldRule assigns an amount to one batch field when a line contains all of Keywords.
type FieldRule struct {
	Field    string
	Keywords []string
	Assign   func(b *domain.InvoiceBatch, amount float64)
}

// Matches reports whether the lowercased line contains every keyword.
func (r FieldRule) Matches(lower string) bool {
	for _, k := range r.Keywords {
		if !strings.Contains(lower, k) {
			return false
		}
	}
	return true
}

// InvoiceFieldRules are evaluated in order on every window line. They are not
// exclusive and a later line overwrites an earlier value.
var InvoiceFieldRules = []FieldRule{
	{
		Field:    "totalRemiseDH",
		Keywords: []string{"total", "remise"},
		Assign:   func(b *domain.InvoiceBatch, v float64) { b.TotalRemiseDH = v },
	},
	{
		Field:    "totalCommissionsHT",
		Keywords: []string{"commission", "ht"},
		Assign:   func(b *domain.InvoiceBatch, v float64) { b.TotalCommissionsHT = v },
	},
	{
		Field:    "totalTVASurCommissions",
		Keywords: []string{"tva"},
		Assign:   func(b *domain.InvoiceBatch, v float64) { b.TotalTVASurCommissions = v },
	},
	{
		Field:    "soldeNetRemise",
		Keywords: []string{"solde", "net"},
		Assign:   func(b *domain.InvoiceBatch, v float64) { b.SoldeNetRemise = v },
	},
}

// IsInvoiceMarker reports whether a line opens an invoice window.
func IsInvoiceMarker(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "facture") || strings.Contains(lower, "remise")
}

// InvoiceWindow returns the lines scanned for the invoice opened at index i.
func InvoiceWindow(lines []string, i int) []string {
	end := i + InvoiceWindowSize
	if end > len(lines) {
		end = len(lines)
	}
	return lines[i:end]
}

// TrailingAmount returns the normalized amount at the end of line and whether one was found.
func TrailingAmount(line string) (float64, bool) {
	m := trailingAmount.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	return ParseAmount(m[1]), true
}

// ApplyFieldRules assigns the line's trailing amount to every field whose rule matches.
// Lines without a trailing amount leave the batch untouched.
func ApplyFieldRules(b *domain.InvoiceBatch, line string) {
	amount, ok := TrailingAmount(line)
	if !ok {
		return
	}
	lower := strings.ToLower(line)
	for _, r := range InvoiceFieldRules {
		if r.Matches(lower) {
			r.Assign(b, amount)
		}
	}
}

// FactureNumber returns the invoice identifier on line, or "".
func FactureNumber(line string) string {
	m := factureID.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}

// ParseInvoiceWindow builds the batch for a window whose first line is the marker.
func ParseInvoiceWindow(window []string) domain.InvoiceBatch {
	var b domain.InvoiceBatch
	if len(window) == 0 {
		return b
	}
	b.Date = findDate(window[0])
	b.FactureNumber = FactureNumber(window[0])
	for _, line := range window {
		ApplyFieldRules(&b, line)
	}
	return b
}

// ExtractInvoices scans lines for invoice markers and returns one batch per
// marker whose window yields a non-zero amount. Windows may overlap and are
// not deduplicated.
func ExtractInvoices(lines []string) []domain.InvoiceBatch {
	var batches []domain.InvoiceBatch
	for i, line := range lines {
		if !IsInvoiceMarker(line) {
			continue
		}
		b := ParseInvoiceWindow(InvoiceWindow(lines, i))
		if b.HasAmounts() {
			batches = append(batches, b)
		}
	}
	return batches
}
