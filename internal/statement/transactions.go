package statement

import (
	"regexp"
	"strings"

	"finextract/internal/domain"
)

// amountToken is one numeric column: optional sign, digits, optional
// space- or dot-separated thousands groups, optional decimal part. Any Unicode
// space separator counts as a thousands separator.
const amountToken = `-?\d+(?:[\p{Zs}.]\d{3})*(?:,\d+)?`

// columnGap separates the row's columns.
const columnGap = `[\s\p{Zs}]+`

// transactionRow matches a whole ledger row: date, label, then optional debit
// and credit columns.
var transactionRow = regexp.MustCompile(
	`^(\d{2}[/-]\d{2}[/-]\d{4})` + columnGap + `(.+?)(?:` + columnGap + `(` + amountToken + `))?(?:` + columnGap + `(` + amountToken + `))?$`,
)

// ParseTransaction parses one line as a ledger row. It returns false when the
// line does not have the row shape, the label is empty, or no non-zero amount
// is present. A single amount column is read as the debit.
func ParseTransaction(line string) (domain.Transaction, bool) {
	m := transactionRow.FindStringSubmatch(line)
	if m == nil {
		return domain.Transaction{}, false
	}

	tx := domain.Transaction{
		Date:    NormalizeDate(m[1]),
		Libelle: strings.TrimSpace(m[2]),
		Debit:   optionalAmount(m[3]),
		Credit:  optionalAmount(m[4]),
	}
	if tx.Libelle == "" || (tx.Debit == nil && tx.Credit == nil) {
		return domain.Transaction{}, false
	}
	return tx, true
}

// optionalAmount returns nil for an absent or zero column.
func optionalAmount(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v := ParseAmount(raw)
	if v == 0 {
		return nil
	}
	return &v
}

// ExtractTransactions returns one transaction per matching line, in line order.
func ExtractTransactions(lines []string) []domain.Transaction {
	var txs []domain.Transaction
	for _, line := range lines {
		if tx, ok := ParseTransaction(line); ok {
			txs = append(txs, tx)
		}
	}
	return txs
}
