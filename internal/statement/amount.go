// Package statement implements the local heuristic extractor: it rebuilds
// logical text lines from a PDF statement and pulls invoice batches and
// ledger transactions out of them with pattern matching.
package statement

import (
	"regexp"
	"strconv"
	"strings"
)

// datePattern matches dd/mm/yyyy or dd-mm-yyyy anywhere in a string.
var datePattern = regexp.MustCompile(`\d{2}[/-]\d{2}[/-]\d{4}`)

// ParseAmount converts an amount written with French conventions ("." or space
// thousands separators, "," decimal separator) to a float. Every input is read
// that way, so "1234.56" yields 123456. Empty or unparsable input yields 0.
func ParseAmount(raw string) float64 {
	s := strings.Join(strings.Fields(raw), "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// NormalizeDate rewrites dd-mm-yyyy as dd/mm/yyyy.
func NormalizeDate(d string) string {
	return strings.ReplaceAll(d, "-", "/")
}

// findDate returns the first date in s, normalized, or "".
func findDate(s string) string {
	return NormalizeDate(datePattern.FindString(s))
}
