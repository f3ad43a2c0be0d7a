package statement

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"finextract/internal/domain"
)

const (
	// baselineTolerance is the vertical drift allowed between glyphs of one run.
	baselineTolerance = 1.0
	// runGapEm is the horizontal gap, in font-size units, that ends a run.
	runGapEm = 1.0
	// wordGapEm is the horizontal gap, in font-size units, read as a word
	// space inside a run. Generators that position words with TJ kerning
	// instead of space glyphs leave gaps of this size.
	wordGapEm = 0.2
)

// whitespaceRun includes Unicode space separators such as U+00A0 and U+202F,
// which statements use as thousands separators.
var whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)

// DecodeTokens reads every page of the PDF in order and returns its text tokens
// per page. Any decode failure is fatal and wraps domain.ErrPDFDecode.
func DecodeTokens(data []byte) (pages [][]domain.RawToken, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrPDFDecode)
	}

	// The pdf library reports malformed content streams by panicking.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", domain.ErrPDFDecode, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPDFDecode, err)
	}

	n := r.NumPage()
	pages = make([][]domain.RawToken, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, tokensFromGlyphs(p.Content().Text, i))
	}
	return pages, nil
}

// tokensFromGlyphs merges glyphs into renderer runs. A run continues while the
// glyphs share a baseline and the horizontal gap stays under runGapEm; a gap
// wider than wordGapEm inside a run becomes a single space.
func tokensFromGlyphs(glyphs []pdf.Text, page int) []domain.RawToken {
	var tokens []domain.RawToken
	var cur strings.Builder
	var prev pdf.Text
	started := false

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, domain.RawToken{Text: cur.String(), Page: page, Order: len(tokens)})
			cur.Reset()
		}
	}

	for _, g := range glyphs {
		if started {
			if !sameRun(prev, g) {
				flush()
			} else if wordBreak(prev, g) {
				cur.WriteByte(' ')
			}
		}
		cur.WriteString(g.S)
		prev = g
		started = true
	}
	flush()
	return tokens
}

func sameRun(prev, next pdf.Text) bool {
	if math.Abs(prev.Y-next.Y) > baselineTolerance {
		return false
	}
	gap := glyphGap(prev, next)
	return gap >= -baselineTolerance && gap <= runGapEm*fontSize(prev)
}

// wordBreak reports whether next starts a new word within the run of prev.
func wordBreak(prev, next pdf.Text) bool {
	if isSpace(prev.S) || isSpace(next.S) {
		return false
	}
	return glyphGap(prev, next) > wordGapEm*fontSize(prev)
}

func glyphGap(prev, next pdf.Text) float64 {
	return next.X - (prev.X + prev.W)
}

func fontSize(g pdf.Text) float64 {
	if g.FontSize <= 0 {
		return 1
	}
	return g.FontSize
}

func isSpace(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ReconstructLines assembles logical lines from per-page tokens. A token that
// contains a date or ends with ":" closes the current line; the end of a page
// always closes it. The result never contains empty strings.
func ReconstructLines(pages [][]domain.RawToken) []string {
	var raw []string
	for _, tokens := range pages {
		var acc []string
		for _, tok := range tokens {
			text := strings.TrimSpace(tok.Text)
			if text == "" {
				continue
			}
			acc = append(acc, text)
			if closesLine(text) {
				raw = append(raw, strings.Join(acc, " "))
				acc = acc[:0]
			}
		}
		if len(acc) > 0 {
			raw = append(raw, strings.Join(acc, " "))
		}
	}

	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(whitespaceRun.ReplaceAllString(l, " "))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func closesLine(token string) bool {
	return datePattern.MatchString(token) || strings.HasSuffix(token, ":")
}

// DecodeLines decodes a PDF and returns its logical lines in document order.
func DecodeLines(data []byte) ([]string, error) {
	pages, err := DecodeTokens(data)
	if err != nil {
		return nil, err
	}
	return ReconstructLines(pages), nil
}
