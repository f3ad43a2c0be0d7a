// Package pdftest builds minimal text PDFs for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Text is one string drawn at a position on a page. When Words is set the
// words are drawn with a single TJ array instead, each pair separated by
// Kerning thousandths of an em and no space glyph.
type Text struct {
	X, Y    float64
	S       string
	Words   []string
	Kerning float64
}

// Build returns a PDF with one page per entry, each drawing its texts in order
// with Helvetica 12. Strings must be plain ASCII.
func Build(pages ...[]Text) []byte {
	// Object layout: 1 catalog, 2 pages, 3 font, then a page/content pair per page.
	nPages := len(pages)
	total := 3 + 2*nPages

	objs := make([]string, total+1)
	kids := make([]string, nPages)
	for i := range pages {
		pageObj := 4 + 2*i
		kids[i] = fmt.Sprintf("%d 0 R", pageObj)
	}
	objs[1] = "<< /Type /Catalog /Pages 2 0 R >>"
	objs[2] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), nPages)
	objs[3] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"

	for i, texts := range pages {
		pageObj := 4 + 2*i
		contentObj := pageObj + 1
		objs[pageObj] = fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentObj)

		var content strings.Builder
		for _, t := range texts {
			if len(t.Words) > 0 {
				fmt.Fprintf(&content, "BT /F1 12 Tf %.2f %.2f Td %s TJ ET\n", t.X, t.Y, kernedArray(t.Words, t.Kerning))
				continue
			}
			fmt.Fprintf(&content, "BT /F1 12 Tf %.2f %.2f Td (%s) Tj ET\n", t.X, t.Y, escape(t.S))
		}
		body := content.String()
		objs[contentObj] = fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(body), body)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, total+1)
	for n := 1; n <= total; n++ {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, objs[n])
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", total+1)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= total; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)
	return buf.Bytes()
}

func kernedArray(words []string, kerning float64) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = "(" + escape(w) + ")"
	}
	return "[" + strings.Join(parts, fmt.Sprintf(" %.0f ", -kerning)) + "]"
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
