// Package chunker splits PDF documents into fixed-size page ranges with pdfcpu.
package chunker

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"finextract/internal/domain"
	"finextract/internal/port"
)

// DefaultChunkSize is the number of pages per chunk when none is configured.
const DefaultChunkSize = 25

// PageRange is an inclusive, 1-based range of pages.
type PageRange struct {
	First int
	Last  int
}

// String renders the range in pdfcpu page selection syntax.
func (r PageRange) String() string {
	if r.First == r.Last {
		return fmt.Sprintf("%d", r.First)
	}
	return fmt.Sprintf("%d-%d", r.First, r.Last)
}

// PageRanges cuts pageCount pages into consecutive ranges of at most size pages.
func PageRanges(pageCount, size int) []PageRange {
	if pageCount <= 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	ranges := make([]PageRange, 0, (pageCount+size-1)/size)
	for first := 1; first <= pageCount; first += size {
		last := first + size - 1
		if last > pageCount {
			last = pageCount
		}
		ranges = append(ranges, PageRange{First: first, Last: last})
	}
	return ranges
}

// Splitter implements port.DocumentSplitter.
type Splitter struct {
	chunkSize int
	conf      *model.Configuration
}

// NewSplitter creates a Splitter producing chunks of chunkSize pages.
func NewSplitter(chunkSize int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Splitter{chunkSize: chunkSize, conf: conf}
}

// ChunkSize returns the configured pages per chunk.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// PageCount returns the number of pages in the document.
func (s *Splitter) PageCount(ctx context.Context, data []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := api.PageCount(bytes.NewReader(data), s.conf)
	if err != nil {
		return 0, fmt.Errorf("%w: counting pages: %v", domain.ErrPDFDecode, err)
	}
	return n, nil
}

// Split returns the document's chunks in page order. A document that fits in
// one chunk is returned as is.
func (s *Splitter) Split(ctx context.Context, data []byte) ([]port.DocumentChunk, error) {
	n, err := s.PageCount(ctx, data)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: document has no pages", domain.ErrPDFDecode)
	}

	ranges := PageRanges(n, s.chunkSize)
	if len(ranges) == 1 {
		return []port.DocumentChunk{{Index: 0, FirstPage: 1, LastPage: n, PDFBytes: data}}, nil
	}

	chunks := make([]port.DocumentChunk, 0, len(ranges))
	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := api.Trim(bytes.NewReader(data), &buf, []string{r.String()}, s.conf); err != nil {
			return nil, fmt.Errorf("%w: extracting pages %s: %v", domain.ErrPDFDecode, r, err)
		}
		chunks = append(chunks, port.DocumentChunk{
			Index:     i,
			FirstPage: r.First,
			LastPage:  r.Last,
			PDFBytes:  buf.Bytes(),
		})
	}
	return chunks, nil
}
