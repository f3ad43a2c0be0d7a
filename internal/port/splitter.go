package port

import "context"

// DocumentChunk is a contiguous page range of a source PDF, re-encoded as its own document.
type DocumentChunk struct {
	Index     int
	FirstPage int
	LastPage  int
	PDFBytes  []byte
}

// DocumentSplitter splits a PDF into chunks of at most a fixed number of pages.
type DocumentSplitter interface {
	PageCount(ctx context.Context, data []byte) (int, error)
	Split(ctx context.Context, data []byte) ([]DocumentChunk, error)
}
